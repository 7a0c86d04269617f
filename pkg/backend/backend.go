// Package backend binds the task store to where its data lives: a local
// snapshot (Local) or a remote record service (Remote). The UI and the
// command line only talk to a Backend.
package backend

import (
	"context"

	"simpletasks/pkg/tasks"
)

// Backend is the set of intents the UI and commands dispatch. Every mutation
// validates its input first; a Remote backend applies a mutation to the
// store only after the service confirmed it.
type Backend interface {
	// Load replaces the store's tasks and categories with persisted data.
	Load(ctx context.Context) error

	AddTask(ctx context.Context, title, description, categoryID string) (tasks.Task, error)
	ToggleTask(ctx context.Context, id string) (tasks.Task, error)
	UpdateTask(ctx context.Context, id string, p tasks.TaskPatch) (tasks.Task, error)
	DeleteTask(ctx context.Context, id string) error

	AddCategory(ctx context.Context, name, color string) (tasks.Category, error)
	EditCategory(ctx context.Context, id, name, color string) (tasks.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Store exposes the state container for reads and filter changes.
	Store() *tasks.Store
	// Loading reports whether a remote call is in flight.
	Loading() bool
	Close() error
}

func findCategory(s *tasks.Store, id string) (tasks.Category, bool) {
	for _, c := range s.Categories() {
		if c.ID == id {
			return c, true
		}
	}
	return tasks.Category{}, false
}
