package backend

import (
	"context"

	"github.com/rs/zerolog"

	"simpletasks/pkg/storage"
	"simpletasks/pkg/tasks"
)

// Local keeps state in a tasks.Store persisted through a storage.Adapter.
// Mutations apply immediately; persistence faults are logged by the store.
type Local struct {
	snap  *storage.Adapter
	store *tasks.Store
	log   zerolog.Logger
}

// NewLocal builds a backend over a snapshot adapter. The store starts with
// the seed categories until Load is called.
func NewLocal(snap *storage.Adapter, log zerolog.Logger, opts ...tasks.Option) *Local {
	opts = append([]tasks.Option{tasks.WithLogger(log)}, opts...)
	return &Local{
		snap:  snap,
		store: tasks.NewStore(tasks.Snapshot{Categories: tasks.SeedCategories()}, snap, opts...),
		log:   log,
	}
}

// Load reads the snapshot. It never fails; unusable slots fall back to
// their defaults.
func (l *Local) Load(ctx context.Context) error {
	snap := l.snap.Load(ctx)
	l.store.Replace(snap)
	return nil
}

func (l *Local) AddTask(_ context.Context, title, description, categoryID string) (tasks.Task, error) {
	return l.store.AddTask(title, description, categoryID)
}

func (l *Local) ToggleTask(_ context.Context, id string) (tasks.Task, error) {
	t, ok := l.store.ToggleTask(id)
	if !ok {
		return tasks.Task{}, tasks.ErrTaskNotFound
	}
	return t, nil
}

func (l *Local) UpdateTask(_ context.Context, id string, p tasks.TaskPatch) (tasks.Task, error) {
	return l.store.UpdateTask(id, p)
}

func (l *Local) DeleteTask(_ context.Context, id string) error {
	if !l.store.DeleteTask(id) {
		return tasks.ErrTaskNotFound
	}
	return nil
}

func (l *Local) AddCategory(_ context.Context, name, color string) (tasks.Category, error) {
	return l.store.AddCategory(name, color)
}

func (l *Local) EditCategory(_ context.Context, id, name, color string) (tasks.Category, error) {
	return l.store.EditCategory(id, name, color)
}

func (l *Local) DeleteCategory(_ context.Context, id string) error {
	return l.store.DeleteCategory(id)
}

func (l *Local) Store() *tasks.Store { return l.store }

func (l *Local) Loading() bool { return false }

func (l *Local) Close() error {
	return l.snap.Close()
}
