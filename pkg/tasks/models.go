// Package tasks holds the task/category state container, its reducers and
// the selectors the UI renders from.
package tasks

import (
	"fmt"
	"strings"
	"time"
)

// CreatedAtLayout is the layout of Task.CreatedAt (local time).
const CreatedAtLayout = "2006-01-02 15:04:05"

// Task represents a single todo task
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description,omitempty"`
	CategoryID  string `json:"categoryId" yaml:"categoryId"`
	Completed   bool   `json:"completed" yaml:"completed"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
}

// Category groups tasks under a colored label
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// TaskPatch is a partial task update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	CategoryID  *string
	Completed   *bool
}

// StatusFilter restricts visible tasks by completion state
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"       // Show all tasks regardless of status
	StatusActive    StatusFilter = "active"    // Show only uncompleted tasks
	StatusCompleted StatusFilter = "completed" // Show only completed tasks
)

// AllCategories is the category filter value that matches every task.
const AllCategories = "all"

// ParseStatusFilter parses a status filter name.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusActive:
		return StatusActive, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return StatusAll, fmt.Errorf("unknown status filter %q (want all, active or completed)", s)
}

// Next cycles all -> active -> completed -> all.
func (f StatusFilter) Next() StatusFilter {
	switch f {
	case StatusAll:
		return StatusActive
	case StatusActive:
		return StatusCompleted
	default:
		return StatusAll
	}
}

// Filters is the session-scoped selector pair. It is never persisted.
type Filters struct {
	Status   StatusFilter
	Category string
}

// DefaultFilters returns the filters a fresh session starts with.
func DefaultFilters() Filters {
	return Filters{Status: StatusAll, Category: AllCategories}
}

// Snapshot is the persisted part of the state.
type Snapshot struct {
	Tasks      []Task     `json:"tasks" yaml:"tasks"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// State is the full in-memory state. Values are treated as immutable by the
// reducers; every transition returns a new State.
type State struct {
	Tasks      []Task
	Categories []Category
	Filters    Filters
}

// Counts aggregates task completion.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// FormatCreatedAt renders t in the CreatedAt layout.
func FormatCreatedAt(t time.Time) string {
	return t.Local().Format(CreatedAtLayout)
}
