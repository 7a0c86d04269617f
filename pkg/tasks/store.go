package tasks

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Persister is the persistence port of the Store. Implementations write the
// given collection in full; a returned error is logged and otherwise ignored,
// the in-memory state stays authoritative for the session.
type Persister interface {
	SaveTasks(tasks []Task) error
	SaveCategories(cats []Category) error
}

// Store is the single authoritative holder of tasks, categories and filters.
// Each operation runs as one critical section.
type Store struct {
	mu    sync.RWMutex
	state State

	persist Persister
	ids     IDGenerator
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed persistence failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithIDs sets the identifier generator for locally created entities.
func WithIDs(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithClock sets the clock used for task timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a Store from a loaded snapshot. A nil persister disables
// persistence. Filters start at all/all.
func NewStore(snap Snapshot, p Persister, opts ...Option) *Store {
	s := &Store{
		state: State{
			Tasks:      cloneTasks(snap.Tasks),
			Categories: cloneCategories(snap.Categories),
			Filters:    DefaultFilters(),
		},
		persist: p,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewClockIDs(s.now)
	}
	return s
}

// State returns the current state. The returned value must not be modified.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns a copy of the persisted collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Tasks:      cloneTasks(s.state.Tasks),
		Categories: cloneCategories(s.state.Categories),
	}
}

// Tasks returns a copy of all tasks in collection order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.state.Tasks)
}

// Categories returns a copy of all categories.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.state.Categories)
}

// Filters returns the current filter selection.
func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Filters
}

// Task looks up a task by id.
func (s *Store) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOfTask(s.state.Tasks, id); i >= 0 {
		return s.state.Tasks[i], true
	}
	return Task{}, false
}

// Visible returns the tasks passing the current filters.
func (s *Store) Visible() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilteredTasks(s.state.Tasks, s.state.Filters)
}

// Counts returns completion counts over all tasks.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return TaskCounts(s.state.Tasks)
}

// Category resolves a category id, never failing.
func (s *Store) Category(id string) Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CategoryByID(s.state.Categories, id)
}

// AddTask validates and appends a new task.
func (s *Store) AddTask(title, description, categoryID string) (Task, error) {
	title, err := validateTitle(title)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Task{
		ID:          s.newIDLocked(),
		Title:       title,
		Description: description,
		CategoryID:  categoryOrDefault(categoryID),
		Completed:   false,
		CreatedAt:   FormatCreatedAt(s.now()),
	}
	s.state = appendTask(s.state, t)
	s.saveTasksLocked()
	return t, nil
}

// newIDLocked draws ids until one is unused. A restarted process may see
// the clock at a millisecond already handed out before.
func (s *Store) newIDLocked() string {
	for {
		id := s.ids.NewID()
		if indexOfTask(s.state.Tasks, id) < 0 && indexOfCategory(s.state.Categories, id) < 0 {
			return id
		}
	}
}

// ToggleTask flips completion. A missing id is a no-op and reports false.
func (s *Store) ToggleTask(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, t, ok := toggleCompleted(s.state, id)
	if !ok {
		return Task{}, false
	}
	s.state = next
	s.saveTasksLocked()
	return t, true
}

// UpdateTask applies a partial update.
func (s *Store) UpdateTask(id string, p TaskPatch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, t, err := patchTask(s.state, id, p)
	if err != nil {
		return Task{}, err
	}
	s.state = next
	s.saveTasksLocked()
	return t, nil
}

// DeleteTask removes a task and reports whether it existed. Callers holding
// a selection of the task must clear it.
func (s *Store) DeleteTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := removeTask(s.state, id)
	if !ok {
		return false
	}
	s.state = next
	s.saveTasksLocked()
	return true
}

// AddCategory validates and appends a new category. An empty color uses
// DefaultColor.
func (s *Store) AddCategory(name, color string) (Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return Category{}, err
	}
	color, err = normalizeColor(color)
	if err != nil {
		return Category{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := Category{ID: s.newIDLocked(), Name: name, Color: color}
	s.state = appendCategory(s.state, c)
	s.saveCategoriesLocked()
	return c, nil
}

// EditCategory renames and/or recolors a category. Empty arguments keep the
// current value.
func (s *Store) EditCategory(id, name, color string) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfCategory(s.state.Categories, id)
	if i < 0 {
		return Category{}, ErrCategoryNotFound
	}
	c, err := editedCategory(s.state.Categories[i], name, color)
	if err != nil {
		return Category{}, err
	}
	s.state, _ = replaceCategory(s.state, c)
	s.saveCategoriesLocked()
	return c, nil
}

// DeleteCategory removes a non-seed category and moves its tasks to the
// default category.
func (s *Store) DeleteCategory(id string) error {
	if IsSeedCategory(id) {
		return &ProtectedEntityError{Kind: "category", ID: id}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := removeCategory(s.state, id)
	if !ok {
		return ErrCategoryNotFound
	}
	s.state = next
	s.saveCategoriesLocked()
	s.saveTasksLocked()
	return nil
}

// SetStatusFilter selects the status filter. Not persisted.
func (s *Store) SetStatusFilter(f StatusFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Filters.Status = f
}

// SetCategoryFilter selects a category id or AllCategories. Not persisted.
func (s *Store) SetCategoryFilter(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = AllCategories
	}
	s.state.Filters.Category = id
}

// Replace installs both collections of snap at once. Filters are kept.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Tasks = cloneTasks(snap.Tasks)
	s.state.Categories = cloneCategories(snap.Categories)
}

// InsertTask appends a task confirmed elsewhere (e.g. created remotely).
func (s *Store) InsertTask(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = appendTask(s.state, t)
	s.saveTasksLocked()
}

// PutTask replaces the task with t.ID, reporting whether it was present.
func (s *Store) PutTask(t Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := replaceTask(s.state, t)
	if ok {
		s.state = next
		s.saveTasksLocked()
	}
	return ok
}

// SetTaskCompleted sets completion to a confirmed value.
func (s *Store) SetTaskCompleted(id string, completed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, _, ok := setCompleted(s.state, id, completed)
	if ok {
		s.state = next
		s.saveTasksLocked()
	}
	return ok
}

// RemoveTask drops a task whose deletion was confirmed elsewhere.
func (s *Store) RemoveTask(id string) bool {
	return s.DeleteTask(id)
}

// InsertCategory appends a category confirmed elsewhere.
func (s *Store) InsertCategory(c Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = appendCategory(s.state, c)
	s.saveCategoriesLocked()
}

// PutCategory replaces the category with c.ID.
func (s *Store) PutCategory(c Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := replaceCategory(s.state, c)
	if ok {
		s.state = next
		s.saveCategoriesLocked()
	}
	return ok
}

// RemoveCategory drops a category whose deletion was confirmed elsewhere,
// reassigning its tasks like DeleteCategory.
func (s *Store) RemoveCategory(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := removeCategory(s.state, id)
	if ok {
		s.state = next
		s.saveCategoriesLocked()
		s.saveTasksLocked()
	}
	return ok
}

func editedCategory(c Category, name, color string) (Category, error) {
	if name != "" {
		n, err := validateCategoryName(name)
		if err != nil {
			return Category{}, err
		}
		c.Name = n
	}
	if color != "" {
		col, err := normalizeColor(color)
		if err != nil {
			return Category{}, err
		}
		c.Color = col
	}
	return c, nil
}

// ValidateTask checks task input without touching any state.
func ValidateTask(title string) (string, error) {
	return validateTitle(title)
}

// ValidateCategory checks category input without touching any state and
// returns the normalized name and color.
func ValidateCategory(name, color string) (string, string, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return "", "", err
	}
	color, err = normalizeColor(color)
	if err != nil {
		return "", "", err
	}
	return name, color, nil
}

// ApplyPatch returns t with p applied, validating the new title if any.
func ApplyPatch(t Task, p TaskPatch) (Task, error) {
	return applyPatch(t, p)
}

// EditedCategory applies a rename/recolor to c without touching any state.
func EditedCategory(c Category, name, color string) (Category, error) {
	return editedCategory(c, name, color)
}

func (s *Store) saveTasksLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveTasks(cloneTasks(s.state.Tasks)); err != nil {
		s.log.Warn().Err(err).Msg("persisting tasks failed")
	}
}

func (s *Store) saveCategoriesLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveCategories(cloneCategories(s.state.Categories)); err != nil {
		s.log.Warn().Err(err).Msg("persisting categories failed")
	}
}
