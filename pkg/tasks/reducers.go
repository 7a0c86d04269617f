package tasks

import (
	"regexp"
	"strings"
)

// The reducers below are pure: they never mutate their input State and never
// touch storage. Slices are copied before modification so a State handed to a
// reader stays valid after the next transition.

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return title, nil
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return name, nil
}

func normalizeColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return DefaultColor, nil
	}
	if !hexColor.MatchString(color) {
		return "", &ValidationError{Field: "color", Reason: "must be a hex color like #84cc16"}
	}
	return strings.ToLower(color), nil
}

func categoryOrDefault(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultCategoryID
	}
	return id
}

func indexOfTask(tasks []Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfCategory(cats []Category, id string) int {
	for i := range cats {
		if cats[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

func cloneCategories(cats []Category) []Category {
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}

// appendTask adds t at the end of the task list.
func appendTask(s State, t Task) State {
	next := make([]Task, len(s.Tasks), len(s.Tasks)+1)
	copy(next, s.Tasks)
	s.Tasks = append(next, t)
	return s
}

// replaceTask swaps in t for the task with the same id.
func replaceTask(s State, t Task) (State, bool) {
	i := indexOfTask(s.Tasks, t.ID)
	if i < 0 {
		return s, false
	}
	s.Tasks = cloneTasks(s.Tasks)
	s.Tasks[i] = t
	return s, true
}

func setCompleted(s State, id string, completed bool) (State, Task, bool) {
	i := indexOfTask(s.Tasks, id)
	if i < 0 {
		return s, Task{}, false
	}
	s.Tasks = cloneTasks(s.Tasks)
	s.Tasks[i].Completed = completed
	return s, s.Tasks[i], true
}

func toggleCompleted(s State, id string) (State, Task, bool) {
	i := indexOfTask(s.Tasks, id)
	if i < 0 {
		return s, Task{}, false
	}
	return setCompleted(s, id, !s.Tasks[i].Completed)
}

func patchTask(s State, id string, p TaskPatch) (State, Task, error) {
	i := indexOfTask(s.Tasks, id)
	if i < 0 {
		return s, Task{}, ErrTaskNotFound
	}
	t, err := applyPatch(s.Tasks[i], p)
	if err != nil {
		return s, Task{}, err
	}
	s.Tasks = cloneTasks(s.Tasks)
	s.Tasks[i] = t
	return s, t, nil
}

func applyPatch(t Task, p TaskPatch) (Task, error) {
	if p.Title != nil {
		title, err := validateTitle(*p.Title)
		if err != nil {
			return Task{}, err
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.CategoryID != nil {
		t.CategoryID = categoryOrDefault(*p.CategoryID)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t, nil
}

func removeTask(s State, id string) (State, bool) {
	i := indexOfTask(s.Tasks, id)
	if i < 0 {
		return s, false
	}
	next := make([]Task, 0, len(s.Tasks)-1)
	next = append(next, s.Tasks[:i]...)
	s.Tasks = append(next, s.Tasks[i+1:]...)
	return s, true
}

func appendCategory(s State, c Category) State {
	next := make([]Category, len(s.Categories), len(s.Categories)+1)
	copy(next, s.Categories)
	s.Categories = append(next, c)
	return s
}

func replaceCategory(s State, c Category) (State, bool) {
	i := indexOfCategory(s.Categories, c.ID)
	if i < 0 {
		return s, false
	}
	s.Categories = cloneCategories(s.Categories)
	s.Categories[i] = c
	return s, true
}

// removeCategory drops the category and points every task that referenced it
// at the default category in the same transition. A category filter naming
// the removed category falls back to all.
func removeCategory(s State, id string) (State, bool) {
	i := indexOfCategory(s.Categories, id)
	if i < 0 {
		return s, false
	}
	cats := make([]Category, 0, len(s.Categories)-1)
	cats = append(cats, s.Categories[:i]...)
	s.Categories = append(cats, s.Categories[i+1:]...)

	s.Tasks = reassignCategory(s.Tasks, id, DefaultCategoryID)
	if s.Filters.Category == id {
		s.Filters.Category = AllCategories
	}
	return s, true
}

func reassignCategory(tasks []Task, from, to string) []Task {
	out := cloneTasks(tasks)
	for i := range out {
		if out[i].CategoryID == from {
			out[i].CategoryID = to
		}
	}
	return out
}
