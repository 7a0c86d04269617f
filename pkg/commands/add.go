package commands

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/tasks"
)

var categoryTag = regexp.MustCompile(`\+(\w+)`)

// HandleAddTask adds a task from free text. A +name tag picks the category
// by name; without one the task lands in General.
func HandleAddTask(ctx context.Context, b backend.Backend, w io.Writer, taskText, description string) (tasks.Task, error) {
	categoryID := tasks.DefaultCategoryID
	if tags := extractCategoryTags(taskText); len(tags) > 0 {
		c, err := resolveCategory(b.Store().Categories(), tags[0])
		if err != nil {
			return tasks.Task{}, err
		}
		categoryID = c.ID
	}

	task, err := b.AddTask(ctx, removeCategoryTags(taskText), description, categoryID)
	if err != nil {
		return tasks.Task{}, err
	}
	fmt.Fprintf(w, "Added %s: %s\n", task.ID, task.Title)
	return task, nil
}

// HandleList prints the tasks matching the status and category filters.
func HandleList(b backend.Backend, w io.Writer, status, category string) error {
	store := b.Store()

	f, err := tasks.ParseStatusFilter(status)
	if err != nil {
		return err
	}
	categoryID := tasks.AllCategories
	if category != "" && category != tasks.AllCategories {
		c, err := resolveCategory(store.Categories(), category)
		if err != nil {
			return err
		}
		categoryID = c.ID
	}
	store.SetStatusFilter(f)
	store.SetCategoryFilter(categoryID)

	cats := store.Categories()
	for _, t := range store.Visible() {
		fmt.Fprintf(w, "%s %s  (%s)  %s\n", checkbox(t.Completed), t.Title, tasks.CategoryByID(cats, t.CategoryID).Name, t.ID)
	}
	counts := store.Counts()
	fmt.Fprintf(w, "%d total, %d done, %d active\n", counts.Total, counts.Completed, counts.Active)
	return nil
}

// HandleToggle flips a task's completion flag.
func HandleToggle(ctx context.Context, b backend.Backend, w io.Writer, id string) error {
	t, err := b.ToggleTask(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", checkbox(t.Completed), t.Title)
	return nil
}

// HandleRemove deletes a task.
func HandleRemove(ctx context.Context, b backend.Backend, w io.Writer, id string) error {
	if err := b.DeleteTask(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %s\n", id)
	return nil
}

// resolveCategory accepts a category id or a case-insensitive name.
func resolveCategory(cats []tasks.Category, ref string) (tasks.Category, error) {
	ref = strings.TrimSpace(ref)
	for _, c := range cats {
		if c.ID == ref {
			return c, nil
		}
	}
	if c, ok := tasks.CategoryByName(cats, ref); ok {
		return c, nil
	}
	return tasks.Category{}, fmt.Errorf("%w: %q", tasks.ErrCategoryNotFound, ref)
}

func checkbox(done bool) string {
	if done {
		return "- [x]"
	}
	return "- [ ]"
}

// extractCategoryTags finds all +category tags in text
func extractCategoryTags(text string) []string {
	matches := categoryTag.FindAllStringSubmatch(text, -1)
	var tags []string
	for _, match := range matches {
		tags = append(tags, match[1])
	}
	return tags
}

// removeCategoryTags removes +category tags from text for clean title
func removeCategoryTags(text string) string {
	re := regexp.MustCompile(`\s*\+\w+\s*`)
	return strings.TrimSpace(re.ReplaceAllString(text, " "))
}
