package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/tasks"
)

// sectionHeader matches "Work:" and "## Work" lines.
var sectionHeader = regexp.MustCompile(`^(?:#+\s*(.+?)|([^-\s].*?):)$`)

// HandleImportCommand adds the tasks of a markdown checklist file. A section
// header selects the category for the tasks below it; a +name tag on the
// task line overrides it. Lines that fail are reported and skipped.
func HandleImportCommand(ctx context.Context, b backend.Backend, w io.Writer, filename string) (int, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("error reading file: %w", err)
	}

	lines := strings.Split(string(content), "\n")
	currentCategory := tasks.DefaultCategoryID
	var tasksAdded int

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			name := m[1] + m[2]
			c, err := resolveCategory(b.Store().Categories(), name)
			if err != nil {
				fmt.Fprintf(w, "Unknown category %q, using General\n", name)
				currentCategory = tasks.DefaultCategoryID
				continue
			}
			currentCategory = c.ID
			continue
		}

		// Check if line is a task (starts with -)
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		taskText := strings.TrimSpace(strings.TrimPrefix(line, "- "))

		completed := false
		if strings.HasPrefix(taskText, "[x]") || strings.HasPrefix(taskText, "[X]") {
			completed = true
			taskText = strings.TrimSpace(taskText[3:])
		} else if strings.HasPrefix(taskText, "[ ]") {
			taskText = strings.TrimSpace(taskText[3:])
		}

		categoryID := currentCategory
		if tags := extractCategoryTags(taskText); len(tags) > 0 {
			if c, err := resolveCategory(b.Store().Categories(), tags[0]); err == nil {
				categoryID = c.ID
			}
		}
		title := removeCategoryTags(taskText)

		task, err := b.AddTask(ctx, title, "", categoryID)
		if err != nil {
			fmt.Fprintf(w, "Error adding task '%s': %v\n", title, err)
			continue
		}
		if completed {
			if _, err := b.ToggleTask(ctx, task.ID); err != nil {
				fmt.Fprintf(w, "Error completing task '%s': %v\n", title, err)
			}
		}
		tasksAdded++
	}

	fmt.Fprintf(w, "Successfully imported %d task(s) from %s\n", tasksAdded, filename)
	return tasksAdded, nil
}
