package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"simpletasks/pkg/tasks"
)

// refresh rebuilds the table rows from the store's visible tasks
func (m *Model) refresh() {
	store := m.backend.Store()
	cats := store.Categories()
	m.items = store.Visible()

	rows := make([]table.Row, 0, len(m.items))
	for _, item := range m.items {
		status := "[ ]"
		if item.Completed {
			status = "[x]"
		}
		cat := tasks.CategoryByID(cats, item.CategoryID)
		rows = append(rows, table.Row{
			status,
			item.Title,
			lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render(cat.Name),
		})
	}
	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
	if m.catCursor >= len(cats) {
		m.catCursor = max(len(cats)-1, 0)
	}
}

// cursorTask returns the task under the table cursor.
func (m Model) cursorTask() (tasks.Task, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return tasks.Task{}, false
	}
	return m.items[idx], true
}

// nextCategoryFilter cycles all -> each category in order -> all.
func nextCategoryFilter(cats []tasks.Category, current string) string {
	if current == tasks.AllCategories {
		if len(cats) == 0 {
			return tasks.AllCategories
		}
		return cats[0].ID
	}
	for i, c := range cats {
		if c.ID == current && i+1 < len(cats) {
			return cats[i+1].ID
		}
	}
	return tasks.AllCategories
}

// focusNextInput cycles through the form inputs
func (m *Model) focusNextInput() {
	m.activeInput = (m.activeInput + 1) % len(m.formInputs())
	m.focusInput()
}

// focusPreviousInput cycles through the form inputs
func (m *Model) focusPreviousInput() {
	n := len(m.formInputs())
	m.activeInput = (m.activeInput - 1 + n) % n
	m.focusInput()
}

// submitForm validates the task form and dispatches the add or edit.
// Invalid input keeps the form open.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title, err := tasks.ValidateTask(m.titleInput.Value())
	if err != nil {
		return m, m.setNotice(err.Error(), true)
	}
	desc := strings.TrimSpace(m.descInput.Value())

	categoryID := tasks.DefaultCategoryID
	if name := strings.TrimSpace(m.categoryInput.Value()); name != "" {
		c, ok := tasks.CategoryByName(m.backend.Store().Categories(), name)
		if !ok {
			return m, m.setNotice(fmt.Sprintf("unknown category %q", name), true)
		}
		categoryID = c.ID
	}

	var cmd tea.Cmd
	switch m.mode {
	case AddMode:
		cmd = m.run("task added", func(ctx context.Context) error {
			_, err := m.backend.AddTask(ctx, title, desc, categoryID)
			return err
		})

	case EditMode:
		if m.editingItem != nil {
			id := m.editingItem.ID
			patch := tasks.TaskPatch{Title: &title, Description: &desc, CategoryID: &categoryID}
			cmd = m.run("task updated", func(ctx context.Context) error {
				_, err := m.backend.UpdateTask(ctx, id, patch)
				return err
			})
		}
	}

	// Reset state
	m.mode = NormalMode
	m.resetInputs()
	m.editingItem = nil
	return m, cmd
}

// submitCategoryForm validates the category form and dispatches the add or
// edit.
func (m Model) submitCategoryForm() (tea.Model, tea.Cmd) {
	name, color, err := tasks.ValidateCategory(m.nameInput.Value(), m.colorInput.Value())
	if err != nil {
		return m, m.setNotice(err.Error(), true)
	}

	var cmd tea.Cmd
	if m.editingCategory != nil {
		id := m.editingCategory.ID
		cmd = m.run("category updated", func(ctx context.Context) error {
			_, err := m.backend.EditCategory(ctx, id, name, color)
			return err
		})
	} else {
		cmd = m.run("category added", func(ctx context.Context) error {
			_, err := m.backend.AddCategory(ctx, name, color)
			return err
		})
	}

	m.mode = CategoriesMode
	m.resetInputs()
	m.editingCategory = nil
	return m, cmd
}
