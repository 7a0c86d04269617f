package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"simpletasks/pkg/tasks"
)

// View renders the UI based on the current mode
func (m Model) View() string {
	var sb strings.Builder
	store := m.backend.Store()

	switch m.mode {
	case NormalMode:
		title := " Simple Tasks "
		if m.config.Backend == "remote" {
			title = " Simple Tasks (remote) "
		}
		sb.WriteString(m.titleBar(title, m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.table.View())
		sb.WriteString("\n")
		sb.WriteString(m.statusLine())
		sb.WriteString("\n")

	case AddMode:
		sb.WriteString(m.titleBar(" Add New Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case EditMode:
		sb.WriteString(m.titleBar(" Edit Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderForm())

	case AddCategoryMode:
		label := " New Category "
		if m.editingCategory != nil {
			label = " Edit Category "
		}
		sb.WriteString(m.titleBar(label, m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString("Name:\n")
		sb.WriteString(m.nameInput.View())
		sb.WriteString("\n\nColor:\n")
		sb.WriteString(m.colorInput.View())

	case DeleteConfirmMode:
		switch {
		case m.editingCategory != nil:
			sb.WriteString(m.titleBar(" Delete Category ", m.styles.ErrorColor))
			sb.WriteString("\n\n")
			sb.WriteString("Are you sure you want to delete this category?\n")
			sb.WriteString("Its tasks move to General.\n\n")
			sb.WriteString(fmt.Sprintf("Name: %s\n", m.editingCategory.Name))
		case m.editingItem != nil:
			sb.WriteString(m.titleBar(" Delete Task ", m.styles.ErrorColor))
			sb.WriteString("\n\n")
			sb.WriteString("Are you sure you want to delete this task?\n\n")
			sb.WriteString(fmt.Sprintf("Title: %s\n", m.editingItem.Title))
			sb.WriteString(fmt.Sprintf("Description: %s\n", m.editingItem.Description))
		}
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Press Y to confirm, N to cancel"))

	case CategoriesMode:
		sb.WriteString(m.titleBar(" Categories ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		sb.WriteString(m.renderCategories(store.Categories()))

	case DetailMode:
		sb.WriteString(m.titleBar(" Task ", m.styles.AccentColor))
		sb.WriteString("\n\n")
		if t, ok := store.Task(m.selectedID); ok {
			sb.WriteString(m.renderDetail(t, store.Category(t.CategoryID)))
		}

	case HelpViewMode:
		// Fullscreen commands view
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Available Commands"))
		sb.WriteString("\n\n")
		h := m.help
		h.ShowAll = true
		sb.WriteString(h.View(m.keyMap))
		sb.WriteString("\n\n")
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Category Commands"))
		sb.WriteString("\n\n")
		sb.WriteString(m.commandList(m.keyMap.AddCategory, m.keyMap.EditTask, m.keyMap.DeleteCategory, m.keyMap.ShowDetail, m.keyMap.Back))
	}

	if m.backend.Loading() {
		sb.WriteString("\n")
		sb.WriteString(m.spinner.View())
		sb.WriteString(" syncing...")
	}

	if m.notice != "" {
		color := m.styles.NormalTextColor
		if m.noticeErr {
			color = m.styles.ErrorColor
		}
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(m.notice))
	}

	// Add help status bar at the bottom
	sb.WriteString("\n")
	sb.WriteString(m.helpBar())

	return sb.String()
}

func (m Model) titleBar(text, bg string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(bg)).
		Padding(0, 1).
		Render(text)
}

// statusLine shows the active filters and task counts.
func (m Model) statusLine() string {
	store := m.backend.Store()
	f := store.Filters()
	counts := store.Counts()

	category := "all categories"
	if f.Category != tasks.AllCategories {
		category = store.Category(f.Category).Name
	}

	info := fmt.Sprintf("Showing %s tasks in %s | %d total, %d done, %d active",
		f.Status, category, counts.Total, counts.Completed, counts.Active)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.MutedColor)).Render(info)
}

// helpBar renders a sleek status bar with available actions
func (m Model) helpBar() string {
	var actions []string

	// Define styles for keys and descriptions
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))
	separatorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.BorderColor))

	separator := separatorStyle.Render(" • ")

	addAction := func(k, desc string) {
		actions = append(actions, fmt.Sprintf("%s %s", keyStyle.Render(k), descStyle.Render(desc)))
	}
	addBinding := func(b key.Binding, desc string) {
		addAction(b.Help().Key, desc)
	}

	switch m.mode {
	case NormalMode:
		addBinding(m.keyMap.AddTask, "add")
		addBinding(m.keyMap.EditTask, "edit")
		addBinding(m.keyMap.DeleteTask, "del")
		addBinding(m.keyMap.ToggleStatus, "toggle")
		addBinding(m.keyMap.CycleStatusFilter, "status")
		addBinding(m.keyMap.CycleCategoryFilter, "category")
		addBinding(m.keyMap.ManageCategories, "categories")
		addBinding(m.keyMap.ShowHelp, "help")
		addBinding(m.keyMap.QuitApp, "quit")

	case AddMode, EditMode, AddCategoryMode:
		addAction("tab", "next field")
		addAction("enter", "save")
		addAction("esc", "cancel")

	case DeleteConfirmMode:
		addAction("y", "confirm")
		addAction("n", "cancel")

	case CategoriesMode:
		addAction("↑/↓", "move")
		addBinding(m.keyMap.ShowDetail, "filter")
		addBinding(m.keyMap.AddCategory, "new")
		addBinding(m.keyMap.EditTask, "edit")
		addBinding(m.keyMap.DeleteCategory, "del")
		addBinding(m.keyMap.Back, "back")

	case DetailMode, HelpViewMode:
		addBinding(m.keyMap.Back, "back")
	}

	return strings.Join(actions, separator)
}

// commandList renders one "description: key" line per binding.
func (m Model) commandList(bindings ...key.Binding) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.AccentColor)).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.NormalTextColor))

	var sb strings.Builder
	for _, b := range bindings {
		sb.WriteString(fmt.Sprintf("%s: %s\n", descStyle.Render(b.Help().Desc), keyStyle.Render(b.Help().Key)))
	}
	return sb.String()
}

// renderForm renders the input form for adding/editing tasks
func (m Model) renderForm() string {
	var sb strings.Builder

	sb.WriteString("Title:\n")
	sb.WriteString(m.titleInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("Description:\n")
	sb.WriteString(m.descInput.View())
	sb.WriteString("\n\n")

	sb.WriteString("Category:\n")
	sb.WriteString(m.categoryInput.View())

	return sb.String()
}

func (m Model) renderCategories(cats []tasks.Category) string {
	var sb strings.Builder
	counts := make(map[string]int)
	for _, t := range m.backend.Store().Tasks() {
		counts[t.CategoryID]++
	}

	selected := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.styles.SelectedTextColor)).
		Background(lipgloss.Color(m.styles.SelectedBgColor)).
		Bold(true)

	for i, c := range cats {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render("■")
		line := fmt.Sprintf("%s (%d)", c.Name, counts[c.ID])
		if tasks.IsSeedCategory(c.ID) {
			line += " *"
		}
		if i == m.catCursor {
			line = selected.Render(line)
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", swatch, line))
	}
	return sb.String()
}

func (m Model) renderDetail(t tasks.Task, c tasks.Category) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.MutedColor))
	status := "active"
	if t.Completed {
		status = lipgloss.NewStyle().Foreground(lipgloss.Color(m.styles.DoneColor)).Render("done")
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render(t.Title))
	sb.WriteString("\n\n")
	if t.Description != "" {
		sb.WriteString(t.Description)
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Category:"), lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(c.Name)))
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Status:  "), status))
	sb.WriteString(fmt.Sprintf("%s %s\n", label.Render("Created: "), t.CreatedAt))
	return sb.String()
}
