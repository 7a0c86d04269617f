package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"simpletasks/pkg/tasks"
	"simpletasks/pkg/utils"
)

const noticeTTL = 4 * time.Second

// opDoneMsg carries the outcome of a backend call back to the update loop.
type opDoneMsg struct {
	notice    string
	err       error
	deletedID string
}

type clearNoticeMsg struct{ seq int }

// run executes op off the update loop. Remote backends block until the
// service answers, so calls never run inside Update itself.
func (m Model) run(notice string, op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{notice: notice, err: op(context.Background())}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-9, 3))
		return m, nil

	case opDoneMsg:
		if msg.err == nil && msg.deletedID != "" && msg.deletedID == m.selectedID {
			m.selectedID = ""
			if m.mode == DetailMode {
				m.mode = NormalMode
			}
		}
		m.refresh()
		if msg.err != nil {
			utils.Log("operation failed: %v", msg.err)
			return m, m.setNotice(msg.err.Error(), true)
		}
		return m, m.setNotice(msg.notice, false)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case NormalMode:
			return m.updateNormal(msg)
		case AddMode, EditMode, AddCategoryMode:
			return m.updateForm(msg)
		case DeleteConfirmMode:
			return m.updateDeleteConfirm(msg)
		case CategoriesMode:
			return m.updateCategories(msg)
		case DetailMode, HelpViewMode:
			switch {
			case m.mode == DetailMode && key.Matches(msg, m.keyMap.DeleteTask):
				if t, ok := m.backend.Store().Task(m.selectedID); ok {
					m.mode = DeleteConfirmMode
					m.editingItem = &t
					m.editingCategory = nil
				}
			case key.Matches(msg, m.keyMap.QuitApp) && msg.String() == "ctrl+c":
				return m, tea.Quit
			case key.Matches(msg, m.keyMap.Back, m.keyMap.ShowHelp, m.keyMap.ShowDetail, m.keyMap.QuitApp):
				m.mode = NormalMode
				m.selectedID = ""
			}
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.backend.Store()

	switch {
	case key.Matches(msg, m.keyMap.ShowHelp):
		m.mode = HelpViewMode

	case key.Matches(msg, m.keyMap.QuitApp):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.ToggleStatus):
		if t, ok := m.cursorTask(); ok {
			return m, m.run("", func(ctx context.Context) error {
				_, err := m.backend.ToggleTask(ctx, t.ID)
				return err
			})
		}

	case key.Matches(msg, m.keyMap.AddTask):
		m.mode = AddMode
		m.editingItem = nil
		m.resetInputs()

	case key.Matches(msg, m.keyMap.EditTask):
		if t, ok := m.cursorTask(); ok {
			m.mode = EditMode
			m.editingItem = &t
			m.resetInputs()

			// Populate form with existing values
			m.titleInput.SetValue(t.Title)
			m.descInput.SetValue(t.Description)
			if t.CategoryID != tasks.DefaultCategoryID {
				m.categoryInput.SetValue(store.Category(t.CategoryID).Name)
			}
		}

	case key.Matches(msg, m.keyMap.DeleteTask):
		if t, ok := m.cursorTask(); ok {
			m.mode = DeleteConfirmMode
			m.editingItem = &t
			m.editingCategory = nil
		}

	case key.Matches(msg, m.keyMap.ShowDetail):
		if t, ok := m.cursorTask(); ok {
			m.mode = DetailMode
			m.selectedID = t.ID
		}

	case key.Matches(msg, m.keyMap.CycleStatusFilter):
		store.SetStatusFilter(store.Filters().Status.Next())
		m.refresh()

	case key.Matches(msg, m.keyMap.CycleCategoryFilter):
		store.SetCategoryFilter(nextCategoryFilter(store.Categories(), store.Filters().Category))
		m.refresh()

	case key.Matches(msg, m.keyMap.ManageCategories):
		m.mode = CategoriesMode
		m.catCursor = 0

	case key.Matches(msg, m.keyMap.Reload):
		return m, m.run("reloaded", m.backend.Load)

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.mode == AddCategoryMode {
			m.mode = CategoriesMode
		} else {
			m.mode = NormalMode
		}
		m.resetInputs()
		m.editingItem = nil
		m.editingCategory = nil
		return m, nil

	case "tab", "down":
		m.focusNextInput()
		return m, nil

	case "shift+tab", "up":
		m.focusPreviousInput()
		return m, nil

	case "enter":
		if m.mode == AddCategoryMode {
			return m.submitCategoryForm()
		}
		return m.submitForm()
	}

	var cmd tea.Cmd
	inputs := m.formInputs()
	*inputs[m.activeInput], cmd = inputs[m.activeInput].Update(msg)
	return m, cmd
}

func (m Model) updateDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		var cmd tea.Cmd
		switch {
		case m.editingCategory != nil:
			id := m.editingCategory.ID
			cmd = m.run("category deleted", func(ctx context.Context) error {
				return m.backend.DeleteCategory(ctx, id)
			})
			m.mode = CategoriesMode
		case m.editingItem != nil:
			id := m.editingItem.ID
			cmd = func() tea.Msg {
				err := m.backend.DeleteTask(context.Background(), id)
				return opDoneMsg{notice: "task deleted", err: err, deletedID: id}
			}
			m.mode = NormalMode
		}
		m.editingItem = nil
		m.editingCategory = nil
		return m, cmd

	case "n", "N", "esc":
		if m.editingCategory != nil {
			m.mode = CategoriesMode
		} else {
			m.mode = NormalMode
		}
		m.editingItem = nil
		m.editingCategory = nil
	}
	return m, nil
}

func (m Model) updateCategories(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cats := m.backend.Store().Categories()

	switch {
	case msg.String() == "up" || msg.String() == "k":
		if m.catCursor > 0 {
			m.catCursor--
		}

	case msg.String() == "down" || msg.String() == "j":
		if m.catCursor < len(cats)-1 {
			m.catCursor++
		}

	case key.Matches(msg, m.keyMap.ShowDetail):
		if m.catCursor < len(cats) {
			m.backend.Store().SetCategoryFilter(cats[m.catCursor].ID)
			m.mode = NormalMode
			m.refresh()
		}

	case key.Matches(msg, m.keyMap.AddCategory):
		m.mode = AddCategoryMode
		m.editingCategory = nil
		m.resetInputs()

	case key.Matches(msg, m.keyMap.EditTask):
		if m.catCursor < len(cats) {
			c := cats[m.catCursor]
			m.mode = AddCategoryMode
			m.editingCategory = &c
			m.resetInputs()
			m.nameInput.SetValue(c.Name)
			m.colorInput.SetValue(c.Color)
		}

	case key.Matches(msg, m.keyMap.DeleteCategory):
		if m.catCursor < len(cats) {
			c := cats[m.catCursor]
			if tasks.IsSeedCategory(c.ID) {
				return m, m.setNotice((&tasks.ProtectedEntityError{Kind: "category", ID: c.ID}).Error(), true)
			}
			m.mode = DeleteConfirmMode
			m.editingCategory = &c
			m.editingItem = nil
		}

	case key.Matches(msg, m.keyMap.Back):
		m.mode = NormalMode

	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// setNotice shows a transient message in the status line.
func (m *Model) setNotice(text string, isErr bool) tea.Cmd {
	if text == "" {
		return nil
	}
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	if !m.ticks {
		return nil
	}
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}
