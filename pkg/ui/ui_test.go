package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/config"
	"simpletasks/pkg/remote"
	"simpletasks/pkg/storage"
	"simpletasks/pkg/tasks"
)

func newTestModel(t *testing.T, b backend.Backend) Model {
	t.Helper()
	m := NewModel(b, config.Config{}, config.DefaultStyles())
	m.ticks = false
	return exec(t, m, m.Init())
}

func newLocalModel(t *testing.T) Model {
	t.Helper()
	b := backend.NewLocal(storage.NewAdapter(storage.NewMemorySlots(), zerolog.Nop()), zerolog.Nop())
	return newTestModel(t, b)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// exec runs a backend command synchronously and feeds its result back.
func exec(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	done, ok := msg.(opDoneMsg)
	require.True(t, ok, "expected opDoneMsg, got %T", msg)
	next, _ := m.Update(done)
	return next.(Model)
}

func TestModel_AddTask(t *testing.T) {
	m := newLocalModel(t)

	m, _ = press(t, m, runes("a"))
	require.Equal(t, AddMode, m.mode)
	m.titleInput.SetValue("  Write report ")
	m.categoryInput.SetValue("work")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, NormalMode, m.mode)
	m = exec(t, m, cmd)

	require.Len(t, m.items, 1)
	assert.Equal(t, "Write report", m.items[0].Title)
	assert.Equal(t, tasks.WorkCategoryID, m.items[0].CategoryID)
	assert.Equal(t, "task added", m.notice)
	assert.False(t, m.noticeErr)
	assert.Contains(t, m.View(), "Write report")
}

func TestModel_FormValidation(t *testing.T) {
	m := newLocalModel(t)

	m, _ = press(t, m, runes("a"))
	m.titleInput.SetValue("   ")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, AddMode, m.mode, "form stays open")
	assert.True(t, m.noticeErr)
	assert.Contains(t, m.notice, "title")

	m.titleInput.SetValue("Read")
	m.categoryInput.SetValue("Hobbies")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.notice, `unknown category "Hobbies"`)
	assert.Empty(t, m.backend.Store().Tasks())
}

func TestModel_ToggleAndFilter(t *testing.T) {
	m := newLocalModel(t)
	ctx := context.Background()
	_, err := m.backend.AddTask(ctx, "Run", "", "")
	require.NoError(t, err)
	_, err = m.backend.AddTask(ctx, "Read", "", "")
	require.NoError(t, err)
	m.refresh()

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = exec(t, m, cmd)
	assert.True(t, m.items[0].Completed)
	assert.Contains(t, m.View(), "[x]")

	m, _ = press(t, m, runes("f"))
	assert.Equal(t, tasks.StatusActive, m.backend.Store().Filters().Status)
	require.Len(t, m.items, 1)
	assert.Equal(t, "Read", m.items[0].Title)

	m, _ = press(t, m, runes("f"))
	require.Len(t, m.items, 1)
	assert.Equal(t, "Run", m.items[0].Title)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tasks.DefaultCategoryID, m.backend.Store().Filters().Category)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tasks.WorkCategoryID, m.backend.Store().Filters().Category)
	assert.Empty(t, m.items)
}

func TestModel_DeleteDetailViewedTaskClearsSelection(t *testing.T) {
	m := newLocalModel(t)
	task, err := m.backend.AddTask(context.Background(), "Run", "5k", "")
	require.NoError(t, err)
	m.refresh()

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, DetailMode, m.mode)
	assert.Equal(t, task.ID, m.selectedID)
	assert.Contains(t, m.View(), "5k")

	m, _ = press(t, m, runes("d"))
	require.Equal(t, DeleteConfirmMode, m.mode)
	assert.Contains(t, m.View(), "Press Y to confirm, N to cancel")

	m, cmd := press(t, m, runes("y"))
	m = exec(t, m, cmd)
	assert.Equal(t, NormalMode, m.mode)
	assert.Empty(t, m.selectedID)
	assert.Empty(t, m.items)
}

func TestModel_DeleteCancel(t *testing.T) {
	m := newLocalModel(t)
	_, err := m.backend.AddTask(context.Background(), "Run", "", "")
	require.NoError(t, err)
	m.refresh()

	m, _ = press(t, m, runes("d"))
	m, cmd := press(t, m, runes("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, NormalMode, m.mode)
	assert.Len(t, m.items, 1)
}

func TestModel_Categories(t *testing.T) {
	m := newLocalModel(t)

	m, _ = press(t, m, runes("c"))
	require.Equal(t, CategoriesMode, m.mode)

	// seed categories are protected
	m, _ = press(t, m, runes("x"))
	assert.Equal(t, CategoriesMode, m.mode)
	assert.True(t, m.noticeErr)
	assert.Contains(t, m.notice, "protected")

	m, _ = press(t, m, runes("n"))
	require.Equal(t, AddCategoryMode, m.mode)
	m.nameInput.SetValue("Health")
	m.colorInput.SetValue("#84CC16")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = exec(t, m, cmd)
	assert.Equal(t, CategoriesMode, m.mode)

	cats := m.backend.Store().Categories()
	require.Len(t, cats, 4)
	assert.Equal(t, "#84cc16", cats[3].Color)

	for i := 0; i < 3; i++ {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 3, m.catCursor)

	m, _ = press(t, m, runes("e"))
	require.Equal(t, AddCategoryMode, m.mode)
	assert.Equal(t, "Health", m.nameInput.Value())
	m.nameInput.SetValue("Fitness")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = exec(t, m, cmd)
	assert.Equal(t, "Fitness", m.backend.Store().Categories()[3].Name)

	m, _ = press(t, m, runes("x"))
	require.Equal(t, DeleteConfirmMode, m.mode)
	m, cmd = press(t, m, runes("y"))
	m = exec(t, m, cmd)
	assert.Equal(t, CategoriesMode, m.mode)
	assert.Len(t, m.backend.Store().Categories(), 3)
	assert.Equal(t, 2, m.catCursor)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, NormalMode, m.mode)
	assert.Equal(t, tasks.PersonalCategoryID, m.backend.Store().Filters().Category)
}

func TestModel_HelpView(t *testing.T) {
	m := newLocalModel(t)

	m, _ = press(t, m, runes("?"))
	require.Equal(t, HelpViewMode, m.mode)
	view := m.View()
	assert.Contains(t, view, "Available Commands")
	assert.Contains(t, view, "add task")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, NormalMode, m.mode)

	m, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_RemoteFailureNotice(t *testing.T) {
	svc := remote.NewMemoryService()
	b := backend.NewRemote(svc, remote.DefaultCollections(), zerolog.Nop())
	m := newTestModel(t, b)

	svc.FailNext("create", errors.New("service unavailable"))
	m, _ = press(t, m, runes("a"))
	m.titleInput.SetValue("Run")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = exec(t, m, cmd)

	assert.True(t, m.noticeErr)
	assert.Contains(t, m.notice, "service unavailable")
	assert.Empty(t, m.items)
	assert.Contains(t, m.View(), "service unavailable")

	m, _ = press(t, m, runes("a"))
	m.titleInput.SetValue("Run")
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = exec(t, m, cmd)
	require.Len(t, m.items, 1)
	assert.Equal(t, 2, svc.Calls("create"))
}

func TestNextCategoryFilter(t *testing.T) {
	cats := tasks.SeedCategories()
	assert.Equal(t, "default", nextCategoryFilter(cats, tasks.AllCategories))
	assert.Equal(t, "personal", nextCategoryFilter(cats, "work"))
	assert.Equal(t, tasks.AllCategories, nextCategoryFilter(cats, "personal"))
	assert.Equal(t, tasks.AllCategories, nextCategoryFilter(cats, "gone"))
	assert.Equal(t, tasks.AllCategories, nextCategoryFilter(nil, tasks.AllCategories))
}
