package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"simpletasks/pkg/backend"
	"simpletasks/pkg/storage"
	"simpletasks/pkg/tasks"
)

func newBackend(t *testing.T) backend.Backend {
	t.Helper()
	b := backend.NewLocal(storage.NewAdapter(storage.NewMemorySlots(), zerolog.Nop()), zerolog.Nop())
	require.NoError(t, b.Load(context.Background()))
	return b
}

func TestHandleAddTask(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	var out bytes.Buffer

	task, err := HandleAddTask(ctx, b, &out, "Prepare slides +work", "for monday")
	require.NoError(t, err)
	assert.Equal(t, "Prepare slides", task.Title)
	assert.Equal(t, tasks.WorkCategoryID, task.CategoryID)
	assert.Equal(t, "for monday", task.Description)
	assert.Contains(t, out.String(), "Prepare slides")

	task, err = HandleAddTask(ctx, b, &out, "Buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, tasks.DefaultCategoryID, task.CategoryID)

	_, err = HandleAddTask(ctx, b, &out, "Swim +sports", "")
	assert.ErrorIs(t, err, tasks.ErrCategoryNotFound)

	_, err = HandleAddTask(ctx, b, &out, "+work", "")
	var verr *tasks.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, b.Store().Tasks(), 2)
}

func TestHandleListToggleRemove(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	var out bytes.Buffer

	run, err := HandleAddTask(ctx, b, &out, "Run +personal", "")
	require.NoError(t, err)
	_, err = HandleAddTask(ctx, b, &out, "Report +work", "")
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, HandleToggle(ctx, b, &out, run.ID))
	assert.Equal(t, "- [x] Run\n", out.String())

	out.Reset()
	require.NoError(t, HandleList(b, &out, "completed", ""))
	assert.Contains(t, out.String(), "- [x] Run  (Personal)")
	assert.NotContains(t, out.String(), "Report")
	assert.Contains(t, out.String(), "2 total, 1 done, 1 active")

	out.Reset()
	require.NoError(t, HandleList(b, &out, "", "Work"))
	assert.Contains(t, out.String(), "- [ ] Report  (Work)")
	assert.NotContains(t, out.String(), "Run")

	assert.Error(t, HandleList(b, &out, "someday", ""))
	assert.ErrorIs(t, HandleList(b, &out, "", "nope"), tasks.ErrCategoryNotFound)

	require.NoError(t, HandleRemove(ctx, b, &out, run.ID))
	assert.Len(t, b.Store().Tasks(), 1)
	assert.Error(t, HandleRemove(ctx, b, &out, run.ID))
	assert.Error(t, HandleToggle(ctx, b, &out, "missing"))
}

func TestHandleCategories(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	var out bytes.Buffer

	require.NoError(t, HandleCategoryAdd(ctx, b, &out, "Health", "#84cc16"))
	task, err := HandleAddTask(ctx, b, &out, "Stretch +health", "")
	require.NoError(t, err)

	out.Reset()
	HandleCategoryList(b, &out)
	assert.Contains(t, out.String(), "Health")
	assert.Equal(t, 4, strings.Count(out.String(), "\n"))

	var perr *tasks.ProtectedEntityError
	assert.ErrorAs(t, HandleCategoryRemove(ctx, b, &out, "General"), &perr)

	require.NoError(t, HandleCategoryRemove(ctx, b, &out, "health"))
	got, ok := b.Store().Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, tasks.DefaultCategoryID, got.CategoryID)
	assert.ErrorIs(t, HandleCategoryRemove(ctx, b, &out, "health"), tasks.ErrCategoryNotFound)
}

func TestHandleImportCommand(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	var out bytes.Buffer

	path := filepath.Join(t.TempDir(), "tasks.md")
	content := `
- [ ] Inbox item

Work:
- [x] Ship release
- [ ] Review PR +personal
## Personal
- Call mom
Hobbies:
- [ ] Paint
-
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	n, err := HandleImportCommand(ctx, b, &out, path)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Contains(t, out.String(), `Unknown category "Hobbies"`)

	byTitle := map[string]tasks.Task{}
	for _, task := range b.Store().Tasks() {
		byTitle[task.Title] = task
	}
	assert.Equal(t, tasks.DefaultCategoryID, byTitle["Inbox item"].CategoryID)
	assert.Equal(t, tasks.WorkCategoryID, byTitle["Ship release"].CategoryID)
	assert.True(t, byTitle["Ship release"].Completed)
	assert.Equal(t, tasks.PersonalCategoryID, byTitle["Review PR"].CategoryID)
	assert.Equal(t, tasks.PersonalCategoryID, byTitle["Call mom"].CategoryID)
	assert.Equal(t, tasks.DefaultCategoryID, byTitle["Paint"].CategoryID)

	_, err = HandleImportCommand(ctx, b, &out, filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func seeded(t *testing.T) backend.Backend {
	t.Helper()
	ctx := context.Background()
	b := newBackend(t)
	var out bytes.Buffer
	done, err := HandleAddTask(ctx, b, &out, "Ship release +work", "")
	require.NoError(t, err)
	_, err = b.ToggleTask(ctx, done.ID)
	require.NoError(t, err)
	_, err = HandleAddTask(ctx, b, &out, "Call mom +personal", "")
	require.NoError(t, err)
	return b
}

func TestHandleExportCommand(t *testing.T) {
	dir := t.TempDir()
	b := seeded(t)
	var out bytes.Buffer

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "out", "tasks.json")
		require.NoError(t, HandleExportCommand(b, &out, path, "json"))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var got []tasks.Task
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, b.Store().Tasks(), got)
	})

	t.Run("txt round trips through import", func(t *testing.T) {
		path := filepath.Join(dir, "tasks.txt")
		require.NoError(t, HandleExportCommand(b, &out, path, "txt"))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Work:\n- [x] Ship release\n\nPersonal:\n- [ ] Call mom\n", string(raw))

		fresh := newBackend(t)
		n, err := HandleImportCommand(context.Background(), fresh, &out, path)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, b.Store().Counts(), fresh.Store().Counts())
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "tasks.yaml")
		require.NoError(t, HandleExportCommand(b, &out, path, "yaml"))
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var got tasks.Snapshot
		require.NoError(t, yaml.Unmarshal(raw, &got))
		assert.Equal(t, b.Store().Snapshot(), got)
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "tasks.xlsx")
		require.NoError(t, HandleExportCommand(b, &out, path, "xlsx"))
		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("Tasks")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Title", rows[0][1])
		assert.Equal(t, "Ship release", rows[1][1])
		assert.Equal(t, "Work", rows[1][3])

		cats, err := f.GetRows("Categories")
		require.NoError(t, err)
		assert.Len(t, cats, 4)
	})

	t.Run("unknown type", func(t *testing.T) {
		assert.Error(t, HandleExportCommand(b, &out, filepath.Join(dir, "x.csv"), "csv"))
	})
}

func TestHandlePurge(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	b := seeded(t)
	n, err := HandlePurge(ctx, b, strings.NewReader("n\n"), &out, false, false)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Contains(t, out.String(), "Operation cancelled.")
	assert.Len(t, b.Store().Tasks(), 2)

	n, err = HandlePurge(ctx, b, strings.NewReader("yes\n"), &out, true, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, b.Store().Tasks(), 1)
	assert.Equal(t, "Call mom", b.Store().Tasks()[0].Title)

	n, err = HandlePurge(ctx, b, nil, &out, true, true)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = HandlePurge(ctx, b, nil, &out, false, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, b.Store().Tasks())
}

func TestResolveCategory(t *testing.T) {
	cats := tasks.SeedCategories()
	c, err := resolveCategory(cats, "work")
	require.NoError(t, err)
	assert.Equal(t, "Work", c.Name)

	c, err = resolveCategory(cats, " general ")
	require.NoError(t, err)
	assert.Equal(t, tasks.DefaultCategoryID, c.ID)

	_, err = resolveCategory(cats, "")
	assert.True(t, errors.Is(err, tasks.ErrCategoryNotFound))
}
