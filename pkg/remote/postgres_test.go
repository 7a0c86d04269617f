package remote

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpletasks/pkg/tasks"
)

// openTestPostgres connects to SIMPLETASKS_TEST_PG_DSN with throwaway
// collection names, skipping when no database is configured.
func openTestPostgres(t *testing.T) (*PostgresService, Collections) {
	t.Helper()
	dsn := os.Getenv("SIMPLETASKS_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SIMPLETASKS_TEST_PG_DSN not set")
	}

	suffix := time.Now().UnixNano()
	coll := Collections{
		Tasks:      fmt.Sprintf("tasks_test_%d", suffix),
		Categories: fmt.Sprintf("categories_test_%d", suffix),
	}
	ctx := context.Background()
	svc, err := OpenPostgres(ctx, dsn, coll)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, name := range []string{coll.Tasks, coll.Categories} {
			_, _ = svc.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+name)
		}
		svc.Close()
	})
	return svc, coll
}

func TestPostgresService_Tasks(t *testing.T) {
	svc, coll := openTestPostgres(t)
	ctx := context.Background()
	a := NewAdapter(svc, coll, zerolog.Nop())

	first, err := a.CreateTask(ctx, TaskInput{Title: "first", Tags: []string{"a", "b"}})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := a.CreateTask(ctx, TaskInput{Title: "second", CategoryID: "work"})
	require.NoError(t, err)
	assert.Len(t, first.ID, 36)
	assert.NotEmpty(t, first.CreatedAt)

	done, err := a.ToggleTaskCompletion(ctx, first.ID, false)
	require.NoError(t, err)
	assert.True(t, done)

	got, err := a.FetchTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.True(t, got[1].Completed)

	ok, err := a.DeleteTask(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.ToggleTaskCompletion(ctx, first.ID, true)
	var re *tasks.RemoteOperationError
	assert.ErrorAs(t, err, &re)
}

func TestPostgresService_Categories(t *testing.T) {
	svc, coll := openTestPostgres(t)
	ctx := context.Background()
	a := NewAdapter(svc, coll, zerolog.Nop())

	assert.Equal(t, tasks.SeedCategories(), a.FetchCategories(ctx))

	c, err := a.CreateCategory(ctx, CategoryInput{Name: "Health", Color: "#84cc16"})
	require.NoError(t, err)
	cats := a.FetchCategories(ctx)
	require.Len(t, cats, 4)
	assert.Equal(t, c, cats[0])

	ok, err := a.DeleteCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestColumnValue(t *testing.T) {
	_, err := column{field: "completed", kind: boolColumn}.value("yes")
	assert.Error(t, err)

	v, err := column{field: "Name", kind: textColumn}.value(nil)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	_, err = column{field: "Tags", kind: tagsColumn}.value([]any{"x", 1})
	assert.NoError(t, err)
	_, err = column{field: "Tags", kind: tagsColumn}.value(3)
	assert.Error(t, err)
}
