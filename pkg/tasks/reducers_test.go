package tasks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReducersDoNotMutateInput(t *testing.T) {
	base := State{
		Tasks:      []Task{{ID: "1", Title: "a", CategoryID: "x"}},
		Categories: append(SeedCategories(), Category{ID: "x", Name: "X"}),
		Filters:    Filters{Status: StatusAll, Category: "x"},
	}

	next, _, _ := toggleCompleted(base, "1")
	assert.False(t, base.Tasks[0].Completed)
	assert.True(t, next.Tasks[0].Completed)

	next, _ = removeCategory(base, "x")
	assert.Equal(t, "x", base.Tasks[0].CategoryID)
	assert.Len(t, base.Categories, 4)
	assert.Equal(t, "x", base.Filters.Category)
	assert.Equal(t, DefaultCategoryID, next.Tasks[0].CategoryID)
	assert.Equal(t, AllCategories, next.Filters.Category)

	next = appendTask(base, Task{ID: "2"})
	assert.Len(t, base.Tasks, 1)
	assert.Len(t, next.Tasks, 2)
}

func TestRemoveTaskKeepsOrder(t *testing.T) {
	s := State{Tasks: []Task{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	next, ok := removeTask(s, "2")
	assert.True(t, ok)
	assert.Equal(t, []string{"1", "3"}, ids(next.Tasks))

	_, ok = removeTask(s, "9")
	assert.False(t, ok)
}

func TestNormalizeColor(t *testing.T) {
	c, err := normalizeColor("#ABCDEF")
	assert.NoError(t, err)
	assert.Equal(t, "#abcdef", c)

	c, err = normalizeColor("#fff")
	assert.NoError(t, err)
	assert.Equal(t, "#fff", c)

	_, err = normalizeColor("#12345")
	assert.Error(t, err)
}

func TestWithSeeds(t *testing.T) {
	custom := Category{ID: "work", Name: "Day job", Color: "#000000"}
	got := WithSeeds([]Category{custom})

	assert.Len(t, got, 3)
	assert.Equal(t, custom, got[0], "server-provided seed id is kept")
	assert.Equal(t, DefaultCategoryID, got[1].ID)
	assert.Equal(t, PersonalCategoryID, got[2].ID)

	assert.Equal(t, SeedCategories(), WithSeeds(nil))
}

func TestClockIDsAreUnique(t *testing.T) {
	frozen := time.UnixMilli(1700000000000)
	g := NewClockIDs(func() time.Time { return frozen })

	assert.Equal(t, "1700000000000", g.NewID())
	assert.Equal(t, "1700000000001", g.NewID())

	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.NewID()
			_, dup := seen.LoadOrStore(id, true)
			assert.False(t, dup, id)
		}()
	}
	wg.Wait()
}
