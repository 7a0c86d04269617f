package storage

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"simpletasks/pkg/tasks"
)

//go:embed schema/*.json
var schemaFS embed.FS

var (
	tasksSchema      = mustCompile("schema/tasks.schema.json")
	categoriesSchema = mustCompile("schema/categories.schema.json")
)

func mustCompile(name string) *jsonschema.Schema {
	b, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return jsonschema.MustCompileString("mem:///"+name, string(b))
}

// Adapter reads and writes the task/category snapshot. Loading is fail-open:
// a missing slot falls back to its default, and an unreadable or invalid
// slot discards the whole snapshot.
type Adapter struct {
	slots SlotStore
	log   zerolog.Logger
}

// NewAdapter wraps a slot store.
func NewAdapter(slots SlotStore, log zerolog.Logger) *Adapter {
	return &Adapter{slots: slots, log: log}
}

type slotState int

const (
	slotMissing slotState = iota
	slotLoaded
	slotBroken
)

// Load returns the persisted snapshot. It never fails: tasks default to an
// empty list, categories to the seed set. Seed categories missing from a
// stored list are appended. If either slot is broken, both defaults are
// returned.
func (a *Adapter) Load(ctx context.Context) tasks.Snapshot {
	var (
		ts   []tasks.Task
		cats []tasks.Category
	)
	tsState := a.readSlot(ctx, TasksKey, tasksSchema, &ts)
	catsState := a.readSlot(ctx, CategoriesKey, categoriesSchema, &cats)

	snap := tasks.Snapshot{Tasks: []tasks.Task{}, Categories: tasks.SeedCategories()}
	if tsState == slotBroken || catsState == slotBroken {
		a.log.Warn().Msg("snapshot unusable, starting from defaults")
		return snap
	}

	if tsState == slotLoaded {
		for i := range ts {
			if ts[i].CategoryID == "" {
				ts[i].CategoryID = tasks.DefaultCategoryID
			}
		}
		snap.Tasks = ts
	}
	if catsState == slotLoaded {
		snap.Categories = tasks.WithSeeds(cats)
	}

	a.log.Debug().
		Int("tasks", len(snap.Tasks)).
		Int("categories", len(snap.Categories)).
		Msg("snapshot loaded")
	return snap
}

// readSlot decodes a slot into out.
func (a *Adapter) readSlot(ctx context.Context, key string, schema *jsonschema.Schema, out any) slotState {
	raw, ok, err := a.slots.Get(ctx, key)
	if err != nil {
		a.logFault(&tasks.PersistenceError{Op: "read", Key: key, Err: err})
		return slotBroken
	}
	if !ok {
		return slotMissing
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		a.logFault(&tasks.PersistenceError{Op: "decode", Key: key, Err: err})
		return slotBroken
	}
	if err := schema.Validate(doc); err != nil {
		a.logFault(&tasks.PersistenceError{Op: "validate", Key: key, Err: err})
		return slotBroken
	}
	if err := json.Unmarshal(raw, out); err != nil {
		a.logFault(&tasks.PersistenceError{Op: "decode", Key: key, Err: err})
		return slotBroken
	}
	return slotLoaded
}

func (a *Adapter) logFault(err error) {
	a.log.Warn().Err(err).Msg("ignoring unusable snapshot slot")
}

// SaveTasks writes the task slot.
func (a *Adapter) SaveTasks(ts []tasks.Task) error {
	if ts == nil {
		ts = []tasks.Task{}
	}
	return a.write(TasksKey, ts)
}

// SaveCategories writes the category slot.
func (a *Adapter) SaveCategories(cats []tasks.Category) error {
	if cats == nil {
		cats = []tasks.Category{}
	}
	return a.write(CategoriesKey, cats)
}

func (a *Adapter) write(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return &tasks.PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := a.slots.Set(context.Background(), key, b); err != nil {
		return &tasks.PersistenceError{Op: "write", Key: key, Err: err}
	}
	a.log.Debug().Str("key", key).Int("bytes", len(b)).Msg("slot written")
	return nil
}

// Close releases the slot store.
func (a *Adapter) Close() error {
	return a.slots.Close()
}

// Open builds a slot store by kind: "sqlite", "file" or "memory". A store
// that exists but cannot be opened is logged and replaced by memory slots,
// so a damaged data file never keeps the program from starting.
func Open(kind, path string, log zerolog.Logger) (SlotStore, error) {
	var (
		s   SlotStore
		err error
	)
	switch kind {
	case "", "sqlite":
		s, err = OpenSQLite(path)
	case "file":
		s, err = OpenFile(path, log)
	case "memory":
		return NewMemorySlots(), nil
	default:
		return nil, fmt.Errorf("unknown storage kind %q", kind)
	}
	if err != nil {
		log.Warn().Err(&tasks.PersistenceError{Op: "open", Key: path, Err: err}).
			Msg("storage unavailable, changes will not be saved")
		return NewMemorySlots(), nil
	}
	return s, nil
}
