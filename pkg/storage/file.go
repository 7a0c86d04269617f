package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"simpletasks/pkg/tasks"
)

type fileState struct {
	Slots map[string]json.RawMessage `json:"slots"`
}

// FileSlots keeps every slot in one JSON document on disk. The document is
// read once on open and rewritten in full on every Set.
type FileSlots struct {
	mu   sync.RWMutex
	path string
	s    fileState
	log  zerolog.Logger
}

// OpenFile loads (or starts) the slot document at path. A document that
// does not parse is renamed to path+".corrupt" and the slots start empty.
func OpenFile(path string, log zerolog.Logger) (*FileSlots, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f := &FileSlots{path: path, s: fileState{Slots: map[string]json.RawMessage{}}, log: log}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileSlots) load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		aside := f.path + ".corrupt"
		f.log.Warn().Err(&tasks.PersistenceError{Op: "decode", Key: f.path, Err: err}).
			Str("moved_to", aside).Msg("slot document unreadable, starting empty")
		return os.Rename(f.path, aside)
	}
	if loaded.Slots == nil {
		loaded.Slots = map[string]json.RawMessage{}
	}
	f.s = loaded
	return nil
}

func (f *FileSlots) saveLocked() error {
	b, err := json.MarshalIndent(f.s, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileSlots) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.s.Slots[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores value, which must be a JSON document.
func (f *FileSlots) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("slot %s: value is not valid JSON", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.s.Slots[key]
	v := make(json.RawMessage, len(value))
	copy(v, value)
	f.s.Slots[key] = v
	if err := f.saveLocked(); err != nil {
		if had {
			f.s.Slots[key] = prev
		} else {
			delete(f.s.Slots, key)
		}
		return err
	}
	return nil
}

func (f *FileSlots) Close() error { return nil }
