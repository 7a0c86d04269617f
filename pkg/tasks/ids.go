package tasks

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator hands out identifiers for locally created entities.
type IDGenerator interface {
	NewID() string
}

// ClockIDs produces millisecond timestamps as decimal strings. When the clock
// has not advanced since the previous id (or went backwards) the previous
// value plus one is used, so ids never repeat within a process.
type ClockIDs struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockIDs returns a generator reading now; a nil now uses time.Now.
func NewClockIDs(now func() time.Time) *ClockIDs {
	if now == nil {
		now = time.Now
	}
	return &ClockIDs{now: now}
}

// NewID returns the next identifier.
func (g *ClockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}
