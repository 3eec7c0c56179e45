package ids

import (
	"sync"
	"time"
)

// MillisGenerator keeps the legacy wall-clock millisecond ids. Calls within
// the same millisecond get last+1 so a single process never repeats an id;
// separate processes can still collide and rely on conditional writes.
type MillisGenerator struct {
	mu    sync.Mutex
	last  int64
	nowFn func() time.Time
}

func NewMillisGenerator() *MillisGenerator {
	return &MillisGenerator{nowFn: time.Now}
}

// NewMillisGeneratorWithClock is used by tests to pin the clock.
func NewMillisGeneratorWithClock(nowFn func() time.Time) *MillisGenerator {
	return &MillisGenerator{nowFn: nowFn}
}

func (g *MillisGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nowFn().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
