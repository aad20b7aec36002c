package orders

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator produces order ids.
// Implemented by TimestampGenerator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate(now time.Time) string
}

// TimestampGenerator emits display ids of the form "ORD-<unix-millis>".
//
// Two submissions inside the same millisecond would otherwise collide, so
// the generator remembers the last stamp it handed out and bumps forward
// when asked for the same one again. Ids stay strictly increasing per
// process.
//
// Thread-safety: safe for concurrent use via internal mutex.
type TimestampGenerator struct {
	mu   sync.Mutex
	last int64
}

// NewTimestampGenerator creates the production id generator.
func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{}
}

// Generate returns the next order id for the given creation time.
func (g *TimestampGenerator) Generate(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD-%d", ms)
}

// FixedGenerator returns predetermined ids for deterministic tests.
//
// Panics when all ids are consumed - fail fast on test misconfiguration.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id, ignoring the clock.
func (g *FixedGenerator) Generate(time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
