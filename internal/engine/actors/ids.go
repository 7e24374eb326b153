package actors

import "time"

// Clock supplies the current time; tests freeze it.
type Clock func() time.Time

// IDGenerator hands out timestamp-derived ids (Unix milliseconds) that stay
// strictly increasing even when the clock does not move between calls.
// It is owned by a single actor and is not safe for concurrent use.
type IDGenerator struct {
	now  Clock
	last int64
}

func NewIDGenerator(now Clock) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Observe raises the floor so later ids sort above id.
func (g *IDGenerator) Observe(id int64) {
	if id > g.last {
		g.last = id
	}
}

func (g *IDGenerator) Next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
