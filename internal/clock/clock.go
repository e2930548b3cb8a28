package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type System struct {
	Location *time.Location
}

func NewSystem(location *time.Location) System {
	if location == nil {
		location = time.UTC
	}
	return System{Location: location}
}

func (clock System) Now() time.Time {
	location := clock.Location
	if location == nil {
		location = time.UTC
	}
	return time.Now().In(location)
}

// Fixed is a settable clock for tests and dry runs.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (clock *Fixed) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *Fixed) Set(now time.Time) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = now
}

func (clock *Fixed) Advance(step time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(step)
}
