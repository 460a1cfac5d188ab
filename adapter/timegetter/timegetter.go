// Package timegetter contains the default [domain.TimeGetter] implementation.
package timegetter

import (
	"time"

	"github.com/porolink/porobase/domain"
)

// TimeGetter implements [domain.TimeGetter] over the system clock.
type TimeGetter struct{}

// NewTimeGetter returns a new implementation of [domain.TimeGetter].
func NewTimeGetter() domain.TimeGetter {
	return &TimeGetter{}
}

// GetTime implements [domain.TimeGetter].
func (t *TimeGetter) GetTime() time.Time {
	return time.Now()
}

// Fixed is a [domain.TimeGetter] that returns a preset instant and advances
// it by a fixed step on every call. Useful for deterministic creation
// timestamps in tests.
type Fixed struct {
	Instant time.Time
	Step    time.Duration
}

// NewFixed returns a [Fixed] starting at the given instant.
func NewFixed(instant time.Time, step time.Duration) *Fixed {
	return &Fixed{Instant: instant, Step: step}
}

// GetTime implements [domain.TimeGetter].
func (f *Fixed) GetTime() time.Time {
	t := f.Instant
	f.Instant = f.Instant.Add(f.Step)
	return t
}
