package main

import (
	"time"
)

var _ Clocker = (*Clock)(nil)

// Clocker tells the current time. Stub timestamps and request
// durations are taken from it so tests can freeze time.
type Clocker interface {
	Now() time.Time
}

// Clock is the wall clock, read in a fixed location.
type Clock struct {
	loc *time.Location
}

// NewClock reads time in UTC for production and in Local otherwise.
func NewClock(isProd bool) *Clock {
	loc := time.Local
	if isProd {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

// Now provides current clock time.
func (ck *Clock) Now() time.Time {
	return time.Now().In(ck.loc)
}

// elapsed returns the duration since start as seen by clock.
func elapsed(clock Clocker, start time.Time) time.Duration {
	return clock.Now().Sub(start)
}
