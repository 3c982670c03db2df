package ratelimit

import "time"

// Clock abstracts time.Now so window rollover can be driven in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
