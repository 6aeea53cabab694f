package service

import "time"

// Clock supplies the current time. data.TimeProvider satisfies it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func resolveClock(c Clock) Clock {
	if c != nil {
		return c
	}
	return systemClock{}
}
