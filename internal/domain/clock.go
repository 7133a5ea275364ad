package domain

import "time"

// Clock returns the current time.
type Clock func() time.Time

type options struct {
	clock Clock
}

// Option configures an Author or DiaryEntry.
type Option func(*options)

// WithClock overrides the time source used for timestamps.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
