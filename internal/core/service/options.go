package service

import "time"

type options struct {
	now func() time.Time
}

// Option configures a service.
type Option func(*options)

// WithClock replaces the wall clock used for timestamps and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
