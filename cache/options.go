package cache

import "time"

type Option func(s *Snapshot)

// WithClock specifies the clock used for the snapshot age
func WithClock(now func() time.Time) Option {
	return func(s *Snapshot) {
		s.now = now
	}
}
