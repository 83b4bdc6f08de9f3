package identity

import "time"

// SetClock overrides the session clock in tests.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}
