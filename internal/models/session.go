package models

import "time"

// Session is a time-limited authenticated context. Role is a snapshot taken
// at creation and is not refreshed by later role changes.
type Session struct {
	ID         string
	Username   string
	Role       Role
	Expiration time.Time
}

// ValidAt reports whether the session is still usable at t.
func (s *Session) ValidAt(t time.Time) bool {
	return t.Before(s.Expiration)
}
