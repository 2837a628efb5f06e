package state

import (
	"modernnotes/internal/auth"

	"go.uber.org/zap"
)

// SessionSource is the part of the session provider the container follows.
type SessionSource interface {
	CurrentSession() *auth.Session
	OnSessionChange(fn func(*auth.Session)) (cancel func())
}

// TrackSession checks the session once and then mirrors every session change
// into the container. Losing the session, or a different user signing in,
// also drops the loaded notes and tags.
// The returned stop must be called once at teardown.
func (c *Container) TrackSession(src SessionSource, log *zap.Logger) (stop func()) {
	apply := func(s *auth.Session) {
		if s == nil {
			if c.User() != nil {
				log.Info("signed out")
			}
			c.SetUser(nil)
			c.SetNotes(nil)
			c.SetTags(nil)
			return
		}
		if prev := c.User(); prev != nil && prev.ID != s.User.ID {
			c.SetNotes(nil)
			c.SetTags(nil)
		}
		c.SetUser(&s.User)
	}

	stop = src.OnSessionChange(apply)
	if s := src.CurrentSession(); s != nil {
		apply(s)
	}
	return stop
}
