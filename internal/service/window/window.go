// Package window derives the submission window state for an event. State is
// a pure function of (event, now): nothing here caches, stores, or blocks.
package window

import (
	"time"

	"github.com/jhcsc/attend-api/internal/model"
)

const (
	closingSoonThreshold = 15 * time.Minute
	urgentThreshold      = 5 * time.Minute
)

// State computes the window state for an event at the given instant.
//
// Only the end boundary gates submissions: a submission before the nominal
// start time is accepted. That mirrors the product's behavior and is
// intentional, not an oversight. Once CLOSED is observed the state can never
// compute as open again for the same event, since the clock does not move
// backward.
func State(event *model.Event, now time.Time) model.WindowState {
	end, bounded := event.EndsAt()
	if !bounded {
		return model.WindowUnbounded
	}

	remaining := end.Sub(now)
	switch {
	case remaining <= 0:
		return model.WindowClosed
	case remaining < urgentThreshold:
		return model.WindowUrgent
	case remaining < closingSoonThreshold:
		return model.WindowClosingSoon
	default:
		return model.WindowOpen
	}
}

// Remaining returns the time left until the window closes, or false for an
// unbounded window.
func Remaining(event *model.Event, now time.Time) (time.Duration, bool) {
	end, bounded := event.EndsAt()
	if !bounded {
		return 0, false
	}
	return end.Sub(now), true
}
