package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhcsc/attend-api/internal/model"
)

func testEvent(start, end string) *model.Event {
	return &model.Event{
		ID:        "evt-1",
		Name:      "Orientation",
		Date:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime: start,
		EndTime:   end,
	}
}

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 3, 10, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func TestState(t *testing.T) {
	event := testEvent("09:00", "09:30")

	tests := []struct {
		name string
		now  time.Time
		want model.WindowState
	}{
		{"well before close", at("08:00"), model.WindowOpen},
		{"just inside open", at("09:14"), model.WindowOpen},
		{"exactly fifteen minutes left is still open", at("09:15"), model.WindowOpen},
		{"just under fifteen minutes left", at("09:15").Add(time.Second), model.WindowClosingSoon},
		{"closing soon", at("09:20"), model.WindowClosingSoon},
		{"exactly five minutes left is still closing soon", at("09:25"), model.WindowClosingSoon},
		{"just under five minutes left", at("09:25").Add(time.Second), model.WindowUrgent},
		{"urgent", at("09:26"), model.WindowUrgent},
		{"exactly at close", at("09:30"), model.WindowClosed},
		{"after close", at("09:40"), model.WindowClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, State(event, tt.now))
		})
	}
}

func TestStateUnbounded(t *testing.T) {
	event := testEvent("09:00", "")

	assert.Equal(t, model.WindowUnbounded, State(event, at("09:00")))
	assert.Equal(t, model.WindowUnbounded, State(event, at("23:59")))
	assert.True(t, State(event, at("23:59")).Accepting())
}

func TestStateAcceptsBeforeStart(t *testing.T) {
	event := testEvent("09:00", "09:30")

	// Start time does not gate submissions; only the end boundary does.
	got := State(event, at("07:00"))
	assert.Equal(t, model.WindowOpen, got)
	assert.True(t, got.Accepting())
}

func TestStateMonotonic(t *testing.T) {
	event := testEvent("09:00", "09:30")

	rank := map[model.WindowState]int{
		model.WindowOpen:        0,
		model.WindowClosingSoon: 1,
		model.WindowUrgent:      2,
		model.WindowClosed:      3,
	}

	prev := -1
	for now := at("08:00"); !now.After(at("10:00")); now = now.Add(30 * time.Second) {
		state := State(event, now)
		r, ok := rank[state]
		require.True(t, ok, "unexpected state %s", state)
		require.GreaterOrEqual(t, r, prev, "state regressed at %s", now.Format("15:04:05"))
		prev = r
	}
}

func TestRemaining(t *testing.T) {
	event := testEvent("09:00", "09:30")

	left, bounded := Remaining(event, at("09:20"))
	require.True(t, bounded)
	assert.Equal(t, 10*time.Minute, left)

	_, bounded = Remaining(testEvent("09:00", ""), at("09:20"))
	assert.False(t, bounded)
}
