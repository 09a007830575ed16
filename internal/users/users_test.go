package users

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func tracker(idle time.Duration) (*Tracker, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tr := NewTracker(idle)
	tr.now = c.now
	return tr, c
}

func TestLoginLogout(t *testing.T) {
	tr, _ := tracker(time.Hour)
	require.NoError(t, tr.Login("ann"))
	s := tr.Status("ann")
	assert.True(t, s.LoggedIn)
	require.NotNil(t, s.LastActivity)

	require.NoError(t, tr.Logout("ann"))
	assert.False(t, tr.Status("ann").LoggedIn)

	assert.ErrorIs(t, tr.Login(""), ErrNoUsername)
}

func TestUnknownUser(t *testing.T) {
	tr, _ := tracker(time.Hour)
	s := tr.Status("nobody")
	assert.False(t, s.LoggedIn)
	assert.Nil(t, s.LastActivity)
}

func TestStatusExpiresIdleUser(t *testing.T) {
	tr, c := tracker(time.Hour)
	require.NoError(t, tr.Login("bob"))

	c.t = c.t.Add(59 * time.Minute)
	assert.True(t, tr.Status("bob").LoggedIn)

	c.t = c.t.Add(2 * time.Minute)
	assert.False(t, tr.Status("bob").LoggedIn)
}

func TestTouchKeepsUserActive(t *testing.T) {
	tr, c := tracker(time.Hour)
	require.NoError(t, tr.Login("cat"))
	c.t = c.t.Add(50 * time.Minute)
	tr.Touch("cat")
	c.t = c.t.Add(50 * time.Minute)
	assert.True(t, tr.Status("cat").LoggedIn)
}

func TestSweep(t *testing.T) {
	tr, c := tracker(10 * time.Minute)
	require.NoError(t, tr.Login("a"))
	require.NoError(t, tr.Login("b"))
	c.t = c.t.Add(5 * time.Minute)
	tr.Touch("b")
	c.t = c.t.Add(6 * time.Minute)

	assert.Equal(t, 1, tr.Sweep())
	assert.False(t, tr.Status("a").LoggedIn)
	assert.True(t, tr.Status("b").LoggedIn)
	assert.Zero(t, tr.Sweep())
}

func TestStartStop(t *testing.T) {
	tr, _ := tracker(time.Hour)
	require.NoError(t, tr.Start(time.Minute))
	assert.NoError(t, tr.Stop())
	assert.NoError(t, NewTracker(0).Stop())
}
