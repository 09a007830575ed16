// Package users tracks who is logged in and when they were last active.
package users

import (
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

var ErrNoUsername = errors.New("username required")

// DefaultIdle is how long a user may be inactive before being logged out.
const DefaultIdle = time.Hour

type User struct {
	Username     string     `json:"username"`
	LoggedIn     bool       `json:"logged_in"`
	LastActivity *time.Time `json:"last_activity"`
}

type Tracker struct {
	mu    sync.Mutex
	users map[string]*User
	idle  time.Duration
	now   func() time.Time
	sched gocron.Scheduler
}

func NewTracker(idle time.Duration) *Tracker {
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Tracker{users: make(map[string]*User), idle: idle, now: time.Now}
}

// get returns the user, creating it on first sight. Callers hold mu.
func (t *Tracker) get(username string) *User {
	u := t.users[username]
	if u == nil {
		u = &User{Username: username}
		t.users[username] = u
	}
	return u
}

func (t *Tracker) touch(u *User) {
	now := t.now().UTC()
	u.LastActivity = &now
}

func (t *Tracker) Login(username string) error {
	if username == "" {
		return ErrNoUsername
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.get(username)
	u.LoggedIn = true
	t.touch(u)
	return nil
}

func (t *Tracker) Logout(username string) error {
	if username == "" {
		return ErrNoUsername
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.get(username)
	u.LoggedIn = false
	t.touch(u)
	return nil
}

// Touch records activity without changing the login state. Anonymous
// requests are ignored.
func (t *Tracker) Touch(username string) {
	if username == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.touch(t.get(username))
}

// Status reports a user's state, logging them out first if they have been
// idle too long.
func (t *Tracker) Status(username string) User {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.get(username)
	t.expire(u)
	out := *u
	if u.LastActivity != nil {
		at := u.LastActivity.Truncate(time.Millisecond)
		out.LastActivity = &at
	}
	return out
}

func (t *Tracker) expire(u *User) bool {
	if !u.LoggedIn || u.LastActivity == nil {
		return false
	}
	if t.now().Sub(*u.LastActivity) <= t.idle {
		return false
	}
	u.LoggedIn = false
	return true
}

// Sweep logs out every idle user and returns how many were logged out.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, u := range t.users {
		if t.expire(u) {
			log.Info().Str("username", u.Username).Msg("idle-logout")
			n++
		}
	}
	return n
}

// Start runs Sweep on a schedule until Stop is called.
func (t *Tracker) Start(every time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			if n := t.Sweep(); n > 0 {
				log.Debug().Int("count", n).Msg("idle sweep")
			}
		}),
	)
	if err != nil {
		return err
	}
	sched.Start()
	t.sched = sched
	return nil
}

func (t *Tracker) Stop() error {
	if t.sched == nil {
		return nil
	}
	return t.sched.Shutdown()
}
