// Package presence tracks which friends are currently online.
//
// Presence is a level, not an edge: every event states whether a friend is
// online right now, so applying the same event twice is a no-op and the
// tracked set converges to ground truth regardless of duplicate or
// reordered deliveries of the same level.
package presence

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// ChangeFunc is invoked whenever a friend's tracked level actually changes.
// It is not invoked for redundant events or during Seed.
type ChangeFunc func(username string, online bool)

// Tracker maintains the set of online friends for one local user.
type Tracker struct {
	mu       sync.RWMutex
	online   map[string]struct{}
	onChange ChangeFunc
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{online: make(map[string]struct{})}
}

// OnChange sets the callback fired on actual membership changes.
func (t *Tracker) OnChange(fn ChangeFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Seed replaces the whole set with a snapshot of online friends. Used at
// login and after a reconnect, when the pre-drop state cannot be trusted.
func (t *Tracker) Seed(usernames []string) {
	t.mu.Lock()
	t.online = make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		if u == "" {
			continue
		}
		t.online[u] = struct{}{}
	}
	count := len(t.online)
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Seed",
		"online":   count,
	}).Info("presence snapshot loaded")
}

// Set applies a presence level for a friend and reports whether membership
// actually changed. Idempotent in both directions.
func (t *Tracker) Set(username string, online bool) bool {
	if username == "" {
		return false
	}

	t.mu.Lock()
	_, present := t.online[username]
	if online == present {
		t.mu.Unlock()
		return false
	}
	if online {
		t.online[username] = struct{}{}
	} else {
		delete(t.online, username)
	}
	fn := t.onChange
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Set",
		"friend":   username,
		"online":   online,
	}).Debug("presence level changed")

	if fn != nil {
		fn(username, online)
	}
	return true
}

// IsOnline reports whether a friend is currently tracked as online.
func (t *Tracker) IsOnline(username string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.online[username]
	return ok
}

// Online returns a sorted copy of the online set.
func (t *Tracker) Online() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.online))
	for u := range t.online {
		out = append(out, u)
	}
	t.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Len returns the number of friends currently online.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.online)
}
