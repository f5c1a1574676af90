package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_SetIdempotent(t *testing.T) {
	tr := NewTracker()

	require.True(t, tr.Set("bob", true))
	assert.False(t, tr.Set("bob", true), "applying the same level twice must be a no-op")
	assert.Equal(t, []string{"bob"}, tr.Online())

	require.True(t, tr.Set("bob", false))
	assert.False(t, tr.Set("bob", false), "removing an absent friend must be a no-op")
	assert.Empty(t, tr.Online())
}

func TestTracker_ConvergesToLastLevel(t *testing.T) {
	testCases := []struct {
		name   string
		levels []bool
		online bool
	}{
		{"single online", []bool{true}, true},
		{"duplicate online", []bool{true, true, true}, true},
		{"online then offline", []bool{true, false}, false},
		{"offline replayed", []bool{true, false, false}, false},
		{"flapping ends online", []bool{true, false, true, false, true}, true},
		{"offline before online", []bool{false, true}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := NewTracker()
			for _, level := range tc.levels {
				tr.Set("carol", level)
			}
			assert.Equal(t, tc.online, tr.IsOnline("carol"))
		})
	}
}

func TestTracker_Seed(t *testing.T) {
	tr := NewTracker()
	tr.Set("stale", true)

	tr.Seed([]string{"bob", "carol", ""})

	assert.Equal(t, []string{"bob", "carol"}, tr.Online())
	assert.False(t, tr.IsOnline("stale"), "seed must replace pre-drop state entirely")
	assert.Equal(t, 2, tr.Len())
}

func TestTracker_OnChangeFiresOnlyOnRealChanges(t *testing.T) {
	tr := NewTracker()

	type change struct {
		user   string
		online bool
	}
	var changes []change
	tr.OnChange(func(username string, online bool) {
		changes = append(changes, change{username, online})
	})

	tr.Set("bob", true)
	tr.Set("bob", true)
	tr.Set("bob", false)
	tr.Set("dave", false)

	require.Len(t, changes, 2)
	assert.Equal(t, change{"bob", true}, changes[0])
	assert.Equal(t, change{"bob", false}, changes[1])
}

func TestTracker_EmptyUsernameIgnored(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Set("", true))
	assert.Empty(t, tr.Online())
}
