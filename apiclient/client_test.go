package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikemate/realtime/auth"
)

func TestClient_Profile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/get-user", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"username": "alice",
			"friends": [
				{"usernameFriend": "bob", "hikesFriend": [{"name": "ridge loop", "distance": 12.5, "completed": true}]},
				{"usernameFriend": "carol"}
			],
			"pendingFriendRequests": ["dave"],
			"subscriptionStatus": "premium"
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticSource("token-1"))
	profile, err := c.Profile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, []string{"bob", "carol"}, profile.FriendUsernames())
	assert.Equal(t, []string{"dave"}, profile.PendingFriendRequests)
	require.Len(t, profile.Friends[0].Hikes, 1)
	assert.Equal(t, "ridge loop", profile.Friends[0].Hikes[0].Name)
}

func TestClient_OnlineFriends(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/friends-online", r.URL.Path)
		w.Write([]byte(`[{"username": "bob"}, {"username": "carol"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticSource("token-1"))
	online, err := c.OnlineFriends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, online)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, auth.StaticSource("token-1"))
	_, err := c.OnlineFriends(context.Background())
	assert.ErrorContains(t, err, "status 401")
}

func TestClient_TokenErrorPropagates(t *testing.T) {
	c := New("http://localhost:0", auth.StaticSource(""))
	_, err := c.Profile(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoToken)
}
