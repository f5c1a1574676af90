// Package apiclient consumes the two REST collaborators the realtime core
// needs: the local user's profile (which carries the pending friend
// request snapshot) and the list of friends currently online. Both are
// one-shot fetches used to seed local state at login and to reconcile it
// after a reconnect.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hikemate/realtime/auth"
)

const defaultTimeout = 15 * time.Second

// Hike is one entry in a friend's cached activity roster. The realtime
// core never mutates these; they ride along on the profile.
type Hike struct {
	Name        string  `json:"name"`
	DateCreated string  `json:"dateCreated"`
	Distance    float64 `json:"distance"`
	Duration    float64 `json:"duration"`
	Completed   bool    `json:"completed"`
}

// Friend is a relation on the local user's friend list.
type Friend struct {
	Username  string `json:"usernameFriend"`
	FirstName string `json:"firstNameFriend"`
	LastName  string `json:"lastNameFriend"`
	Hikes     []Hike `json:"hikesFriend"`
}

// Profile is the local user's account object, including the bulk snapshot
// of requests that arrived while the user was offline.
type Profile struct {
	Username              string   `json:"username"`
	FirstName             string   `json:"firstName"`
	LastName              string   `json:"lastName"`
	Friends               []Friend `json:"friends"`
	PendingFriendRequests []string `json:"pendingFriendRequests"`
	SubscriptionStatus    string   `json:"subscriptionStatus"`
}

// FriendUsernames returns just the usernames from the friend list, in
// list order. These are the presence topics to subscribe to.
func (p *Profile) FriendUsernames() []string {
	out := make([]string, 0, len(p.Friends))
	for _, f := range p.Friends {
		out = append(out, f.Username)
	}
	return out
}

// Client talks to the account service.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
}

// New creates a client for the given base URL, e.g.
// "http://localhost:8080".
func New(baseURL string, tokens auth.TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
	}
}

// Profile fetches the local user's account object.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/user/get-user", &profile); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Profile",
		"username": profile.Username,
		"friends":  len(profile.Friends),
		"pending":  len(profile.PendingFriendRequests),
	}).Debug("profile fetched")
	return &profile, nil
}

// OnlineFriends fetches the usernames of friends currently online. This
// is the snapshot that seeds the presence set; live events keep it
// current afterwards.
func (c *Client) OnlineFriends(ctx context.Context) ([]string, error) {
	var online []struct {
		Username string `json:"username"`
	}
	if err := c.get(ctx, "/user/friends-online", &online); err != nil {
		return nil, err
	}

	usernames := make([]string, 0, len(online))
	for _, f := range online {
		usernames = append(usernames, f.Username)
	}
	return usernames, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("apiclient: building request for %s: %w", path, err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("apiclient: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth.Bearer(token))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apiclient: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("apiclient: %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decoding %s: %w", path, err)
	}
	return nil
}
