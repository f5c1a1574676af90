package realtime

import (
	"errors"

	"github.com/hikemate/realtime/apiclient"
	"github.com/hikemate/realtime/auth"
	"github.com/hikemate/realtime/transport"
)

const defaultEventBuffer = 256

// Options configures a Client.
type Options struct {
	// Username is the local user's identity, the addressing key for all
	// of their topics.
	Username string

	// Friends lists the usernames whose presence topics are subscribed at
	// connect time. When API is set, the profile's friend list is merged
	// in during the snapshot reconcile.
	Friends []string

	// Transport is the broker connection. Required.
	Transport transport.Transport

	// API, when set, enables the snapshot reconcile: the online-friends
	// and profile fetches that seed presence and the pending request list
	// at login and after every reconnect.
	API *apiclient.Client

	// Tokens, when set, supplies the Authorization value attached to
	// publishes that require it.
	Tokens auth.TokenSource

	// EventBuffer is the capacity of the internal event queue between the
	// transport and the dispatch loop. Defaults to 256.
	EventBuffer int
}

func (o *Options) validate() error {
	if o.Username == "" {
		return errors.New("realtime: options: username is required")
	}
	if o.Transport == nil {
		return errors.New("realtime: options: transport is required")
	}
	return nil
}
