// Package realtime implements the presence and chat core of the HikeMate
// client: tracking which friends are online, routing friend-request
// handshakes, and negotiating consent before two users exchange live chat
// messages over a persistent broker connection.
//
// A Client is constructed at login and closed at logout. It owns one
// broker transport, subscribes to the local user's topics, and serializes
// every delivered event through a single dispatch goroutine, so presence,
// the pending request list, and the negotiation state never race.
//
// Example:
//
//	tr := transport.NewWebSocket(transport.Config{URL: brokerURL, Token: token})
//	client, err := realtime.New(realtime.Options{
//	    Username:  "alice",
//	    Friends:   []string{"bob"},
//	    Transport: tr,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client.OnChatInvite(func(inviter string) {
//	    client.AcceptInvite()
//	})
//	client.OnChatMessage(func(msg chat.Message) {
//	    fmt.Printf("%s: %s\n", msg.Sender, msg.Content)
//	})
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hikemate/realtime/auth"
	"github.com/hikemate/realtime/chat"
	"github.com/hikemate/realtime/friendreq"
	"github.com/hikemate/realtime/presence"
	"github.com/hikemate/realtime/transport"
)

const snapshotTimeout = 15 * time.Second

// EndReason says why a chat session closed.
type EndReason uint8

const (
	// EndReasonLocal means the local user ended the chat.
	EndReasonLocal EndReason = iota
	// EndReasonRemote means the peer published ENDED.
	EndReasonRemote
	// EndReasonPeerOffline means the peer's presence was lost; nothing
	// was published because the peer is unreachable.
	EndReasonPeerOffline
)

// String returns a human-readable reason.
func (r EndReason) String() string {
	switch r {
	case EndReasonLocal:
		return "ended-locally"
	case EndReasonRemote:
		return "ended-by-peer"
	case EndReasonPeerOffline:
		return "peer-offline"
	default:
		return "unknown"
	}
}

// Callback signatures. All callbacks run on the client's dispatch
// goroutine (or the calling goroutine for locally initiated transitions)
// and must not block.
type (
	// PresenceCallback fires when a friend's online level actually
	// changes.
	PresenceCallback func(username string, online bool)
	// FriendRequestCallback fires when a new pending request appears.
	FriendRequestCallback func(req *friendreq.Request)
	// ChatInviteCallback fires when a peer's invitation awaits a local
	// answer.
	ChatInviteCallback func(inviter string)
	// InviteDeclinedCallback fires when our invitation was turned down;
	// busy distinguishes "in another chat" from an explicit decline.
	InviteDeclinedCallback func(peer string, busy bool)
	// ChatOpenedCallback fires when the handshake completes and a session
	// opens.
	ChatOpenedCallback func(peer string)
	// ChatMessageCallback fires for every peer-authored message appended
	// to the active session.
	ChatMessageCallback func(msg chat.Message)
	// ChatEndedCallback fires when the active session closes.
	ChatEndedCallback func(peer string, reason EndReason)
)

type eventKind uint8

const (
	evPresence eventKind = iota
	evFriendRequest
	evNotify
	evChatResponse
	evChatMessage
	evSnapshot
)

// event is one unit of work for the dispatch loop. Transport handlers
// decode payloads into events; only the loop touches component state.
type event struct {
	kind     eventKind
	user     string
	online   bool
	response string
	content  string

	hasOnline bool
	onlineSet []string
	pending   []string
	friends   []string
}

// Client is the realtime session for one authenticated user.
type Client struct {
	opts Options
	self string

	transport  transport.Transport
	presence   *presence.Tracker
	requests   *friendreq.Manager
	negotiator *chat.Negotiator

	events    chan event
	done      chan struct{}
	closeOnce sync.Once

	// opMu serializes user-initiated operations that pair a state change
	// with a publish, so each resolve publishes exactly once.
	opMu sync.Mutex

	mu        sync.Mutex
	started   bool
	watched   map[string]transport.SubscriptionID
	chatSub   transport.SubscriptionID
	chatSubOn bool

	onPresence       PresenceCallback
	onFriendRequest  FriendRequestCallback
	onChatInvite     ChatInviteCallback
	onInviteDeclined InviteDeclinedCallback
	onChatOpened     ChatOpenedCallback
	onChatMessage    ChatMessageCallback
	onChatEnded      ChatEndedCallback
}

// New creates a client for the given options. No connection is attempted
// until Connect.
func New(opts Options) (*Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaultEventBuffer
	}

	c := &Client{
		opts:       opts,
		self:       opts.Username,
		transport:  opts.Transport,
		presence:   presence.NewTracker(),
		requests:   friendreq.NewManager(opts.Username),
		negotiator: chat.NewNegotiator(opts.Username),
		events:     make(chan event, opts.EventBuffer),
		done:       make(chan struct{}),
		watched:    make(map[string]transport.SubscriptionID),
	}

	logrus.WithFields(logrus.Fields{
		"function": "New",
		"username": c.self,
		"friends":  len(opts.Friends),
	}).Info("realtime client created")
	return c, nil
}

// Username returns the local user's identity.
func (c *Client) Username() string {
	return c.self
}

// OnPresenceChange sets the presence callback.
func (c *Client) OnPresenceChange(fn PresenceCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPresence = fn
}

// OnFriendRequest sets the pending-request callback.
func (c *Client) OnFriendRequest(fn FriendRequestCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFriendRequest = fn
}

// OnChatInvite sets the inbound-invitation callback.
func (c *Client) OnChatInvite(fn ChatInviteCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChatInvite = fn
}

// OnInviteDeclined sets the declined/busy callback for our invitations.
func (c *Client) OnInviteDeclined(fn InviteDeclinedCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInviteDeclined = fn
}

// OnChatOpened sets the session-open callback.
func (c *Client) OnChatOpened(fn ChatOpenedCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChatOpened = fn
}

// OnChatMessage sets the inbound-message callback.
func (c *Client) OnChatMessage(fn ChatMessageCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChatMessage = fn
}

// OnChatEnded sets the session-closed callback.
func (c *Client) OnChatEnded(fn ChatEndedCallback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChatEnded = fn
}

// Connect registers the local user's subscriptions, starts the dispatch
// loop, and brings the broker connection up. Subscriptions are registered
// before the connection completes, so no event published after the
// connect point is missed.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true
	c.mu.Unlock()

	for _, friend := range c.opts.Friends {
		c.watchFriend(friend)
	}

	if _, err := c.transport.Subscribe(FriendRequestTopic(c.self), c.friendRequestHandler); err != nil {
		return err
	}
	if _, err := c.transport.Subscribe(ChatNotifyTopic(c.self), c.notifyHandler); err != nil {
		return err
	}
	if _, err := c.transport.Subscribe(ChatResponseTopic(c.self), c.responseHandler); err != nil {
		return err
	}

	// Missed events are never replayed, so every (re)connect reconciles
	// local state from a fresh snapshot.
	c.transport.OnConnect(c.reconcile)

	go c.run()
	return c.transport.Connect(ctx)
}

// Close tears the session down: the transport drops all subscriptions and
// any in-progress negotiation is forced to idle without publishing.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.negotiator.ForceIdle()
		c.requests.Clear()
		c.transport.Close()

		logrus.WithFields(logrus.Fields{
			"function": "Close",
			"username": c.self,
		}).Info("realtime client closed")
	})
	return nil
}

func (c *Client) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// OnlineFriends returns a sorted copy of the currently online friends.
func (c *Client) OnlineFriends() []string {
	return c.presence.Online()
}

// PendingRequests returns the active pending friend requests.
func (c *Client) PendingRequests() []*friendreq.Request {
	return c.requests.Pending()
}

// ChatState returns the negotiator's current state.
func (c *Client) ChatState() chat.State {
	return c.negotiator.State()
}

// ChatPeer returns the current negotiation partner, or "".
func (c *Client) ChatPeer() string {
	return c.negotiator.Peer()
}

// Messages returns the active session's history, or nil when no session
// is open.
func (c *Client) Messages() []chat.Message {
	if s := c.negotiator.Session(); s != nil {
		return s.Messages()
	}
	return nil
}

// SubmitFriendRequest publishes a pending friend request to the target's
// request topic. Fails with ErrTransportUnavailable when the broker
// connection is down; nothing is queued.
func (c *Client) SubmitFriendRequest(target string) error {
	if err := friendreq.ValidateTarget(c.self, target); err != nil {
		return err
	}
	if c.isClosed() {
		return ErrClosed
	}
	if !c.transport.Connected() {
		return ErrTransportUnavailable
	}

	payload := friendRequestPayload{Sender: c.self, Receiver: target}
	if err := c.publishJSON(FriendRequestTopic(target), payload, c.authHeaders()); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "SubmitFriendRequest",
		"target":   target,
	}).Info("friend request submitted")
	return nil
}

// ResolveFriendRequest publishes the decision for a pending request and
// removes it from the active list regardless of the decision. On accept,
// the requester joins the presence set speculatively until the next live
// presence event confirms it. When the transport is down the request
// stays pending so the user can retry.
func (c *Client) ResolveFriendRequest(id string, decision friendreq.Status) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if c.isClosed() {
		return ErrClosed
	}
	req, ok := c.requests.Get(id)
	if !ok {
		return friendreq.ErrUnknownRequest
	}
	if !c.transport.Connected() {
		return ErrTransportUnavailable
	}

	payload := requestResponsePayload{
		Sender:   c.self,
		Receiver: req.Requester,
		Status:   decision.String(),
	}
	if err := c.publishJSON(TopicFriendRequestResponse, payload, c.authHeaders()); err != nil {
		return err
	}
	if _, err := c.requests.Resolve(id, decision); err != nil {
		return err
	}

	if decision == friendreq.StatusAccepted {
		c.watchFriend(req.Requester)
		if c.presence.Set(req.Requester, true) {
			c.firePresence(req.Requester, true)
		}
	}
	return nil
}

// Invite starts a chat negotiation with an online friend by publishing a
// notify to their notification topic.
func (c *Client) Invite(peer string) error {
	if c.isClosed() {
		return ErrClosed
	}
	if !c.presence.IsOnline(peer) {
		return ErrPeerOffline
	}
	if !c.transport.Connected() {
		return ErrTransportUnavailable
	}
	if err := c.negotiator.Invite(peer); err != nil {
		return err
	}

	if err := c.publishJSON(ChatNotifyTopic(peer), notifyPayload{Sender: c.self}, c.authHeaders()); err != nil {
		c.negotiator.ForceIdle()
		return err
	}
	return nil
}

// AcceptInvite answers a pending inbound invitation, publishes the ACCEPT
// response, and opens the session.
func (c *Client) AcceptInvite() error {
	if c.isClosed() {
		return ErrClosed
	}
	if !c.transport.Connected() {
		return ErrTransportUnavailable
	}
	peer, _, err := c.negotiator.Accept()
	if err != nil {
		return err
	}
	c.openChatSubscription()

	payload := notificationResponsePayload{Response: string(chat.ResponseAccept), Recipient: peer}
	if err := c.publishJSON(ChatResponseTopic(peer), payload, c.authHeaders()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "AcceptInvite",
			"peer":     peer,
			"error":    err,
		}).Error("accept response not delivered")
	}

	c.fireChatOpened(peer)
	return nil
}

// DeclineInvite answers a pending inbound invitation negatively.
func (c *Client) DeclineInvite() error {
	if c.isClosed() {
		return ErrClosed
	}
	if !c.transport.Connected() {
		return ErrTransportUnavailable
	}
	peer, err := c.negotiator.Decline()
	if err != nil {
		return err
	}

	payload := notificationResponsePayload{Response: string(chat.ResponseDecline), Recipient: peer}
	if err := c.publishJSON(ChatResponseTopic(peer), payload, c.authHeaders()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DeclineInvite",
			"peer":     peer,
			"error":    err,
		}).Error("decline response not delivered")
	}
	return nil
}

// Send appends a message to the active session (local echo before broker
// confirmation) and publishes it to the peer's chat topic.
func (c *Client) Send(content string) (chat.Message, error) {
	if content == "" {
		return chat.Message{}, ErrEmptyContent
	}
	if c.isClosed() {
		return chat.Message{}, ErrClosed
	}
	if !c.transport.Connected() {
		return chat.Message{}, ErrTransportUnavailable
	}

	msg, peer, err := c.negotiator.Send(content)
	if err != nil {
		return chat.Message{}, err
	}

	payload := chatPayload{Sender: c.self, Receiver: peer, Content: content}
	if err := c.publishJSON(ChatTopic(peer), payload, c.authHeaders()); err != nil {
		// The optimistic echo stands; the send is fire and forget.
		logrus.WithFields(logrus.Fields{
			"function": "Send",
			"peer":     peer,
			"error":    err,
		}).Error("chat message not delivered")
	}
	return msg, nil
}

// EndChat closes the active session on local initiative. The local
// transition to idle is immediate; the ENDED publish is best effort, since
// an unreachable peer resolves the session through presence loss anyway.
func (c *Client) EndChat() error {
	if c.isClosed() {
		return ErrClosed
	}
	peer, err := c.negotiator.End()
	if err != nil {
		return err
	}
	c.dropChatSubscription()

	payload := notificationResponsePayload{Response: string(chat.ResponseEnded), Recipient: peer}
	if err := c.publishJSON(ChatResponseTopic(peer), payload, c.authHeaders()); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "EndChat",
			"peer":     peer,
			"error":    err,
		}).Warn("ended signal not delivered")
	}

	c.fireChatEnded(peer, EndReasonLocal)
	return nil
}

// ---------------------------------------------------------------------------
// Dispatch loop
// ---------------------------------------------------------------------------

func (c *Client) run() {
	for {
		select {
		case ev := <-c.events:
			c.dispatch(ev)
		case <-c.done:
			return
		}
	}
}

func (c *Client) dispatch(ev event) {
	switch ev.kind {
	case evPresence:
		c.handlePresence(ev.user, ev.online)
	case evFriendRequest:
		c.handleFriendRequest(ev.user)
	case evNotify:
		c.handleNotify(ev.user)
	case evChatResponse:
		c.handleResponse(ev.response, ev.user)
	case evChatMessage:
		c.handleChatMessage(ev.user, ev.content)
	case evSnapshot:
		c.handleSnapshot(ev)
	}
}

func (c *Client) handlePresence(user string, online bool) {
	if !c.presence.Set(user, online) {
		return
	}
	c.firePresence(user, online)

	// Presence loss overrides any in-flight negotiation with that peer.
	if !online && c.negotiator.PeerOffline(user) {
		c.dropChatSubscription()
		c.fireChatEnded(user, EndReasonPeerOffline)
	}
}

func (c *Client) handleFriendRequest(requester string) {
	req, ok := c.requests.Add(requester)
	if !ok {
		return
	}
	c.fireFriendRequest(req)
}

func (c *Client) handleNotify(inviter string) {
	switch c.negotiator.HandleNotify(inviter) {
	case chat.NotifyAccepted:
		c.fireChatInvite(inviter)
	case chat.NotifyBusy:
		payload := notificationResponsePayload{Response: string(chat.ResponseBusy), Recipient: inviter}
		if err := c.publishJSON(ChatResponseTopic(inviter), payload, c.authHeaders()); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "handleNotify",
				"inviter":  inviter,
				"error":    err,
			}).Warn("busy response not delivered")
		}
	case chat.NotifyDuplicate:
	}
}

func (c *Client) handleResponse(response, recipient string) {
	if recipient != "" && recipient != c.self {
		logrus.WithFields(logrus.Fields{
			"function":  "handleResponse",
			"recipient": recipient,
		}).Warn("discarding misaddressed notification response")
		return
	}

	outcome, peer := c.negotiator.HandleResponse(chat.Response(response))
	switch outcome {
	case chat.OutcomeOpened:
		c.openChatSubscription()
		c.fireChatOpened(peer)
	case chat.OutcomeDeclined:
		c.fireInviteDeclined(peer, false)
	case chat.OutcomeBusy:
		c.fireInviteDeclined(peer, true)
	case chat.OutcomeEnded:
		c.dropChatSubscription()
		c.fireChatEnded(peer, EndReasonRemote)
	case chat.OutcomeStale:
		// Already logged by the negotiator; nothing to do.
	}
}

func (c *Client) handleChatMessage(sender, content string) {
	msg, err := c.negotiator.HandleMessage(sender, content)
	if err != nil {
		// Stray message in the teardown window; logged, not an error.
		return
	}
	c.fireChatMessage(msg)
}

func (c *Client) handleSnapshot(ev event) {
	for _, friend := range ev.friends {
		c.watchFriend(friend)
	}

	if ev.hasOnline {
		c.presence.Seed(ev.onlineSet)
		if peer := c.negotiator.Peer(); peer != "" && !c.presence.IsOnline(peer) {
			if c.negotiator.PeerOffline(peer) {
				c.dropChatSubscription()
				c.fireChatEnded(peer, EndReasonPeerOffline)
			}
		}
	}

	for _, requester := range ev.pending {
		if req, ok := c.requests.Add(requester); ok {
			c.fireFriendRequest(req)
		}
	}
}

// ---------------------------------------------------------------------------
// Transport handlers: decode, then hand off to the dispatch loop
// ---------------------------------------------------------------------------

func (c *Client) friendRequestHandler(payload []byte) {
	p, err := decodeFriendRequest(payload)
	if err != nil {
		c.logProtocol(FriendRequestTopic(c.self), err)
		return
	}
	c.push(event{kind: evFriendRequest, user: p.Sender})
}

func (c *Client) notifyHandler(payload []byte) {
	p, err := decodeNotify(payload)
	if err != nil {
		c.logProtocol(ChatNotifyTopic(c.self), err)
		return
	}
	c.push(event{kind: evNotify, user: p.Sender})
}

func (c *Client) responseHandler(payload []byte) {
	p, err := decodeNotificationResponse(payload)
	if err != nil {
		c.logProtocol(ChatResponseTopic(c.self), err)
		return
	}
	c.push(event{kind: evChatResponse, response: p.Response, user: p.Recipient})
}

// watchFriend subscribes to a friend's presence topic once.
func (c *Client) watchFriend(username string) {
	if username == "" || username == c.self {
		return
	}

	// Reserve the entry before subscribing so a concurrent caller for the
	// same friend cannot double-subscribe.
	c.mu.Lock()
	if _, ok := c.watched[username]; ok {
		c.mu.Unlock()
		return
	}
	c.watched[username] = 0
	c.mu.Unlock()

	friend := username
	id, err := c.transport.Subscribe(PresenceTopic(friend), func(payload []byte) {
		p := decodePresence(payload)
		c.push(event{kind: evPresence, user: friend, online: p.Online})
	})
	if err != nil {
		c.mu.Lock()
		delete(c.watched, friend)
		c.mu.Unlock()

		logrus.WithFields(logrus.Fields{
			"function": "watchFriend",
			"friend":   friend,
			"error":    err,
		}).Error("presence subscription failed")
		return
	}

	c.mu.Lock()
	c.watched[friend] = id
	c.mu.Unlock()
}

func (c *Client) openChatSubscription() {
	c.mu.Lock()
	if c.chatSubOn {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	id, err := c.transport.Subscribe(ChatTopic(c.self), func(payload []byte) {
		p, err := decodeChat(payload)
		if err != nil {
			c.logProtocol(ChatTopic(c.self), err)
			return
		}
		c.push(event{kind: evChatMessage, user: p.Sender, content: p.Content})
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "openChatSubscription",
			"error":    err,
		}).Error("chat subscription failed")
		return
	}

	c.mu.Lock()
	c.chatSub = id
	c.chatSubOn = true
	c.mu.Unlock()
}

// dropChatSubscription removes the session-scoped chat subscription.
func (c *Client) dropChatSubscription() {
	c.mu.Lock()
	if !c.chatSubOn {
		c.mu.Unlock()
		return
	}
	id := c.chatSub
	c.chatSubOn = false
	c.mu.Unlock()

	c.transport.Unsubscribe(id)
}

// push hands an event to the dispatch loop. Events are dropped with a log
// entry if the queue is saturated; transport delivery must never block.
func (c *Client) push(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	default:
		logrus.WithFields(logrus.Fields{
			"function": "push",
			"kind":     ev.kind,
		}).Error("event queue full, dropping event")
	}
}

// reconcile fetches fresh snapshots and feeds them to the dispatch loop.
// Runs on every (re)connect: the presence set is rebuilt rather than
// assumed consistent with pre-drop state.
func (c *Client) reconcile() {
	if c.opts.API == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	ev := event{kind: evSnapshot}

	online, err := c.opts.API.OnlineFriends(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "reconcile",
			"error":    err,
		}).Error("online-friends snapshot failed")
	} else {
		ev.hasOnline = true
		ev.onlineSet = online
	}

	profile, err := c.opts.API.Profile(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "reconcile",
			"error":    err,
		}).Error("profile snapshot failed")
	} else {
		ev.pending = profile.PendingFriendRequests
		ev.friends = profile.FriendUsernames()
	}

	if ev.hasOnline || ev.pending != nil || ev.friends != nil {
		c.push(ev)
	}
}

// ---------------------------------------------------------------------------
// Publish and callback plumbing
// ---------------------------------------------------------------------------

func (c *Client) publishJSON(topic string, payload interface{}, headers map[string]string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.transport.Publish(topic, data, headers)
}

// authHeaders builds the Authorization header for publishes that require
// it. A missing or expired token degrades to an unauthorized publish; the
// broker decides whether to reject it.
func (c *Client) authHeaders() map[string]string {
	if c.opts.Tokens == nil {
		return nil
	}
	token, err := c.opts.Tokens.Token()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "authHeaders",
			"error":    err,
		}).Warn("no token for authorized publish")
		return nil
	}
	return map[string]string{"Authorization": auth.Bearer(token)}
}

func (c *Client) logProtocol(topic string, err error) {
	var perr *ProtocolError
	if errors.As(err, &perr) && perr.Topic == "" {
		perr.Topic = topic
	}
	logrus.WithFields(logrus.Fields{
		"function": "logProtocol",
		"topic":    topic,
		"error":    err,
	}).Warn("discarding malformed payload")
}

func (c *Client) firePresence(username string, online bool) {
	c.mu.Lock()
	fn := c.onPresence
	c.mu.Unlock()
	if fn != nil {
		fn(username, online)
	}
}

func (c *Client) fireFriendRequest(req *friendreq.Request) {
	c.mu.Lock()
	fn := c.onFriendRequest
	c.mu.Unlock()
	if fn != nil {
		fn(req)
	}
}

func (c *Client) fireChatInvite(inviter string) {
	c.mu.Lock()
	fn := c.onChatInvite
	c.mu.Unlock()
	if fn != nil {
		fn(inviter)
	}
}

func (c *Client) fireInviteDeclined(peer string, busy bool) {
	c.mu.Lock()
	fn := c.onInviteDeclined
	c.mu.Unlock()
	if fn != nil {
		fn(peer, busy)
	}
}

func (c *Client) fireChatOpened(peer string) {
	c.mu.Lock()
	fn := c.onChatOpened
	c.mu.Unlock()
	if fn != nil {
		fn(peer)
	}
}

func (c *Client) fireChatMessage(msg chat.Message) {
	c.mu.Lock()
	fn := c.onChatMessage
	c.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (c *Client) fireChatEnded(peer string, reason EndReason) {
	c.mu.Lock()
	fn := c.onChatEnded
	c.mu.Unlock()
	if fn != nil {
		fn(peer, reason)
	}
}
