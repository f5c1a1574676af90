package transport

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	defaultReconnectDelay = 5 * time.Second

	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxFrameSize = 64 * 1024

	outboundBuffer = 256
)

// Config configures a WebSocket transport.
type Config struct {
	// URL is the broker websocket endpoint (ws:// or wss://).
	URL string

	// Token, when set, is attached verbatim as the "token" query parameter
	// of the connection URL.
	Token string

	// ReconnectDelay is the fixed backoff between connection attempts.
	// Defaults to 5 seconds.
	ReconnectDelay time.Duration

	// Dialer overrides the websocket dialer. Defaults to
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// WebSocket is a Transport over a single websocket connection to the broker,
// speaking the JSON frame envelope of this package. It reconnects with a
// fixed backoff and replays topic subscriptions on every new connection.
type WebSocket struct {
	cfg  Config
	subs *registry

	outbound chan Frame
	done     chan struct{}

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	started   bool
	onConnect []func()
}

// NewWebSocket creates a websocket transport. No connection is attempted
// until Connect is called.
func NewWebSocket(cfg Config) *WebSocket {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	return &WebSocket{
		cfg:      cfg,
		subs:     newRegistry(),
		outbound: make(chan Frame, outboundBuffer),
		done:     make(chan struct{}),
	}
}

// Connect starts the connection manager and blocks until the first
// successful connection, context cancellation, or Close.
func (t *WebSocket) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.started {
		t.mu.Unlock()
		return nil
	}
	t.started = true
	t.mu.Unlock()

	dialURL, err := t.dialURL()
	if err != nil {
		return err
	}

	ready := make(chan struct{})
	go t.manage(ctx, dialURL, ready)

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrClosed
	}
}

// OnConnect registers a callback fired after every successful connection,
// once subscriptions have been replayed. Callbacks run on their own
// goroutine and may use the transport.
func (t *WebSocket) OnConnect(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnect = append(t.onConnect, fn)
}

// Subscribe registers a handler for a topic.
func (t *WebSocket) Subscribe(topic string, handler Handler) (SubscriptionID, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	connected := t.connected
	t.mu.Unlock()

	id, first := t.subs.add(topic, handler)
	if first && connected {
		t.enqueue(Frame{Type: FrameSubscribe, Destination: topic})
	}

	logrus.WithFields(logrus.Fields{
		"function": "Subscribe",
		"topic":    topic,
		"sub_id":   id,
	}).Debug("registered topic handler")
	return id, nil
}

// Unsubscribe removes a subscription.
func (t *WebSocket) Unsubscribe(id SubscriptionID) {
	topic, last := t.subs.remove(id)
	if topic == "" {
		return
	}

	t.mu.Lock()
	connected := t.connected
	closed := t.closed
	t.mu.Unlock()

	if last && connected && !closed {
		t.enqueue(Frame{Type: FrameUnsubscribe, Destination: topic})
	}
}

// Publish sends a payload to a topic. Fire and forget: delivery is not
// confirmed. Returns ErrNotConnected while the connection is down.
func (t *WebSocket) Publish(topic string, payload []byte, headers map[string]string) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if !t.connected {
		t.mu.Unlock()
		return ErrNotConnected
	}
	t.mu.Unlock()

	t.enqueue(Frame{Type: FrameSend, Destination: topic, Headers: headers, Body: payload})
	return nil
}

// Connected reports whether the broker connection is up.
func (t *WebSocket) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Close tears down the connection and drops all subscriptions.
func (t *WebSocket) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.connected = false
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	close(t.done)
	if conn != nil {
		conn.Close()
	}
	t.subs.clear()

	logrus.WithFields(logrus.Fields{
		"function": "Close",
		"url":      t.cfg.URL,
	}).Info("transport closed")
	return nil
}

func (t *WebSocket) dialURL() (string, error) {
	u, err := url.Parse(t.cfg.URL)
	if err != nil {
		return "", err
	}
	if t.cfg.Token != "" {
		q := u.Query()
		q.Set("token", t.cfg.Token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (t *WebSocket) dialer() *websocket.Dialer {
	if t.cfg.Dialer != nil {
		return t.cfg.Dialer
	}
	return websocket.DefaultDialer
}

// enqueue hands a frame to the write pump. It blocks if the outbound buffer
// is full, releasing only when the transport is closed.
func (t *WebSocket) enqueue(f Frame) {
	select {
	case t.outbound <- f:
	case <-t.done:
	}
}

// manage owns the dial/teardown cycle. It runs until the context is
// canceled or the transport is closed.
func (t *WebSocket) manage(ctx context.Context, dialURL string, ready chan<- struct{}) {
	var readyOnce sync.Once

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		default:
		}

		conn, _, err := t.dialer().DialContext(ctx, dialURL, nil)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "manage",
				"url":      t.cfg.URL,
				"error":    err,
			}).Error("broker connection failed, retrying")
			if !t.sleep(ctx) {
				return
			}
			continue
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			conn.Close()
			return
		}
		t.conn = conn
		t.connected = true
		t.mu.Unlock()

		// Replay subscriptions before announcing the connection so no
		// event published after this point is missed.
		for _, topic := range t.subs.activeTopics() {
			t.enqueue(Frame{Type: FrameSubscribe, Destination: topic})
		}

		connDone := make(chan struct{})
		go func() {
			t.readPump(conn)
			close(connDone)
		}()
		go t.writePump(conn, connDone)

		readyOnce.Do(func() { close(ready) })
		t.fireOnConnect()

		logrus.WithFields(logrus.Fields{
			"function": "manage",
			"url":      t.cfg.URL,
		}).Info("connected to broker")

		select {
		case <-connDone:
		case <-t.done:
			conn.Close()
			<-connDone
		}

		t.mu.Lock()
		t.connected = false
		t.conn = nil
		closed := t.closed
		t.mu.Unlock()
		conn.Close()

		if closed {
			return
		}

		logrus.WithFields(logrus.Fields{
			"function": "manage",
			"url":      t.cfg.URL,
			"delay":    t.cfg.ReconnectDelay,
		}).Warn("broker connection lost, reconnecting")

		if !t.sleep(ctx) {
			return
		}
	}
}

// sleep waits out the reconnect delay. Reports false when the transport
// should stop retrying.
func (t *WebSocket) sleep(ctx context.Context) bool {
	timer := time.NewTimer(t.cfg.ReconnectDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-t.done:
		return false
	}
}

func (t *WebSocket) fireOnConnect() {
	t.mu.Lock()
	callbacks := make([]func(), len(t.onConnect))
	copy(callbacks, t.onConnect)
	t.mu.Unlock()

	if len(callbacks) == 0 {
		return
	}
	go func() {
		for _, fn := range callbacks {
			fn()
		}
	}()
}

// readPump reads frames from one connection until it fails, dispatching
// message frames to topic handlers.
func (t *WebSocket) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithFields(logrus.Fields{
					"function": "readPump",
					"error":    err,
				}).Warn("broker read failed")
			}
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "readPump",
				"error":    err,
			}).Warn("discarding malformed broker frame")
			continue
		}
		if frame.Type != FrameMessage {
			logrus.WithFields(logrus.Fields{
				"function": "readPump",
				"type":     frame.Type,
			}).Debug("ignoring non-message frame from broker")
			continue
		}

		if n := t.subs.dispatch(frame.Destination, frame.Body); n == 0 {
			logrus.WithFields(logrus.Fields{
				"function": "readPump",
				"topic":    frame.Destination,
			}).Debug("no handler for delivered topic")
		}
	}
}

// writePump serializes all writes on one connection, including keepalive
// pings.
func (t *WebSocket) writePump(conn *websocket.Conn, connDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-t.outbound:
			data, err := EncodeFrame(frame)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "writePump",
					"error":    err,
				}).Error("dropping unencodable frame")
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "writePump",
					"error":    err,
				}).Warn("broker write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-connDone:
			return
		case <-t.done:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
