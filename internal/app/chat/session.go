/*
Package chat contains the client-side core for real-time conversations.

This file defines the Session struct, the connection state machine owning the
one live transport bound to the selected room. It manages dialing, the read
and write pumps, clean-vs-unclean close classification, and the fixed-delay
automatic reconnect that masks transient server restarts.
*/
package chat

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"mentorchat/internal/pkg/errs"
	"mentorchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed between inbound traffic (frames or server pings)
	// before the read deadline trips.
	pingWait = 60 * time.Second

	// frequency at which the client sends its own Ping message.
	pingPeriod = (pingWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame. Inbound frames
	// reference attachments by URL, so they stay small.
	maxFrameSize = 64 * 1024

	// DefaultReconnectDelay is the fixed wait before redialing after an
	// unclean close. No backoff growth, no retry cap: the session retries
	// for as long as the room stays bound.
	DefaultReconnectDelay = 3 * time.Second

	// capacity of the outgoing send queue.
	sendQueueSize = 64
)

// State enumerates the connection session lifecycle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosedClean
	StateClosedError
)

// String returns the state name for logging and status display.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosedClean:
		return "closed"
	case StateClosedError:
		return "closed_error"
	default:
		return "unknown"
	}
}

// EventKind discriminates session events delivered to the owning container.
type EventKind int

const (
	// EventStateChanged reports a state machine transition.
	EventStateChanged EventKind = iota

	// EventFrame carries one raw inbound text frame, in receipt order.
	EventFrame
)

// Event is one occurrence on the session, tagged with the room the session
// was bound to when it happened so the container can discard stale ones.
type Event struct {
	Kind   EventKind
	RoomID string
	State  State
	Frame  []byte
}

// SessionConfig carries the session's construction parameters.
type SessionConfig struct {
	// WSBaseURL is the live transport endpoint base (ws:// or wss://).
	WSBaseURL string

	// AuthToken is attached to the dial handshake as a bearer header; the
	// client adds no further auth payload.
	AuthToken string

	// SendRate and SendBurst shape the outgoing send throttle.
	SendRate  float64
	SendBurst int

	// ReconnectDelay overrides DefaultReconnectDelay when positive.
	ReconnectDelay time.Duration
}

// Session owns the lifecycle of at most one live transport at a time, bound
// 1:1 to a room. Rebinding always destroys the current transport first,
// synchronously, before any new connection attempt.
type Session struct {
	wsBaseURL      string
	authToken      string
	dialer         *websocket.Dialer
	events         chan<- Event
	limiter        *rate.Limiter
	reconnectDelay time.Duration
	logger         zerolog.Logger

	mu     sync.Mutex
	state  State
	roomID string
	conn   *websocket.Conn
	send   chan []byte
	retry  *time.Timer

	// gen increments on every rebind. Transport goroutines and reconnect
	// timers capture the generation they belong to and go quiet once it is
	// superseded, which keeps the one-transport invariant airtight.
	gen uint64
}

// NewSession constructs a Session delivering its events to the given channel.
// The channel should be buffered; events that cannot be delivered immediately
// when it is full are dropped with a warning rather than blocking the pumps.
func NewSession(cfg SessionConfig, events chan<- Event) *Session {
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	var limiter *rate.Limiter
	if cfg.SendRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.SendRate), cfg.SendBurst)
	}

	sessionLogger := logx.Logger().With().
		Str("component", "Session").
		Logger()

	return &Session{
		wsBaseURL:      cfg.WSBaseURL,
		authToken:      cfg.AuthToken,
		dialer:         websocket.DefaultDialer,
		events:         events,
		limiter:        limiter,
		reconnectDelay: delay,
		logger:         sessionLogger,
		state:          StateIdle,
	}
}

// Bind dedicates the session to roomID, tearing down any current transport
// first. An empty roomID means "no room selected" and leaves the session
// Idle. Rebinding to the already-bound room is a no-op while a transport is
// alive.
func (s *Session) Bind(roomID string) {
	s.mu.Lock()

	if roomID == s.roomID && roomID != "" && s.state != StateIdle {
		s.mu.Unlock()
		return
	}

	s.gen++
	gen := s.gen

	s.teardownLocked()
	s.roomID = roomID

	if roomID == "" {
		s.setStateLocked(StateIdle)
		s.mu.Unlock()
		return
	}

	s.logger.Info().Str("room_id", roomID).Msg("Binding session to room.")
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	go s.dial(gen, roomID)
}

// Close force-closes any in-flight or open transport and parks the session.
// Used by the owning container on teardown; Closed is terminal afterwards.
func (s *Session) Close() {
	s.Bind("")
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Send queues one encoded payload for delivery. Valid only while Open;
// otherwise it fails with ErrNotConnected and the caller must keep the
// user's drafted input for retry.
func (s *Session) Send(payload []byte) *errs.CustomError {
	s.mu.Lock()

	if s.state != StateOpen || s.send == nil {
		s.mu.Unlock()
		return errs.NewError(errs.ErrNotConnected)
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.mu.Unlock()
		return errs.NewError(errs.ErrSendThrottled)
	}

	send := s.send
	s.mu.Unlock()

	select {
	case send <- payload:
		return nil
	default:
		s.logger.Warn().Int("queue_len", len(send)).Msg("Session send queue full, rejecting message.")
		return errs.NewError(errs.ErrSendBufferFull)
	}
}

// teardownLocked force-closes the current transport and cancels any pending
// reconnect. Callers hold s.mu.
func (s *Session) teardownLocked() {
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}

	if s.conn != nil {
		s.setStateLocked(StateClosing)

		// best-effort close frame; the peer may already be gone
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait),
		)

		if err := s.conn.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Session transport close error during teardown.")
		}

		s.conn = nil
		s.send = nil
	}
}

// dial establishes the transport for the captured generation. A generation
// superseded by a rebind abandons its result.
func (s *Session) dial(gen uint64, roomID string) {
	dialURL := fmt.Sprintf("%s/ws/chat/%s", s.wsBaseURL, roomID)

	header := http.Header{}
	if s.authToken != "" {
		header.Set("Authorization", "Bearer "+s.authToken)
	}

	conn, resp, err := s.dialer.Dial(dialURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	s.mu.Lock()

	if gen != s.gen {
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		s.logger.Warn().Err(err).Str("room_id", roomID).Msg("Session dial failed.")
		s.setStateLocked(StateClosedError)
		s.scheduleReconnectLocked(gen, roomID)
		s.mu.Unlock()
		return
	}

	s.conn = conn
	s.send = make(chan []byte, sendQueueSize)
	send := s.send
	s.setStateLocked(StateOpen)
	s.mu.Unlock()

	s.logger.Info().Str("room_id", roomID).Msg("Session transport open.")

	go s.writePump(conn, send)
	go s.readPump(gen, roomID, conn)
}

// readPump reads frames from the transport until it closes, delivering each
// raw frame to the container in receipt order. It also refreshes the read
// deadline on server pings.
func (s *Session) readPump(gen uint64, roomID string, conn *websocket.Conn) {
	conn.SetReadLimit(maxFrameSize)

	if err := conn.SetReadDeadline(time.Now().Add(pingWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline.")
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pingWait))
	})

	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pingWait))

		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.handleClosed(gen, roomID, err)
			return
		}

		s.emit(Event{Kind: EventFrame, RoomID: roomID, Frame: raw})
	}
}

// handleClosed classifies the transport termination and drives the resulting
// transition: clean closes are terminal, unclean ones schedule a reconnect.
func (s *Session) handleClosed(gen uint64, roomID string, readErr error) {
	clean := websocket.IsCloseError(readErr,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		// locally initiated teardown; Bind already drove the state
		return
	}

	s.conn = nil
	s.send = nil

	if clean {
		s.logger.Info().Str("room_id", roomID).Msg("Session transport closed cleanly.")
		s.setStateLocked(StateClosedClean)
		return
	}

	s.logger.Warn().Err(readErr).Str("room_id", roomID).Msg("Session transport closed uncleanly.")
	s.setStateLocked(StateClosedError)
	s.scheduleReconnectLocked(gen, roomID)
}

// scheduleReconnectLocked arms the fixed-delay retry timer for the captured
// generation. The retry fires only if the session still belongs to the same
// binding; a room switch in the meantime simply leaves the session torn down.
// Callers hold s.mu.
func (s *Session) scheduleReconnectLocked(gen uint64, roomID string) {
	s.retry = time.AfterFunc(s.reconnectDelay, func() {
		s.mu.Lock()

		if gen != s.gen || s.roomID != roomID {
			s.mu.Unlock()
			return
		}

		s.logger.Info().Str("room_id", roomID).Msg("Session reconnecting after unclean close.")
		s.setStateLocked(StateConnecting)
		s.mu.Unlock()

		s.dial(gen, roomID)
	})
}

// writePump is the single writer for one transport: it drains the send queue
// and keeps the heartbeat going. It exits on the first write failure; the
// read pump observes the broken transport and drives the state machine.
func (s *Session) writePump(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline.")
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Warn().Err(err).Msg("Session write failed.")
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.logger.Error().Err(err).Msg("Failed to set write deadline on ping.")
				return
			}

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// setStateLocked records the transition and notifies the container. Callers
// hold s.mu.
func (s *Session) setStateLocked(state State) {
	if s.state == state {
		return
	}

	s.state = state
	s.emit(Event{Kind: EventStateChanged, RoomID: s.roomID, State: state})
}

// emit delivers an event without ever blocking a pump. The container channel
// is buffered; overflow drops the event with a warning.
func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn().
			Int("event_kind", int(event.Kind)).
			Msg("Session event channel full, dropping event.")
	}
}
