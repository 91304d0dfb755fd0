package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"mentorchat/internal/pkg/errs"
)

// stubChatServer is an in-test chat backend: it accepts websocket upgrades
// per room, tracks live connections, and lets tests push frames or kill
// transports.
type stubChatServer struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   []*websocket.Conn
	rooms   []string
	tokens  []string
	inbound chan []byte
}

func newStubChatServer(t *testing.T) *stubChatServer {
	t.Helper()

	s := &stubChatServer{t: t, inbound: make(chan []byte, 16)}

	r := chi.NewRouter()
	r.Get("/ws/chat/{roomID}", func(w http.ResponseWriter, req *http.Request) {
		conn, err := s.upgrader.Upgrade(w, req, nil)
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.rooms = append(s.rooms, chi.URLParam(req, "roomID"))
		s.tokens = append(s.tokens, req.Header.Get("Authorization"))
		s.mu.Unlock()

		// drain inbound frames until the client goes away, exposing them
		// to tests; the stub is the sole reader of each connection
		go func() {
			for {
				_, raw, err := conn.ReadMessage()
				if err != nil {
					return
				}
				select {
				case s.inbound <- raw:
				default:
				}
			}
		}()
	})

	s.server = httptest.NewServer(r)
	t.Cleanup(func() {
		s.closeAll()
		s.server.Close()
	})

	return s
}

func (s *stubChatServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *stubChatServer) connCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *stubChatServer) conn(i int) *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns[i]
}

func (s *stubChatServer) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		conn.Close()
	}
}

// waitForState consumes session events until the wanted state transition
// arrives, failing the test on timeout. Frame events seen on the way are
// returned alongside.
func waitForState(t *testing.T, events <-chan Event, want State, timeout time.Duration) []Event {
	t.Helper()

	var frames []Event
	deadline := time.After(timeout)

	for {
		select {
		case event := <-events:
			if event.Kind == EventFrame {
				frames = append(frames, event)
				continue
			}
			if event.State == want {
				return frames
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", want)
		}
	}
}

func waitForFrame(t *testing.T, events <-chan Event, timeout time.Duration) Event {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case event := <-events:
			if event.Kind == EventFrame {
				return event
			}
		case <-deadline:
			t.Fatal("timed out waiting for a frame event")
		}
	}
}

func newTestSession(t *testing.T, server *stubChatServer, cfg SessionConfig) (*Session, chan Event) {
	t.Helper()

	if cfg.WSBaseURL == "" {
		cfg.WSBaseURL = server.wsURL()
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = 50 * time.Millisecond
	}

	events := make(chan Event, 64)
	session := NewSession(cfg, events)
	t.Cleanup(session.Close)

	return session, events
}

func TestSessionConnectAndReceive(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{AuthToken: "tok-1"})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	if session.State() != StateOpen {
		t.Fatalf("expected Open, got %v", session.State())
	}

	server.mu.Lock()
	room, token := server.rooms[0], server.tokens[0]
	server.mu.Unlock()

	if room != "r1" {
		t.Errorf("dial URL must carry the room id, got %q", room)
	}
	if token != "Bearer tok-1" {
		t.Errorf("handshake must carry the bearer token, got %q", token)
	}

	frame := []byte(`{"type":"chat_message","message":"hi","sender_id":"u2","timestamp":"2026-03-01T10:05:00Z","chat_room_id":"r1"}`)
	if err := server.conn(0).WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("stub write failed: %v", err)
	}

	got := waitForFrame(t, events, 2*time.Second)
	if got.RoomID != "r1" {
		t.Errorf("frame event must be tagged with the bound room, got %q", got.RoomID)
	}
	if string(got.Frame) != string(frame) {
		t.Errorf("frame delivered verbatim expected, got %s", got.Frame)
	}
}

func TestSessionSendDelivers(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	received := server.inbound

	if err := session.Send([]byte(`{"message":"hello"}`)); err != nil {
		t.Fatalf("send while Open must succeed, got %v", err)
	}

	select {
	case raw := <-received:
		if string(raw) != `{"message":"hello"}` {
			t.Errorf("unexpected payload on the wire: %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("payload never reached the server")
	}
}

// Send gating: Send fails with NotConnected whenever the session is not Open.
func TestSessionSendGating(t *testing.T) {
	server := newStubChatServer(t)
	session, _ := newTestSession(t, server, SessionConfig{})

	if err := session.Send([]byte("x")); err == nil || err.Code != errs.ErrNotConnected {
		t.Fatalf("send while Idle must fail with ErrNotConnected, got %v", err)
	}
}

func TestSessionSendThrottled(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{SendRate: 0.001, SendBurst: 1})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	if err := session.Send([]byte("one")); err != nil {
		t.Fatalf("first send within burst must pass, got %v", err)
	}
	if err := session.Send([]byte("two")); err == nil || err.Code != errs.ErrSendThrottled {
		t.Fatalf("second send must be throttled, got %v", err)
	}
}

// Single transport: rebinding always closes the previous transport before a
// new one is established.
func TestSessionSingleTransportOnRebind(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	session.Bind("r2")
	waitForState(t, events, StateOpen, 2*time.Second)

	if server.connCount() != 2 {
		t.Fatalf("expected 2 upgrades total, got %d", server.connCount())
	}

	// the first transport must be dead: a read on it errors out promptly
	first := server.conn(0)
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.NextReader(); err == nil {
		t.Error("previous transport still alive after rebind")
	}

	server.mu.Lock()
	secondRoom := server.rooms[1]
	server.mu.Unlock()
	if secondRoom != "r2" {
		t.Errorf("second transport bound to %q, want r2", secondRoom)
	}
}

func TestSessionRebindSameRoomIsNoop(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	session.Bind("r1")
	time.Sleep(100 * time.Millisecond)

	if server.connCount() != 1 {
		t.Errorf("rebinding the same room must not redial, got %d upgrades", server.connCount())
	}
}

// Reconnect: an unclean close while the room stays bound yields a new
// Connecting transition after the fixed delay, without user action.
func TestSessionReconnectAfterUncleanClose(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	// kill the TCP conn without a close frame: unclean
	server.conn(0).UnderlyingConn().Close()

	waitForState(t, events, StateClosedError, 2*time.Second)
	waitForState(t, events, StateConnecting, 2*time.Second)
	waitForState(t, events, StateOpen, 2*time.Second)

	if server.connCount() != 2 {
		t.Errorf("expected a second upgrade after reconnect, got %d", server.connCount())
	}
}

// A clean close is terminal: no reconnect is attempted.
func TestSessionNoReconnectAfterCleanClose(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	conn := server.conn(0)
	deadline := time.Now().Add(time.Second)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), deadline)

	waitForState(t, events, StateClosedClean, 2*time.Second)

	// well past the reconnect delay; no new transport may appear
	time.Sleep(200 * time.Millisecond)
	if server.connCount() != 1 {
		t.Errorf("clean close must not reconnect, got %d upgrades", server.connCount())
	}
	if session.State() != StateClosedClean {
		t.Errorf("expected ClosedClean, got %v", session.State())
	}
}

// Switching rooms during the reconnect window cancels the pending retry for
// the old room.
func TestSessionRoomSwitchCancelsReconnect(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{ReconnectDelay: 150 * time.Millisecond})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	server.conn(0).UnderlyingConn().Close()
	waitForState(t, events, StateClosedError, 2*time.Second)

	session.Bind("r2")
	waitForState(t, events, StateOpen, 2*time.Second)

	// wait out the old retry window, then check no r1 transport reappeared
	time.Sleep(300 * time.Millisecond)

	server.mu.Lock()
	defer server.mu.Unlock()
	for i, room := range server.rooms {
		if i > 0 && room == "r1" {
			t.Errorf("stale reconnect re-dialed the abandoned room r1")
		}
	}
}

func TestSessionCloseIsTerminal(t *testing.T) {
	server := newStubChatServer(t)
	session, events := newTestSession(t, server, SessionConfig{})

	session.Bind("r1")
	waitForState(t, events, StateOpen, 2*time.Second)

	session.Close()
	waitForState(t, events, StateIdle, 2*time.Second)

	time.Sleep(150 * time.Millisecond)
	if server.connCount() != 1 {
		t.Errorf("close must not redial, got %d upgrades", server.connCount())
	}
	if err := session.Send([]byte("x")); err == nil || err.Code != errs.ErrNotConnected {
		t.Errorf("send after close must fail with ErrNotConnected, got %v", err)
	}
}
