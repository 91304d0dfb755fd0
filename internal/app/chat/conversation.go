/*
Package chat contains the client-side core for real-time conversations.

This file defines the Conversation struct, the container owning the message
list and the currently selected room. It is the single place where the three
mutation paths meet: history loads replacing the list wholesale, live frames
inserting into it, and room switches clearing it. A room-generation guard
keeps late results from a previously selected room out of the current one.
*/
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mentorchat/internal/pkg/auth"
	"mentorchat/internal/pkg/errs"
	"mentorchat/internal/pkg/logx"
	"mentorchat/internal/pkg/randx"
)

// HistoryLoader fetches the ordered backlog for one room, independent of the
// live connection.
type HistoryLoader interface {
	LoadHistory(ctx context.Context, roomID string) ([]Message, *errs.CustomError)
}

// RosterLoader fetches the rooms the current user may chat in, in directory
// order.
type RosterLoader interface {
	ListRooms(ctx context.Context) ([]Room, *errs.CustomError)
}

// Transport is the live-connection surface the container drives. Satisfied
// by *Session.
type Transport interface {
	Bind(roomID string)
	Send(payload []byte) *errs.CustomError
	State() State
	Close()
}

// ConversationConfig carries the container's collaborators.
type ConversationConfig struct {
	Identity  auth.Identity
	History   HistoryLoader
	Roster    RosterLoader
	Transport Transport

	// Events is the channel the transport emits on; the container's Run loop
	// is its sole consumer.
	Events <-chan Event
}

// Conversation is the container component owning one chat view's state.
// All message-list mutations are serialized under mu; the Run loop goroutine
// is the only consumer of transport events.
type Conversation struct {
	identity  auth.Identity
	history   HistoryLoader
	roster    RosterLoader
	transport Transport
	events    <-chan Event
	decoder   Decoder
	logger    zerolog.Logger

	// notify coalesces change signals for whoever renders the snapshot.
	notify chan struct{}

	mu             sync.RWMutex
	rooms          []Room
	rosterErr      *errs.CustomError
	roomID         string
	roomGen        uint64
	cancelHistory  context.CancelFunc
	messages       []Message
	pending        []Message
	historyPending bool
	historyErr     *errs.CustomError
	connState      State
	banner         string
}

// NewConversation constructs the container. Call Run to start consuming
// transport events.
func NewConversation(cfg ConversationConfig) *Conversation {
	convLogger := logx.Logger().With().
		Str("component", "Conversation").
		Str("user_id", cfg.Identity.UserID).
		Logger()

	return &Conversation{
		identity:  cfg.Identity,
		history:   cfg.History,
		roster:    cfg.Roster,
		transport: cfg.Transport,
		events:    cfg.Events,
		logger:    convLogger,
		notify:    make(chan struct{}, 1),
		connState: StateIdle,
	}
}

// Run consumes transport events until ctx is done, then force-closes the
// transport. Closed is terminal once the owner has navigated away.
func (c *Conversation) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.transport.Close()
			return

		case event := <-c.events:
			c.handleEvent(event)
		}
	}
}

// Changed returns a channel that receives a (coalesced) signal whenever the
// snapshot may have changed.
func (c *Conversation) Changed() <-chan struct{} {
	return c.notify
}

// LoadRoster fetches the counterpart directory. Order is preserved as
// returned; a failure is surfaced at container level, independent of any
// selected room, and does not block re-fetching.
func (c *Conversation) LoadRoster(ctx context.Context) *errs.CustomError {
	rooms, err := c.roster.ListRooms(ctx)

	c.mu.Lock()
	if err != nil {
		c.rosterErr = err
		c.rooms = nil
	} else {
		c.rosterErr = nil
		c.rooms = rooms
	}
	c.mu.Unlock()

	c.signalChanged()
	return err
}

// Rooms returns the discovered rooms and any roster failure.
func (c *Conversation) Rooms() ([]Room, *errs.CustomError) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]Room, len(c.rooms))
	copy(rooms, c.rooms)
	return rooms, c.rosterErr
}

// SelectRoom switches the active conversation. Selecting the current room is
// a no-op. Otherwise the message list and error banner are cleared, the
// transport is rebound, and the history load starts; both are triggered here
// and nowhere else. A pending history fetch for the previous room is
// cancelled, and its result would be discarded anyway by the generation
// guard.
func (c *Conversation) SelectRoom(ctx context.Context, roomID string) *errs.CustomError {
	if roomID != "" && !randx.IsValidRoomID(roomID) {
		return errs.NewError(errs.ErrRoomIDInvalid)
	}

	c.mu.Lock()

	if roomID == c.roomID {
		c.mu.Unlock()
		return nil
	}

	c.roomGen++
	gen := c.roomGen
	c.roomID = roomID
	c.messages = nil
	c.pending = nil
	c.historyErr = nil
	c.banner = ""

	if c.cancelHistory != nil {
		c.cancelHistory()
		c.cancelHistory = nil
	}

	if roomID == "" {
		c.historyPending = false
		c.mu.Unlock()

		c.transport.Bind("")
		c.signalChanged()
		return nil
	}

	c.historyPending = true
	historyCtx, cancel := context.WithCancel(ctx)
	c.cancelHistory = cancel
	c.mu.Unlock()

	c.logger.Info().Str("room_id", roomID).Msg("Room selected.")

	c.transport.Bind(roomID)
	go c.loadHistory(historyCtx, gen, roomID)

	c.signalChanged()
	return nil
}

// loadHistory runs the backlog fetch for one room generation and applies the
// result if that generation is still current.
func (c *Conversation) loadHistory(ctx context.Context, gen uint64, roomID string) {
	messages, err := c.history.LoadHistory(ctx, roomID)

	c.mu.Lock()

	if gen != c.roomGen {
		// the user has switched rooms; this response is stale
		c.mu.Unlock()
		c.logger.Info().Str("room_id", roomID).Msg("Discarding stale history response.")
		return
	}

	c.historyPending = false

	if err != nil {
		c.historyErr = err
		c.messages = nil
		c.pending = nil
		c.mu.Unlock()

		c.logger.Warn().Err(err).Str("room_id", roomID).Msg("History load failed.")
		c.signalChanged()
		return
	}

	// replace wholesale, then fold in live frames that arrived first
	SortAscending(messages)
	for _, msg := range c.pending {
		messages, _ = InsertSorted(messages, msg)
	}

	c.historyErr = nil
	c.messages = messages
	c.pending = nil
	c.mu.Unlock()

	c.signalChanged()
}

// handleEvent applies one transport event. Events tagged with a room other
// than the currently selected one are stale and ignored.
func (c *Conversation) handleEvent(event Event) {
	c.mu.Lock()

	if event.RoomID != c.roomID {
		c.mu.Unlock()
		return
	}

	switch event.Kind {
	case EventStateChanged:
		c.connState = event.State
		if event.State == StateOpen {
			c.banner = ""
		}
		c.mu.Unlock()

	case EventFrame:
		c.mu.Unlock()
		c.handleFrame(event)

	default:
		c.mu.Unlock()
		return
	}

	c.signalChanged()
}

// handleFrame decodes one live frame and merges it into the list. Decode
// failures drop the frame only; server-reported errors raise the banner and
// leave the connection open.
func (c *Conversation) handleFrame(event Event) {
	decoded, err := c.decoder.Decode(event.Frame, time.Now())
	if err != nil {
		c.logger.Warn().Err(err).Msg("Dropping malformed inbound frame.")
		return
	}

	if decoded == nil {
		// forward-compatible no-op for unrecognized frame types
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if event.RoomID != c.roomID {
		return
	}

	if decoded.ServerError != nil {
		c.banner = decoded.ServerError.Message
		return
	}

	msg := *decoded.Message

	if msg.RoomID != "" && msg.RoomID != c.roomID {
		c.logger.Warn().
			Str("frame_room_id", msg.RoomID).
			Str("bound_room_id", c.roomID).
			Msg("Dropping frame addressed to another room.")
		return
	}

	if c.historyPending {
		c.pending = append(c.pending, msg)
		return
	}

	c.messages, _ = InsertSorted(c.messages, msg)
}

// SendText encodes and sends a text-only message. On success the user's own
// message is echoed into the list immediately. On failure the caller keeps
// the drafted input; nothing is silently dropped.
func (c *Conversation) SendText(text string) *errs.CustomError {
	return c.send(text, nil)
}

// SendAttachment encodes and sends a message carrying a staged file, with
// optional caption text.
func (c *Conversation) SendAttachment(text string, staged *StagedAttachment) *errs.CustomError {
	return c.send(text, staged)
}

func (c *Conversation) send(text string, staged *StagedAttachment) *errs.CustomError {
	c.mu.RLock()
	roomID := c.roomID
	c.mu.RUnlock()

	if roomID == "" {
		return errs.NewError(errs.ErrNoRoomSelected)
	}

	payload, err := EncodeOutbound(text, staged)
	if err != nil {
		return err
	}

	if err := c.transport.Send(payload); err != nil {
		return err
	}

	echo := Message{
		ID:         randx.LocalMessageID(),
		Content:    text,
		SenderID:   c.identity.UserID,
		SenderName: c.identity.DisplayName,
		Timestamp:  time.Now(),
		RoomID:     roomID,
	}

	if staged != nil {
		if echo.Content == "" {
			echo.Content = staged.Name
		}
		echo.Attachment = &Attachment{
			URL:      staged.DataURI(),
			MimeType: staged.MimeType,
		}
	}

	c.mu.Lock()
	if roomID == c.roomID {
		if c.historyPending {
			c.pending = append(c.pending, echo)
		} else {
			c.messages, _ = InsertSorted(c.messages, echo)
		}
	}
	c.mu.Unlock()

	c.signalChanged()
	return nil
}

// Snapshot captures the rendering inputs at one point in time. The returned
// message slice is a copy; the view owns no shared state.
func (c *Conversation) Snapshot() ViewModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	messages := make([]Message, len(c.messages))
	copy(messages, c.messages)

	return ViewModel{
		RoomID:         c.roomID,
		Messages:       messages,
		ConnState:      c.connState,
		HistoryPending: c.historyPending,
		HistoryErr:     c.historyErr,
		RosterErr:      c.rosterErr,
		Banner:         c.banner,
		CurrentUserID:  c.identity.UserID,
	}
}

// signalChanged nudges the renderer without ever blocking.
func (c *Conversation) signalChanged() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}
