package chat

// Counterpart is the other participant in a room relative to the current
// user: a mentor from a student's view, or vice versa. The chat core never
// branches on which; roles only change cosmetic framing upstream.
type Counterpart struct {
	ID          string
	DisplayName string
	AvatarURL   string
	Email       string
}

// Room identifies one conversation: the opaque id shared between the history
// endpoint and the live transport endpoint, plus the counterpart it pairs the
// current user with. Rooms are discovered once via the roster fetch; selecting
// one is a pure client-side state transition.
type Room struct {
	RoomID      string
	Counterpart Counterpart
}
