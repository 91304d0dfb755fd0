/*
Package chat contains the client-side core for real-time conversations: the
message model, the wire codec, the connection session state machine, and the
conversation container that merges history with live traffic.

This file defines the Message model and the ordering helpers the container
relies on: ascending sort of untrusted history, and sorted insertion with
id-based deduplication for live frames.
*/
package chat

import (
	"sort"
	"time"
)

// Message represents one chat utterance, normalized from either the history
// endpoint or a live frame.
type Message struct {
	// ID is the server-assigned identifier when known, or a client-generated
	// placeholder otherwise. Server ids are authoritative for deduplication.
	ID string

	// Content is the optional text body. A message may be attachment-only.
	Content string

	// SenderID identifies the author. Compared against the current session's
	// user id to decide own-message framing.
	SenderID string

	// SenderName is the author's display name as carried on the wire.
	SenderName string

	// Timestamp is when the message was created, used for ordering and
	// day grouping.
	Timestamp time.Time

	// RoomID is the conversation this message belongs to.
	RoomID string

	// Attachment is the optional file reference carried by the message.
	Attachment *Attachment
}

// SortAscending orders messages by non-decreasing timestamp in place.
// History endpoint order is not trusted; this runs on every backlog load.
// The sort is stable so equal-timestamp messages keep their received order.
func SortAscending(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}

// InsertSorted places msg into the timestamp-ordered list, returning the
// updated list and whether an insertion happened. A message whose id already
// appears in the list is dropped, which absorbs reconnect replays.
// Equal timestamps insert after existing entries, so live traffic with the
// same timestamp as the freshest history entry still renders after it.
func InsertSorted(messages []Message, msg Message) ([]Message, bool) {
	if msg.ID != "" {
		for i := range messages {
			if messages[i].ID == msg.ID {
				return messages, false
			}
		}
	}

	pos := sort.Search(len(messages), func(i int) bool {
		return messages[i].Timestamp.After(msg.Timestamp)
	})

	messages = append(messages, Message{})
	copy(messages[pos+1:], messages[pos:])
	messages[pos] = msg

	return messages, true
}

// timestampLayouts lists the accepted wire formats for message timestamps,
// tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses an ISO-8601 wire timestamp. A value that parses under
// none of the accepted layouts yields the fallback (receipt time), so a
// malformed timestamp never discards the frame.
func ParseTimestamp(value string, fallback time.Time) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return fallback
}
