/*
Package chat contains the client-side core for real-time conversations.

This file defines the Conversation View: a pure function from the container's
snapshot to a rendered transcript. It owns no transport state and retains
nothing between calls; grouping, framing, and attachment presentation are all
derived from the inputs.
*/
package chat

import (
	"fmt"
	"strings"
	"time"

	"mentorchat/internal/pkg/errs"
)

// ownIndent pushes the current user's messages toward the right edge of the
// transcript.
const ownIndent = "                                "

// ViewModel is the complete input to the renderer.
type ViewModel struct {
	RoomID         string
	Messages       []Message
	ConnState      State
	HistoryPending bool
	HistoryErr     *errs.CustomError
	RosterErr      *errs.CustomError
	Banner         string
	CurrentUserID  string
}

// StatusLine maps the connection state to the always-visible indicator.
func StatusLine(state State) string {
	switch state {
	case StateOpen:
		return "Online"
	case StateConnecting:
		return "Connecting..."
	default:
		return "Offline"
	}
}

// SendEnabled reports whether the send control should accept input: the
// session must be Open and there must be something to send.
func SendEnabled(state State, input string, attachmentStaged bool) bool {
	if state != StateOpen {
		return false
	}
	return strings.TrimSpace(input) != "" || attachmentStaged
}

// DayLabel produces the grouping header for a message's calendar day:
// Today, Yesterday, or the absolute date.
func DayLabel(ts, now time.Time) string {
	y1, m1, d1 := ts.Local().Date()
	y2, m2, d2 := now.Local().Date()

	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today"
	}

	yesterday := now.AddDate(0, 0, -1)
	y3, m3, d3 := yesterday.Local().Date()
	if y1 == y3 && m1 == m3 && d1 == d3 {
		return "Yesterday"
	}

	return ts.Local().Format("January 2, 2006")
}

// RenderTranscript renders the merged message sequence: day headers, per
// message a time-stamped line placed left (counterpart) or right (own), and
// attachment lines rendered inline for images or as a download link
// otherwise, never both.
func RenderTranscript(vm ViewModel, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s]\n", StatusLine(vm.ConnState))

	if vm.Banner != "" {
		fmt.Fprintf(&b, "!! %s\n", vm.Banner)
	}

	if vm.RoomID == "" {
		b.WriteString("No conversation selected.\n")
		return b.String()
	}

	if vm.HistoryPending {
		b.WriteString("Loading conversation...\n")
	}

	if vm.HistoryErr != nil {
		fmt.Fprintf(&b, "!! %s\n", vm.HistoryErr.Message)
	}

	lastDay := ""
	for i := range vm.Messages {
		msg := &vm.Messages[i]

		day := DayLabel(msg.Timestamp, now)
		if day != lastDay {
			fmt.Fprintf(&b, "-- %s --\n", day)
			lastDay = day
		}

		b.WriteString(renderMessage(msg, vm.CurrentUserID))
	}

	return b.String()
}

// renderMessage formats one message with its framing and attachment lines.
func renderMessage(msg *Message, currentUserID string) string {
	var b strings.Builder

	own := msg.SenderID == currentUserID

	indent := ""
	name := msg.SenderName
	if own {
		indent = ownIndent
		name = "You"
	}

	clock := msg.Timestamp.Local().Format("15:04")

	if msg.Content != "" {
		fmt.Fprintf(&b, "%s[%s] %s: %s\n", indent, clock, name, msg.Content)
	} else {
		fmt.Fprintf(&b, "%s[%s] %s:\n", indent, clock, name)
	}

	if msg.Attachment != nil {
		if msg.Attachment.Inline() {
			fmt.Fprintf(&b, "%s  [image] %s\n", indent, msg.Attachment.URL)
		} else {
			fmt.Fprintf(&b, "%s  [file] download: %s\n", indent, msg.Attachment.URL)
		}
	}

	return b.String()
}
