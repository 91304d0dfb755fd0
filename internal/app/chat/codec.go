/*
Package chat contains the client-side core for real-time conversations.

This file defines the wire codec: serialization of outgoing user input into
the JSON text frames the server expects, and deserialization of inbound
frames into normalized Message records or server-reported errors.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"mentorchat/internal/pkg/errs"
)

// Inbound frame discriminants recognized by the decoder. Any other type is a
// forward-compatible no-op.
const (
	frameTypeChatMessage = "chat_message"
	frameTypeError       = "error"
)

// outboundFrame is the JSON shape of an outgoing text frame.
type outboundFrame struct {
	Message  string `json:"message"`
	FileData string `json:"file_data,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileType string `json:"file_type,omitempty"`
}

// inboundFrame is the JSON shape of an incoming text frame, discriminated by Type.
type inboundFrame struct {
	Type           string `json:"type"`
	ID             string `json:"id,omitempty"`
	Message        string `json:"message"`
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	Timestamp      string `json:"timestamp"`
	ChatRoomID     string `json:"chat_room_id"`
	FileURL        string `json:"file_url,omitempty"`
	FileType       string `json:"file_type,omitempty"`
}

// EncodeOutbound serializes user input into a wire frame. With no attachment
// the frame is {"message": text}; with one, the file travels inline as a
// base64 data URI alongside its name and MIME type. When the text is empty
// the attachment's filename stands in as the message body.
func EncodeOutbound(text string, staged *StagedAttachment) ([]byte, *errs.CustomError) {
	if text == "" && staged == nil {
		return nil, errs.NewError(errs.ErrMessageEmpty)
	}

	if len(text) > MaxContentBytes {
		return nil, errs.NewError(errs.ErrMessageContentTooLong)
	}

	frame := outboundFrame{Message: text}

	if staged != nil {
		if err := staged.Validate(); err != nil {
			return nil, err
		}

		if frame.Message == "" {
			frame.Message = staged.Name
		}
		frame.FileData = staged.DataURI()
		frame.FileName = staged.Name
		frame.FileType = staged.MimeType
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return nil, errs.NewError(errs.ErrEncoding)
	}

	return payload, nil
}

// InboundEvent is the decoded form of one inbound frame. Exactly one of
// Message and ServerError is set; a nil event means the frame was ignored.
type InboundEvent struct {
	// Message is the normalized chat message, for chat_message frames.
	Message *Message

	// ServerError is the server-reported error, for error frames. The
	// connection stays open when one arrives.
	ServerError *errs.CustomError
}

// Decoder turns raw inbound frames into InboundEvents. It owns the monotonic
// counter used to mint fallback ids for frames the server did not identify,
// so duplicate receipt times can never collide into one rendering key.
type Decoder struct {
	seq atomic.Uint64
}

// Decode parses one raw frame. Malformed JSON yields ErrDecode (frame
// dropped, connection kept); unrecognized discriminants yield (nil, nil).
// receivedAt backs both the fallback id and a fallback timestamp.
func (d *Decoder) Decode(raw []byte, receivedAt time.Time) (*InboundEvent, *errs.CustomError) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, errs.NewError(errs.ErrDecode)
	}

	switch frame.Type {
	case frameTypeChatMessage:
		return &InboundEvent{Message: d.toMessage(&frame, receivedAt)}, nil

	case frameTypeError:
		return &InboundEvent{ServerError: errs.NewError(errs.ErrServerReported, frame.Message)}, nil

	default:
		return nil, nil
	}
}

// toMessage normalizes a chat_message frame. The server-supplied id is
// authoritative when present; otherwise a local monotonic placeholder is used.
func (d *Decoder) toMessage(frame *inboundFrame, receivedAt time.Time) *Message {
	id := frame.ID
	if id == "" {
		id = fmt.Sprintf("local-%d", d.seq.Add(1))
	}

	msg := &Message{
		ID:         id,
		Content:    frame.Message,
		SenderID:   frame.SenderID,
		SenderName: frame.SenderUsername,
		Timestamp:  ParseTimestamp(frame.Timestamp, receivedAt),
		RoomID:     frame.ChatRoomID,
	}

	if frame.FileURL != "" {
		msg.Attachment = &Attachment{
			URL:      frame.FileURL,
			MimeType: frame.FileType,
		}
	}

	return msg
}
