package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"mentorchat/internal/app/chat"
	"mentorchat/internal/pkg/errs"
)

// messageRecord is the wire shape of one history entry. Server order is not
// trusted; content may be null for attachment-only messages.
type messageRecord struct {
	ID             string  `json:"id"`
	Content        *string `json:"content"`
	SenderID       string  `json:"sender_id"`
	SenderUsername string  `json:"sender_username"`
	Timestamp      string  `json:"timestamp"`
	ChatRoomID     string  `json:"chat_room_id"`
	FileURL        string  `json:"file_url,omitempty"`
	FileType       string  `json:"file_type,omitempty"`
}

// LoadHistory fetches the message backlog for one room and returns it sorted
// ascending by timestamp. It is independent of the live connection and may
// run concurrently with session establishment.
func (c *Client) LoadHistory(ctx context.Context, roomID string) ([]chat.Message, *errs.CustomError) {
	path := fmt.Sprintf("/api/chat/rooms/%s/messages", url.PathEscape(roomID))

	var records []messageRecord
	status, err := c.getJSON(ctx, path, &records)
	if err != nil {
		c.logger.Warn().Err(err).Str("room_id", roomID).Msg("History fetch failed.")
		return nil, errs.NewError(errs.ErrHistoryLoad).WithStatus(status)
	}

	now := time.Now()
	messages := make([]chat.Message, 0, len(records))
	for i := range records {
		messages = append(messages, toMessage(&records[i], now))
	}

	chat.SortAscending(messages)

	return messages, nil
}

// toMessage normalizes one history record.
func toMessage(record *messageRecord, receivedAt time.Time) chat.Message {
	msg := chat.Message{
		ID:         record.ID,
		SenderID:   record.SenderID,
		SenderName: record.SenderUsername,
		Timestamp:  chat.ParseTimestamp(record.Timestamp, receivedAt),
		RoomID:     record.ChatRoomID,
	}

	if record.Content != nil {
		msg.Content = *record.Content
	}

	if record.FileURL != "" {
		msg.Attachment = &chat.Attachment{
			URL:      record.FileURL,
			MimeType: record.FileType,
		}
	}

	return msg
}
