package api

import (
	"context"

	"mentorchat/internal/app/chat"
	"mentorchat/internal/pkg/errs"
)

// counterpartRecord is the embedded profile of the other party in a
// connection.
type counterpartRecord struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Email          string `json:"email"`
}

// connectionRecord is one accepted mentorship connection with its chat room.
type connectionRecord struct {
	ChatRoomID  string            `json:"chat_room_id"`
	Counterpart counterpartRecord `json:"counterpart"`
}

// ListRooms fetches the counterpart directory. The order is kept exactly as
// the remote directory returned it; the client does not re-sort.
func (c *Client) ListRooms(ctx context.Context) ([]chat.Room, *errs.CustomError) {
	var records []connectionRecord
	status, err := c.getJSON(ctx, "/api/chat/connections", &records)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Roster fetch failed.")
		return nil, errs.NewError(errs.ErrRosterLoad).WithStatus(status)
	}

	rooms := make([]chat.Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, chat.Room{
			RoomID: record.ChatRoomID,
			Counterpart: chat.Counterpart{
				ID:          record.Counterpart.ID,
				DisplayName: record.Counterpart.FullName,
				AvatarURL:   record.Counterpart.ProfilePicture,
				Email:       record.Counterpart.Email,
			},
		})
	}

	return rooms, nil
}
