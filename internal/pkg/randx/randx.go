/*
Package randx provides identifier generation and validation helpers.

It generates UUID identifiers for locally created messages (optimistic echoes
of the user's own sends) and validates the opaque room identifiers shared
between the history endpoint and the live transport endpoint.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

// RoomIDChars defines the characters accepted in an opaque room identifier
// (URL-safe: digits, letters, hyphen, underscore).
const RoomIDChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// MaxRoomIDLength is the upper bound accepted for a room identifier.
const MaxRoomIDLength = 64

// LocalMessageID generates a standard UUID v4 string to identify a message
// created locally before the server has assigned it a durable id.
func LocalMessageID() string {
	return uuid.New().String()
}

// IsValidRoomID checks whether the given string is acceptable as a room identifier.
// Room ids are opaque tokens minted by the server; the client only rejects values
// that cannot appear in a URL path segment.
func IsValidRoomID(id string) bool {
	if id == "" || len(id) > MaxRoomIDLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(RoomIDChars, char) {
			return false
		}
	}

	return true
}
