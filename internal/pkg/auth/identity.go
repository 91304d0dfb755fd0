/*
Package auth derives the current user's identity from the configured bearer token.

The client never verifies the token signature (it holds no server secret); the
token is attached as-is to every request and handshake, and the identity claims
are only used locally to decide message ownership and display framing. Identity
is passed explicitly into the chat components at construction, never read from
ambient global state.
*/
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt"
)

// Roles a token may carry. The two chat-facing roles are symmetric: they only
// change how the counterpart list is labelled, never the session behavior.
const (
	RoleStudent = "student"
	RoleMentor  = "mentor"
)

// Claims defines the structure of the JWT claims issued by the marketplace backend.
type Claims struct {
	// StandardClaims embeds the JWT standard fields such as Exp and Iat.
	jwt.StandardClaims

	// ID is the unique identifier of the authenticated user.
	ID string `json:"id"`

	// FullName is the display name of the authenticated user.
	FullName string `json:"full_name"`

	// Role is the marketplace role of the token holder ("student" or "mentor").
	Role string `json:"role"`
}

// Identity is the explicit session-identity object handed to the chat
// components. SenderID comparisons against UserID decide own-message framing.
type Identity struct {
	UserID      string
	DisplayName string
	Role        string
}

// FromToken extracts the Identity carried by a bearer token without verifying
// its signature. Signature validation is the server's job on every call this
// token accompanies; locally the claims only drive rendering decisions.
func FromToken(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, errors.New("empty bearer token")
	}

	claims := &Claims{}
	parser := jwt.Parser{}

	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return Identity{}, err
	}

	if claims.ID == "" {
		return Identity{}, errors.New("bearer token carries no user id claim")
	}

	return Identity{
		UserID:      claims.ID,
		DisplayName: claims.FullName,
		Role:        claims.Role,
	}, nil
}

// CounterpartLabel returns the roster heading for the other side of the
// marketplace relative to the given role.
func CounterpartLabel(role string) string {
	switch role {
	case RoleStudent:
		return "Mentors"
	case RoleMentor:
		return "Students"
	default:
		return "Contacts"
	}
}
