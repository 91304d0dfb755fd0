package auth

import (
	"testing"

	"github.com/golang-jwt/jwt"
)

func signedToken(t *testing.T, claims Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestFromToken(t *testing.T) {
	tokenString := signedToken(t, Claims{
		ID:       "u42",
		FullName: "Maya Mentor",
		Role:     RoleMentor,
	})

	identity, err := FromToken(tokenString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if identity.UserID != "u42" {
		t.Errorf("UserID = %q, want u42", identity.UserID)
	}
	if identity.DisplayName != "Maya Mentor" {
		t.Errorf("DisplayName = %q, want Maya Mentor", identity.DisplayName)
	}
	if identity.Role != RoleMentor {
		t.Errorf("Role = %q, want %q", identity.Role, RoleMentor)
	}
}

// The client holds no signing secret, so a token signed with any key parses.
func TestFromTokenIgnoresSignature(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "u1"})
	signed, err := token.SignedString([]byte("a-key-the-client-never-sees"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}

	if _, err := FromToken(signed); err != nil {
		t.Errorf("unverified parse must succeed regardless of key, got %v", err)
	}
}

func TestFromTokenEmpty(t *testing.T) {
	if _, err := FromToken(""); err == nil {
		t.Error("empty token must be rejected")
	}
}

func TestFromTokenMalformed(t *testing.T) {
	if _, err := FromToken("not.a.jwt"); err == nil {
		t.Error("malformed token must be rejected")
	}
}

func TestFromTokenMissingUserID(t *testing.T) {
	tokenString := signedToken(t, Claims{FullName: "Nameless"})

	if _, err := FromToken(tokenString); err == nil {
		t.Error("token without an id claim must be rejected")
	}
}

func TestCounterpartLabel(t *testing.T) {
	cases := []struct {
		role string
		want string
	}{
		{RoleStudent, "Mentors"},
		{RoleMentor, "Students"},
		{"admin", "Contacts"},
		{"", "Contacts"},
	}

	for _, tc := range cases {
		if got := CounterpartLabel(tc.role); got != tc.want {
			t.Errorf("CounterpartLabel(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}
