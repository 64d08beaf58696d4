package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return raw
}

func TestExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"valid token", signedToken(t, now.Add(time.Hour)), false},
		{"expired token", signedToken(t, now.Add(-time.Hour)), true},
		{"opaque token", "not-a-jwt-at-all", false},
		{"empty token", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(tt.raw, now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadToken_EnvWins(t *testing.T) {
	t.Setenv("KONVO_TOKEN", "env-token")

	tok, err := LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if tok != "env-token" {
		t.Errorf("LoadToken() = %q, want env-token", tok)
	}
}

func TestExpired_NoExpClaim(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "user-1"}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	if Expired(raw, time.Now()) {
		t.Errorf("token without exp claim should not be treated as expired")
	}
}
