package auth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotSignedIn = errors.New("not signed in")

const tokenFileName = "token"

// ~/.cache/konvo/token
func TokenPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "konvo", tokenFileName), nil
}

// LoadToken returns the bearer token for API calls. The KONVO_TOKEN
// environment variable wins over the token file.
func LoadToken() (string, error) {
	if tok := strings.TrimSpace(os.Getenv("KONVO_TOKEN")); tok != "" {
		return tok, nil
	}

	path, err := TokenPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: set KONVO_TOKEN or run konvo configure", ErrNotSignedIn)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", fmt.Errorf("%w: token file is empty", ErrNotSignedIn)
	}
	return tok, nil
}

func SaveToken(token string) error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.TrimSpace(token)+"\n"), 0o600)
}

// SignOut removes the stored token. Called on 401 responses so the next
// command asks the user to sign in again.
func SignOut() {
	path, err := TokenPath()
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Auth: failed to remove token file: %v", err)
	}
}

// Expired inspects a JWT's exp claim without verifying the signature
// (verification is the backend's job). Opaque tokens never expire locally.
func Expired(raw string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.After(claims.ExpiresAt.Time)
}
