package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateSession creates a new conversation container on the backend.
func (c *Client) CreateSession(ctx context.Context, title string) (Session, error) {
	var resp struct {
		Success bool    `json:"success"`
		Data    Session `json:"data"`
	}
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, "/api/audio/sessions", body, &resp); err != nil {
		return Session{}, err
	}
	if !resp.Success {
		return Session{}, fmt.Errorf("create session: backend reported failure")
	}
	return resp.Data, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var resp struct {
		Success bool      `json:"success"`
		Data    []Session `json:"data"`
		Count   int       `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/audio/sessions", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("list sessions: backend reported failure")
	}
	return resp.Data, nil
}

// GetSession fetches a session together with its full message history.
func (c *Client) GetSession(ctx context.Context, sessionID string) (SessionWithMessages, error) {
	var resp struct {
		Success bool                `json:"success"`
		Data    SessionWithMessages `json:"data"`
	}
	path := "/api/audio/sessions/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return SessionWithMessages{}, err
	}
	if !resp.Success {
		return SessionWithMessages{}, fmt.Errorf("get session %s: backend reported failure", sessionID)
	}
	return resp.Data, nil
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	path := "/api/audio/sessions/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("delete session %s: backend reported failure", sessionID)
	}
	return nil
}
