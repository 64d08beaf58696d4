package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type submitResponse struct {
	Success bool `json:"success"`
	Data    struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// SubmitAudio sends a finished recording for processing. The payload is
// base64-encoded into the JSON body; binary uploads are not part of this
// API's design. Returns the backend's message id.
func (c *Client) SubmitAudio(ctx context.Context, sessionID string, audio []byte, opts TurnOptions) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("submit audio: empty recording")
	}

	body := map[string]string{
		"userAudioData": base64.StdEncoding.EncodeToString(audio),
	}
	if opts.SystemPrompt != "" {
		body["systemPrompt"] = opts.SystemPrompt
	}
	if opts.VoiceName != "" {
		body["voiceName"] = opts.VoiceName
	}

	var resp submitResponse
	path := "/api/audio/sessions/" + url.PathEscape(sessionID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Data.MessageID == "" {
		return "", fmt.Errorf("submit audio: backend reported failure")
	}
	return resp.Data.MessageID, nil
}

// SubmitText sends a typed turn. Text is trimmed; the caller is expected to
// reject empty input before reaching the network.
func (c *Client) SubmitText(ctx context.Context, sessionID, text string, opts TurnOptions) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("submit text: empty message")
	}

	body := map[string]string{"userText": text}
	if opts.SystemPrompt != "" {
		body["systemPrompt"] = opts.SystemPrompt
	}
	if opts.VoiceName != "" {
		body["voiceName"] = opts.VoiceName
	}

	var resp submitResponse
	path := "/api/audio/sessions/" + url.PathEscape(sessionID) + "/text-messages"
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Data.MessageID == "" {
		return "", fmt.Errorf("submit text: backend reported failure")
	}
	return resp.Data.MessageID, nil
}

// GetMessageStatus fetches the full current projection of a message.
func (c *Client) GetMessageStatus(ctx context.Context, messageID string) (Message, error) {
	var resp struct {
		Success bool    `json:"success"`
		Data    Message `json:"data"`
	}
	path := "/api/audio/messages/" + url.PathEscape(messageID) + "/status"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Message{}, err
	}
	if !resp.Success {
		return Message{}, fmt.Errorf("message status %s: backend reported failure", messageID)
	}
	return resp.Data, nil
}
