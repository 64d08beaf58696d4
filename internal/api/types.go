package api

import "time"

// Status is the backend pipeline stage a message has reached.
// Progression is ordered but not strict: pending → stt_processing →
// llm_processing → tts_processing → completed, with error reachable from
// any non-terminal stage.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSTT       Status = "stt_processing"
	StatusLLM       Status = "llm_processing"
	StatusTTS       Status = "tts_processing"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Terminal reports whether polling for a message should stop.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Session is the backend's conversation container. The client holds a
// read-only projection.
type Session struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is one user turn plus its evolving AI response. Fields fill in
// incrementally while the backend pipeline runs; re-fetching the same id
// returns the full current projection.
type Message struct {
	ID               string    `json:"_id"`
	SessionID        string    `json:"sessionId"`
	UserAudioURL     string    `json:"userAudioUrl"`
	UserText         string    `json:"userTextFromSTT"`
	AIResponseText   string    `json:"aiResponseText"`
	AIAudioURL       string    `json:"aiAudioUrl"`
	ProcessingStatus Status    `json:"processingStatus"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type SessionWithMessages struct {
	Session  Session   `json:"session"`
	Messages []Message `json:"messages"`
}

// TurnOptions are the optional per-turn settings sent with a submission.
type TurnOptions struct {
	SystemPrompt string
	VoiceName    string
}
