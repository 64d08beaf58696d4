package notify

import (
	"log"
	"os/exec"
)

type MessageType string

const (
	ProcessingStarted MessageType = "processing_started"
	ResponseCompleted MessageType = "response_completed"
	ProcessingFailed  MessageType = "processing_failed"
	RecordingStarted  MessageType = "recording_started"
	RecordingStopped  MessageType = "recording_stopped"
	SignedOut         MessageType = "signed_out"
)

// Message is a resolved notification: defaults merged with config overrides.
type Message struct {
	Title   string
	Body    string
	IsError bool
}

// MessageDef declares a notification event, its config key and defaults.
type MessageDef struct {
	Type         MessageType
	ConfigKey    string
	DefaultTitle string
	DefaultBody  string
	IsError      bool
}

var MessageDefs = []MessageDef{
	{Type: ProcessingStarted, ConfigKey: "processing_started", DefaultTitle: "Konvo", DefaultBody: "Processing your message..."},
	{Type: ResponseCompleted, ConfigKey: "response_completed", DefaultTitle: "Konvo", DefaultBody: "Response complete."},
	{Type: ProcessingFailed, ConfigKey: "processing_failed", DefaultTitle: "Konvo", DefaultBody: "Message processing failed.", IsError: true},
	{Type: RecordingStarted, ConfigKey: "recording_started", DefaultTitle: "Konvo", DefaultBody: "Recording started..."},
	{Type: RecordingStopped, ConfigKey: "recording_stopped", DefaultTitle: "Konvo", DefaultBody: "Recording stopped."},
	{Type: SignedOut, ConfigKey: "signed_out", DefaultTitle: "Konvo", DefaultBody: "Session expired, sign in again.", IsError: true},
}

type Notifier interface {
	Notify(t MessageType)
	Error(msg string)
}

// New selects a notifier backend by config type ("desktop", "log", "none").
func New(kind string, messages map[MessageType]Message) Notifier {
	if messages == nil {
		messages = Defaults()
	}
	switch kind {
	case "desktop":
		return Desktop{messages: messages}
	case "log":
		return Logger{messages: messages}
	default:
		return Nop{}
	}
}

// Defaults returns the message table with no config overrides applied.
func Defaults() map[MessageType]Message {
	result := make(map[MessageType]Message, len(MessageDefs))
	for _, def := range MessageDefs {
		result[def.Type] = Message{Title: def.DefaultTitle, Body: def.DefaultBody, IsError: def.IsError}
	}
	return result
}

type Desktop struct {
	messages map[MessageType]Message
}

func (d Desktop) Notify(t MessageType) {
	msg, ok := d.messages[t]
	if !ok {
		return
	}
	args := []string{"-a", "Konvo"}
	if msg.IsError {
		args = append(args, "-u", "critical")
	}
	args = append(args, msg.Title, msg.Body)
	if err := exec.Command("notify-send", args...).Run(); err != nil {
		log.Printf("Notify: failed to send notification: %v", err)
	}
}

func (d Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", "Konvo", "-u", "critical", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Notify: failed to send error notification: %v", err)
	}
}

// Logger writes notifications to the process log.
type Logger struct {
	messages map[MessageType]Message
}

func (l Logger) Notify(t MessageType) {
	if msg, ok := l.messages[t]; ok {
		log.Printf("Notify: %s: %s", msg.Title, msg.Body)
	}
}

func (l Logger) Error(msg string) {
	log.Printf("Notify: error: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Notify(t MessageType) {}
func (Nop) Error(msg string)     {}
