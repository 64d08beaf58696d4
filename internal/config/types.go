package config

import (
	"reflect"
	"time"

	"github.com/konvohq/konvo/internal/notify"
)

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Chat          ChatConfig          `toml:"chat"`
	Recording     RecordingConfig     `toml:"recording"`
	Polling       PollingConfig       `toml:"polling"`
	Notifications NotificationsConfig `toml:"notifications"`
	History       HistoryConfig       `toml:"history"`
}

// ServerConfig points the client at the hosted conversation backend.
type ServerConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// ChatConfig carries the per-turn options sent with every message.
type ChatConfig struct {
	Voice        string `toml:"voice"`
	SystemPrompt string `toml:"system_prompt"`
	Locale       string `toml:"locale"`
}

type RecordingConfig struct {
	SampleRate        int           `toml:"sample_rate"`
	Channels          int           `toml:"channels"`
	Format            string        `toml:"format"`
	BufferSize        int           `toml:"buffer_size"`
	Device            string        `toml:"device"`
	ChannelBufferSize int           `toml:"channel_buffer_size"`
	SettleDelay       time.Duration `toml:"settle_delay"`
	Timeout           time.Duration `toml:"timeout"`
}

// PollingConfig controls the message status poll loop.
type PollingConfig struct {
	Interval time.Duration `toml:"interval"`
}

type NotificationsConfig struct {
	Enabled  bool           `toml:"enabled"`
	Type     string         `toml:"type"` // "desktop", "log", "none"
	Messages MessagesConfig `toml:"messages"`
}

type MessageConfig struct {
	Title string `toml:"title"`
	Body  string `toml:"body"`
}

type MessagesConfig struct {
	ProcessingStarted MessageConfig `toml:"processing_started"`
	ResponseCompleted MessageConfig `toml:"response_completed"`
	ProcessingFailed  MessageConfig `toml:"processing_failed"`
	RecordingStarted  MessageConfig `toml:"recording_started"`
	RecordingStopped  MessageConfig `toml:"recording_stopped"`
	SignedOut         MessageConfig `toml:"signed_out"`
}

// HistoryConfig controls the local sqlite conversation cache.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // empty = default cache dir
}

// Resolve merges user config with defaults from notify.MessageDefs
func (m *MessagesConfig) Resolve() map[notify.MessageType]notify.Message {
	result := make(map[notify.MessageType]notify.Message)

	v := reflect.ValueOf(m).Elem()
	t := v.Type()
	tagToField := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		tagToField[t.Field(i).Tag.Get("toml")] = i
	}

	for _, def := range notify.MessageDefs {
		msg := notify.Message{
			Title:   def.DefaultTitle,
			Body:    def.DefaultBody,
			IsError: def.IsError,
		}
		if idx, ok := tagToField[def.ConfigKey]; ok {
			userMsg := v.Field(idx).Interface().(MessageConfig)
			if userMsg.Title != "" {
				msg.Title = userMsg.Title
			}
			if userMsg.Body != "" {
				msg.Body = userMsg.Body
			}
		}
		result[def.Type] = msg
	}
	return result
}

// Notifier builds the configured notifier backend.
func (c *Config) Notifier() notify.Notifier {
	if !c.Notifications.Enabled {
		return notify.Nop{}
	}
	return notify.New(c.Notifications.Type, c.Notifications.Messages.Resolve())
}
