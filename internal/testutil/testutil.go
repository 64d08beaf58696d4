package testutil

import (
	"testing"
	"time"

	"github.com/konvohq/konvo/internal/config"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL: "http://localhost:3001",
			Timeout: 30 * time.Second,
		},
		Chat: config.ChatConfig{
			Voice:  "Kore",
			Locale: "en",
		},
		Recording: config.RecordingConfig{
			SampleRate:        44100,
			Channels:          1,
			Format:            "s16le",
			BufferSize:        4096,
			Device:            "",
			ChannelBufferSize: 20,
			SettleDelay:       100 * time.Millisecond,
			Timeout:           5 * time.Minute,
		},
		Polling: config.PollingConfig{
			Interval: time.Second,
		},
		Notifications: config.NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
		History: config.HistoryConfig{
			Enabled: false,
		},
	}
}

// TestConfigWithInvalidValues returns a config with invalid values for testing validation
func TestConfigWithInvalidValues() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL: "not a url", // Invalid
		},
		Chat: config.ChatConfig{
			Locale: "xx", // Invalid
		},
		Recording: config.RecordingConfig{
			SampleRate: 0, // Invalid
			Channels:   0, // Invalid
			BufferSize: 0, // Invalid
		},
		Polling: config.PollingConfig{
			Interval: 0, // Invalid
		},
	}
}

// WaitForCondition polls until the condition holds or the timeout elapses.
func WaitForCondition(t *testing.T, timeout time.Duration, cond func() bool, desc string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}
