package config

import "time"

// DefaultConfig returns the initial configuration used for onboarding.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:3001",
			Timeout: 30 * time.Second,
		},
		Chat: ChatConfig{
			Voice:  "Kore",
			Locale: "en",
		},
		Recording: RecordingConfig{
			SampleRate:        44100,
			Channels:          1,
			Format:            "s16le",
			BufferSize:        4096,
			Device:            "",
			ChannelBufferSize: 20,
			SettleDelay:       100 * time.Millisecond,
			Timeout:           5 * time.Minute,
		},
		Polling: PollingConfig{
			Interval: time.Second,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "log",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}
