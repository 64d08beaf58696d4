package config

import (
	"fmt"
	"net/url"

	"github.com/konvohq/konvo/internal/i18n"
)

func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("invalid server.base_url: empty")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid server.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("invalid server.timeout: %v", c.Server.Timeout)
	}

	if c.Chat.Locale != "" && !i18n.IsValidLocale(c.Chat.Locale) {
		return fmt.Errorf("invalid chat.locale: %s (supported: en, ko)", c.Chat.Locale)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}
	if c.Recording.Timeout <= 0 {
		return fmt.Errorf("invalid recording.timeout: %v", c.Recording.Timeout)
	}

	if c.Polling.Interval <= 0 {
		return fmt.Errorf("invalid polling.interval: %v", c.Polling.Interval)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true, "": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}
