package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var ErrConfigNotFound = errors.New("config not found")

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	konvoDir := filepath.Join(configDir, "konvo")
	if err := os.MkdirAll(konvoDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(konvoDir, "config.toml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: run konvo configure", ErrConfigNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Printf("Config: loading configuration from %s", configPath)
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	config.applyDefaults()
	config.applyEnvOverrides()

	log.Printf("Config: configuration loaded successfully")
	return &config, nil
}

// LoadOrDefault falls back to defaults (plus env overrides) when no config
// file exists yet, so read-only commands work before onboarding.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		cfg = DefaultConfig()
		cfg.applyEnvOverrides()
	}
	return cfg
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", configPath, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// applyDefaults fills zero values left by sparse config files.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Timeout <= 0 {
		c.Server.Timeout = def.Server.Timeout
	}
	if c.Chat.Voice == "" {
		c.Chat.Voice = def.Chat.Voice
	}
	if c.Chat.Locale == "" {
		c.Chat.Locale = def.Chat.Locale
	}
	if c.Recording.SampleRate <= 0 {
		c.Recording.SampleRate = def.Recording.SampleRate
	}
	if c.Recording.Channels <= 0 {
		c.Recording.Channels = def.Recording.Channels
	}
	if c.Recording.Format == "" {
		c.Recording.Format = def.Recording.Format
	}
	if c.Recording.BufferSize <= 0 {
		c.Recording.BufferSize = def.Recording.BufferSize
	}
	if c.Recording.ChannelBufferSize <= 0 {
		c.Recording.ChannelBufferSize = def.Recording.ChannelBufferSize
	}
	if c.Recording.SettleDelay <= 0 {
		c.Recording.SettleDelay = def.Recording.SettleDelay
	}
	if c.Recording.Timeout <= 0 {
		c.Recording.Timeout = def.Recording.Timeout
	}
	if c.Polling.Interval <= 0 {
		c.Polling.Interval = def.Polling.Interval
	}
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("KONVO_SERVER_URL"); url != "" {
		c.Server.BaseURL = url
	}
}
