package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/konvohq/konvo/internal/api"
	"github.com/konvohq/konvo/internal/auth"
	"github.com/konvohq/konvo/internal/capture"
	"github.com/konvohq/konvo/internal/config"
	"github.com/konvohq/konvo/internal/i18n"
	"github.com/konvohq/konvo/internal/notify"
	"github.com/konvohq/konvo/internal/store"
)

// buildClient wires the API client with auth and the forced sign-out hook.
func buildClient(cfg *config.Config, notifier notify.Notifier) (*api.Client, error) {
	if tok, err := auth.LoadToken(); err == nil && auth.Expired(tok, time.Now()) {
		auth.SignOut()
		return nil, fmt.Errorf("%s", i18n.T("auth.signed_out", "Your session expired. Please sign in again."))
	}

	client := api.New(cfg.Server.BaseURL,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithTokenSource(auth.LoadToken),
		api.WithUnauthorizedHook(func() {
			auth.SignOut()
			notifier.Notify(notify.SignedOut)
			log.Printf("Auth: %s", i18n.T("auth.signed_out", "Your session expired. Please sign in again."))
		}),
	)
	return client, nil
}

// captureConfig maps the recording section onto the engine config.
func captureConfig(cfg *config.Config) capture.Config {
	return capture.Config{
		SampleRate:        cfg.Recording.SampleRate,
		Channels:          cfg.Recording.Channels,
		Format:            cfg.Recording.Format,
		BufferSize:        cfg.Recording.BufferSize,
		Device:            cfg.Recording.Device,
		ChannelBufferSize: cfg.Recording.ChannelBufferSize,
	}
}

func turnOptions(cfg *config.Config) api.TurnOptions {
	return api.TurnOptions{
		SystemPrompt: cfg.Chat.SystemPrompt,
		VoiceName:    cfg.Chat.Voice,
	}
}

// openHistory opens the local cache, or returns nil when history is off.
// A broken cache never blocks a command.
func openHistory(cfg *config.Config) *store.Store {
	if !cfg.History.Enabled {
		return nil
	}
	path := cfg.History.Path
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			log.Printf("History: no cache directory: %v", err)
			return nil
		}
		path = filepath.Join(dir, "konvo", "history.db")
	}
	s, err := store.Open(path)
	if err != nil {
		log.Printf("History: open failed, continuing without cache: %v", err)
		return nil
	}
	return s
}

// cacheMessage records a message in the local history, best effort.
func cacheMessage(ctx context.Context, hist *store.Store, msg api.Message) {
	if hist == nil {
		return
	}
	if err := hist.UpsertMessage(ctx, msg); err != nil {
		log.Printf("History: cache message: %v", err)
	}
}

func cacheSession(ctx context.Context, hist *store.Store, sess api.Session) {
	if hist == nil {
		return
	}
	if err := hist.UpsertSession(ctx, sess); err != nil {
		log.Printf("History: cache session: %v", err)
	}
}
