package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/konvohq/konvo/internal/api"
	"github.com/konvohq/konvo/internal/capture"
	"github.com/konvohq/konvo/internal/config"
	"github.com/konvohq/konvo/internal/i18n"
	"github.com/konvohq/konvo/internal/notify"
	"github.com/konvohq/konvo/internal/pipeline"
	"github.com/konvohq/konvo/internal/playback"
	"github.com/konvohq/konvo/internal/tui"
	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <session-id> <text...>",
		Short: "Send a text turn and wait for the response",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			notifier := cfg.Notifier()
			client, err := buildClient(cfg, notifier)
			if err != nil {
				return err
			}

			hist := openHistory(cfg)
			if hist != nil {
				defer hist.Close()
			}

			conv := pipeline.NewConversation(args[0])
			text := strings.Join(args[1:], " ")

			msg, err := runTurn(cmd.Context(), client, conv, notifier, cfg, func(f *pipeline.Flow) (string, error) {
				return f.SubmitText(cmd.Context(), text)
			})
			if err != nil {
				return err
			}

			fmt.Println(tui.RenderMessage(msg))
			cacheMessage(cmd.Context(), hist, msg)

			if msg.ProcessingStatus == api.StatusError {
				return fmt.Errorf("%s", i18n.T("message.failed", "The message could not be processed."))
			}
			return nil
		},
	}
}

func recordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <session-id>",
		Short: "Record a voice turn and wait for the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			notifier := cfg.Notifier()
			client, err := buildClient(cfg, notifier)
			if err != nil {
				return err
			}

			hist := openHistory(cfg)
			if hist != nil {
				defer hist.Close()
			}

			audio, err := recordAudio(cmd.Context(), cfg, notifier)
			if err != nil {
				return err
			}

			conv := pipeline.NewConversation(args[0])
			msg, err := runTurn(cmd.Context(), client, conv, notifier, cfg, func(f *pipeline.Flow) (string, error) {
				return f.SubmitAudio(cmd.Context(), audio)
			})
			if err != nil {
				return err
			}

			fmt.Println(tui.RenderMessage(msg))
			cacheMessage(cmd.Context(), hist, msg)

			if msg.ProcessingStatus == api.StatusError {
				return fmt.Errorf("%s", i18n.T("message.failed", "The message could not be processed."))
			}
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <session-id>",
		Short: "Interactive conversation with voice and text turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if err := manager.StartWatching(cmd.Context()); err != nil {
				return fmt.Errorf("watch configuration: %w", err)
			}
			defer manager.Stop()

			cfg := manager.GetConfig()
			notifier := cfg.Notifier()
			client, err := buildClient(cfg, notifier)
			if err != nil {
				return err
			}

			hist := openHistory(cfg)
			if hist != nil {
				defer hist.Close()
			}

			conv := pipeline.NewConversation(args[0])
			player := playback.New(client.ResolveURL)
			defer player.Stop()

			// Seed with existing history.
			data, err := client.GetSession(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("session.load_failed", "Could not load sessions"), err)
			}
			conv.Replace(data.Messages)
			cacheSession(cmd.Context(), hist, data.Session)

			fmt.Println(tui.StyleHeader.Render(data.Session.Title))
			for _, msg := range data.Messages {
				fmt.Println(tui.RenderMessage(msg))
			}
			fmt.Println(tui.StyleMuted.Render(i18n.T("chat.help", "Type a message, or /mic to speak, /play to hear the last reply, /quit to leave.")))

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print(tui.StyleHighlight.Render("> "))
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())

				switch {
				case line == "/quit" || line == "/q":
					return nil

				case line == "/play":
					playLast(cmd.Context(), player, conv)
					continue

				case line == "/mic":
					cfg = manager.GetConfig()
					audio, err := recordAudio(cmd.Context(), cfg, notifier)
					if err != nil {
						fmt.Println(tui.StyleError.Render(err.Error()))
						continue
					}
					msg, err := runTurn(cmd.Context(), client, conv, notifier, cfg, func(f *pipeline.Flow) (string, error) {
						return f.SubmitAudio(cmd.Context(), audio)
					})
					if err != nil {
						fmt.Println(tui.StyleError.Render(err.Error()))
						continue
					}
					fmt.Println(tui.RenderMessage(msg))
					cacheMessage(cmd.Context(), hist, msg)

				case line == "":
					continue

				default:
					cfg = manager.GetConfig()
					msg, err := runTurn(cmd.Context(), client, conv, notifier, cfg, func(f *pipeline.Flow) (string, error) {
						return f.SubmitText(cmd.Context(), line)
					})
					if err != nil {
						fmt.Println(tui.StyleError.Render(err.Error()))
						continue
					}
					fmt.Println(tui.RenderMessage(msg))
					cacheMessage(cmd.Context(), hist, msg)
				}
			}
		},
	}
}

// runTurn submits one turn through a fresh Flow over the shared conversation
// and blocks until it reaches a terminal status.
func runTurn(ctx context.Context, client *api.Client, conv *pipeline.Conversation, notifier notify.Notifier, cfg *config.Config, submit func(*pipeline.Flow) (string, error)) (api.Message, error) {
	var lastStatus api.Status
	flow := pipeline.New(client, conv, notifier,
		pipeline.WithInterval(cfg.Polling.Interval),
		pipeline.WithTurnOptions(turnOptions(cfg)),
		pipeline.WithUpdateHook(func(msg api.Message) {
			if msg.ProcessingStatus != lastStatus {
				lastStatus = msg.ProcessingStatus
				fmt.Println(tui.StatusBadge(msg.ProcessingStatus))
			}
		}),
	)

	id, err := submit(flow)
	if err != nil {
		return api.Message{}, err
	}
	flow.Wait()

	for _, msg := range conv.Messages() {
		if msg.ID == id {
			return msg, nil
		}
	}
	return api.Message{}, fmt.Errorf("message %s vanished from the conversation", id)
}

// recordAudio negotiates microphone access, records until Enter (or the
// configured timeout), and returns the captured bytes after the settle
// delay.
func recordAudio(ctx context.Context, cfg *config.Config, notifier notify.Notifier) ([]byte, error) {
	support := capture.Probe()
	engine := capture.NewPipeWireEngine()

	res := capture.RequestAccess(ctx, support, cfg.Server.BaseURL, engine, captureConfig(cfg))
	if !res.Granted {
		return nil, fmt.Errorf("%s", res.Message)
	}

	session := capture.NewSession(ctx, engine, captureConfig(cfg), nil, func() {
		notifier.Notify(notify.RecordingStopped)
	})
	if session == nil {
		return nil, fmt.Errorf("%s", i18n.T("capture.init_failed", "Could not start audio capture."))
	}

	if err := session.Start(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", i18n.T("capture.init_failed", "Could not start audio capture."), err)
	}
	notifier.Notify(notify.RecordingStarted)
	fmt.Println(tui.StyleHighlight.Render(i18n.T("capture.started", "Recording... press Enter to stop.")))

	enter := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()

	select {
	case <-enter:
	case <-time.After(cfg.Recording.Timeout):
		fmt.Println(tui.StyleWarning.Render(i18n.T("capture.timeout", "Recording timeout reached.")))
	case <-ctx.Done():
		session.Stop()
		return nil, ctx.Err()
	}

	session.Stop()
	fmt.Println(tui.StyleMuted.Render(i18n.T("capture.stopped", "Recording stopped.")))

	// Let the backend settle the stream before upload.
	time.Sleep(cfg.Recording.SettleDelay)

	audio := session.Bytes()
	if len(audio) == 0 {
		return nil, fmt.Errorf("%s", i18n.T("submit.empty", "Nothing to send."))
	}
	return audio, nil
}

// playLast plays the newest completed reply that has audio.
func playLast(ctx context.Context, player *playback.Player, conv *pipeline.Conversation) {
	messages := conv.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.AIAudioURL != "" && msg.ProcessingStatus == api.StatusCompleted {
			if err := player.Play(ctx, msg.ID, msg.AIAudioURL); err != nil {
				fmt.Println(tui.StyleError.Render(i18n.T("playback.failed", "Could not play the audio.") + " " + err.Error()))
			}
			return
		}
	}
	fmt.Println(tui.StyleMuted.Render(i18n.T("playback.none", "No audio reply to play yet.")))
}
