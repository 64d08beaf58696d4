package main

import (
	"fmt"
	"strings"

	"github.com/konvohq/konvo/internal/config"
	"github.com/konvohq/konvo/internal/i18n"
	"github.com/konvohq/konvo/internal/tui"
	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage conversation sessions",
	}
	cmd.AddCommand(
		sessionsListCmd(),
		sessionsNewCmd(),
		sessionsDeleteCmd(),
		sessionsShowCmd(),
	)
	return cmd
}

func sessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			client, err := buildClient(cfg, cfg.Notifier())
			if err != nil {
				return err
			}

			sessions, err := client.ListSessions(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("session.load_failed", "Could not load sessions"), err)
			}

			if len(sessions) == 0 {
				fmt.Println(tui.StyleMuted.Render("No sessions yet. Create one with: konvo sessions new"))
				return nil
			}

			hist := openHistory(cfg)
			if hist != nil {
				defer hist.Close()
			}
			for _, sess := range sessions {
				fmt.Println(tui.RenderSessionLine(sess, false))
				cacheSession(cmd.Context(), hist, sess)
			}
			return nil
		},
	}
}

func sessionsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [title...]",
		Short: "Create a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			client, err := buildClient(cfg, cfg.Notifier())
			if err != nil {
				return err
			}

			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				title = i18n.T("session.default_title", "New conversation")
			}

			sess, err := client.CreateSession(cmd.Context(), title)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			hist := openHistory(cfg)
			if hist != nil {
				defer hist.Close()
				cacheSession(cmd.Context(), hist, sess)
			}

			fmt.Println(tui.StyleSuccess.Render(i18n.T("session.created", "Session created: ")) + sess.ID)
			return nil
		},
	}
}

func sessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			client, err := buildClient(cfg, cfg.Notifier())
			if err != nil {
				return err
			}

			if err := client.DeleteSession(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}

			if hist := openHistory(cfg); hist != nil {
				defer hist.Close()
				if err := hist.DeleteSession(cmd.Context(), args[0]); err != nil {
					fmt.Println(tui.StyleWarning.Render(fmt.Sprintf("history cleanup failed: %v", err)))
				}
			}

			fmt.Println(tui.StyleSuccess.Render(i18n.T("session.deleted", "Session deleted.")))
			return nil
		},
	}
}

func sessionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			client, err := buildClient(cfg, cfg.Notifier())
			if err != nil {
				return err
			}

			data, err := client.GetSession(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("session.load_failed", "Could not load sessions"), err)
			}

			fmt.Println(tui.StyleHeader.Render(data.Session.Title))

			hist := openHistory(cfg)
			if hist != nil {
				defer hist.Close()
				cacheSession(cmd.Context(), hist, data.Session)
			}
			for _, msg := range data.Messages {
				fmt.Println(tui.RenderMessage(msg))
				cacheMessage(cmd.Context(), hist, msg)
			}
			return nil
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [session-id]",
		Short: "Browse the local conversation cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()
			if !cfg.History.Enabled {
				return fmt.Errorf("history cache is disabled; enable it with konvo configure")
			}
			hist := openHistory(cfg)
			if hist == nil {
				return fmt.Errorf("history cache could not be opened")
			}
			defer hist.Close()

			if len(args) == 0 {
				sessions, err := hist.ListSessions(cmd.Context())
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Println(tui.StyleMuted.Render("No cached sessions."))
					return nil
				}
				for _, sess := range sessions {
					fmt.Println(tui.RenderSessionLine(sess, false))
				}
				return nil
			}

			messages, err := hist.MessagesForSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				fmt.Println(tui.StyleMuted.Render("No cached messages for this session."))
				return nil
			}
			for _, msg := range messages {
				fmt.Println(tui.RenderMessage(msg))
			}
			return nil
		},
	}
}
