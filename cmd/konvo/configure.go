package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/konvohq/konvo/internal/auth"
	"github.com/konvohq/konvo/internal/config"
	"github.com/konvohq/konvo/internal/tui"
	"github.com/spf13/cobra"
)

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := tui.Run(config.LoadOrDefault())
			if err != nil {
				return fmt.Errorf("configuration wizard: %w", err)
			}
			if result.Cancelled {
				fmt.Println(tui.StyleMuted.Render("Configuration unchanged."))
				return nil
			}

			if err := config.Save(result.Config); err != nil {
				return fmt.Errorf("save configuration: %w", err)
			}

			path, _ := config.GetConfigPath()
			fmt.Println(tui.StyleSuccess.Render("Configuration saved to " + path))
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the API token for backend access",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(tokenFlag)
			if token == "" {
				fmt.Print("Paste your API token: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return fmt.Errorf("no token provided")
			}

			if err := auth.SaveToken(token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Println(tui.StyleSuccess.Render("Signed in."))
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenFlag, "token", "", "API token (read from stdin if omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		Run: func(cmd *cobra.Command, args []string) {
			auth.SignOut()
			fmt.Println(tui.StyleMuted.Render("Signed out."))
		},
	}
}
