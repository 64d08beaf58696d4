package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/konvohq/konvo/internal/config"
	"github.com/konvohq/konvo/internal/i18n"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Optional .env in the working directory; absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "konvo",
	Short:         "Voice conversation practice from your terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadOrDefault()
		i18n.SetLocale(cfg.Chat.Locale)
	},
}

func init() {
	rootCmd.AddCommand(
		configureCmd(),
		sessionsCmd(),
		sendCmd(),
		recordCmd(),
		chatCmd(),
		doctorCmd(),
		historyCmd(),
		loginCmd(),
		logoutCmd(),
		versionCmd(),
	)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the konvo version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("konvo " + version)
		},
	}
}
