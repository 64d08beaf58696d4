package main

import (
	"fmt"

	"github.com/konvohq/konvo/internal/auth"
	"github.com/konvohq/konvo/internal/capture"
	"github.com/konvohq/konvo/internal/config"
	"github.com/konvohq/konvo/internal/tui"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check audio capabilities and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault()

			fmt.Println(tui.StyleHeader.Render("konvo doctor"))

			support := capture.Probe()
			fmt.Printf("Platform:  %s\n", support.Platform)
			fmt.Printf("Recorder:  %s\n", checkMark(support.HasRecorder, support.Recorder, "none found"))
			fmt.Printf("Player:    %s\n", checkMark(support.HasPlayer, support.Player, "none found"))
			if !support.Supported {
				fmt.Println(tui.StyleWarning.Render("  " + support.Reason))
			}

			engine := capture.NewPipeWireEngine()
			if err := engine.Available(cmd.Context()); err != nil {
				fmt.Printf("PipeWire:  %s\n", tui.StyleError.Render(fmt.Sprintf("✗ %v", err)))
			} else {
				fmt.Printf("PipeWire:  %s\n", tui.StyleSuccess.Render("✓ running"))
			}

			if err := cfg.Validate(); err != nil {
				fmt.Printf("Config:    %s\n", tui.StyleError.Render(fmt.Sprintf("✗ %v", err)))
			} else {
				fmt.Printf("Config:    %s (%s)\n", tui.StyleSuccess.Render("✓ valid"), cfg.Server.BaseURL)
			}

			if _, err := auth.LoadToken(); err != nil {
				fmt.Printf("Auth:      %s\n", tui.StyleWarning.Render("✗ not signed in"))
			} else {
				fmt.Printf("Auth:      %s\n", tui.StyleSuccess.Render("✓ token present"))
			}

			return nil
		},
	}
}

func checkMark(ok bool, good, bad string) string {
	if ok {
		return tui.StyleSuccess.Render("✓ " + good)
	}
	return tui.StyleError.Render("✗ " + bad)
}
