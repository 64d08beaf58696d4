package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/konvohq/konvo/internal/config"
	"github.com/konvohq/konvo/internal/i18n"
	"github.com/muesli/termenv"
)

// ConfigureResult holds the configuration result from the TUI
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// Voices supported by the backend's speech synthesis.
var Voices = []string{"Kore", "Aoede", "Charon"}

// ConfigSection represents a configuration section
type ConfigSection string

const (
	SectionServer        ConfigSection = "server"
	SectionChat          ConfigSection = "chat"
	SectionRecording     ConfigSection = "recording"
	SectionNotifications ConfigSection = "notifications"
	SectionHistory       ConfigSection = "history"
	SectionSaveExit      ConfigSection = "save_exit"
	SectionDiscardExit   ConfigSection = "discard_exit"
)

// Run starts the TUI configuration wizard
func Run(existing *config.Config) (*ConfigureResult, error) {
	cfg := *config.DefaultConfig()
	if existing != nil {
		cfg = *existing
	}

	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(&cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case SectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Println(StyleError.Render(fmt.Sprintf("Invalid configuration: %v", err)))
				waitForEnter()
				continue
			}
			return &ConfigureResult{Config: &cfg, Cancelled: false}, nil

		case SectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case SectionServer:
			if err := editServer(&cfg); err != nil {
				continue
			}

		case SectionChat:
			if err := editChat(&cfg); err != nil {
				continue
			}

		case SectionRecording:
			if err := editRecording(&cfg); err != nil {
				continue
			}

		case SectionNotifications:
			if err := editNotifications(&cfg); err != nil {
				continue
			}

		case SectionHistory:
			if err := editHistory(&cfg); err != nil {
				continue
			}
		}
	}
}

func selectSection(cfg *config.Config) (ConfigSection, error) {
	options := []huh.Option[ConfigSection]{
		huh.NewOption(fmt.Sprintf("Server (%s)", cfg.Server.BaseURL), SectionServer),
		huh.NewOption(fmt.Sprintf("Chat (%s, %s)", cfg.Chat.Voice, cfg.Chat.Locale), SectionChat),
		huh.NewOption("Recording", SectionRecording),
		huh.NewOption(formatNotificationsLabel(cfg), SectionNotifications),
		huh.NewOption(formatHistoryLabel(cfg), SectionHistory),
		huh.NewOption("Save & Exit", SectionSaveExit),
		huh.NewOption("Discard & Exit", SectionDiscardExit),
	}

	var selected ConfigSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[ConfigSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (off)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

func formatHistoryLabel(cfg *config.Config) string {
	if !cfg.History.Enabled {
		return "History (off)"
	}
	return "History (on)"
}

func editServer(cfg *config.Config) error {
	baseURL := cfg.Server.BaseURL
	timeout := cfg.Server.Timeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Address of the conversation backend").
				Placeholder("http://localhost:3001").
				Value(&baseURL),
			huh.NewInput().
				Title("Request timeout").
				Description("e.g. 30s").
				Value(&timeout),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.BaseURL = strings.TrimSpace(baseURL)
	if d, err := time.ParseDuration(strings.TrimSpace(timeout)); err == nil && d > 0 {
		cfg.Server.Timeout = d
	}
	return nil
}

func editChat(cfg *config.Config) error {
	voiceOptions := make([]huh.Option[string], 0, len(Voices))
	for _, v := range Voices {
		voiceOptions = append(voiceOptions, huh.NewOption(v, v))
	}

	localeOptions := make([]huh.Option[string], 0, len(i18n.Locales()))
	for _, l := range i18n.Locales() {
		localeOptions = append(localeOptions, huh.NewOption(l, l))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Response Voice").
				Options(voiceOptions...).
				Value(&cfg.Chat.Voice),
			huh.NewSelect[string]().
				Title("Interface Language").
				Options(localeOptions...).
				Value(&cfg.Chat.Locale),
			huh.NewText().
				Title("System Prompt").
				Description("Optional scenario instructions sent with every turn").
				Value(&cfg.Chat.SystemPrompt),
		),
	).WithTheme(getTheme())

	return form.Run()
}

func editRecording(cfg *config.Config) error {
	device := cfg.Recording.Device
	settle := cfg.Recording.SettleDelay.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Capture Device").
				Description("Leave empty for the system default").
				Value(&device),
			huh.NewInput().
				Title("Settle Delay").
				Description("Wait after stop before upload, e.g. 100ms").
				Value(&settle),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.Device = strings.TrimSpace(device)
	if d, err := time.ParseDuration(strings.TrimSpace(settle)); err == nil && d >= 0 {
		cfg.Recording.SettleDelay = d
	}
	return nil
}

func editNotifications(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Value(&cfg.Notifications.Enabled),
			huh.NewSelect[string]().
				Title("Notification Backend").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Log output", "log"),
					huh.NewOption("None", "none"),
				).
				Value(&cfg.Notifications.Type),
		),
	).WithTheme(getTheme())

	return form.Run()
}

func editHistory(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Keep a local conversation history?").
				Description("Stored in a SQLite database under your cache directory").
				Value(&cfg.History.Enabled),
		),
	).WithTheme(getTheme())

	return form.Run()
}

func waitForEnter() {
	fmt.Print(StyleMuted.Render("Press enter to continue..."))
	fmt.Scanln()
}

// clearScreen clears the terminal screen
func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
