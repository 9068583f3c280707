package cmd

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sovahealth/courier/internal/auth"
	"github.com/sovahealth/courier/internal/config"
	"github.com/sovahealth/courier/internal/conversation"
	"github.com/sovahealth/courier/internal/models"
	"github.com/sovahealth/courier/internal/portal"
	"github.com/sovahealth/courier/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "courier",
	Short: "Terminal messaging client for the patient portal",
	Long: `Courier is a terminal client for clinicians to read and answer
patient messages on the portal. Run it with no arguments to open the
interactive view; run "courier login" first to store a session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openLogger writes structured logs to the configured file. The TUI owns
// the terminal, so nothing ever logs to stdout or stderr while it runs.
func openLogger(path string) zerolog.Logger {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return zerolog.New(io.Discard)
	}
	return zerolog.New(f).With().Timestamp().Logger()
}

func runApp() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := openLogger(cfg.LogFile)

	session, err := auth.LoadSession()
	if err != nil {
		return err
	}

	claims, err := auth.DecodeClaims(session.Token)
	if err != nil {
		return fmt.Errorf("stored session is unusable: %w; run `courier login`", err)
	}
	if claims.Expired() {
		return fmt.Errorf("session expired: run `courier login`")
	}

	baseURL := session.BaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	if baseURL == "" {
		return fmt.Errorf("no portal URL: set base_url in ~/.courier/config.yml or sign in again with `courier login --url`")
	}

	viewerID := models.ID(claims.Subject)
	client := portal.NewClient(baseURL, session.Token, viewerID, cfg.HTTPTimeout, log)
	engine := conversation.NewEngine(viewerID)

	app := &ui.App{
		Client:       client,
		Engine:       engine,
		PollInterval: cfg.PollInterval,
		MessageLimit: cfg.MessageLimit,
		ViewerName:   claims.Name,
		Log:          log,
	}

	log.Info().Str("base_url", baseURL).Str("viewer", claims.Subject).Msg("starting courier")

	p := tea.NewProgram(ui.NewMenuModel(app), tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}
