package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sovahealth/courier/internal/config"
	"github.com/sovahealth/courier/internal/ui"
)

var (
	loginURL   string
	loginStaff bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the portal and store a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := openLogger(cfg.LogFile)

		baseURL := strings.TrimRight(loginURL, "/")
		if baseURL == "" {
			baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if baseURL == "" {
			return fmt.Errorf("no portal URL: pass --url or set base_url in %s", "~/.courier/config.yml")
		}

		p := tea.NewProgram(ui.NewLoginModel(baseURL, loginStaff, log))
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("failed to run login form: %w", err)
		}

		model, ok := final.(ui.LoginModel)
		if !ok || model.Token == "" {
			return fmt.Errorf("login cancelled")
		}

		who := model.Name
		if who == "" {
			who = "you"
		}
		fmt.Printf("Signed in as %s. Run `courier` to open your messages.\n", who)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginURL, "url", "", "portal base URL (e.g. https://portal.example.org)")
	loginCmd.Flags().BoolVar(&loginStaff, "staff", false, "sign in through the staff directory endpoint")
	rootCmd.AddCommand(loginCmd)
}
