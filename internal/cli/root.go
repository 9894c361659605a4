// Package cli wires the cobra command tree: the root command launches
// the control panel, `check` runs a one-shot daemon diagnostic.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"clashtui/internal/api"
	"clashtui/internal/config"
	"clashtui/internal/tui"
)

var (
	cfgFile   string
	apiURL    string
	apiSecret string
	themeName string

	// Build information, set via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "clashtui",
	Short: "Terminal control panel for a clash-compatible proxy daemon",
	Long: `clashtui drives a running clash/mihomo daemon over its external
controller API: switch nodes, run latency tests, watch connections and
logs, all without leaving the terminal.

The daemon address and secret come from ~/.config/clashtui/config.toml
or the --api-url / --secret flags.`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return fmt.Errorf("clashtui needs a terminal; use `clashtui check` for scripted diagnostics")
		}

		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		client := api.NewClient(cfg.APIURL, cfg.Secret)
		p := tea.NewProgram(tui.New(cfg, path, client), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/clashtui/config.toml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "daemon controller URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiSecret, "secret", "", "controller secret (overrides config)")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "color theme: catppuccin, latte, nord, plain")

	rootCmd.AddCommand(checkCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, string, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if apiSecret != "" {
		cfg.Secret = apiSecret
	}
	if themeName != "" {
		cfg.Theme = themeName
	}
	return cfg, path, nil
}

// Execute runs the command tree. Errors are printed here because the
// root command silences cobra's own reporting.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
