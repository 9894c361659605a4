package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"clashtui/internal/api"
)

var promptSecret bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "One-shot daemon diagnostic",
	Long: `check connects to the daemon, verifies the secret, and reports the
proxy table, rule count and connection totals. Exits non-zero when the
daemon is unreachable or the secret is rejected, so it is usable from
scripts and health checks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		if promptSecret {
			fmt.Fprint(os.Stderr, "controller secret: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("reading secret: %w", err)
			}
			cfg.Secret = string(raw)
		}

		client := api.NewClient(cfg.APIURL, cfg.Secret)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		daemonCfg, err := client.Config(ctx)
		if err != nil {
			return describeFailure(cfg.APIURL, err)
		}
		fmt.Printf("daemon     ok (%s, mode %s)\n", cfg.APIURL, daemonCfg.Mode)

		proxies, err := client.Proxies(ctx)
		if err != nil {
			return fmt.Errorf("fetching proxies: %w", err)
		}
		groups, nodes := 0, 0
		for _, p := range proxies.Proxies {
			if p.IsGroup() {
				groups++
			} else if p.IsTestable() {
				nodes++
			}
		}
		fmt.Printf("proxies    %d groups, %d nodes\n", groups, nodes)

		rules, err := client.Rules(ctx)
		if err != nil {
			return fmt.Errorf("fetching rules: %w", err)
		}
		fmt.Printf("rules      %d\n", len(rules))

		conns, err := client.Connections(ctx)
		if err != nil {
			return fmt.Errorf("fetching connections: %w", err)
		}
		fmt.Printf("conns      %d active, ↓%d ↑%d bytes\n",
			len(conns.Connections), conns.DownloadTotal, conns.UploadTotal)
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&promptSecret, "prompt-secret", false, "read the controller secret from the terminal instead of the config")
}

// describeFailure turns the client's error taxonomy into actionable
// one-line advice.
func describeFailure(url string, err error) error {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("daemon at %s rejected the secret; set secret in the config or pass --prompt-secret", url)
	case api.IsUnreachable(err):
		return fmt.Errorf("cannot reach daemon at %s; is it running with external-controller enabled?", url)
	case api.IsTimeout(err):
		return fmt.Errorf("daemon at %s did not answer in time: %w", url, err)
	default:
		return fmt.Errorf("checking daemon at %s: %w", url, err)
	}
}
