package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/endoverdosing/vyla-api/internal/config"
	"github.com/endoverdosing/vyla-api/internal/platform/httpx"
)

type healthcheckOptions struct {
	mode    string
	url     string
	timeout time.Duration
}

func newHealthcheckCmd(opts *rootOptions) *cobra.Command {
	hc := healthcheckOptions{}
	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running instance (for container health checks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := strings.TrimSpace(hc.url)
			if base == "" {
				base = localURL(opts)
			}
			if err := runHealthcheck(base, hc.mode, hc.timeout); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Healthcheck successful (%s)\n", hc.mode)
			return err
		},
	}
	cmd.Flags().StringVar(&hc.mode, "mode", "ready", "healthcheck mode: ready or live")
	cmd.Flags().StringVar(&hc.url, "url", "", "base URL of the instance (defaults to the configured listen address)")
	cmd.Flags().DurationVar(&hc.timeout, "timeout", 5*time.Second, "check timeout")
	return cmd
}

// localURL derives the probe target from the listen address. A config that
// fails validation still carries the resolved listen address.
func localURL(opts *rootOptions) string {
	cfg, _ := opts.load()
	if cfg.Server.ListenAddr == "" {
		cfg = config.Defaults()
	}
	return cfg.Server.LocalURL()
}

func runHealthcheck(baseURL, mode string, timeout time.Duration) error {
	var path string
	switch mode {
	case "ready":
		path = "/readyz"
	case "live":
		path = "/healthz"
	default:
		return fmt.Errorf("unknown healthcheck mode %q (use ready or live)", mode)
	}

	client := httpx.NewClient(timeout)
	defer client.CloseIdleConnections()

	resp, err := client.Get(strings.TrimRight(baseURL, "/") + path)
	if err != nil {
		return fmt.Errorf("healthcheck failed (network): %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck failed (status): %s", resp.Status)
	}
	return nil
}
