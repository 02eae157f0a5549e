// Command daemon runs the vyla API service.
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/endoverdosing/vyla-api/internal/config"
	"github.com/endoverdosing/vyla-api/internal/version"
)

const configEnvKey = "VYLA_CONFIG"

// maskURL removes user info and query credentials from a URL string for safe logging.
func maskURL(rawURL string) string {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url-redacted"
	}
	parsedURL.User = nil
	if q := parsedURL.Query(); q.Has("api_key") {
		q.Set("api_key", "***")
		parsedURL.RawQuery = q.Encode()
	}
	return parsedURL.String()
}

type rootOptions struct {
	configPath string
}

// resolvedConfigPath prefers --config over VYLA_CONFIG.
func (o *rootOptions) resolvedConfigPath() string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(configEnvKey))
}

func (o *rootOptions) load() (config.AppConfig, error) {
	return config.NewLoader(o.resolvedConfigPath(), version.Version).Load()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "vyla",
		Short:         "TMDB aggregation API",
		Long:          "vyla serves a frontend-ready movie and TV catalogue aggregated from TMDB.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (YAML); defaults to $"+configEnvKey)

	serve := newServeCmd(opts)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newConfigCmd(opts),
		newSourcesCmd(opts),
		newHealthcheckCmd(opts),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
