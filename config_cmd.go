package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/netdisk-go/internal/config"
	"github.com/tonimelisma/netdisk-go/internal/tokenfile"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect gateway configuration",
	}

	cmd.AddCommand(newConfigShowCmd(), newConfigPathCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective gateway settings after all overrides",
		RunE: func(_ *cobra.Command, _ []string) error {
			return config.RenderEffective(cfgHolder.Config(), resolver, os.Stdout)
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config directory, settings file and token cache paths",
		RunE: func(_ *cobra.Command, _ []string) error {
			return printPaths(os.Stdout, resolver, cfgHolder.Config(), flagJSON)
		},
	}
}

// pathsOutput is the --json form of `config path`.
type pathsOutput struct {
	ConfigDir    string `json:"config_dir"`
	SettingsFile string `json:"settings_file"`
	TokenCache   string `json:"token_cache"`
	EventsDB     string `json:"events_db,omitempty"`
}

func printPaths(w io.Writer, r *config.Resolver, cfg *config.Config, asJSON bool) error {
	out := pathsOutput{
		ConfigDir:    r.Dir,
		SettingsFile: r.Path,
		TokenCache:   tokenfile.Path(r.Dir),
		EventsDB:     cfg.EventsDBPath(r.Dir),
	}

	if asJSON {
		return printJSON(w, out)
	}

	events := out.EventsDB
	if events == "" {
		events = "(disabled)"
	}

	printTable(w, []string{"WHAT", "PATH"}, [][]string{
		{"config dir", out.ConfigDir},
		{"settings", out.SettingsFile},
		{"token cache", out.TokenCache},
		{"events db", events},
	})

	return nil
}
