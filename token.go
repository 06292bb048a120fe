package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/netdisk-go/internal/config"
	"github.com/tonimelisma/netdisk-go/internal/netdisk"
	"github.com/tonimelisma/netdisk-go/internal/server"
)

var flagShowToken bool

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain a valid access token with the default credentials",
		Long: `Obtain a valid access token with the default credentials, reusing the
cached token while it is valid. The token itself is only printed with
--show-token.`,
		RunE: runToken,
	}

	cmd.Flags().BoolVar(&flagShowToken, "show-token", false, "print the access token")

	return cmd
}

// tokenOutput is the --json data. AccessToken is set only with --show-token.
type tokenOutput struct {
	AccessToken string    `json:"accessToken,omitempty"`
	ExpiredAt   time.Time `json:"expiredAt"`
	CachePath   string    `json:"cachePath"`
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg := cfgHolder.Config()

	creds := cfg.Credentials()
	if !creds.Complete() {
		return fmt.Errorf("no default credentials: set client_id and client_secret in %s or %s and %s",
			resolver.Path, config.EnvClientID, config.EnvClientSecret)
	}

	deps, err := openGateway(cmd.Context(), cfg, resolver.Dir, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	return printToken(cmd.Context(), os.Stdout, deps.provider, creds, deps.cachePath, flagShowToken, flagJSON)
}

// printToken resolves a token through src and writes it to w.
func printToken(
	ctx context.Context, w io.Writer, src server.TokenSource, creds netdisk.Credentials,
	cachePath string, show, asJSON bool,
) error {
	tok, err := src.Get(ctx, creds, cachePath)
	if err != nil {
		return fmt.Errorf("obtaining access token: %w", err)
	}

	out := tokenOutput{ExpiredAt: tok.ExpiresAt, CachePath: cachePath}
	if show {
		out.AccessToken = tok.Token
	}

	if asJSON {
		return printJSON(w, netdisk.Envelope[tokenOutput]{
			Code:    0,
			Message: "ok",
			Data:    &out,
			TraceID: uuid.NewString(),
		})
	}

	fmt.Fprintf(w, "Token valid until %s (%s)\n", tok.ExpiresAt.Local().Format(time.RFC3339), cachePath)

	if show {
		fmt.Fprintln(w, tok.Token)
	}

	return nil
}
