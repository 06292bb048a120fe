// Package tokens hands out a usable access token per request: the cached
// token while it is valid, otherwise a freshly fetched one that is then
// persisted on a best-effort basis.
//
// By default concurrent refreshes are not coordinated. N requests that see
// a missing or expired cache perform N fetches and N cache writes, and the
// last write wins. Options.Coalesce collapses concurrent refreshes of the
// same cache path into one fetch.
package tokens

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tonimelisma/netdisk-go/internal/eventlog"
	"github.com/tonimelisma/netdisk-go/internal/netdisk"
	"github.com/tonimelisma/netdisk-go/internal/tokenfile"
)

// Store reads and writes the token cache. Read must report failures with
// the tokenfile sentinel errors.
type Store interface {
	Read(path string) (netdisk.AccessToken, error)
	Write(path string, tok netdisk.AccessToken) error
}

// Fetcher exchanges credentials for a new token.
type Fetcher interface {
	FetchToken(ctx context.Context, creds netdisk.Credentials) (netdisk.AccessToken, error)
}

// Recorder receives cache diagnostics.
type Recorder interface {
	Record(ctx context.Context, ev eventlog.Event) error
}

// Options customizes a Provider. The zero value uses the on-disk token
// cache, records nothing and does not coalesce.
type Options struct {
	Store    Store
	Recorder Recorder
	Coalesce bool
}

// Provider resolves tokens. It holds no token in memory.
type Provider struct {
	store    Store
	fetcher  Fetcher
	recorder Recorder
	logger   *slog.Logger
	group    *singleflight.Group // nil unless coalescing
	nowFunc  func() time.Time
}

// NewProvider creates a Provider that fetches through fetcher.
func NewProvider(fetcher Fetcher, logger *slog.Logger, opts Options) *Provider {
	if logger == nil {
		logger = slog.Default()
	}

	store := opts.Store
	if store == nil {
		store = fileStore{}
	}

	p := &Provider{
		store:    store,
		fetcher:  fetcher,
		recorder: opts.Recorder,
		logger:   logger,
		nowFunc:  time.Now,
	}

	if opts.Coalesce {
		p.group = &singleflight.Group{}
	}

	return p
}

// Get returns the cached token at cachePath if it is still valid, without
// any network call. Otherwise (missing, unreadable, corrupt or expired
// cache) it fetches a new token with creds and tries to persist it. A
// persist failure is logged and does not fail Get. A fetch failure is
// returned unchanged.
func (p *Provider) Get(ctx context.Context, creds netdisk.Credentials, cachePath string) (netdisk.AccessToken, error) {
	tok, err := p.store.Read(cachePath)

	switch {
	case err == nil && tok.ValidAt(p.nowFunc()):
		p.logger.Debug("using cached token",
			slog.String("path", cachePath),
			slog.Time("expired_at", tok.ExpiresAt),
		)
		p.record(ctx, eventlog.CacheHit, cachePath, "")

		return tok, nil

	case err == nil:
		p.logger.Info("cached token expired, fetching a new one",
			slog.String("path", cachePath),
			slog.Time("expired_at", tok.ExpiresAt),
		)
		p.record(ctx, eventlog.CacheExpired, cachePath, tok.ExpiresAt.Format(time.RFC3339))

	case errors.Is(err, tokenfile.ErrCacheMiss):
		p.logger.Info("no cached token, fetching one", slog.String("path", cachePath))
		p.record(ctx, eventlog.CacheMiss, cachePath, "")

	case errors.Is(err, tokenfile.ErrCacheCorrupt):
		p.logger.Warn("token cache is corrupt, replacing it",
			slog.String("path", cachePath),
			slog.String("error", err.Error()),
		)
		p.record(ctx, eventlog.CacheCorrupt, cachePath, err.Error())

	default:
		p.logger.Warn("token cache unreadable, fetching a new token",
			slog.String("path", cachePath),
			slog.String("error", err.Error()),
		)
		p.record(ctx, eventlog.CacheIOError, cachePath, err.Error())
	}

	if p.group == nil {
		return p.refresh(ctx, creds, cachePath)
	}

	// Coalesced callers share the leader's result, including its error.
	v, err, shared := p.group.Do(cachePath, func() (any, error) {
		return p.refresh(ctx, creds, cachePath)
	})
	if shared {
		p.logger.Debug("joined in-flight token refresh", slog.String("path", cachePath))
	}

	if err != nil {
		return netdisk.AccessToken{}, err
	}

	return v.(netdisk.AccessToken), nil
}

// refresh fetches a token and persists it best-effort.
func (p *Provider) refresh(ctx context.Context, creds netdisk.Credentials, cachePath string) (netdisk.AccessToken, error) {
	tok, err := p.fetcher.FetchToken(ctx, creds)
	if err != nil {
		p.logger.Error("token fetch failed",
			slog.String("path", cachePath),
			slog.String("error", err.Error()),
		)
		p.record(ctx, eventlog.FetchFailed, cachePath, err.Error())

		return netdisk.AccessToken{}, err
	}

	p.record(ctx, eventlog.FetchOK, cachePath, tok.ExpiresAt.Format(time.RFC3339))

	if err := p.store.Write(cachePath, tok); err != nil {
		p.logger.Warn("persisting token failed, continuing with fresh token",
			slog.String("path", cachePath),
			slog.String("error", err.Error()),
		)
		p.record(ctx, eventlog.PersistFailed, cachePath, err.Error())

		return tok, nil
	}

	p.logger.Debug("token cached",
		slog.String("path", cachePath),
		slog.Time("expired_at", tok.ExpiresAt),
	)

	return tok, nil
}

// record forwards a diagnostics event. Failures are logged and dropped.
func (p *Provider) record(ctx context.Context, kind eventlog.Kind, cachePath, detail string) {
	if p.recorder == nil {
		return
	}

	ev := eventlog.Event{OccurredAt: p.nowFunc(), Kind: kind, CachePath: cachePath, Detail: detail}
	if err := p.recorder.Record(ctx, ev); err != nil {
		p.logger.Debug("recording token event failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
}

// fileStore adapts the tokenfile package to Store.
type fileStore struct{}

func (fileStore) Read(path string) (netdisk.AccessToken, error) {
	return tokenfile.Read(path)
}

func (fileStore) Write(path string, tok netdisk.AccessToken) error {
	return tokenfile.Write(path, tok)
}
