package netdisk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

const userAgent = "netdisk-go/0.1"

// Query is implemented by parameters of read requests (GET, DELETE, HEAD).
// Values must not contain a key for an optional value that was not supplied.
type Query interface {
	Values() url.Values
}

// Client is an HTTP client for the netdisk open platform. Every request is
// sent exactly once: there is no retry and no backoff.
type Client struct {
	baseURL    string
	platform   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a platform client. Requests go to https://{cfg.Domain}
// and carry "Platform: {cfg.Header}".
func NewClient(cfg PlatformConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    "https://" + cfg.Domain,
		platform:   cfg.Header,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Call sends one authenticated request and decodes the response envelope.
// For write methods params is marshaled as the JSON body; for read methods
// params must implement Query (or be nil). A non-2xx status yields a
// *RequestError wrapping ErrAPIRequestFailed, an undecodable 2xx body a
// *DecodeError. The decoded envelope is returned unchanged.
func Call[T any](ctx context.Context, c *Client, method, path, token string, params any) (*Envelope[T], error) {
	var (
		query url.Values
		body  []byte
	)

	if hasBody(method) {
		if params != nil {
			data, err := json.Marshal(params)
			if err != nil {
				return nil, fmt.Errorf("netdisk: encoding %s %s body: %w", method, path, err)
			}

			body = data
		}
	} else if params != nil {
		q, ok := params.(Query)
		if !ok {
			return nil, fmt.Errorf("netdisk: %s %s: %T cannot be sent as a query", method, path, params)
		}

		query = q.Values()
	}

	env, _, err := exchange[T](ctx, c, method, path, token, query, body, ErrAPIRequestFailed)

	return env, err
}

// exchange performs a single round trip and decodes a 2xx body into an
// envelope. failure is the sentinel attached to non-2xx responses. The raw
// body is returned alongside the envelope for callers that validate data.
func exchange[T any](
	ctx context.Context, c *Client, method, path, token string, query url.Values, body []byte, failure error,
) (*Envelope[T], []byte, error) {
	resp, err := c.doOnce(ctx, method, path, token, query, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text := string(raw)
		if readErr != nil {
			text = ""
		}

		c.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return nil, nil, &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       text,
			Err:        failure,
		}
	}

	if readErr != nil {
		return nil, nil, fmt.Errorf("%w: reading %s %s response: %w", ErrTransport, method, path, readErr)
	}

	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, raw, &DecodeError{Path: path, Raw: string(raw), Err: err}
	}

	c.logger.Debug("request succeeded",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Int("code", env.Code),
		slog.String("trace_id", env.TraceID),
	)

	return &env, raw, nil
}

// doOnce executes a single HTTP request. An empty token sends no
// Authorization header (used by the token exchange itself).
func (c *Client) doOnce(
	ctx context.Context, method, path, token string, query url.Values, body []byte,
) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Platform", c.platform)
	req.Header.Set("User-Agent", userAgent)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// hasBody reports whether params for method travel in the request body.
func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}
