package netdisk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const accessTokenPath = "/api/v1/access_token"

// FetchToken exchanges client credentials for an access token with one
// POST to the token endpoint. Failures are one of: an error wrapping
// ErrTransport, a *RequestError wrapping ErrAuthRequestFailed, or a
// *DecodeError (also when the envelope carries no token).
func (c *Client) FetchToken(ctx context.Context, creds Credentials) (AccessToken, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return AccessToken{}, fmt.Errorf("netdisk: encoding credentials: %w", err)
	}

	env, raw, err := exchange[AccessToken](ctx, c, http.MethodPost, accessTokenPath, "", nil, body, ErrAuthRequestFailed)
	if err != nil {
		return AccessToken{}, err
	}

	if env.Data == nil || env.Data.Token == "" {
		return AccessToken{}, &DecodeError{Path: accessTokenPath, Raw: string(raw), Err: errMissingData}
	}

	c.logger.Info("access token issued",
		slog.Time("expired_at", env.Data.ExpiresAt),
		slog.String("trace_id", env.TraceID),
	)

	return *env.Data, nil
}
