package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tonimelisma/netdisk-go/internal/netdisk"
)

// Credential headers. When both are present they take precedence over the
// configured default credentials.
const (
	headerClientID     = "X-Client-Id"
	headerClientSecret = "X-Client-Secret"
)

// binder decodes request parameters into obj.
type binder func(c *gin.Context, obj any) error

// bindQuery binds the query string, treating empty values as absent so an
// optional parameter like "lastFileId=" stays nil instead of becoming 0.
func bindQuery(c *gin.Context, obj any) error {
	present := url.Values{}

	for key, vals := range c.Request.URL.Query() {
		for _, v := range vals {
			if v != "" {
				present.Add(key, v)
			}
		}
	}

	if err := binding.MapFormWithTag(obj, present, "form"); err != nil {
		return err
	}

	return binding.Validator.ValidateStruct(obj)
}

func bindJSON(c *gin.Context, obj any) error { return c.ShouldBindJSON(obj) }

// resource builds the shared handler for a forwarded endpoint: bind params,
// resolve credentials, get a token, call upstream, return the envelope with
// HTTP 200. bind may be nil for endpoints without parameters.
func resource[P, T any](
	s *Server,
	bind binder,
	call func(ctx context.Context, token string, params P) (*netdisk.Envelope[T], error),
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params P

		if bind != nil {
			if err := bind(c, &params); err != nil {
				s.fail(c, fmt.Errorf("%w: %w", netdisk.ErrInvalidRequest, err))
				return
			}
		}

		creds, err := s.credentials(c)
		if err != nil {
			s.fail(c, err)
			return
		}

		// Upstream work finishes even if the client goes away.
		ctx := context.WithoutCancel(c.Request.Context())

		tok, err := s.tokens.Get(ctx, creds, s.cachePath)
		if err != nil {
			s.fail(c, err)
			return
		}

		env, err := call(ctx, tok.Token, params)
		if err != nil {
			s.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, env)
	}
}

// credentials picks the request's credential headers when both are set,
// otherwise the configured defaults.
func (s *Server) credentials(c *gin.Context) (netdisk.Credentials, error) {
	fromHeaders := netdisk.Credentials{
		ClientID:     strings.TrimSpace(c.GetHeader(headerClientID)),
		ClientSecret: strings.TrimSpace(c.GetHeader(headerClientSecret)),
	}
	if fromHeaders.Complete() {
		return fromHeaders, nil
	}

	if s.cfg != nil {
		if creds := s.cfg.Config().Credentials(); creds.Complete() {
			return creds, nil
		}
	}

	return netdisk.Credentials{}, errNoCredentials
}

// handleAccessToken returns a valid token for the credentials in the body,
// from the cache when possible. The envelope is produced by the gateway.
func (s *Server) handleAccessToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var creds netdisk.Credentials
		if err := c.ShouldBindJSON(&creds); err != nil {
			s.fail(c, fmt.Errorf("%w: %w", netdisk.ErrInvalidRequest, err))
			return
		}

		if !creds.Complete() {
			s.fail(c, fmt.Errorf("%w: clientId and clientSecret must not be blank", netdisk.ErrInvalidRequest))
			return
		}

		tok, err := s.tokens.Get(context.WithoutCancel(c.Request.Context()), creds, s.cachePath)
		if err != nil {
			s.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, netdisk.Envelope[netdisk.AccessToken]{
			Code:    0,
			Message: "ok",
			Data:    &tok,
			TraceID: traceID(c),
		})
	}
}

func handleHey(c *gin.Context) {
	c.String(http.StatusOK, "Hey there!")
}

// handleEcho returns the request body unchanged.
func handleEcho(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorEnvelope(c, http.StatusBadRequest, err.Error()))
		return
	}

	contentType := c.ContentType()
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}

	c.Data(http.StatusOK, contentType, body)
}
