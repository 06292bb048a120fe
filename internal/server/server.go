// Package server exposes the netdisk gateway over HTTP. Every resource route
// resolves credentials, obtains a token from the token provider, forwards the
// call through the netdisk client, and returns the platform envelope as is.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonimelisma/netdisk-go/internal/config"
	"github.com/tonimelisma/netdisk-go/internal/eventlog"
	"github.com/tonimelisma/netdisk-go/internal/netdisk"
)

// TokenSource yields a usable access token for a set of credentials.
type TokenSource interface {
	Get(ctx context.Context, creds netdisk.Credentials, cachePath string) (netdisk.AccessToken, error)
}

// EventSource reads recorded token-cache diagnostics.
type EventSource interface {
	Recent(ctx context.Context, limit int) ([]eventlog.Event, error)
	Counts(ctx context.Context) (map[eventlog.Kind]int, error)
}

// Deps wires a Server. Events may be nil when diagnostics are disabled.
type Deps struct {
	Client    *netdisk.Client
	Tokens    TokenSource
	Config    *config.Holder
	CachePath string
	Events    EventSource
	Logger    *slog.Logger
}

// Server is the gateway's HTTP surface.
type Server struct {
	router    *gin.Engine
	client    *netdisk.Client
	tokens    TokenSource
	cfg       *config.Holder
	cachePath string
	events    EventSource
	logger    *slog.Logger
}

// New builds the router and registers all routes. gin's mode is left to
// the caller.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(recovery(logger))
	router.Use(requestLog(logger))

	s := &Server{
		router:    router,
		client:    d.Client,
		tokens:    d.Tokens,
		cfg:       d.Config,
		cachePath: d.CachePath,
		events:    d.Events,
		logger:    logger,
	}
	s.setupRoutes()

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router

	r.GET("/hey", handleHey)
	r.POST("/echo", handleEcho)
	r.GET("/status", s.handleStatus())

	r.POST("/access_token", s.handleAccessToken())
	r.GET("/user_info", resource(s, nil, s.userInfo))

	// Files
	r.GET("/file_lists_query", resource(s, bindQuery, s.client.ListFiles))
	r.GET("/file_search", resource(s, bindQuery, s.client.SearchFiles))
	r.GET("/file_query", resource(s, bindQuery, s.client.FileDetail))
	r.POST("/files_info", resource(s, bindJSON, s.client.FileInfos))
	r.POST("/mkdir", resource(s, bindJSON, s.client.Mkdir))
	r.POST("/move", resource(s, bindJSON, s.client.Move))
	r.POST("/trash", resource(s, bindJSON, s.client.Trash))
	r.POST("/delete", resource(s, bindJSON, s.client.Delete))
	r.POST("/file/upload", resource(s, bindJSON, s.client.CreateUpload))

	share := r.Group("/share")
	{
		share.POST("/create", resource(s, bindJSON, s.client.CreateShare))
		share.GET("/list", resource(s, bindQuery, s.client.ListShares))
		share.PUT("/list/info", resource(s, bindJSON, s.client.UpdateShares))
		share.POST("/content-payment/create", resource(s, bindJSON, s.client.CreatePaidShare))
		share.PUT("/list/payment/info", resource(s, bindJSON, s.client.UpdatePaidShares))
		share.GET("/payment/list", resource(s, bindQuery, s.client.ListPaidShares))
	}
}

func (s *Server) userInfo(ctx context.Context, token string, _ struct{}) (*netdisk.Envelope[netdisk.UserInfo], error) {
	return s.client.UserInfo(ctx, token)
}
