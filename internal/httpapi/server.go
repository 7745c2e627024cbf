// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

// Package httpapi exposes the REST API: public reads, token-gated place
// mutations, signup/login, and static serving of uploaded images.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/placehub/placehub/internal/account"
	"github.com/placehub/placehub/internal/observability"
)

// ServerConfig holds the dependencies and settings for the API server.
type ServerConfig struct {
	Addr           string
	UploadDir      string
	AllowedOrigins []string

	Accounts AccountService
	Places   PlaceService
	Tokens   account.TokenVerifier
	Uploads  Uploader
	Limiter  *account.LoginLimiter
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// Server is the public HTTP API server.
type Server struct {
	addr       string
	engine     *gin.Engine
	listener   net.Listener
	httpServer *http.Server
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer assembles the router: CORS, request logging, metrics, the public
// routes, the auth-gated mutation routes, and static image serving.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Accounts == nil {
		return nil, oops.Errorf("account service is required")
	}
	if cfg.Places == nil {
		return nil, oops.Errorf("place service is required")
	}
	if cfg.Tokens == nil {
		return nil, oops.Errorf("token verifier is required")
	}
	if cfg.Uploads == nil {
		return nil, oops.Errorf("uploader is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(logger))
	if cfg.Metrics != nil {
		engine.Use(RecordMetrics(cfg.Metrics))
	}

	origins := cfg.AllowedOrigins
	allowAll := len(origins) == 0
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: allowAll,
		AllowOrigins:    origins,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
	}))

	placeHandler := NewPlaceHandler(cfg.Places, cfg.Uploads, cfg.Metrics, logger)
	userHandler := NewUserHandler(cfg.Accounts, cfg.Uploads, cfg.Limiter, logger)

	api := engine.Group("/api")

	places := api.Group("/places")
	places.GET("/:pid", placeHandler.GetByID)
	places.GET("/user/:uid", placeHandler.ListByUser)

	gated := places.Group("")
	gated.Use(Authenticate(cfg.Tokens))
	gated.POST("", placeHandler.Create)
	gated.PATCH("/:pid", placeHandler.Update)
	gated.DELETE("/:pid", placeHandler.Delete)

	users := api.Group("/users")
	users.GET("", userHandler.List)
	users.POST("/signup", userHandler.SignUp)
	users.POST("/login", userHandler.Login)

	if cfg.UploadDir != "" {
		engine.Static("/uploads/images", cfg.UploadDir)
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Message: msgRouteNotFound})
	})

	return &Server{
		addr:   cfg.Addr,
		engine: engine,
		logger: logger,
	}, nil
}

// Handler returns the assembled router, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after startup; the channel is closed on
// graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
