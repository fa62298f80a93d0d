// Package httpapi exposes a Minter over HTTP.
//
//	POST /entities/:entity          mint an identifier for an entity kind
//	POST /bnodes                    mint a blank node identifier
//	PUT  /entities/:entity/counter  reset a counter (only with AllowReset)
//	GET  /entities                  list entity kinds and their counter keys
//	GET  /codes/:code               decode a code into entity kind and seq
//	GET  /healthz                   counter store health
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/waldmeta/mint"
)

// Options configures the Server.
type Options struct {
	// AllowReset enables PUT /entities/:entity/counter.
	AllowReset bool

	// HealthTimeout bounds the store ping in /healthz.
	// Default: 2s
	HealthTimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the HTTP surface of a Minter.
type Server struct {
	echo   *echo.Echo
	minter *mint.Minter
	opts   Options
	logger *slog.Logger
}

// New builds the server and registers its routes.
func New(m *mint.Minter, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 2 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		minter: m,
		opts:   opts,
		logger: opts.Logger.With("component", "http"),
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(recoverer(s.logger))
	e.Use(requestLogger(s.logger))

	registerMintHandlers(e, s)
	registerStatusHandlers(e, s)

	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and blocks until the server stops. After Shutdown it
// returns http.ErrServerClosed.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting http server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// handleError renders errors as JSON. Minter errors are mapped by kind.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errorResponse{
		Error:     err.Error(),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
	}

	var herr *echo.HTTPError
	var merr *mint.Error
	switch {
	case errors.As(err, &herr):
		status = herr.Code
		if msg, ok := herr.Message.(string); ok {
			body.Error = msg
		}
	case errors.As(err, &merr):
		body.Kind = merr.Kind
		status = statusFor(merr)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", status,
			"request_id", body.RequestID,
			"error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Warn("failed to write error response", "error", err)
	}
}

func statusFor(err *mint.Error) int {
	switch err.Kind {
	case mint.KindNotFound:
		return http.StatusNotFound
	case mint.KindValidation:
		return http.StatusBadRequest
	case mint.KindOverflow:
		return http.StatusConflict
	case mint.KindStore, mint.KindDatastore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
