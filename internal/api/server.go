// Package api exposes the countdown control operations, presets and change
// notifications over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	slogecho "github.com/samber/slog-echo"

	"timemate/internal/core/model"
	"timemate/internal/core/observer"
	"timemate/internal/core/presets"
)

// Controller is the countdown control surface.
type Controller interface {
	Get() model.Snapshot
	SetInput(value string) model.Snapshot
	Start() model.Snapshot
	Pause() model.Snapshot
	Reset() model.Snapshot
}

// Options configures optional parts of the server.
type Options struct {
	Logger     *slog.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Server serves the HTTP surface.
type Server struct {
	echo    *echo.Echo
	httpd   *http.Server
	timer   Controller
	presets *presets.Manager
	hub     *observer.Hub
	logger  *slog.Logger

	eventsPongWait time.Duration
}

// NewServer builds the router.
func NewServer(timer Controller, presetManager *presets.Manager, hub *observer.Hub, options Options) *Server {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Registerer == nil {
		options.Registerer = prometheus.DefaultRegisterer
	}
	if options.Gatherer == nil {
		options.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	srv := &Server{
		echo:    e,
		timer:   timer,
		presets: presetManager,
		hub:     hub,
		logger:  options.Logger.With("component", "api"),

		eventsPongWait: eventsPongWait,
	}

	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)
	srv.httpd = &http.Server{
		Handler:        srv,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	e.HideBanner = true
	e.HidePort = true
	e.Use(slogecho.New(srv.logger))
	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "timemate",
		Registerer: options.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/v1/timer/events"
		},
	}))
	e.Use(middleware.BodyLimit("64K"))

	e.GET("/_health", srv.handleHealthCheck)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: options.Gatherer,
	}))

	v1 := e.Group("/v1", originGuard)
	v1.GET("/timer", srv.handleGet)
	v1.PUT("/timer/input", srv.handleSetInput)
	v1.POST("/timer/start", srv.handleStart)
	v1.POST("/timer/pause", srv.handlePause)
	v1.POST("/timer/reset", srv.handleReset)
	v1.GET("/timer/events", srv.handleEvents)
	v1.POST("/messages", srv.handleMessage)

	v1.GET("/presets", srv.handleListPresets)
	v1.POST("/presets", srv.handleAddPreset)
	v1.DELETE("/presets/:id", srv.handleRemovePreset)
	v1.POST("/presets/:id/apply", srv.handleApplyPreset)

	return srv
}

// Serve accepts connections on listener until Shutdown.
func (srv *Server) Serve(listener net.Listener) error {
	srv.logger.Info("api listening", "addr", listener.Addr().String())
	err := srv.httpd.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the HTTP server.
func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.httpd.Shutdown(ctx)
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericStatus{Status: "ok", Daemon: "timemate"})
}
