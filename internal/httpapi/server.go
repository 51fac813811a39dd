// Package httpapi implements the HTTP Surface: the dashboard-facing
// REST API over the Persistent Store, Configuration Store, Segment
// Directory, and Best-Clip archive.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/livingstonekit-alt/feather-front/internal/conf"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

// Server wires the Echo instance against the components the HTTP
// Surface reads from and writes to.
type Server struct {
	echo *echo.Echo

	confStore *conf.Store
	store     *datastore.Store
	snapshot  *datastore.SnapshotWriter
	clipIndex *datastore.ClipIndexStore
	clipsDir  string
	segDir    string

	log *slog.Logger
}

// New builds a Server and registers every route, but does not start
// listening (see Start).
func New(confStore *conf.Store, store *datastore.Store, snapshot *datastore.SnapshotWriter, clipIndex *datastore.ClipIndexStore, clipsDir, segDir string, registry *prometheus.Registry, log *slog.Logger) *Server {
	s := &Server{
		confStore: confStore,
		store:     store,
		snapshot:  snapshot,
		clipIndex: clipIndex,
		clipsDir:  clipsDir,
		segDir:    segDir,
		log:       log,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(noStoreMiddleware)
	e.Use(basicAuthMiddleware(confStore))

	registerMetrics(e, registry)

	e.GET("/api/status", s.handleStatus)
	e.GET("/api/settings", s.handleGetSettings)
	e.POST("/api/settings", s.handlePostSettings)
	e.GET("/api/inputs", s.handleInputs)
	e.GET("/api/queue", s.handleQueue)
	e.GET("/api/log", s.handleLog)
	e.GET("/api/log/summary", s.handleLogSummary)
	e.GET("/api/log/activity", s.handleLogActivity)
	e.GET("/api/log/csv", s.handleLogCSV)
	e.GET("/api/events", s.handleEvents)
	e.GET("/api/clip", s.handleClip)
	e.POST("/api/log/add", s.handleLogAdd)
	e.POST("/api/log/delete", s.handleLogDelete)
	e.POST("/api/restart", s.handleRestart)
	e.POST("/api/restart/server", s.handleRestartServer)

	s.echo = e
	return s
}

// Start begins serving on addr; it blocks until the server stops, and
// returns http.ErrServerClosed on an orderly Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the HTTP server, letting in-flight
// requests finish within ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
