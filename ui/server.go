package ui

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"rxprev/internal"
	"rxprev/internal/container"
	"rxprev/ui/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// maxBodyBytes bounds an uploaded observation document.
const maxBodyBytes = 64 << 20

const shutdownTimeout = 10 * time.Second

// Server is the HTTP surface of the report service
type Server struct {
	router    *gin.Engine
	container *container.Container
	logger    *internal.Logger
}

// NewServer creates a new web server instance
func NewServer(c *container.Container) *Server {
	if !c.Logger.Enabled(internal.LogLevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		router:    gin.New(),
		container: c,
		logger:    c.Logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/genes", s.handleGenes)
	api.POST("/prevalence/:gene", s.handlePrevalence)

	// run history, answered with 503 when no store is configured
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting rxprev server on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
