package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avi3tal/blueprint/internal/logger"
	"github.com/avi3tal/blueprint/pkg/blueprint"
)

// Server exposes an App over HTTP.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	app        *blueprint.App
	log        *logger.Logger
}

// New creates a Server with routes and middleware registered.
func New(app *blueprint.App, addr string, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		app:    app,
		log:    log.WithComponent("api"),
	}
	s.engine.Use(recovery(s.log), requestLogger(s.log))
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	h := &handler{app: s.app, log: s.log}

	s.engine.GET("/healthz", h.health)
	s.engine.GET("/node-types", h.nodeTypes)

	projects := s.engine.Group("/projects")
	projects.GET("", h.listProjects)
	projects.POST("", h.createProject)
	projects.GET("/:id", h.getProject)
	projects.DELETE("/:id", h.deleteProject)
	projects.PUT("/:id/graph", h.saveGraph)
	projects.POST("/:id/run", h.runProject)
}

// Start binds the address and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}
