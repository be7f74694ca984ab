// Package api exposes the task store over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/nibzard/kanban/internal/taskstore"
)

// TaskStore is the subset of the record store the handlers use.
type TaskStore interface {
	List(ctx context.Context) ([]taskstore.Task, error)
	Create(ctx context.Context, n taskstore.NewTask) (taskstore.Task, error)
	UpdateStatus(ctx context.Context, ref, status string) (bool, error)
	Delete(ctx context.Context, ref string) (bool, error)
}

// Options configures a Server.
type Options struct {
	// Logger receives console logs. Nil uses the charmbracelet default.
	Logger *log.Logger
	// AccessLog, when set, receives one JSON line per request.
	AccessLog *log.Logger
}

// Server is the kanban HTTP API.
type Server struct {
	store     TaskStore
	router    *gin.Engine
	logger    *log.Logger
	accessLog *log.Logger
}

// New creates a server backed by store.
func New(store TaskStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	router := gin.New()
	s := &Server{
		store:     store,
		router:    router,
		logger:    logger,
		accessLog: opts.AccessLog,
	}

	router.Use(
		gin.CustomRecovery(s.recover),
		requestID(),
		s.logRequests(),
		corsMiddleware(cors.New(corsOptions())),
	)

	router.GET("/", s.handleRoot)

	tasks := router.Group("/tasks")
	{
		tasks.GET("", s.handleList)
		tasks.POST("", s.handleCreate)
		tasks.PATCH("/:id", s.handleUpdateStatus)
		tasks.PUT("/:id", s.handleUpdateStatus)
		tasks.DELETE("/:id", s.handleDelete)
	}

	return s
}

// corsOptions is the development policy: every origin is echoed back,
// every requested header is allowed and credentials are allowed.
func corsOptions() cors.Options {
	return cors.Options{
		AllowOriginFunc: func(string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{requestIDHeader},
		AllowCredentials:     true,
		MaxAge:               int((12 * time.Hour).Seconds()),
		OptionsSuccessStatus: http.StatusNoContent,
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
