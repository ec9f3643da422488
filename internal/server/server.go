package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/argmap/internal/graph"
	"github.com/ppiankov/argmap/internal/logging"
	"github.com/ppiankov/argmap/internal/model"
	"github.com/ppiankov/argmap/internal/pipeline"
)

// Options configure the editing surface
type Options struct {
	Subject string
	// PersistPath, when set, receives the whole document after every successful edit
	PersistPath string
	// Mode is the gin mode: debug, release or test
	Mode string
}

// Server exposes one Store over a JSON API
type Server struct {
	store    *graph.Store
	pipeline *pipeline.Pipeline
	opts     Options
	log      *logging.Logger

	saveMu sync.Mutex
}

// New creates a server for store
func New(store *graph.Store, p *pipeline.Pipeline, opts Options, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	if opts.Subject == "" {
		opts.Subject = store.Title()
	}
	return &Server{
		store:    store,
		pipeline: p,
		opts:     opts,
		log:      log,
	}
}

// SetupRouter builds the gin engine with every route registered
func (s *Server) SetupRouter() *gin.Engine {
	if s.opts.Mode != "" {
		gin.SetMode(s.opts.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)

	api := r.Group("/api")
	api.GET("/graph", s.GetGraph)
	api.GET("/costs", s.GetCosts)
	api.GET("/validation", s.GetValidation)

	api.POST("/claims", s.AddClaim)
	api.PUT("/claims/:id", s.UpdateClaim)
	api.DELETE("/claims/:id", s.DeleteClaim)

	api.POST("/implications", s.AddImplication)
	api.PUT("/implications/:id", s.UpdateImplication)
	api.DELETE("/implications/:id", s.DeleteImplication)
	api.PUT("/implications/:id/entailment", s.SetEntailment)

	api.POST("/cleanup", s.Cleanup)

	return r
}

// Run serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

// Health reports liveness and the current revision
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "revision": s.store.Snapshot().Revision()})
}

// GetGraph returns the whole document
func (s *Server) GetGraph(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"revision": s.store.Snapshot().Revision(),
		"graph":    s.store.Document(),
	})
}

// GetCosts returns the evaluation report for the current snapshot
func (s *Server) GetCosts(c *gin.Context) {
	report, err := s.pipeline.Evaluate(c.Request.Context(), s.store, s.opts.Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetValidation returns the structural validation of the current snapshot
func (s *Server) GetValidation(c *gin.Context) {
	snap := s.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"revision":   snap.Revision(),
		"validation": s.pipeline.Validator().Validate(snap),
	})
}

// mutated builds the common response of every edit and persists the graph.
// Revision and validation describe snap, the snapshot the edit published.
func (s *Server) mutated(c *gin.Context, snap *graph.Snapshot, status int, body gin.H) {
	body["revision"] = snap.Revision()
	body["validation"] = s.pipeline.Validator().Validate(snap)

	if err := s.persist(); err != nil {
		s.log.Error("persist failed", "path", s.opts.PersistPath, "error", err)
		body["persist_error"] = err.Error()
	}
	c.JSON(status, body)
}

func (s *Server) persist() error {
	if s.opts.PersistPath == "" {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	doc := s.store.Document()
	return pipeline.SaveDocument(s.opts.PersistPath, &doc)
}

// fail maps engine errors to HTTP statuses
func (s *Server) fail(c *gin.Context, err error) {
	var schemaErr *model.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid input", "problems": schemaErr.Problems})
	case errors.Is(err, graph.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, graph.ErrDuplicateID):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, graph.ErrNoGoals), errors.Is(err, graph.ErrUnknownGoal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
