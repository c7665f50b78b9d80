package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/usecasegen/ingestion"
	"github.com/poiesic/usecasegen/search"
	"github.com/poiesic/usecasegen/storage"
)

const (
	// DefaultMaxBodyBytes fits a base64 encoded 50 MiB document.
	DefaultMaxBodyBytes = 70 << 20

	shutdownTimeout = 15 * time.Second
)

// Ingester runs the ingestion pipeline. *ingestion.Pipeline implements it.
type Ingester interface {
	Ingest(ctx context.Context, req ingestion.Request) (ingestion.Result, error)
	Naming() storage.Naming
}

var _ Ingester = (*ingestion.Pipeline)(nil)

// Server is the HTTP front end of the pipeline.
type Server struct {
	ingester     Ingester
	store        storage.RecordStore
	searcher     *search.Searcher
	maxBodyBytes int64
	now          func() time.Time
	logger       *slog.Logger
	engine       *gin.Engine
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "http")
		return nil
	}
}

// WithMaxBodyBytes caps request bodies. Default is DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) error {
		if n <= 0 {
			return fmt.Errorf("max body bytes must be positive")
		}
		s.maxBodyBytes = n
		return nil
	}
}

// WithClock sets the time source for the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(s *Server) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// New creates a Server over the pipeline and the store it writes to.
func New(ingester Ingester, store storage.RecordStore, opts ...Option) (*Server, error) {
	if ingester == nil {
		return nil, errors.New("ingester required")
	}
	if store == nil {
		return nil, errors.New("record store required")
	}
	searcher, err := search.NewSearcher(store)
	if err != nil {
		return nil, err
	}

	s := &Server{
		ingester:     ingester,
		store:        store,
		searcher:     searcher,
		maxBodyBytes: DefaultMaxBodyBytes,
		now:          time.Now,
		logger:       slog.Default().With("component", "http"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(s.logger), recovery(s.logger), corsMiddleware())

	r.GET("/health", s.health)
	r.GET("/", s.info)

	ingest := r.Group("/")
	ingest.Use(s.limitBody())
	ingest.POST("/upload-document", s.uploadDocument)
	ingest.POST("/process-usecase", s.processUsecase)

	r.GET("/usecases/:tenant/search", s.searchUsecases)
	r.GET("/usecases/:tenant/:id", s.getUsecase)

	r.NoRoute(s.info)
	return r
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)
		c.Next()
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
