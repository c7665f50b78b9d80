package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/usecasegen/prompts"
	"github.com/poiesic/usecasegen/search"
	"github.com/poiesic/usecasegen/storage"
)

// Version is the MCP server version.
const Version = "1.0.0"

// ErrForeignCollection is returned when a tool names a collection outside
// the configured stage and app.
var ErrForeignCollection = errors.New("collection is outside this deployment")

// Server is the read-only MCP server.
type Server struct {
	store    storage.RecordStore
	searcher *search.Searcher
	library  *prompts.Library
	naming   storage.Naming
	rubric   string
	server   *mcp.Server
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithNaming sets the deployment whose collections are exposed.
func WithNaming(naming storage.Naming) Option {
	return func(s *Server) error {
		s.naming = naming.WithDefaults()
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "mcp")
		return nil
	}
}

// WithPromptLibrary replaces the embedded prompt catalogue.
func WithPromptLibrary(library *prompts.Library) Option {
	return func(s *Server) error {
		if library != nil {
			s.library = library
		}
		return nil
	}
}

// WithMethodologyRubric appends guidance to every agent prompt.
func WithMethodologyRubric(rubric string) Option {
	return func(s *Server) error {
		s.rubric = strings.TrimSpace(rubric)
		return nil
	}
}

// NewServer creates an MCP server over store.
func NewServer(store storage.RecordStore, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, errors.New("record store required")
	}
	library, err := prompts.Default()
	if err != nil {
		return nil, err
	}
	searcher, err := search.NewSearcher(store)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:    store,
		searcher: searcher,
		library:  library,
		naming:   storage.DefaultNaming(),
		logger:   slog.Default().With("component", "mcp"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    s.naming.App + "-usecases",
		Version: Version,
	}, nil)
	s.registerTools()
	s.registerPrompts()

	return s, nil
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is
// canceled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("shutdown failed", "err", err)
		}
	}()

	s.logger.Info("serving over http", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// checkCollection rejects collections from other deployments.
func (s *Server) checkCollection(collection string) error {
	prefix := fmt.Sprintf("%s-%s-", s.naming.Stage, s.naming.App)
	if !strings.HasPrefix(collection, prefix) || len(collection) == len(prefix) {
		return fmt.Errorf("%w: %q", ErrForeignCollection, collection)
	}
	return nil
}
