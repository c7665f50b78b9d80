package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/storage"
)

// Fields are the record attributes searched by default.
var Fields = []string{
	core.FieldSearchAttributes,
	core.FieldModelName,
	core.FieldModelSummary,
	core.FieldDocumentSummary,
}

// Result is a matching record and the fields that contributed words.
type Result struct {
	Item core.Item
	// Fields lists the searched attributes that contain at least one
	// query word, in search order.
	Fields []string
}

// ID returns the record id.
func (r Result) ID() string {
	return r.Item.ID()
}

// Searcher runs keyword searches over use case collections.
type Searcher struct {
	store  storage.Scanner
	fields []string
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithFields replaces the searched attributes.
func WithFields(fields ...string) Option {
	return func(s *Searcher) error {
		if len(fields) == 0 {
			return fmt.Errorf("at least one search field is required")
		}
		s.fields = slices.Clone(fields)
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.Scanner, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		store:  store,
		fields: Fields,
		logger: slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Find returns up to maxHits records in collection matching every word of
// query, ordered by id. maxHits <= 0 means no limit.
func (s *Searcher) Find(ctx context.Context, collection, query string, maxHits int) ([]Result, error) {
	return s.FindWithMonitor(ctx, collection, query, maxHits, nil)
}

// FindWithMonitor is Find with callbacks at each stage of the search.
func (s *Searcher) FindWithMonitor(ctx context.Context, collection, query string, maxHits int, monitor SearchMonitor) ([]Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	words := tokenize(query)
	monitor.Start(collection, query, words)
	if len(words) == 0 {
		return nil, ErrEmptyQuery
	}

	var (
		results []Result
		opts    storage.ScanOptions
	)
	for {
		page, err := s.store.Scan(ctx, collection, opts)
		if err != nil {
			s.logger.Error("error scanning collection", "collection", collection, "err", err)
			return nil, err
		}
		monitor.AfterPage(len(page.Items))

		for _, item := range page.Items {
			if fields, ok := s.match(item, words); ok {
				monitor.Hit(item, fields)
				results = append(results, Result{Item: item, Fields: fields})
			}
		}

		if page.Cursor == "" {
			break
		}
		opts.Cursor = page.Cursor
	}

	slices.SortFunc(results, func(a, b Result) int {
		return strings.Compare(a.ID(), b.ID())
	})
	if maxHits > 0 && len(results) > maxHits {
		results = results[:maxHits]
	}
	if results == nil {
		results = []Result{}
	}

	s.logger.Debug("search finished", "collection", collection, "query", query, "hits", len(results))
	monitor.Finish(results)
	return results, nil
}

// match reports whether item contains every word across the searched
// fields and which fields contributed.
func (s *Searcher) match(item core.Item, words []string) ([]string, bool) {
	all := make(map[string]bool)
	var fields []string
	for _, field := range s.fields {
		text := fieldText(item[field])
		if text == "" {
			continue
		}
		set := wordSet(text)
		contributed := false
		for _, w := range words {
			if set[w] {
				contributed = true
			}
		}
		if contributed {
			fields = append(fields, field)
		}
		for w := range set {
			all[w] = true
		}
	}
	return fields, containsAll(all, words)
}

// fieldText renders an attribute value as searchable text.
func fieldText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fieldText(e))
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(t, " ")
	default:
		return fmt.Sprint(t)
	}
}
