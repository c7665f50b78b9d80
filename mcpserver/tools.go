package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/storage"
)

const (
	defaultScanLimit   = 100
	defaultSearchLimit = 10
)

// ScanInput is the input schema for scan_collection.
type ScanInput struct {
	Collection      string `json:"collection" jsonschema:"full collection name, for example staging-fusefy-frameworks"`
	Prefix          string `json:"prefix,omitempty" jsonschema:"only records whose id starts with this prefix"`
	FilterAttribute string `json:"filter_attribute,omitempty" jsonschema:"attribute that must contain filter_value"`
	FilterValue     string `json:"filter_value,omitempty" jsonschema:"substring the filter attribute must contain"`
	Limit           int    `json:"limit,omitempty" jsonschema:"records examined per page (default 100)"`
	Cursor          string `json:"cursor,omitempty" jsonschema:"cursor returned by the previous page"`
}

// ScanOutput is the output schema for scan_collection.
type ScanOutput struct {
	Items  []core.Item `json:"items"`
	Count  int         `json:"count"`
	Cursor string      `json:"cursor,omitempty"`
}

// GetInput is the input schema for get_usecase.
type GetInput struct {
	Tenant string `json:"tenant" jsonschema:"tenant (cloud id) that owns the use case"`
	ID     string `json:"id" jsonschema:"use case id, for example AI-UC-AST-001"`
}

// GetOutput is the output schema for get_usecase.
type GetOutput struct {
	Usecase core.Item `json:"usecase"`
}

// SearchInput is the input schema for search_usecases.
type SearchInput struct {
	Tenant string `json:"tenant" jsonschema:"tenant (cloud id) whose use cases are searched"`
	Query  string `json:"query" jsonschema:"words that must all appear in the use case"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results (default 10)"`
}

// SearchOutput is the output schema for search_usecases.
type SearchOutput struct {
	Results []SearchHit `json:"results"`
	Count   int         `json:"count"`
}

// SearchHit is one search_usecases result.
type SearchHit struct {
	ID            string   `json:"id"`
	ModelName     string   `json:"model_name"`
	Category      string   `json:"category"`
	Summary       string   `json:"summary,omitempty"`
	MatchedFields []string `json:"matched_fields"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_collection",
		Description: "Read one page of records from a collection, optionally filtered",
	}, s.handleScan)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_usecase",
		Description: "Fetch a single AI use case record by tenant and id",
	}, s.handleGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_usecases",
		Description: "Find a tenant's AI use cases whose name, summary or search attributes contain every query word",
	}, s.handleSearch)
}

func (s *Server) handleScan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScanInput,
) (*mcp.CallToolResult, ScanOutput, error) {
	if err := s.checkCollection(input.Collection); err != nil {
		return nil, ScanOutput{}, err
	}
	if (input.FilterAttribute == "") != (input.FilterValue == "") {
		return nil, ScanOutput{}, errors.New("filter_attribute and filter_value must be given together")
	}

	opts := storage.ScanOptions{
		Prefix: input.Prefix,
		Limit:  input.Limit,
		Cursor: input.Cursor,
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultScanLimit
	}
	if input.FilterAttribute != "" {
		opts.Filter = storage.Contains(input.FilterAttribute, input.FilterValue)
	}

	page, err := s.store.Scan(ctx, input.Collection, opts)
	if err != nil {
		s.logger.Error("scan failed", "collection", input.Collection, "err", err)
		return nil, ScanOutput{}, fmt.Errorf("scanning %s: %w", input.Collection, err)
	}

	items := page.Items
	if items == nil {
		items = []core.Item{}
	}
	return nil, ScanOutput{Items: items, Count: len(items), Cursor: page.Cursor}, nil
}

func (s *Server) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInput,
) (*mcp.CallToolResult, GetOutput, error) {
	if strings.TrimSpace(input.Tenant) == "" || strings.TrimSpace(input.ID) == "" {
		return nil, GetOutput{}, errors.New("tenant and id are required")
	}

	item, err := s.store.Get(ctx, s.naming.Usecases(input.Tenant), input.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, GetOutput{}, fmt.Errorf("use case %s not found for tenant %s", input.ID, input.Tenant)
	}
	if err != nil {
		return nil, GetOutput{}, err
	}
	return nil, GetOutput{Usecase: item}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Tenant) == "" {
		return nil, SearchOutput{}, errors.New("tenant is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	results, err := s.searcher.Find(ctx, s.naming.Usecases(input.Tenant), input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchHit, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = SearchHit{
			ID:            r.ID(),
			ModelName:     r.Item.String(core.FieldModelName),
			Category:      r.Item.String(core.FieldUsecaseCategory),
			Summary:       core.Truncate(r.Item.String(core.FieldModelSummary), 300),
			MatchedFields: r.Fields,
		}
	}
	return nil, output, nil
}
