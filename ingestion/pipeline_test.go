package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/ai/mock"
	"github.com/poiesic/usecasegen/blob"
	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/extract"
	"github.com/poiesic/usecasegen/storage"
	"github.com/poiesic/usecasegen/storage/badger"
	redisstore "github.com/poiesic/usecasegen/storage/redis"
)

const tenant = "t1"

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

// agenticDocument is a roughly 500 word use case mentioning multi-agent
// orchestration and AWS.
func agenticDocument() string {
	paragraph := "The travel desk wants a multi-agent orchestration system on AWS where a planner agent " +
		"delegates flight search, hotel booking and expense checks to specialist agents. "
	return strings.Repeat(paragraph, 20)
}

type responses struct {
	classify string
	summary  string
	record   string
	design   string

	classifyErr error
	summaryErr  error
	recordErr   error
	designErr   error
}

func defaultResponses() *responses {
	return &responses{
		classify: "Category: Agentic AI\nApproach: Next.js + ADK + MCP\nReason: A planner coordinates specialist agents.",
		summary:  "Summary: Agents plan business travel.\nKey Points:\n- planner\n- specialists",
		record:   `{"modelName": "Travel Orchestrator", "platform": ["Python", "AWS"], "sector": "Travel", "AIMethodologyType": "Agent Orchestration", "documentType": "FRD", "userId": "u-1"}`,
		design:   "<h1>Design</h1>",
	}
}

// route answers each pipeline call by its request shape.
func (r *responses) route(ctx context.Context, req ai.Request) (string, error) {
	switch {
	case req.JSONMode:
		return r.record, r.recordErr
	case req.MaxTokens == 300:
		return r.classify, r.classifyErr
	case req.MaxTokens == 600:
		return r.summary, r.summaryErr
	default:
		return r.design, r.designErr
	}
}

type fixture struct {
	pipeline  *Pipeline
	store     storage.RecordStore
	completer *mock.MockCompleter
	responses *responses
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	r := defaultResponses()
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = r.route

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	p, err := NewPipeline(store, mock.NewMockProviderWithCompleter(completer), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return &fixture{pipeline: p, store: store, completer: completer, responses: r}
}

func textRequest(text string) Request {
	return Request{
		Tenant:   tenant,
		Document: &Document{Filename: "usecase.txt", Content: []byte(text)},
	}
}

func (f *fixture) usecases(t *testing.T) []core.Item {
	t.Helper()
	items, err := storage.ScanAll(context.Background(), f.store, storage.DefaultNaming().Usecases(tenant), storage.ScanOptions{})
	require.NoError(t, err)
	return items
}

func TestNewPipeline_Validation(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = NewPipeline(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewPipeline(store, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewPipeline(store, mock.NewMockProvider(), WithIDPrefix(""))
	assert.Error(t, err)
}

func TestIngest_AgenticTextScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Put(ctx, "staging-fusefy-frameworks", core.Item{
		"id": "fw-other", "name": "ISO 42001", "assessmentCategory": "AI Evaluation Engine",
	}))
	require.NoError(t, f.store.Put(ctx, "staging-fusefy-frameworks", core.Item{
		"id": "fw-nist", "name": "NIST AI RMF", "assessmentCategory": "AI Evaluation Engine",
	}))

	text := agenticDocument()
	res, err := f.pipeline.Ingest(ctx, textRequest(text))
	require.NoError(t, err)

	assert.Equal(t, "AI-UC-AST-001", res.UsecaseID)
	assert.Equal(t, core.CategoryAgenticAI, res.Category)
	assert.Equal(t, core.ApproachOrchestratedMultiAgent, res.Approach)
	assert.Equal(t, "staging-fusefy-usecaseAssessments-t1", res.Collection)

	hash := extract.Hash(extract.Normalize(text))
	assert.Equal(t, hash, res.DocumentHash)

	record, err := f.store.Get(ctx, res.Collection, res.UsecaseID)
	require.NoError(t, err)

	assert.Equal(t, "Agentic AI", record[core.FieldUsecaseCategory])
	assert.Equal(t, "Agentic AI", record[core.FieldAICategory])
	assert.Equal(t, "MCP-Oriented Orchestration", record[core.FieldAIApproach])
	assert.Equal(t, "AWS", record[core.FieldCloudProvider])
	assert.Equal(t, "AWS", record[core.FieldAICloudProvider])
	assert.Equal(t, core.StatusNotStarted, record[core.FieldStatus])
	assert.Equal(t, core.InventoryCategory, record[core.FieldCategory])
	assert.Equal(t, core.ProcessingCompleted, record[core.FieldProcessingStatus])
	assert.Equal(t, "Python, AWS", record[core.FieldPlatform])
	assert.Equal(t, "fw-nist", record[core.FieldRiskFrameworkID])
	assert.Equal(t, hash, record[core.FieldDocumentHash])
	assert.Equal(t, "s3://your-bucket/t1/"+hash+"/usecase.txt", record[core.FieldSourceDocURL])
	assert.Equal(t, "2025-06-01T09:30:00Z", record[core.FieldCreatedAt])
	assert.Equal(t, record[core.FieldCreatedAt], record[core.FieldUpdatedAt])
	assert.Contains(t, record[core.FieldDocumentSummary], "Agents plan business travel")
	assert.Equal(t, "<h1>Design</h1>", record[core.FieldDesignDocument])
	assert.NotContains(t, record, "documentType")
	assert.NotContains(t, record, "userId")

	metrics, ok := record[core.FieldMetrics].([]any)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(metrics), 4)

	assert.NoError(t, core.ValidateRecord(record, core.DefaultIDPrefix))

	// summarize, classify, generate, design
	assert.Equal(t, 4, f.completer.CallCount())
}

func TestIngest_DuplicateReferencesFirstID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()))
	require.NoError(t, err)
	calls := f.completer.CallCount()

	// Whitespace differences normalize to the same hash.
	_, err = f.pipeline.Ingest(ctx, textRequest("  "+agenticDocument()+"\n\n"))
	require.Error(t, err)

	var dup *core.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.UsecaseID, dup.ExistingID)
	assert.ErrorIs(t, err, core.ErrDuplicateDocument)
	assert.Equal(t, "Document already exists with ID: AI-UC-AST-001", core.Message(err))

	assert.Equal(t, calls, f.completer.CallCount(), "duplicates must not reach the model")
	assert.Len(t, f.usecases(t), 1)
}

func TestIngest_SequentialIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, want := range []string{"AI-UC-AST-001", "AI-UC-AST-002", "AI-UC-AST-003"} {
		res, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()+strings.Repeat(" more", i+1)))
		require.NoError(t, err)
		assert.Equal(t, want, res.UsecaseID)
	}
}

func TestIngest_SummaryFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.responses.summaryErr = &ai.ServiceError{Op: "complete", Err: errors.New("timeout")}

	res, err := f.pipeline.Ingest(context.Background(), textRequest(agenticDocument()))
	require.NoError(t, err)

	record, err := f.store.Get(context.Background(), res.Collection, res.UsecaseID)
	require.NoError(t, err)
	assert.Equal(t, "", record[core.FieldDocumentSummary])
}

func TestIngest_ClassifierFallback(t *testing.T) {
	f := newFixture(t)
	f.responses.classifyErr = &ai.ServiceError{Op: "complete", Err: errors.New("down")}

	res, err := f.pipeline.Ingest(context.Background(), textRequest("predict customer churn using regression"))
	require.NoError(t, err)
	assert.Equal(t, core.CategoryMachineLearning, res.Category)
}

func TestIngest_TerminalFailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *responses)
		wantErr error
	}{
		{
			name:    "unparseable record",
			mutate:  func(r *responses) { r.record = "Sorry, I can't do that." },
			wantErr: core.ErrGeneration,
		},
		{
			name:    "generation service error",
			mutate:  func(r *responses) { r.recordErr = &ai.ServiceError{Op: "complete", Err: errors.New("503")} },
			wantErr: core.ErrService,
		},
		{
			name:    "design document service error",
			mutate:  func(r *responses) { r.designErr = &ai.ServiceError{Op: "complete", Err: errors.New("503")} },
			wantErr: core.ErrService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.mutate(f.responses)

			_, err := f.pipeline.Ingest(context.Background(), textRequest(agenticDocument()))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.usecases(t))
		})
	}
}

func TestIngest_DesignDocumentsDisabled(t *testing.T) {
	f := newFixture(t, WithDesignDocuments(false))
	f.responses.designErr = errors.New("must not be called")

	res, err := f.pipeline.Ingest(context.Background(), textRequest(agenticDocument()))
	require.NoError(t, err)
	assert.Equal(t, 3, f.completer.CallCount())

	record, err := f.store.Get(context.Background(), res.Collection, res.UsecaseID)
	require.NoError(t, err)
	assert.Equal(t, "", record[core.FieldDesignDocument])
}

func TestIngest_RequestOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Put(ctx, "prod-acme-frameworks", core.Item{
		"id": "fw-nist", "name": "NIST AI RMF", "assessmentCategory": "AI Evaluation Engine",
	}))

	req := textRequest("A chatbot summarizes support tickets")
	req.Naming = storage.Naming{Stage: "prod", App: "acme"}
	req.RiskFrameworkID = "fw-custom"
	req.CloudProviderHint = "Azure"

	res, err := f.pipeline.Ingest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "prod-acme-usecaseAssessments-t1", res.Collection)

	record, err := f.store.Get(ctx, res.Collection, res.UsecaseID)
	require.NoError(t, err)
	assert.Equal(t, "fw-custom", record[core.FieldRiskFrameworkID])
	assert.Equal(t, "Azure", record[core.FieldCloudProvider])
}

func TestIngest_NoFrameworkStoresNull(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Ingest(context.Background(), textRequest(agenticDocument()))
	require.NoError(t, err)

	record, err := f.store.Get(context.Background(), res.Collection, res.UsecaseID)
	require.NoError(t, err)
	v, ok := record[core.FieldRiskFrameworkID]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestIngest_CatalogueReachesPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Put(ctx, "staging-fusefy-methodologyMetricsMapping", core.Item{
		"id":                "m1",
		"AIMethodologyType": "Agent Orchestration",
		"metrics":           []any{map[string]any{"metricName": "Task Completion Rate"}},
	}))

	_, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()))
	require.NoError(t, err)

	var generatePrompt string
	for _, req := range f.completer.Requests() {
		if req.JSONMode {
			generatePrompt = req.Prompt
		}
	}
	assert.Contains(t, generatePrompt, "MASTER AIMethodologyType OPTIONS")
	assert.Contains(t, generatePrompt, "Agent Orchestration")
}

func TestIngest_Upload(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "fusefy-staging-abc123", "docs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usecase.txt"), []byte(agenticDocument()), 0644))

	f := newFixture(t, WithBlobStore(blob.NewFileStore(root)))
	ctx := context.Background()

	req := Request{
		Tenant: tenant,
		Upload: &Upload{URL: "s3://fusefy-staging-abc123/docs/usecase.txt", Hash: "caller-hash"},
	}
	res, err := f.pipeline.Ingest(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "caller-hash", res.DocumentHash)
	assert.Equal(t, "staging-fusefy-usecaseAssessments-t1", res.Collection)

	record, err := f.store.Get(ctx, res.Collection, res.UsecaseID)
	require.NoError(t, err)
	assert.Equal(t, "caller-hash", record[core.FieldDocumentHash])
	assert.Equal(t, "s3://fusefy-staging-abc123/docs/usecase.txt", record[core.FieldSourceDocURL])

	_, err = f.pipeline.Ingest(ctx, req)
	assert.ErrorIs(t, err, core.ErrDuplicateDocument)

	missing := Request{Tenant: tenant, Upload: &Upload{URL: "s3://fusefy-staging-abc123/docs/nope.txt", Hash: "h"}}
	_, err = f.pipeline.Ingest(ctx, missing)
	assert.ErrorIs(t, err, core.ErrInvalidRequest)

	badBucket := Request{Tenant: tenant, Upload: &Upload{URL: "s3://plainbucket/docs/usecase.txt", Hash: "h"}}
	_, err = f.pipeline.Ingest(ctx, badBucket)
	assert.ErrorIs(t, err, core.ErrInvalidRequest)
}

func TestIngest_InvalidRequests(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "missing tenant", req: Request{Document: &Document{Content: []byte("x")}}, wantErr: core.ErrInvalidRequest},
		{name: "no document", req: Request{Tenant: tenant}, wantErr: core.ErrInvalidRequest},
		{name: "empty content", req: Request{Tenant: tenant, Document: &Document{Filename: "a.txt"}}, wantErr: core.ErrInvalidRequest},
		{
			name:    "both shapes",
			req:     Request{Tenant: tenant, Document: &Document{Content: []byte("x")}, Upload: &Upload{URL: "s3://a-b-c/k", Hash: "h"}},
			wantErr: core.ErrInvalidRequest,
		},
		{name: "upload without hash", req: Request{Tenant: tenant, Upload: &Upload{URL: "s3://a-b-c/k"}}, wantErr: core.ErrInvalidRequest},
		{name: "upload without blob store", req: Request{Tenant: tenant, Upload: &Upload{URL: "s3://a-b-c/k", Hash: "h"}}, wantErr: ErrBlobStoreRequired},
		{name: "unsupported format", req: Request{Tenant: tenant, Document: &Document{Filename: "a.png", Content: []byte("x")}}, wantErr: core.ErrUnsupportedFormat},
		{name: "blank text", req: Request{Tenant: tenant, Document: &Document{Filename: "a.txt", Content: []byte(" \n\t ")}}, wantErr: core.ErrEmptyDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.Ingest(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Zero(t, f.completer.CallCount())
}

type sequenceAllocator struct {
	ids   []string
	calls atomic.Int32
}

func (s *sequenceAllocator) Next(ctx context.Context, collection, prefix string) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if n >= len(s.ids) {
		return s.ids[len(s.ids)-1], nil
	}
	return s.ids[n], nil
}

func TestIngest_ReallocatesTakenID(t *testing.T) {
	alloc := &sequenceAllocator{ids: []string{"AI-UC-AST-001", "AI-UC-AST-002"}}
	f := newFixture(t, WithAllocator(alloc))
	ctx := context.Background()

	collection := storage.DefaultNaming().Usecases(tenant)
	require.NoError(t, f.store.Put(ctx, collection, core.Item{"id": "AI-UC-AST-001", "documentHash": "other"}))

	res, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()))
	require.NoError(t, err)
	assert.Equal(t, "AI-UC-AST-002", res.UsecaseID)

	kept, err := f.store.Get(ctx, collection, "AI-UC-AST-001")
	require.NoError(t, err)
	assert.Equal(t, "other", kept[core.FieldDocumentHash])
}

func TestIngest_AllocationExhausted(t *testing.T) {
	alloc := &sequenceAllocator{ids: []string{"AI-UC-AST-001"}}
	f := newFixture(t, WithAllocator(alloc))
	ctx := context.Background()

	collection := storage.DefaultNaming().Usecases(tenant)
	require.NoError(t, f.store.Put(ctx, collection, core.Item{"id": "AI-UC-AST-001", "documentHash": "other"}))

	_, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()))
	assert.ErrorIs(t, err, core.ErrStore)
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Equal(t, int32(maxPersistAttempts), alloc.calls.Load())
}

type failingAllocator struct {
	err   error
	calls atomic.Int32
}

func (f *failingAllocator) Next(context.Context, string, string) (string, error) {
	f.calls.Add(1)
	return "", f.err
}

func TestIngest_AllocatorFailureFallsBack(t *testing.T) {
	alloc := &failingAllocator{err: errors.New("counter unavailable")}
	f := newFixture(t, WithAllocator(alloc))
	ctx := context.Background()

	res, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()))
	require.NoError(t, err)
	assert.Equal(t, "AI-UC-AST-001", res.UsecaseID)
	assert.Equal(t, int32(1), alloc.calls.Load())
	assert.Len(t, f.usecases(t), 1)
}

func TestIngest_RedisCounterUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	var f *fixture
	seed := func(ctx context.Context, collection, prefix string) (int64, error) {
		return NewScanAllocator(f.store).MaxSuffix(ctx, collection, prefix)
	}
	f = newFixture(t, WithAllocator(redisstore.NewCounter(client, seed)))
	ctx := context.Background()

	first, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()))
	require.NoError(t, err)
	assert.Equal(t, "AI-UC-AST-001", first.UsecaseID)

	mr.Close()

	second, err := f.pipeline.Ingest(ctx, textRequest(agenticDocument()+" A second revision."))
	require.NoError(t, err)
	assert.Equal(t, "AI-UC-AST-002", second.UsecaseID)
	assert.Len(t, f.usecases(t), 2)
}

func TestAllocate_CanceledDoesNotFallBack(t *testing.T) {
	alloc := &failingAllocator{err: context.Canceled}
	f := newFixture(t, WithAllocator(alloc))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.allocate(ctx, storage.DefaultNaming().Usecases(tenant))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), alloc.calls.Load())
}

// blobFunc adapts a function to blob.Store.
type blobFunc func(ctx context.Context, loc blob.Locator) ([]byte, error)

func (f blobFunc) Get(ctx context.Context, loc blob.Locator) ([]byte, error) {
	return f(ctx, loc)
}

func TestIngest_UploadFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "object too large", err: fmt.Errorf("read docs/usecase.txt: %w", blob.ErrTooLarge), wantErr: core.ErrInvalidRequest},
		{name: "object missing", err: fmt.Errorf("get docs/usecase.txt: %w", blob.ErrNotFound), wantErr: core.ErrInvalidRequest},
		{name: "backend failure", err: errors.New("connection reset"), wantErr: core.ErrStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blobFunc(func(context.Context, blob.Locator) ([]byte, error) {
				return nil, tt.err
			})
			f := newFixture(t, WithBlobStore(store))

			req := Request{
				Tenant: tenant,
				Upload: &Upload{URL: "s3://fusefy-staging-abc123/docs/usecase.txt", Hash: "h"},
			}
			_, err := f.pipeline.Ingest(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.completer.CallCount())
			assert.Empty(t, f.usecases(t))
		})
	}
}
