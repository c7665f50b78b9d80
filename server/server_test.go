package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/ai/mock"
	"github.com/poiesic/usecasegen/blob"
	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/ingestion"
	"github.com/poiesic/usecasegen/storage"
	"github.com/poiesic/usecasegen/storage/badger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const document = "Our travel desk wants multi-agent orchestration on AWS: a planner agent delegates bookings to specialist agents."

func scripted(ctx context.Context, req ai.Request) (string, error) {
	switch {
	case req.JSONMode:
		return `{"modelName": "Travel Orchestrator", "platform": ["Python", "AWS"], "sector": "Travel"}`, nil
	case req.MaxTokens == 300:
		return "Category: Agentic AI\nApproach: Next.js + ADK + MCP\nReason: agents", nil
	case req.MaxTokens == 600:
		return "Summary: travel agents", nil
	default:
		return "<h1>Design</h1>", nil
	}
}

type harness struct {
	server *Server
	store  storage.RecordStore
	root   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	completer := mock.NewMockCompleter()
	completer.CompleteFunc = scripted

	root := t.TempDir()
	pipeline, err := ingestion.NewPipeline(store, mock.NewMockProviderWithCompleter(completer),
		ingestion.WithBlobStore(blob.NewFileStore(root)))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	srv, err := New(pipeline, store, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)

	return &harness{server: srv, store: store, root: root}
}

func (h *harness) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func uploadBody(text string) map[string]string {
	return map[string]string{
		"file_content": base64.StdEncoding.EncodeToString([]byte(text)),
		"filename":     "usecase.txt",
		"cloud_id":     "t1",
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2025-06-01T12:00:00Z", body["timestamp"])
}

func TestInfo(t *testing.T) {
	h := newHarness(t)

	for _, target := range []string{"/", "/unknown/path"} {
		rec := h.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "POST /upload-document")
	}
}

func TestUploadDocument(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/upload-document", uploadBody(document))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "AI-UC-AST-001", env.UsecaseID)
	assert.Equal(t, "Agentic AI", env.Category)
	assert.NotEmpty(t, env.DocumentHash)
	assert.Equal(t, "Document processed successfully", env.Message)
	assert.Empty(t, env.Error)

	item, err := h.store.Get(context.Background(), "staging-fusefy-usecaseAssessments-t1", "AI-UC-AST-001")
	require.NoError(t, err)
	assert.Equal(t, "AWS", item[core.FieldCloudProvider])

	// Same bytes again is a duplicate referencing the first id.
	rec = h.do(t, http.MethodPost, "/upload-document", uploadBody(document))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env = decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "DuplicateDocument", env.Error)
	assert.Equal(t, "Document already exists with ID: AI-UC-AST-001", env.Message)
}

func TestUploadDocument_StageAndApp(t *testing.T) {
	h := newHarness(t)

	body := uploadBody(document)
	body["stage_name"] = "prod"
	body["app_name"] = "acme"
	rec := h.do(t, http.MethodPost, "/upload-document", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, err := h.store.Get(context.Background(), "prod-acme-usecaseAssessments-t1", "AI-UC-AST-001")
	assert.NoError(t, err)
}

func TestUploadDocument_BadRequests(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name    string
		body    any
		message string
		kind    string
	}{
		{name: "not json", body: "{", message: "Invalid request body", kind: "InvalidRequest"},
		{name: "no content", body: map[string]string{"cloud_id": "t1"}, message: "No file content provided", kind: "Missing file_content"},
		{name: "no cloud id", body: map[string]string{"file_content": "eA=="}, message: "cloud_id is required", kind: "Missing cloud_id"},
		{name: "not base64", body: map[string]string{"file_content": "%%%", "cloud_id": "t1"}, message: "file_content must be base64 encoded", kind: "InvalidRequest"},
		{
			name:    "unsupported type",
			body:    map[string]string{"file_content": "eA==", "cloud_id": "t1", "filename": "a.png"},
			message: "Unsupported file type. Please upload PDF, DOCX, or TXT files.",
			kind:    "UnsupportedFormat",
		},
		{
			name:    "blank text",
			body:    map[string]string{"file_content": base64.StdEncoding.EncodeToString([]byte("   ")), "cloud_id": "t1", "filename": "a.txt"},
			message: "No text content found in the document",
			kind:    "EmptyDocument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/upload-document", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.kind, env.Error)
		})
	}
}

func TestUploadDocument_TooLarge(t *testing.T) {
	h := newHarness(t)
	srv, err := New(h.server.ingester, h.store, WithMaxBodyBytes(64))
	require.NoError(t, err)
	h.server = srv

	rec := h.do(t, http.MethodPost, "/upload-document", uploadBody(strings.Repeat("x", 200)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestProcessUsecase(t *testing.T) {
	h := newHarness(t)
	dir := filepath.Join(h.root, "fusefy-staging-abc123", "docs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usecase.txt"), []byte(document), 0644))

	rec := h.do(t, http.MethodPost, "/process-usecase", map[string]string{
		"hash":            "caller-hash",
		"s3url":           "https://fusefy-staging-abc123.s3.us-east-1.amazonaws.com/docs/usecase.txt",
		"cloudId":         "t1",
		"riskframeworkid": "fw-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "caller-hash", env.DocumentHash)

	item, err := h.store.Get(context.Background(), "staging-fusefy-usecaseAssessments-t1", env.UsecaseID)
	require.NoError(t, err)
	assert.Equal(t, "fw-1", item[core.FieldRiskFrameworkID])

	t.Run("missing fields", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/process-usecase", map[string]string{"hash": "h"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeEnvelope(t, rec).Message, `"s3url"`)
	})

	t.Run("missing object", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/process-usecase", map[string]string{
			"hash": "h2", "s3url": "s3://fusefy-staging-abc123/docs/missing.txt", "cloudId": "t1",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "InvalidRequest", decodeEnvelope(t, rec).Error)
	})
}

// stubIngester returns a fixed error.
type stubIngester struct{ err error }

func (s stubIngester) Ingest(context.Context, ingestion.Request) (ingestion.Result, error) {
	return ingestion.Result{}, s.err
}

func (s stubIngester) Naming() storage.Naming { return storage.DefaultNaming() }

func TestErrorMapping(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"service", &ai.ServiceError{Op: "complete", Err: errors.New("dial tcp 10.0.0.1")}, http.StatusInternalServerError, "Language model service unavailable"},
		{"generation", core.NewGenerationError("raw model text", errors.New("bad json")), http.StatusInternalServerError, "Error generating usecase"},
		{"store", errors.Join(core.ErrStore, errors.New("table staging-fusefy-x")), http.StatusInternalServerError, "Failed to save usecase"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, err := New(stubIngester{err: tt.err}, store)
			require.NoError(t, err)
			h := &harness{server: srv, store: store}

			rec := h.do(t, http.MethodPost, "/upload-document", uploadBody(document))
			require.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.Equal(t, tt.message, env.Message)
			assert.NotContains(t, rec.Body.String(), "10.0.0.1")
			assert.NotContains(t, rec.Body.String(), "staging-fusefy-x")
		})
	}
}

func TestGetAndSearchUsecases(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodPost, "/upload-document", uploadBody(document))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/usecases/t1/AI-UC-AST-001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Success bool           `json:"success"`
		Usecase map[string]any `json:"usecase"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Travel Orchestrator", got.Usecase["modelName"])

	rec = h.do(t, http.MethodGet, "/usecases/t1/AI-UC-AST-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/usecases/t1/search?q=orchestrator", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Equal(t, 1, found.Count)
	assert.Equal(t, "AI-UC-AST-001", found.Results[0]["id"])

	rec = h.do(t, http.MethodGet, "/usecases/t1/search?q=the", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/usecases/t1/search?q=travel&limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/usecases/t1/search?q=travel&stage=prod", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestMiddleware(t *testing.T) {
	h := newHarness(t)

	t.Run("request id assigned", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/health", nil)
		assert.NotEmpty(t, rec.Header().Get(headerRequestID))
	})

	t.Run("request id propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(headerRequestID, "abc-123")
		rec := httptest.NewRecorder()
		h.server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
	})

	t.Run("cors preflight allows any origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/upload-document", nil)
		req.Header.Set("Origin", "https://dashboard.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestNew_Validation(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = New(nil, store)
	assert.Error(t, err)
	_, err = New(stubIngester{}, nil)
	assert.Error(t, err)
	_, err = New(stubIngester{}, store, WithMaxBodyBytes(0))
	assert.Error(t, err)
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.server.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
