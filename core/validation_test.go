package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func completeItem() Item {
	item := Item{}
	for _, f := range RequiredFields {
		item[f] = "value"
	}
	item[FieldLevel] = 2
	item[FieldIsProposalGenerated] = false
	item[FieldQuestions] = []any{}
	item[FieldMetrics] = []any{map[string]any{"metricName": "Accuracy"}}
	item[FieldStatus] = StatusNotStarted
	item[FieldID] = "AI-UC-AST-001"
	item[FieldDocumentHash] = "abc"
	return item
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Item)
		wantErr bool
	}{
		{name: "valid record", mutate: func(Item) {}},
		{name: "bad id prefix", mutate: func(it Item) { it[FieldID] = "UC-001" }, wantErr: true},
		{name: "short suffix", mutate: func(it Item) { it[FieldID] = "AI-UC-AST-01" }, wantErr: true},
		{name: "timestamp fallback id is valid", mutate: func(it Item) { it[FieldID] = "AI-UC-AST-1760000000" }},
		{name: "missing hash", mutate: func(it Item) { delete(it, FieldDocumentHash) }, wantErr: true},
		{name: "wrong status", mutate: func(it Item) { it[FieldStatus] = "Done" }, wantErr: true},
		{name: "blank required field", mutate: func(it Item) { it["sector"] = "  " }, wantErr: true},
		{name: "empty metrics", mutate: func(it Item) { it[FieldMetrics] = []any{} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := completeItem()
			tt.mutate(item)
			err := ValidateRecord(item, DefaultIDPrefix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}

	if err := ValidateRecord(nil, DefaultIDPrefix); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("nil record: got %v", err)
	}
}

func TestMissingFields(t *testing.T) {
	item := completeItem()
	delete(item, "department")
	item["impact"] = nil

	missing := MissingFields(item)
	if strings.Join(missing, ",") != "department,impact" {
		t.Errorf("MissingFields() = %v", missing)
	}
}

func TestToDecimal(t *testing.T) {
	in := map[string]any{
		"threshold": 85.5,
		"level":     3,
		"nested":    []any{map[string]any{"score": float32(0.25)}},
		"sci":       json.Number("1e2"),
		"plain":     json.Number("12"),
		"name":      "x",
	}

	out := ToDecimal(in).(map[string]any)

	if out["threshold"] != json.Number("85.5") {
		t.Errorf("threshold = %#v", out["threshold"])
	}
	if out["level"] != 3 {
		t.Errorf("level = %#v", out["level"])
	}
	nested := out["nested"].([]any)[0].(map[string]any)
	if nested["score"] != json.Number("0.25") {
		t.Errorf("nested score = %#v", nested["score"])
	}
	if out["sci"] != json.Number("100") {
		t.Errorf("sci = %#v", out["sci"])
	}
	if out["plain"] != json.Number("12") {
		t.Errorf("plain = %#v", out["plain"])
	}
	if out["name"] != "x" {
		t.Errorf("name = %#v", out["name"])
	}
}

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   string
		wantStatus int
	}{
		{"nil", nil, "", http.StatusOK},
		{"unsupported", ErrUnsupportedFormat, "UnsupportedFormat", http.StatusBadRequest},
		{"empty", ErrEmptyDocument, "EmptyDocument", http.StatusBadRequest},
		{"duplicate", &DuplicateError{ExistingID: "AI-UC-AST-001"}, "DuplicateDocument", http.StatusBadRequest},
		{"generation", NewGenerationError("{bad", errors.New("eof")), "GenerationError", http.StatusInternalServerError},
		{"wrapped store", errors.Join(ErrStore, errors.New("disk full")), "StoreError", http.StatusInternalServerError},
		{"unknown", errors.New("boom"), "InternalError", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", got, tt.wantKind)
			}
			if got := HTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func TestMessage_Duplicate(t *testing.T) {
	msg := Message(&DuplicateError{ExistingID: "AI-UC-AST-007"})
	if msg != "Document already exists with ID: AI-UC-AST-007" {
		t.Errorf("Message() = %q", msg)
	}
}

func TestGenerationError_Snippet(t *testing.T) {
	raw := strings.Repeat("x", 500)
	err := NewGenerationError(raw, nil)
	if len([]rune(err.Snippet)) != snippetLimit+3 {
		t.Errorf("snippet length = %d", len(err.Snippet))
	}
	if !errors.Is(err, ErrGeneration) {
		t.Errorf("GenerationError should match ErrGeneration")
	}
}
