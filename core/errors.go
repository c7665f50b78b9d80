// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Ingestion error taxonomy. Every error leaving the pipeline matches exactly
// one of these via errors.Is.
var (
	// ErrUnsupportedFormat indicates the document is not PDF, DOCX or TXT.
	ErrUnsupportedFormat = errors.New("unsupported file type")

	// ErrEmptyDocument indicates the document has no text after normalization.
	ErrEmptyDocument = errors.New("empty document")

	// ErrExtraction indicates a supported document could not be read.
	ErrExtraction = errors.New("text extraction failed")

	// ErrService indicates the LLM service call failed.
	ErrService = errors.New("llm service error")

	// ErrGeneration indicates the model output could not be parsed as a record.
	ErrGeneration = errors.New("use case generation failed")

	// ErrDuplicateDocument indicates a record with the same content hash exists.
	ErrDuplicateDocument = errors.New("duplicate document detected")

	// ErrStore indicates a record store read or write failed.
	ErrStore = errors.New("record store error")

	// ErrInvalidRequest indicates a malformed or incomplete request.
	ErrInvalidRequest = errors.New("invalid request")
)

// Domain validation errors
var (
	// ErrUnknownCategory is returned by ParseCategory for labels outside the taxonomy.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidRecord indicates a record failed validation before persistence.
	ErrInvalidRecord = errors.New("invalid record")
)

// snippetLimit bounds how much model output is kept in a GenerationError.
const snippetLimit = 200

// GenerationError carries a truncated copy of the unparseable model output.
type GenerationError struct {
	Snippet string
	Err     error
}

// NewGenerationError truncates raw to a diagnostic snippet.
func NewGenerationError(raw string, err error) *GenerationError {
	return &GenerationError{Snippet: Truncate(raw, snippetLimit), Err: err}
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (output: %q)", ErrGeneration, e.Err, e.Snippet)
	}
	return fmt.Sprintf("%s (output: %q)", ErrGeneration, e.Snippet)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// DuplicateError reports the id of the record that already holds the hash.
type DuplicateError struct {
	ExistingID string
}

func (e *DuplicateError) Error() string {
	if e.ExistingID == "" {
		return ErrDuplicateDocument.Error()
	}
	return fmt.Sprintf("document already exists with ID: %s", e.ExistingID)
}

// Is reports whether target is ErrDuplicateDocument.
func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicateDocument }

// Kind returns the taxonomy label for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return "UnsupportedFormat"
	case errors.Is(err, ErrEmptyDocument):
		return "EmptyDocument"
	case errors.Is(err, ErrExtraction):
		return "ExtractionError"
	case errors.Is(err, ErrDuplicateDocument):
		return "DuplicateDocument"
	case errors.Is(err, ErrInvalidRequest):
		return "InvalidRequest"
	case errors.Is(err, ErrGeneration):
		return "GenerationError"
	case errors.Is(err, ErrService):
		return "ServiceError"
	case errors.Is(err, ErrStore):
		return "StoreError"
	default:
		return "InternalError"
	}
}

// HTTPStatus maps err onto the status code returned to API callers.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK
	case "UnsupportedFormat", "EmptyDocument", "DuplicateDocument", "InvalidRequest":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns a short user-facing message for err that never includes
// store identifiers or raw model output.
func Message(err error) string {
	var dup *DuplicateError
	if errors.As(err, &dup) && dup.ExistingID != "" {
		return fmt.Sprintf("Document already exists with ID: %s", dup.ExistingID)
	}
	switch Kind(err) {
	case "":
		return "Document processed successfully"
	case "UnsupportedFormat":
		return "Unsupported file type. Please upload PDF, DOCX, or TXT files."
	case "EmptyDocument":
		return "No text content found in the document"
	case "ExtractionError":
		return "Failed to extract text from document"
	case "DuplicateDocument":
		return "Document already exists"
	case "InvalidRequest":
		return err.Error()
	case "GenerationError":
		return "Error generating usecase"
	case "ServiceError":
		return "Language model service unavailable"
	case "StoreError":
		return "Failed to save usecase"
	default:
		return "Internal server error"
	}
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
