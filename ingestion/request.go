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

package ingestion

import (
	"fmt"
	"strings"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/storage"
)

// DefaultFilename is used for documents submitted without a name.
const DefaultFilename = "document.pdf"

// Document is raw file content submitted with the request.
type Document struct {
	Filename string
	Content  []byte
}

// Upload is an object that was stored before the request. Hash is the
// caller-computed content hash and becomes the record's documentHash.
type Upload struct {
	URL  string
	Hash string
}

// Request is one ingestion. Exactly one of Document or Upload is set.
type Request struct {
	// Tenant is the cloud id that scopes the use case collection.
	Tenant string

	// Naming overrides the pipeline naming. For uploads a zero Naming is
	// derived from the bucket name.
	Naming storage.Naming

	// RiskFrameworkID overrides the framework looked up in the store.
	RiskFrameworkID string

	// CloudProviderHint is used when the document names no provider.
	CloudProviderHint string

	Document *Document
	Upload   *Upload
}

// Validate checks the request shape.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Tenant) == "" {
		return fmt.Errorf("%w: cloud id is required", core.ErrInvalidRequest)
	}
	switch {
	case r.Document != nil && r.Upload != nil:
		return fmt.Errorf("%w: send either file content or an upload location, not both", core.ErrInvalidRequest)
	case r.Document != nil:
		if len(r.Document.Content) == 0 {
			return fmt.Errorf("%w: no file content provided", core.ErrInvalidRequest)
		}
	case r.Upload != nil:
		if strings.TrimSpace(r.Upload.URL) == "" || strings.TrimSpace(r.Upload.Hash) == "" {
			return fmt.Errorf("%w: hash and upload URL are required", core.ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: no document provided", core.ErrInvalidRequest)
	}
	return nil
}

// Result is the outcome of a successful ingestion.
type Result struct {
	UsecaseID    string
	Category     core.Category
	Approach     core.Approach
	DocumentHash string
	Collection   string
}
