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

package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/poiesic/usecasegen/core"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// DetectFormat resolves the document format from the filename. The MIME
// type registered for the extension is consulted first, then the bare
// extension, so hosts without a DOCX mime entry still resolve correctly.
func DetectFormat(filename string) core.Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return core.FormatUnknown
	}

	if mt := mime.TypeByExtension(ext); mt != "" {
		base, _, _ := strings.Cut(mt, ";")
		switch strings.TrimSpace(base) {
		case mimePDF:
			return core.FormatPDF
		case mimeDOCX:
			return core.FormatDOCX
		case mimeText:
			return core.FormatTXT
		}
	}

	switch ext {
	case ".pdf":
		return core.FormatPDF
	case ".docx":
		return core.FormatDOCX
	case ".txt":
		return core.FormatTXT
	default:
		return core.FormatUnknown
	}
}

// Extract reads the document text, normalizes it and computes the content
// hash. The hash is over the normalized text so byte-level differences in
// the container do not defeat deduplication.
func Extract(data []byte, filename string) (core.ExtractedText, error) {
	var (
		raw string
		err error
	)

	format := DetectFormat(filename)
	switch format {
	case core.FormatPDF:
		raw, err = pdfText(data)
	case core.FormatDOCX:
		raw, err = docxText(data)
	case core.FormatTXT:
		raw = strings.ToValidUTF8(string(data), "\uFFFD")
	default:
		return core.ExtractedText{}, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return core.ExtractedText{}, fmt.Errorf("%w: %s: %v", core.ErrExtraction, format, err)
	}

	text := Normalize(raw)
	if text == "" {
		return core.ExtractedText{}, core.ErrEmptyDocument
	}

	return core.ExtractedText{Text: text, ContentHash: Hash(text)}, nil
}

// Normalize collapses every whitespace run to a single space and trims.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Hash returns the lowercase hex SHA-256 of text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
