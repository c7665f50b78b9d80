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

package blob

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// DefaultMaxObjectSize bounds how many bytes a Store reads for one object.
const DefaultMaxObjectSize = 50 << 20

// Locator identifies an object in a bucket.
type Locator struct {
	Bucket string
	Key    string
	// URL is the string the locator was parsed from.
	URL string
}

// Filename returns the last path element of the key.
func (l Locator) Filename() string {
	return path.Base(l.Key)
}

func (l Locator) String() string {
	if l.URL != "" {
		return l.URL
	}
	return fmt.Sprintf("%s/%s", l.Bucket, l.Key)
}

// ParseLocator parses an S3 virtual-hosted URL, an s3:// URL or a gs:// URL.
func ParseLocator(raw string) (Locator, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, fmt.Errorf("%w: %v", ErrInvalidLocator, err)
	}

	loc := Locator{URL: raw, Key: strings.TrimPrefix(u.Path, "/")}
	switch strings.ToLower(u.Scheme) {
	case "s3", "gs":
		loc.Bucket = u.Host
	case "https", "http":
		bucket, _, ok := strings.Cut(u.Host, ".s3")
		if !ok || !strings.HasSuffix(u.Host, ".amazonaws.com") {
			return Locator{}, fmt.Errorf("%w: %s is not an S3 host", ErrInvalidLocator, u.Host)
		}
		loc.Bucket = bucket
	default:
		return Locator{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocator, u.Scheme)
	}

	if loc.Bucket == "" || loc.Key == "" {
		return Locator{}, fmt.Errorf("%w: %q has no bucket or key", ErrInvalidLocator, raw)
	}
	return loc, nil
}

// BucketInfo is the deployment naming encoded in a bucket name.
type BucketInfo struct {
	App          string
	Stage        string
	TenantSuffix string
}

// ParseBucketName splits <app>-<stage>-<tenantSuffix>. Extra middle parts are
// ignored: the suffix is always the last part.
func ParseBucketName(bucket string) (BucketInfo, error) {
	parts := strings.Split(bucket, "-")
	if len(parts) < 3 {
		return BucketInfo{}, fmt.Errorf("%w: %q", ErrInvalidBucketName, bucket)
	}
	info := BucketInfo{App: parts[0], Stage: parts[1], TenantSuffix: parts[len(parts)-1]}
	if info.App == "" || info.Stage == "" || info.TenantSuffix == "" {
		return BucketInfo{}, fmt.Errorf("%w: %q", ErrInvalidBucketName, bucket)
	}
	return info, nil
}

// Store fetches object contents.
type Store interface {
	Get(ctx context.Context, loc Locator) ([]byte, error)
}
