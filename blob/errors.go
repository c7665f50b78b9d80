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

import "errors"

var (
	// ErrInvalidLocator indicates a URL that does not name a bucket and key.
	ErrInvalidLocator = errors.New("invalid object locator")

	// ErrInvalidBucketName indicates a bucket name outside <app>-<stage>-<suffix>.
	ErrInvalidBucketName = errors.New("bucket name does not follow <app>-<stage>-<tenant> format")

	// ErrNotFound indicates the object does not exist.
	ErrNotFound = errors.New("object not found")

	// ErrTooLarge indicates the object exceeds the configured read limit.
	ErrTooLarge = errors.New("object too large")
)
