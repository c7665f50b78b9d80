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

// Package blob reads source documents that were uploaded ahead of an
// ingestion request.
//
// A Locator names an object by bucket and key. ParseLocator accepts the URL
// forms callers send:
//
//	https://<bucket>.s3.<region>.amazonaws.com/<key>
//	s3://<bucket>/<key>
//	gs://<bucket>/<key>
//
// Bucket names follow <app>-<stage>-<tenantSuffix>; ParseBucketName splits
// them so the pipeline can derive collection naming from the upload
// location.
//
// FileStore serves objects from a local directory tree (one subdirectory per
// bucket) and GCSStore reads from Google Cloud Storage or its emulator.
package blob
