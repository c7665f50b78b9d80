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

package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/extract"
	"github.com/poiesic/usecasegen/ingestion"
	"github.com/poiesic/usecasegen/storage"
)

// Ingester runs one ingestion. *ingestion.Pipeline implements it.
type Ingester interface {
	Ingest(ctx context.Context, req ingestion.Request) (ingestion.Result, error)
}

// Config holds configuration for a bulk run.
type Config struct {
	// Workers is the number of files ingested concurrently
	Workers int

	// ReportInterval is how often to report progress (number of files)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per file for transient failures
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxFileSize skips larger files. Zero means no limit.
	MaxFileSize int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:        4,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		MaxFileSize:    50 << 20,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0")
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max-file-size must not be negative")
	}
	return nil
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path      string
	Outcome   Outcome
	UsecaseID string
	Category  string
	Err       error
}

// Summary reports a finished run.
type Summary struct {
	Total      int
	Succeeded  int
	Duplicates int
	Failed     int
	Elapsed    time.Duration
	// Files is ordered by path.
	Files []FileResult
}

// Runner ingests directories of documents.
type Runner struct {
	ingester Ingester
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewRunner creates a runner.
// progress: where to write progress output (typically os.Stderr)
func NewRunner(ingester Ingester, config *Config, progress io.Writer) (*Runner, error) {
	if ingester == nil {
		return nil, errors.New("ingester required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Runner{
		ingester: ingester,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "bulk"),
	}, nil
}

// Collect returns the supported documents under root in path order.
func Collect(root string, maxSize int64) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if extract.DetectFormat(d.Name()) == core.FormatUnknown {
			return nil
		}
		if maxSize > 0 {
			fi, err := d.Info()
			if err != nil {
				return err
			}
			if fi.Size() > maxSize {
				slog.Default().Warn("skipping oversized file", "path", path, "size", fi.Size())
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

// Run ingests every supported file under root for tenant. A failed file
// does not stop the run; only setup errors and cancellation are returned.
func (r *Runner) Run(ctx context.Context, root, tenant string, naming storage.Naming) (Summary, error) {
	paths, err := Collect(root, r.config.MaxFileSize)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(paths), Files: make([]FileResult, len(paths))}
	if len(paths) == 0 {
		fmt.Fprintf(r.progress, "No supported documents found in %s\n", root)
		return summary, nil
	}

	fmt.Fprintf(r.progress, "Ingesting %d documents for tenant %s (%d workers)\n",
		len(paths), tenant, r.config.Workers)

	pool, err := ants.NewPool(r.config.Workers)
	if err != nil {
		return Summary{}, err
	}
	defer pool.Release()

	tracker := NewProgressTracker(r.progress, len(paths), r.config.ReportInterval)
	tracker.Start()

	var wg sync.WaitGroup
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			summary.Files[i] = FileResult{Path: path, Outcome: OutcomeFailed, Err: err}
			continue
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			res := r.ingestFile(ctx, path, tenant, naming)
			summary.Files[i] = res
			tracker.Record(res.Outcome)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			summary.Files[i] = FileResult{Path: path, Outcome: OutcomeFailed, Err: err}
			tracker.Record(OutcomeFailed)
		}
	}
	wg.Wait()
	tracker.Finish()

	for _, f := range summary.Files {
		switch f.Outcome {
		case OutcomeSucceeded:
			summary.Succeeded++
		case OutcomeDuplicate:
			summary.Duplicates++
		default:
			summary.Failed++
		}
	}
	summary.Elapsed = tracker.Elapsed()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	fmt.Fprintf(r.progress, "Bulk ingestion complete. %d succeeded, %d duplicates, %d failed in %v\n",
		summary.Succeeded, summary.Duplicates, summary.Failed, summary.Elapsed.Round(time.Second))

	return summary, nil
}

func (r *Runner) ingestFile(ctx context.Context, path, tenant string, naming storage.Naming) FileResult {
	result := FileResult{Path: path}

	content, err := os.ReadFile(path)
	if err != nil {
		result.Outcome, result.Err = OutcomeFailed, err
		return result
	}

	req := ingestion.Request{
		Tenant:   tenant,
		Naming:   naming,
		Document: &ingestion.Document{Filename: filepath.Base(path), Content: content},
	}

	var res ingestion.Result
	err = RetryWithBackoff(ctx, func() error {
		var err error
		res, err = r.ingester.Ingest(ctx, req)
		return err
	}, transient, r.config.MaxRetries, r.config.RetryDelay)

	switch {
	case err == nil:
		result.Outcome = OutcomeSucceeded
		result.UsecaseID = res.UsecaseID
		result.Category = res.Category.String()
		r.logger.Info("ingested", "path", path, "id", res.UsecaseID)
	case errors.Is(err, core.ErrDuplicateDocument):
		result.Outcome, result.Err = OutcomeDuplicate, err
		r.logger.Info("duplicate skipped", "path", path, "err", err)
	default:
		result.Outcome, result.Err = OutcomeFailed, err
		r.logger.Warn("ingestion failed", "path", path, "kind", core.Kind(err), "err", err)
	}
	return result
}

// transient reports whether a retry could succeed.
func transient(err error) bool {
	return errors.Is(err, core.ErrService) || errors.Is(err, core.ErrStore)
}
