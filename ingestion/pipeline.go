package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/blob"
	"github.com/poiesic/usecasegen/classify"
	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/extract"
	"github.com/poiesic/usecasegen/generate"
	"github.com/poiesic/usecasegen/prompts"
	"github.com/poiesic/usecasegen/storage"
)

const (
	summaryMaxTokens = 600
	designMaxTokens  = 7000
	// maxPersistAttempts bounds re-allocation after id collisions.
	maxPersistAttempts = 5
)

// Framework selection used when the request names no risk framework.
const (
	frameworkNameMarker     = "NIST"
	frameworkCategoryMarker = "AI Evaluation Engine"
)

// Pipeline orchestrates the ingestion of documents into use case records.
type Pipeline struct {
	store      storage.RecordStore
	completer  ai.Completer
	library    *prompts.Library
	classifier *classify.Classifier
	generator  *generate.Generator
	blobs      blob.Store
	pool       *ants.Pool
	locker     Locker
	allocator  Allocator
	fallback   *ScanAllocator

	naming          storage.Naming
	idPrefix        string
	cloudProvider   string
	designDocuments bool
	now             func() time.Time
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size shared by concurrent steps.
// Default is runtime.NumCPU(), with a minimum of 2.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 2 {
			size = 2
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pipeline")
		return nil
	}
}

// WithDesignDocuments enables or disables the technical design document
// step. Enabled by default.
func WithDesignDocuments(enabled bool) Option {
	return func(p *Pipeline) error {
		p.designDocuments = enabled
		return nil
	}
}

// WithLocker sets the commit section locker.
// Default is an in-process LocalLocker.
func WithLocker(locker Locker) Option {
	return func(p *Pipeline) error {
		if locker != nil {
			p.locker = locker
		}
		return nil
	}
}

// WithAllocator sets the id allocator.
// Default is a ScanAllocator over the pipeline's store.
func WithAllocator(allocator Allocator) Option {
	return func(p *Pipeline) error {
		if allocator != nil {
			p.allocator = allocator
		}
		return nil
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) error {
		if now != nil {
			p.now = now
		}
		return nil
	}
}

// WithDefaultCloudProvider sets the provider hint used when neither the
// document nor the request names one. Default is core.DefaultCloudProvider.
func WithDefaultCloudProvider(provider string) Option {
	return func(p *Pipeline) error {
		if provider = strings.TrimSpace(provider); provider != "" {
			p.cloudProvider = provider
		}
		return nil
	}
}

// WithNaming sets the default collection naming.
func WithNaming(naming storage.Naming) Option {
	return func(p *Pipeline) error {
		p.naming = naming.WithDefaults()
		return nil
	}
}

// WithBlobStore sets the store used to fetch uploaded objects.
func WithBlobStore(store blob.Store) Option {
	return func(p *Pipeline) error {
		p.blobs = store
		return nil
	}
}

// WithPromptLibrary replaces the embedded prompt catalogue.
func WithPromptLibrary(library *prompts.Library) Option {
	return func(p *Pipeline) error {
		if library != nil {
			p.library = library
		}
		return nil
	}
}

// WithIDPrefix sets the record id prefix. Default is core.DefaultIDPrefix.
func WithIDPrefix(prefix string) Option {
	return func(p *Pipeline) error {
		if prefix == "" {
			return fmt.Errorf("id prefix must not be empty")
		}
		p.idPrefix = prefix
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store storage.RecordStore, provider ai.Provider, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	library, err := prompts.Default()
	if err != nil {
		return nil, err
	}

	poolSize := runtime.NumCPU()
	if poolSize < 2 {
		poolSize = 2
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:           store,
		completer:       provider.Completer(),
		library:         library,
		pool:            pool,
		locker:          NewLocalLocker(),
		allocator:       NewScanAllocator(store),
		fallback:        NewScanAllocator(store),
		naming:          storage.DefaultNaming(),
		idPrefix:        core.DefaultIDPrefix,
		cloudProvider:   core.DefaultCloudProvider,
		designDocuments: true,
		now:             time.Now,
		logger:          slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Built after options so a replaced prompt library is used.
	p.classifier = classify.New(p.completer, p.library)
	p.generator = generate.New(p.completer, p.library)

	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Naming returns the default collection naming.
func (p *Pipeline) Naming() storage.Naming {
	return p.naming
}

// source is a resolved document ready for extraction.
type source struct {
	filename string
	content  []byte
	// url and hash are set for uploads.
	url    string
	hash   string
	naming storage.Naming
}

// Ingest runs the full pipeline for req.
func (p *Pipeline) Ingest(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	src, err := p.resolve(ctx, req)
	if err != nil {
		return Result{}, err
	}

	extracted, err := extract.Extract(src.content, src.filename)
	if err != nil {
		p.logger.Warn("extraction failed", "filename", src.filename, "err", err)
		return Result{}, err
	}
	documentHash := extracted.ContentHash
	if src.hash != "" {
		documentHash = src.hash
	}

	collection := src.naming.Usecases(req.Tenant)
	logger := p.logger.With("collection", collection, "hash", documentHash)
	logger.Info("ingesting document", "filename", src.filename, "chars", len(extracted.Text))

	// Cheap pre-check so known documents do not cost any model calls. The
	// authoritative check runs again under the lock.
	if existing, dup := IsDuplicate(ctx, p.store, collection, documentHash); dup {
		logger.Info("duplicate document", "existing_id", existing)
		return Result{}, &core.DuplicateError{ExistingID: existing}
	}

	summary, classification := p.summarizeAndClassify(ctx, extracted.Text)
	logger.Info("classified document",
		"category", classification.Category.String(),
		"approach", classification.Approach.String(),
		"fallback", classification.Fallback)

	hint := req.CloudProviderHint
	if hint == "" {
		hint = p.cloudProvider
	}
	generated, err := p.generator.Generate(ctx, generate.Input{
		Text:              extracted.Text,
		Category:          classification.Category,
		CloudProviderHint: hint,
		Catalogue:         p.catalogue(ctx, src.naming),
	})
	if err != nil {
		logger.Error("generation failed", "err", err)
		return Result{}, err
	}

	var design string
	if p.designDocuments {
		design, err = p.designDocument(ctx, extracted.Text, generated.String(core.FieldCloudProvider))
		if err != nil {
			logger.Error("design document failed", "err", err)
			return Result{}, err
		}
	}

	frameworkID := req.RiskFrameworkID
	if frameworkID == "" {
		frameworkID = p.frameworkID(ctx, src.naming)
	}

	sourceURL := src.url
	if sourceURL == "" {
		sourceURL = fmt.Sprintf("s3://your-bucket/%s/%s/%s", req.Tenant, documentHash, src.filename)
	}

	record := assemble(generated, recordFields{
		documentHash:   documentHash,
		summary:        summary,
		design:         design,
		sourceURL:      sourceURL,
		frameworkID:    frameworkID,
		classification: classification,
		fallbackCloud:  hint,
	})

	id, err := p.commit(ctx, collection, record)
	if err != nil {
		return Result{}, err
	}

	logger.Info("use case persisted",
		"id", id,
		"category", classification.Category.String(),
		"duration_ms", time.Since(start).Milliseconds())

	return Result{
		UsecaseID:    id,
		Category:     classification.Category,
		Approach:     classification.Approach,
		DocumentHash: documentHash,
		Collection:   collection,
	}, nil
}

// resolve loads the document bytes and picks the collection naming.
func (p *Pipeline) resolve(ctx context.Context, req Request) (source, error) {
	if req.Document != nil {
		filename := strings.TrimSpace(req.Document.Filename)
		if filename == "" {
			filename = DefaultFilename
		}
		naming := p.naming
		if req.Naming != (storage.Naming{}) {
			naming = req.Naming.WithDefaults()
		}
		return source{filename: filename, content: req.Document.Content, naming: naming}, nil
	}

	if p.blobs == nil {
		return source{}, ErrBlobStoreRequired
	}
	loc, err := blob.ParseLocator(req.Upload.URL)
	if err != nil {
		return source{}, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}

	naming := req.Naming
	if naming == (storage.Naming{}) {
		info, err := blob.ParseBucketName(loc.Bucket)
		if err != nil {
			return source{}, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
		}
		naming = storage.Naming{Stage: info.Stage, App: info.App}
	}

	data, err := p.blobs.Get(ctx, loc)
	switch {
	case errors.Is(err, blob.ErrNotFound), errors.Is(err, blob.ErrInvalidLocator), errors.Is(err, blob.ErrTooLarge):
		return source{}, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	case err != nil:
		return source{}, fmt.Errorf("%w: fetch %s: %v", core.ErrStore, loc, err)
	}

	return source{
		filename: loc.Filename(),
		content:  data,
		url:      loc.URL,
		hash:     strings.TrimSpace(req.Upload.Hash),
		naming:   naming.WithDefaults(),
	}, nil
}

// summarizeAndClassify runs both model calls concurrently. A failed
// summary degrades to an empty one; classification never fails.
func (p *Pipeline) summarizeAndClassify(ctx context.Context, text string) (string, core.ClassificationResult) {
	var (
		wg             sync.WaitGroup
		summary        string
		classification core.ClassificationResult
	)

	tasks := []func(){
		func() { summary = p.summarize(ctx, text) },
		func() { classification = p.classifier.Classify(ctx, text) },
	}
	for _, task := range tasks {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			task()
		}
		if err := p.pool.Submit(run); err != nil {
			p.logger.Warn("worker pool unavailable, running inline", "err", err)
			run()
		}
	}
	wg.Wait()

	return summary, classification
}

func (p *Pipeline) summarize(ctx context.Context, text string) string {
	prompt, err := p.library.Build(prompts.Summarize, prompts.Input{Text: text})
	if err != nil {
		p.logger.Error("failed to build summary prompt", "err", err)
		return ""
	}
	summary, err := p.completer.Complete(ctx, ai.Request{
		Prompt:       prompt.User,
		SystemPrompt: prompt.System,
		MaxTokens:    summaryMaxTokens,
	})
	if err != nil {
		p.logger.Warn("summary failed, continuing without one", "err", err)
		return ""
	}
	return strings.TrimSpace(summary)
}

func (p *Pipeline) designDocument(ctx context.Context, text, cloudProvider string) (string, error) {
	prompt, err := p.library.Build(prompts.DesignDocument, prompts.Input{Text: text, CloudProvider: cloudProvider})
	if err != nil {
		return "", fmt.Errorf("build design prompt: %w", err)
	}
	design, err := p.completer.Complete(ctx, ai.Request{
		Prompt:       prompt.User,
		SystemPrompt: prompt.System,
		MaxTokens:    designMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(design), nil
}

// catalogue reads the methodology mapping. Failure means no catalogue.
func (p *Pipeline) catalogue(ctx context.Context, naming storage.Naming) *generate.Catalogue {
	collection := naming.MethodologyMapping()
	items, err := storage.ScanAll(ctx, p.store, collection, storage.ScanOptions{})
	if err != nil {
		p.logger.Warn("could not read methodology mapping", "collection", collection, "err", err)
		return nil
	}
	p.logger.Debug("methodology mapping loaded", "collection", collection, "records", len(items))
	return generate.NewCatalogue(items)
}

// frameworkID returns the id of the first NIST AI evaluation framework, or
// "" when there is none or the scan fails.
func (p *Pipeline) frameworkID(ctx context.Context, naming storage.Naming) string {
	collection := naming.Frameworks()
	opts := storage.ScanOptions{Filter: storage.And(
		storage.Contains("name", frameworkNameMarker),
		storage.Contains("assessmentCategory", frameworkCategoryMarker),
	)}
	for {
		page, err := p.store.Scan(ctx, collection, opts)
		if err != nil {
			p.logger.Warn("could not scan frameworks", "collection", collection, "err", err)
			return ""
		}
		if len(page.Items) > 0 {
			return page.Items[0].ID()
		}
		if page.Cursor == "" {
			return ""
		}
		opts.Cursor = page.Cursor
	}
}

// commit runs dedupe, allocation and the conditional put under the
// collection lock and returns the persisted id.
func (p *Pipeline) commit(ctx context.Context, collection string, record core.Item) (string, error) {
	unlock, err := p.locker.Lock(ctx, collection)
	if err != nil {
		return "", fmt.Errorf("%w: lock %s: %v", core.ErrStore, collection, err)
	}
	defer unlock()

	if existing, dup := IsDuplicate(ctx, p.store, collection, record.String(core.FieldDocumentHash)); dup {
		return "", &core.DuplicateError{ExistingID: existing}
	}

	for attempt := 1; attempt <= maxPersistAttempts; attempt++ {
		id, err := p.allocate(ctx, collection)
		if err != nil {
			return "", fmt.Errorf("%w: allocate id: %v", core.ErrStore, err)
		}

		now := p.now().UTC().Format(time.RFC3339)
		record[core.FieldID] = id
		record[core.FieldCreatedAt] = now
		record[core.FieldUpdatedAt] = now

		if err := core.ValidateRecord(record, p.idPrefix); err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrStore, err)
		}

		err = p.store.PutIfAbsent(ctx, collection, record)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return "", fmt.Errorf("%w: save %s: %v", core.ErrStore, id, err)
		}
		p.logger.Warn("id already taken, allocating again", "id", id, "attempt", attempt)
	}
	return "", fmt.Errorf("%w: %w", core.ErrStore, ErrAllocationExhausted)
}

// allocate asks the configured allocator for an id. A failing allocator
// degrades to the scan allocator so an unreachable counter never fails
// the request; only cancellation is returned.
func (p *Pipeline) allocate(ctx context.Context, collection string) (string, error) {
	id, err := p.allocator.Next(ctx, collection, p.idPrefix)
	if err == nil {
		return id, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	p.logger.Warn("id allocator failed, falling back to scan", "collection", collection, "err", err)
	return p.fallback.Next(ctx, collection, p.idPrefix)
}

type recordFields struct {
	documentHash   string
	summary        string
	design         string
	sourceURL      string
	frameworkID    string
	classification core.ClassificationResult
	fallbackCloud  string
}

// assemble merges generated fields with the pipeline's own. Pipeline fields
// win over anything the model produced under the same name.
func assemble(generated core.Item, f recordFields) core.Item {
	record := make(core.Item, len(generated)+16)
	for k, v := range generated {
		switch k {
		case "documentType", "userId":
			continue
		}
		record[k] = v
	}

	cloud := generated.String(core.FieldCloudProvider)
	if cloud == "" {
		cloud = f.fallbackCloud
	}
	var framework any
	if f.frameworkID != "" {
		framework = f.frameworkID
	}

	record[core.FieldSourceDocURL] = f.sourceURL
	record[core.FieldCategory] = core.InventoryCategory
	record[core.FieldProcessingStatus] = core.ProcessingCompleted
	record[core.FieldRiskFrameworkID] = framework
	record[core.FieldAIApproach] = f.classification.Approach.String()
	record[core.FieldAICategory] = f.classification.Category.String()
	record[core.FieldDocumentHash] = f.documentHash
	record[core.FieldDocumentSummary] = f.summary
	record[core.FieldDesignDocument] = f.design
	record[core.FieldAICloudProvider] = cloud
	return record
}
