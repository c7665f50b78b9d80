package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/usecasegen"
	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/blob"
	"github.com/poiesic/usecasegen/bulk"
	"github.com/poiesic/usecasegen/core"
	"github.com/poiesic/usecasegen/ingestion"
	"github.com/poiesic/usecasegen/mcpserver"
	"github.com/poiesic/usecasegen/search"
	"github.com/poiesic/usecasegen/server"
	"github.com/poiesic/usecasegen/storage"
	"github.com/poiesic/usecasegen/storage/badger"
	redisstore "github.com/poiesic/usecasegen/storage/redis"
)

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func namingFrom(c *cli.Context) storage.Naming {
	return storage.Naming{Stage: c.String("stage"), App: c.String("app")}.WithDefaults()
}

func aiConfigFrom(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.String("llm-host")),
		ai.WithModel(c.String("llm-model")),
		ai.WithAPIKey(c.String("llm-api-key")),
		ai.WithTimeout(c.Duration("llm-timeout")),
		ai.WithRateLimit(c.Float64("llm-rps"), 0),
	)
}

func openDatabase(c *cli.Context) (*usecasegen.Database, error) {
	cfg := aiConfigFrom(c)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := usecasegen.NewDatabase(c.String("db"), usecasegen.WithAIConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// pipelineOptions translates the shared pipeline, redis and blob flags.
// The returned cleanup must run after the pipeline is released.
func pipelineOptions(ctx context.Context, c *cli.Context, db *usecasegen.Database, blobs blob.Store) ([]ingestion.Option, func(), error) {
	opts := []ingestion.Option{
		ingestion.WithNaming(namingFrom(c)),
		ingestion.WithDefaultCloudProvider(c.String("default-cloud")),
		ingestion.WithDesignDocuments(c.Bool("design-documents")),
		ingestion.WithPoolSize(c.Int("pool-size")),
	}
	if blobs != nil {
		opts = append(opts, ingestion.WithBlobStore(blobs))
	}

	cleanup := func() {}
	if addr := c.String("redis-addr"); addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: c.String("redis-password"),
		})
		lock := redisstore.NewLock(client)
		if err := lock.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
		}
		counter := redisstore.NewCounter(client, ingestion.NewScanAllocator(db.Store()).MaxSuffix)
		opts = append(opts, ingestion.WithLocker(lock), ingestion.WithAllocator(counter))
		cleanup = func() { client.Close() }
	}
	return opts, cleanup, nil
}

func openBlobStore(ctx context.Context, c *cli.Context) (blob.Store, func(), error) {
	if dir := c.String("blob-dir"); dir != "" {
		return blob.NewFileStore(dir), func() {}, nil
	}
	store, err := blob.NewGCSStore(ctx, blob.GCSConfig{
		EmulatorHost: c.String("gcs-emulator-host"),
		Credentials:  c.String("gcs-credentials"),
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	blobs, closeBlobs, err := openBlobStore(ctx, c)
	if err != nil {
		// Direct uploads still work without object storage.
		fmt.Fprintf(os.Stderr, "Object storage unavailable, /process-usecase disabled: %v\n", err)
		blobs, closeBlobs = nil, func() {}
	}
	defer closeBlobs()

	opts, cleanup, err := pipelineOptions(ctx, c, db, blobs)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	srv, err := db.NewServer(pipeline, server.WithMaxBodyBytes(c.Int64("max-body-bytes")))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Model: %s at %s\n", c.String("llm-model"), c.String("llm-host"))
	fmt.Fprintf(os.Stderr, "Listening on %s\n", c.String("addr"))

	return srv.ListenAndServe(ctx, c.String("addr"))
}

func ingestCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("a document path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return runIngestion(c, nil, ingestion.Request{
		Tenant:          c.String("tenant"),
		RiskFrameworkID: c.String("risk-framework-id"),
		Document:        &ingestion.Document{Filename: filepath.Base(path), Content: content},
	})
}

func processCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	blobs, closeBlobs, err := openBlobStore(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open object storage: %w", err)
	}
	defer closeBlobs()

	return runIngestion(c, blobs, ingestion.Request{
		Tenant:          c.String("tenant"),
		RiskFrameworkID: c.String("risk-framework-id"),
		Upload:          &ingestion.Upload{URL: c.String("url"), Hash: c.String("hash")},
	})
}

func runIngestion(c *cli.Context, blobs blob.Store, req ingestion.Request) error {
	ctx, stop := signalContext(c)
	defer stop()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts, cleanup, err := pipelineOptions(ctx, c, db, blobs)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	res, err := pipeline.Ingest(ctx, req)
	var dup *core.DuplicateError
	if errors.As(err, &dup) {
		return cli.Exit(fmt.Sprintf("document already ingested as %s", dup.ExistingID), 2)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed (%s): %w", core.Kind(err), err)
	}

	return printJSON(map[string]any{
		"usecaseId":    res.UsecaseID,
		"category":     res.Category.String(),
		"approach":     res.Approach.String(),
		"documentHash": res.DocumentHash,
		"collection":   res.Collection,
	})
}

func bulkCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	root := c.Args().First()
	if root == "" {
		return fmt.Errorf("a directory is required")
	}

	config := &bulk.Config{
		Workers:        c.Int("workers"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		MaxFileSize:    c.Int64("max-file-size"),
	}
	if err := config.Validate(); err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts, cleanup, err := pipelineOptions(ctx, c, db, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	runner, err := bulk.NewRunner(pipeline, config, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Model: %s at %s\n", c.String("llm-model"), c.String("llm-host"))
	fmt.Fprintln(os.Stderr)

	summary, err := runner.Run(ctx, root, c.String("tenant"), namingFrom(c))
	if err != nil {
		return fmt.Errorf("bulk ingestion failed: %w", err)
	}
	for _, f := range summary.Files {
		if f.Outcome == bulk.OutcomeFailed {
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", f.Path, f.Err)
		}
	}
	if summary.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d documents failed", summary.Failed, summary.Total), 1)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a search query is required")
	}

	store, err := badger.NewStore(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	searcher, err := search.NewSearcher(store)
	if err != nil {
		return err
	}

	collection := namingFrom(c).Usecases(c.String("tenant"))
	results, err := searcher.Find(c.Context, collection, query, c.Int("limit"))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matches")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\t[%s]\n", r.ID(), r.Item.String(core.FieldModelName), strings.Join(r.Fields, ", "))
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	ctx, stop := signalContext(c)
	defer stop()

	store, err := badger.NewStore(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	srv, err := mcpserver.NewServer(store,
		mcpserver.WithNaming(namingFrom(c)),
		mcpserver.WithMethodologyRubric(c.String("methodology-rubric")),
	)
	if err != nil {
		return err
	}

	if addr := c.String("http"); addr != "" {
		fmt.Fprintf(os.Stderr, "Serving MCP on %s\n", addr)
		return srv.RunHTTP(ctx, addr)
	}
	return srv.Run(ctx)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
