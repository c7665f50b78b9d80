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

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/usecasegen/ai"
	"github.com/poiesic/usecasegen/bulk"
	"github.com/poiesic/usecasegen/storage"
)

func main() {
	// Flag EnvVars are resolved while parsing, so .env must be loaded first.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "usecasegen",
		Usage: "Turn business documents into AI use case inventory records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP ingestion API",
				Action: serveCommand,
				Flags: flags(
					[]cli.Flag{
						&cli.StringFlag{
							Name:    "addr",
							Usage:   "Listen address",
							Value:   ":8000",
							EnvVars: []string{"USECASEGEN_ADDR"},
						},
						&cli.Int64Flag{
							Name:  "max-body-bytes",
							Usage: "Largest accepted request body",
							Value: 70 << 20,
						},
					},
					storeFlags(), aiFlags(), pipelineFlags(), redisFlags(), blobFlags(),
				),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest one local document",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: flags(
					[]cli.Flag{tenantFlag(), frameworkFlag()},
					storeFlags(), aiFlags(), pipelineFlags(), redisFlags(),
				),
			},
			{
				Name:   "process",
				Usage:  "Ingest a document that was already uploaded to object storage",
				Action: processCommand,
				Flags: flags(
					[]cli.Flag{
						tenantFlag(),
						frameworkFlag(),
						&cli.StringFlag{
							Name:     "url",
							Usage:    "Object URL (gs://bucket/key or https://bucket.s3.amazonaws.com/key)",
							Required: true,
						},
						&cli.StringFlag{
							Name:     "hash",
							Usage:    "Content hash computed by the uploader",
							Required: true,
						},
					},
					storeFlags(), aiFlags(), pipelineFlags(), redisFlags(), blobFlags(),
				),
			},
			{
				Name:      "bulk",
				Usage:     "Ingest every supported document under a directory",
				ArgsUsage: "<dir>",
				Action:    bulkCommand,
				Flags: flags(
					[]cli.Flag{
						tenantFlag(),
						&cli.IntFlag{
							Name:  "workers",
							Usage: "Number of documents ingested concurrently",
							Value: bulk.DefaultConfig().Workers,
						},
						&cli.IntFlag{
							Name:  "report-interval",
							Usage: "Report progress every N documents",
							Value: bulk.DefaultConfig().ReportInterval,
						},
						&cli.IntFlag{
							Name:  "max-retries",
							Usage: "Maximum attempts per document for transient failures",
							Value: bulk.DefaultConfig().MaxRetries,
						},
						&cli.DurationFlag{
							Name:  "retry-delay",
							Usage: "Base delay for exponential backoff",
							Value: bulk.DefaultConfig().RetryDelay,
						},
						&cli.Int64Flag{
							Name:  "max-file-size",
							Usage: "Skip files larger than this many bytes (0 for no limit)",
							Value: bulk.DefaultConfig().MaxFileSize,
						},
					},
					storeFlags(), aiFlags(), pipelineFlags(), redisFlags(),
				),
			},
			{
				Name:      "search",
				Usage:     "Search a tenant's use cases by keyword",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: flags(
					[]cli.Flag{
						tenantFlag(),
						&cli.IntFlag{
							Name:  "limit",
							Usage: "Maximum number of results",
							Value: 10,
						},
					},
					storeFlags(), namingFlags(),
				),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the use case inventory to agents over MCP",
				Action: mcpCommand,
				Flags: flags(
					[]cli.Flag{
						&cli.StringFlag{
							Name:  "http",
							Usage: "Serve streamable HTTP on this address instead of stdio",
						},
						&cli.StringFlag{
							Name:  "methodology-rubric",
							Usage: "Extra guidance for the methodology mapping agent",
						},
					},
					storeFlags(), namingFlags(),
				),
			},
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

func tenantFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "tenant",
		Aliases:  []string{"cloud-id"},
		Usage:    "Cloud id that scopes the use case collection",
		Required: true,
	}
}

func frameworkFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "risk-framework-id",
		Usage: "Framework id recorded on the use case (looked up when empty)",
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "./usecase_db",
			EnvVars: []string{"USECASEGEN_DB"},
		},
	}
}

func namingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "stage",
			Usage:   "Deployment stage used in collection names",
			Value:   storage.DefaultStage,
			EnvVars: []string{"STAGE"},
		},
		&cli.StringFlag{
			Name:    "app",
			Usage:   "Application name used in collection names",
			Value:   storage.DefaultApp,
			EnvVars: []string{"APP_NAME"},
		},
	}
}

func aiFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "llm-host",
			Usage:   "OpenAI compatible API base URL",
			Value:   defaults.Host,
			EnvVars: []string{"OPENAI_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "llm-model",
			Usage:   "Chat completion model name",
			Value:   defaults.Model,
			EnvVars: []string{"OPENAI_MODEL"},
		},
		&cli.StringFlag{
			Name:    "llm-api-key",
			Usage:   "API key for the model gateway",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.DurationFlag{
			Name:  "llm-timeout",
			Usage: "Timeout for a single model call",
			Value: defaults.Timeout,
		},
		&cli.Float64Flag{
			Name:  "llm-rps",
			Usage: "Client side rate limit for model calls (0 for none)",
		},
	}
}

func pipelineFlags() []cli.Flag {
	return flags(namingFlags(), []cli.Flag{
		&cli.StringFlag{
			Name:    "default-cloud",
			Usage:   "Cloud provider used when the document names none",
			Value:   "GCP",
			EnvVars: []string{"DEFAULT_CLOUD_PROVIDER"},
		},
		&cli.BoolFlag{
			Name:  "design-documents",
			Usage: "Generate a technical design document for each use case",
			Value: true,
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Concurrent model calls per pipeline",
			Value: 4,
		},
	})
}

func redisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis address for shared id allocation and locking (in-process when empty)",
			EnvVars: []string{"REDIS_ADDR"},
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			EnvVars: []string{"REDIS_PASSWORD"},
		},
	}
}

func blobFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "blob-dir",
			Usage:   "Serve uploads from a local directory laid out as <bucket>/<key> instead of GCS",
			EnvVars: []string{"BLOB_DIR"},
		},
		&cli.StringFlag{
			Name:    "gcs-emulator-host",
			Usage:   "GCS emulator endpoint",
			EnvVars: []string{"STORAGE_EMULATOR_HOST"},
		},
		&cli.StringFlag{
			Name:    "gcs-credentials",
			Usage:   "Service account JSON or a path to one",
			EnvVars: []string{"GOOGLE_APPLICATION_CREDENTIALS"},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
