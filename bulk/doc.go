// Package bulk ingests every supported document under a directory.
//
// Files are fed through the ingestion pipeline by a bounded worker pool.
// Transient model and store failures are retried with exponential backoff;
// duplicates and invalid documents are counted and skipped. Progress is
// written to an io.Writer as the run advances.
package bulk
