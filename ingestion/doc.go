// Package ingestion turns one uploaded document into one persisted use case
// record.
//
// The Pipeline runs a linear sequence of steps per request:
//
//	Extract -> {Summarize || Classify} -> Generate -> [Design document]
//	        -> lock -> Dedupe -> Allocate id -> Persist -> unlock
//
// Summarize and Classify run concurrently on an ants worker pool. Every
// other step is sequential. The conditional put in Persist is the only
// write: a failure anywhere earlier leaves the store untouched.
//
// The commit section is serialized per collection by a Locker (in-process
// by default, Redis across processes). Independently of the locker, records
// are written with PutIfAbsent and a taken id is re-allocated, so two writers
// can never overwrite each other.
//
// Errors returned by Ingest match exactly one of the core.Err* taxonomy
// sentinels.
package ingestion
