package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a record store is not provided.
	ErrStoreRequired = errors.New("record store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrBlobStoreRequired is returned for locator requests when the
	// pipeline has no blob store.
	ErrBlobStoreRequired = errors.New("blob store required for locator requests")

	// ErrAllocationExhausted is returned when every allocated id was taken.
	ErrAllocationExhausted = errors.New("could not allocate a free record id")
)
