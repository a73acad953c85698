package domain

import "errors"

var (
	// ErrCorpusLoad marks a fatal corpus load failure. The server must not
	// start serving from a partially loaded or inconsistent corpus.
	ErrCorpusLoad = errors.New("corpus load failed")

	// ErrEmbeddingProvider marks a transport or quota failure from the
	// embedding provider. It aborts the retrieval for the current request
	// and is never retried at this layer.
	ErrEmbeddingProvider = errors.New("embedding provider failed")
)
