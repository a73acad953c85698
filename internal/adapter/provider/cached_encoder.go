package provider

import (
	"context"
	"fmt"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEncoder memoizes embedding vectors by exact text. Comparative
// retrieval and follow-up questions re-embed the same contextualized query,
// so a small LRU in front of the provider saves round trips without changing
// any result.
type CachedEncoder struct {
	inner domain.VectorEncoder
	cache *lru.Cache[string, []float32]
}

// NewCachedEncoder wraps inner with an LRU of the given size.
func NewCachedEncoder(inner domain.VectorEncoder, size int) (*CachedEncoder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEncoder{inner: inner, cache: cache}, nil
}

func (c *CachedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(text); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := c.inner.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrEmbeddingProvider, len(missing), len(vectors))
	}

	for i, vec := range vectors {
		out[missingIdx[i]] = vec
		c.cache.Add(missing[i], vec)
	}
	return out, nil
}

func (c *CachedEncoder) Version() string {
	return c.inner.Version()
}

var _ domain.VectorEncoder = (*CachedEncoder)(nil)
