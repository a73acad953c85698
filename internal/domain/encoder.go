package domain

import "context"

// VectorEncoder turns text into fixed-dimension embedding vectors. The model
// behind it must match the one that built the corpus artifact, otherwise
// similarity scores are meaningless.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}
