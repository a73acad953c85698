package domain

import (
	"fmt"
	"math"
	"sort"
)

// DefaultTopK is the number of ranked chunks returned per query unless the
// caller tunes it through configuration.
const DefaultTopK = 5

// Cosine computes the cosine similarity between two vectors of equal
// dimensionality. Returns 0 when either vector has zero magnitude.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankChunks scores every candidate chunk against the query vector and
// returns up to topK results ordered by descending similarity. Equal scores
// keep corpus order, so repeated calls are bit-identical. When restrictTo is
// non-empty only chunks of that document are candidates.
//
// A dimensionality mismatch between the query and a chunk embedding means the
// corpus and the query were embedded with different models; that is a
// programming error and is reported rather than silently scored.
func RankChunks(query []float32, chunks []Chunk, restrictTo string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if restrictTo != "" && chunk.DocumentID != restrictTo {
			continue
		}
		if len(chunk.Embedding) != len(query) {
			return nil, fmt.Errorf("embedding dimension mismatch: query %d, chunk %d (document %s)",
				len(query), len(chunk.Embedding), chunk.DocumentID)
		}
		scored = append(scored, ScoredChunk{Chunk: chunk, Score: Cosine(query, chunk.Embedding)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
