// Package corpus holds the immutable in-memory corpus: transcript chunks with
// precomputed embeddings, plus the ordered person registry. It is loaded once
// at startup and shared read-only across requests.
package corpus

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
)

// Store is the loaded corpus. All fields are fixed after Load; concurrent
// reads need no locking.
type Store struct {
	chunks   []domain.Chunk
	registry []domain.PersonRecord
	byID     map[string]int
	dim      int
}

// Load builds a Store from the embedding artifact and the person metadata
// table. Both files must be complete and mutually consistent; there is no
// partial load. Every returned error wraps domain.ErrCorpusLoad.
func Load(artifactPath, metadataPath string) (*Store, error) {
	artifact, err := ReadArtifact(artifactPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorpusLoad, err)
	}

	registry, err := readRegistry(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorpusLoad, err)
	}

	chunks := make([]domain.Chunk, len(artifact.Texts))
	dim := 0
	for i := range artifact.Texts {
		embedding := artifact.Embeddings[i]
		if len(embedding) == 0 {
			return nil, fmt.Errorf("%w: chunk %d has no embedding", domain.ErrCorpusLoad, i)
		}
		if dim == 0 {
			dim = len(embedding)
		} else if len(embedding) != dim {
			return nil, fmt.Errorf("%w: chunk %d embedding has %d dimensions, corpus has %d",
				domain.ErrCorpusLoad, i, len(embedding), dim)
		}

		meta := artifact.Metadata[i]
		chunks[i] = domain.Chunk{
			DocumentID: DocumentIDFromSource(meta.Source),
			Page:       meta.Page,
			Text:       artifact.Texts[i],
			TokenCount: meta.Tokens,
			Embedding:  embedding,
		}
	}

	return NewStore(chunks, registry), nil
}

// NewStore assembles a Store from already-parsed records. The registry slice
// order is preserved; it drives entity match ordering.
func NewStore(chunks []domain.Chunk, registry []domain.PersonRecord) *Store {
	byID := make(map[string]int, len(registry))
	for i, rec := range registry {
		byID[rec.DocumentID] = i
	}
	dim := 0
	if len(chunks) > 0 {
		dim = len(chunks[0].Embedding)
	}
	return &Store{chunks: chunks, registry: registry, byID: byID, dim: dim}
}

// Chunks returns every chunk in corpus order.
func (s *Store) Chunks() []domain.Chunk {
	return s.chunks
}

// Registry returns the person records in metadata-table order.
func (s *Store) Registry() []domain.PersonRecord {
	return s.registry
}

// PersonByID looks up a registry record. Returns nil when the id is unknown.
func (s *Store) PersonByID(documentID string) *domain.PersonRecord {
	if i, ok := s.byID[documentID]; ok {
		return &s.registry[i]
	}
	return nil
}

// Dimension is the embedding dimensionality shared by every chunk.
func (s *Store) Dimension() int {
	return s.dim
}

// Len is the number of chunks in the corpus.
func (s *Store) Len() int {
	return len(s.chunks)
}

// metadata table column names; the exact header strings are the lookup keys.
const (
	colName  = "name"
	colDate  = "date"
	colTitle = "excerpt_title"
	colTags  = "tags"
)

// readRegistry parses the tabular metadata file. Row order assigns document
// ids: row index + 1, stringified.
func readRegistry(path string) ([]domain.PersonRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata table %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse metadata table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("metadata table %s is empty", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		cols[header] = i
	}
	for _, required := range []string{colName, colDate, colTitle, colTags} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("metadata table %s is missing column %q", path, required)
		}
	}

	registry := make([]domain.PersonRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		registry = append(registry, domain.PersonRecord{
			DocumentID: strconv.Itoa(i + 1),
			Name:       row[cols[colName]],
			Date:       row[cols[colDate]],
			Title:      row[cols[colTitle]],
			Tags:       row[cols[colTags]],
		})
	}
	return registry, nil
}
