package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact is the on-disk corpus produced by the ingestion pipeline: three
// equal-length parallel arrays, one entry per chunk.
type Artifact struct {
	Embeddings [][]float32 `json:"embeddings"`
	Texts      []string    `json:"texts"`
	Metadata   []ChunkMeta `json:"metadata"`
}

// ChunkMeta is the per-chunk provenance record inside the artifact.
type ChunkMeta struct {
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
	Tokens int    `json:"tokens"`
}

// ReadArtifact parses the artifact file and validates the parallel-array
// shape. Any failure is a corpus load failure.
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}

	if len(artifact.Embeddings) != len(artifact.Texts) || len(artifact.Texts) != len(artifact.Metadata) {
		return nil, fmt.Errorf("artifact arrays disagree: %d embeddings, %d texts, %d metadata",
			len(artifact.Embeddings), len(artifact.Texts), len(artifact.Metadata))
	}

	return &artifact, nil
}

// WriteArtifact writes the artifact atomically so a crashed ingest run never
// leaves a half-written corpus behind.
func WriteArtifact(path string, artifact *Artifact) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// DocumentIDFromSource recovers the bare document id from a source file name
// following the document<id>.<ext> convention, e.g. "document14.pdf" -> "14".
// Names outside the convention fall back to the extension-less base name.
func DocumentIDFromSource(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if id := strings.TrimPrefix(base, "document"); id != "" {
		return id
	}
	return base
}
