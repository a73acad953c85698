// Package ingest builds the corpus artifact: it chunks transcript text,
// embeds the chunks in fixed-size batches against the provider, and writes
// the parallel-array artifact the server loads at startup.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/annavdvet2000/chatbot11directanswers/internal/corpus"
	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultBatchSize is how many chunks are embedded per provider batch.
	DefaultBatchSize = 20
	// DefaultConcurrency bounds the in-flight embed calls within a batch.
	DefaultConcurrency = 4
	// DefaultBatchDelay paces batches to respect provider rate limits.
	DefaultBatchDelay = 1 * time.Second
)

// Options tune the pipeline; zero values fall back to the defaults above.
type Options struct {
	BatchSize   int
	Concurrency int
	BatchDelay  time.Duration
}

// Summary reports what a pipeline run produced.
type Summary struct {
	Documents     int
	Chunks        int
	Dropped       int // chunks whose embedding failed and were filtered out
	OutputPath    string
	EmbedderModel string
}

// Pipeline turns a directory of transcript text files into a corpus artifact.
type Pipeline struct {
	encoder     domain.VectorEncoder
	chunker     domain.Chunker
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(encoder domain.VectorEncoder, chunker domain.Chunker, opts Options, logger *slog.Logger) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = DefaultBatchDelay
	}
	return &Pipeline{
		encoder:     encoder,
		chunker:     chunker,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		limiter:     rate.NewLimiter(rate.Every(opts.BatchDelay), 1),
		logger:      logger,
	}
}

// pendingChunk is a chunk awaiting its embedding. Form-feed characters in
// the source mark page boundaries; pages are numbered from 1.
type pendingChunk struct {
	source string
	page   int
	text   string
}

// Run reads every .txt transcript under inputDir, embeds the chunks, and
// writes the artifact to outputPath. Individual embedding failures drop the
// affected chunks; only a wholly failed run returns an error.
func (p *Pipeline) Run(ctx context.Context, inputDir, outputPath string) (*Summary, error) {
	pending, documents, err := p.collect(inputDir)
	if err != nil {
		return nil, err
	}

	p.logger.Info("ingest_started",
		slog.Int("documents", documents),
		slog.Int("chunks", len(pending)),
		slog.String("model", p.encoder.Version()))

	artifact := &corpus.Artifact{}
	dropped := 0

	for start := 0; start < len(pending); start += p.batchSize {
		end := start + p.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for batch slot: %w", err)
		}

		vectors := p.embedBatch(ctx, batch)
		for i, chunk := range batch {
			if vectors[i] == nil {
				dropped++
				continue
			}
			artifact.Embeddings = append(artifact.Embeddings, vectors[i])
			artifact.Texts = append(artifact.Texts, chunk.text)
			artifact.Metadata = append(artifact.Metadata, corpus.ChunkMeta{
				Source: chunk.source,
				Page:   chunk.page,
				Tokens: estimateTokens(chunk.text),
			})
		}

		p.logger.Info("ingest_batch_completed",
			slog.Int("batch_start", start),
			slog.Int("batch_size", len(batch)),
			slog.Int("dropped_so_far", dropped))
	}

	if len(artifact.Texts) == 0 && len(pending) > 0 {
		return nil, fmt.Errorf("every chunk failed to embed; refusing to write an empty artifact")
	}
	if err := corpus.WriteArtifact(outputPath, artifact); err != nil {
		return nil, err
	}

	return &Summary{
		Documents:     documents,
		Chunks:        len(artifact.Texts),
		Dropped:       dropped,
		OutputPath:    outputPath,
		EmbedderModel: p.encoder.Version(),
	}, nil
}

// embedBatch embeds one batch with bounded concurrency. A failed item leaves
// a nil vector; the caller filters those out. Each goroutine writes its own
// index, so no locking is needed.
func (p *Pipeline) embedBatch(ctx context.Context, batch []pendingChunk) [][]float32 {
	vectors := make([][]float32, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, chunk := range batch {
		g.Go(func() error {
			out, err := p.encoder.Encode(gctx, []string{chunk.text})
			if err != nil || len(out) != 1 {
				p.logger.Warn("ingest_chunk_embed_failed",
					slog.String("source", chunk.source),
					slog.Int("page", chunk.page),
					slog.Any("error", err))
				return nil // drop the chunk, keep the batch
			}
			vectors[i] = out[0]
			return nil
		})
	}
	_ = g.Wait()
	return vectors
}

func (p *Pipeline) collect(inputDir string) ([]pendingChunk, int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, 0, fmt.Errorf("read input directory %s: %w", inputDir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, 0, fmt.Errorf("no .txt transcripts in %s", inputDir)
	}

	var pending []pendingChunk
	for _, name := range names {
		body, err := os.ReadFile(filepath.Join(inputDir, name))
		if err != nil {
			return nil, 0, fmt.Errorf("read transcript %s: %w", name, err)
		}

		source := strings.TrimSuffix(name, ".txt") + ".pdf"
		for pageIdx, pageText := range strings.Split(string(body), "\f") {
			for _, span := range p.chunker.Chunk(pageText) {
				pending = append(pending, pendingChunk{
					source: source,
					page:   pageIdx + 1,
					text:   span,
				})
			}
		}
	}
	return pending, len(names), nil
}

// estimateTokens is the usual rough 4-characters-per-token heuristic; the
// count is informational only.
func estimateTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}
