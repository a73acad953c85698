package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/annavdvet2000/chatbot11directanswers/internal/corpus"
	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"

	"golang.org/x/sync/errgroup"
)

// blockSeparator joins per-person context blocks in comparative answers.
const blockSeparator = "\n\n---\n\n"

// branchAFanOutLimit bounds the concurrent per-document ranking passes in the
// comparative branch. The fan-in re-orders results by original match order,
// so parallelism never changes the output.
const branchAFanOutLimit = 4

// RetrieveContextInput carries the raw question plus a read-only view of the
// session's recent history.
type RetrieveContextInput struct {
	Question string
	History  []domain.ConversationTurn
}

// RetrieveContextUsecase turns a question into a ranked, citation-formatted
// block of transcript passages, or an explicit not-found result.
type RetrieveContextUsecase interface {
	Execute(ctx context.Context, input RetrieveContextInput) (domain.RetrievalResult, error)
}

type retrieveContextUsecase struct {
	store         *corpus.Store
	encoder       domain.VectorEncoder
	topK          int
	historyWindow int
	logger        *slog.Logger
}

// NewRetrieveContextUsecase creates the retrieval controller. topK and
// historyWindow fall back to their defaults when non-positive.
func NewRetrieveContextUsecase(store *corpus.Store, encoder domain.VectorEncoder, topK, historyWindow int, logger *slog.Logger) RetrieveContextUsecase {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &retrieveContextUsecase{
		store:         store,
		encoder:       encoder,
		topK:          topK,
		historyWindow: historyWindow,
		logger:        logger,
	}
}

func (u *retrieveContextUsecase) Execute(ctx context.Context, input RetrieveContextInput) (domain.RetrievalResult, error) {
	if strings.TrimSpace(input.Question) == "" {
		return domain.NoContext(), fmt.Errorf("question is empty")
	}

	start := time.Now()

	query := ReformulateQuery(input.Question, input.History, u.historyWindow)
	matches := ResolveEntities(query.Text, u.store.Registry())

	u.logger.Info("retrieval_started",
		slog.Int("history_turns", len(input.History)),
		slog.Bool("comparative", query.Comparative),
		slog.Int("entity_matches", len(matches)))

	vector, err := u.embed(ctx, query.Text)
	if err != nil {
		return domain.NoContext(), err
	}

	var result domain.RetrievalResult
	switch {
	case len(matches) >= 2:
		result, err = u.retrieveMultiEntity(ctx, vector, matches)
	case len(matches) == 1:
		result, err = u.retrieveSingleEntity(vector, matches[0])
	default:
		result, err = u.retrieveFallback(vector)
	}
	if err != nil {
		return domain.NoContext(), err
	}

	u.logger.Info("retrieval_completed",
		slog.Bool("found", result.Found),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return result, nil
}

func (u *retrieveContextUsecase) embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := u.encoder.Encode(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", domain.ErrEmbeddingProvider, len(vectors))
	}
	return vectors[0], nil
}

// retrieveMultiEntity handles comparative and multi-person questions: one
// restricted ranking pass per matched document, fanned out with bounded
// concurrency and fanned in by original match order. At least two documents
// must yield passages for the comparative layout; with fewer, the first
// matched document that has results is formatted as a single-person context.
func (u *retrieveContextUsecase) retrieveMultiEntity(ctx context.Context, vector []float32, matches []domain.PersonRecord) (domain.RetrievalResult, error) {
	perDocument := make([][]domain.ScoredChunk, len(matches))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(branchAFanOutLimit)
	for i, rec := range matches {
		g.Go(func() error {
			ranked, err := domain.RankChunks(vector, u.store.Chunks(), rec.DocumentID, u.topK)
			if err != nil {
				return err
			}
			perDocument[i] = ranked
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.NoContext(), fmt.Errorf("rank matched documents: %w", err)
	}

	var blocks []string
	for i, ranked := range perDocument {
		if len(ranked) == 0 {
			continue
		}
		blocks = append(blocks, formatBlock(&matches[i], ranked))
	}

	if len(blocks) >= 2 {
		return domain.FoundContext(strings.Join(blocks, blockSeparator)), nil
	}
	// Fewer than two documents yielded passages: degrade to the first
	// matched document with results, in original match order.
	if len(blocks) == 1 {
		return domain.FoundContext(blocks[0]), nil
	}
	return domain.NoContext(), nil
}

func (u *retrieveContextUsecase) retrieveSingleEntity(vector []float32, rec domain.PersonRecord) (domain.RetrievalResult, error) {
	ranked, err := domain.RankChunks(vector, u.store.Chunks(), rec.DocumentID, u.topK)
	if err != nil {
		return domain.NoContext(), fmt.Errorf("rank document %s: %w", rec.DocumentID, err)
	}
	if len(ranked) == 0 {
		return domain.NoContext(), nil
	}
	return domain.FoundContext(formatBlock(&rec, ranked)), nil
}

// retrieveFallback ranks the whole corpus, groups the top passages by source
// document and keeps the best-represented document. Score ties between
// groups go to the group encountered first in ranked order.
func (u *retrieveContextUsecase) retrieveFallback(vector []float32) (domain.RetrievalResult, error) {
	ranked, err := domain.RankChunks(vector, u.store.Chunks(), "", u.topK)
	if err != nil {
		return domain.NoContext(), fmt.Errorf("rank corpus: %w", err)
	}
	if len(ranked) == 0 {
		return domain.NoContext(), nil
	}

	groups := make(map[string][]domain.ScoredChunk)
	var order []string
	for _, sc := range ranked {
		id := sc.Chunk.DocumentID
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], sc)
	}

	best := order[0]
	for _, id := range order[1:] {
		if len(groups[id]) > len(groups[best]) {
			best = id
		}
	}

	return domain.FoundContext(formatBlock(u.store.PersonByID(best), groups[best])), nil
}

// formatBlock renders one document's passages under its interview header:
//
//	Interview <id> with <name> (<date>):
//	[Page p] passage text
func formatBlock(rec *domain.PersonRecord, chunks []domain.ScoredChunk) string {
	var sb strings.Builder
	if rec != nil {
		fmt.Fprintf(&sb, "Interview %s with %s (%s):", rec.DocumentID, rec.Name, rec.Date)
	} else {
		fmt.Fprintf(&sb, "Interview %s:", chunks[0].Chunk.DocumentID)
	}
	for _, sc := range chunks {
		sb.WriteString("\n")
		sb.WriteString(formatPassage(sc.Chunk))
	}
	return sb.String()
}

func formatPassage(chunk domain.Chunk) string {
	if chunk.Page > 0 {
		return fmt.Sprintf("[Page %d] %s", chunk.Page, chunk.Text)
	}
	return fmt.Sprintf("[Page ?] %s", chunk.Text)
}
