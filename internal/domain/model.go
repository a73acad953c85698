package domain

// Chunk is a contiguous span of transcript text belonging to exactly one
// source document. The slice order inside the corpus matches the order the
// spans appear in the transcripts, which the ranker relies on for tie-breaks.
type Chunk struct {
	DocumentID string
	Page       int // 1-based; 0 means the source carried no page number
	Text       string
	TokenCount int
	Embedding  []float32
}

// PersonRecord is the registry entry for one interviewed person. The
// DocumentID doubles as the key for the subset of chunks extracted from
// that person's transcript.
type PersonRecord struct {
	DocumentID string
	Name       string
	Date       string
	Title      string
	Tags       string
}

// ScoredChunk pairs a chunk with its similarity score against a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationTurn is one message in a chat session.
type ConversationTurn struct {
	Role    string
	Content string
}

// Message is one entry in the ordered message list sent to the generation
// provider.
type Message struct {
	Role    string
	Content string
}

// RetrievalResult is the engine's output: either a formatted context block or
// an explicit not-found marker. The tagged form keeps "nothing relevant" from
// being conflated with an empty context string.
type RetrievalResult struct {
	Found   bool
	Context string
}

// FoundContext wraps a non-empty formatted context block.
func FoundContext(context string) RetrievalResult {
	return RetrievalResult{Found: true, Context: context}
}

// NoContext is the explicit "no relevant context found" outcome.
func NoContext() RetrievalResult {
	return RetrievalResult{}
}
