package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// MinSpanLength is the minimum span length in runes. Interview
	// transcripts are full of one-line speaker turns ("JEAN CARLOMUSTO:
	// Right."), which are useless to embed on their own and get merged
	// with their neighbours.
	MinSpanLength = 80
	// MaxSpanLength is the maximum span length in runes. Longer passages
	// are split at sentence boundaries.
	MaxSpanLength = 1000
)

// Chunker splits transcript text into embedding-sized spans.
type Chunker interface {
	Chunk(body string) []string
}

type transcriptChunker struct{}

// NewChunker returns the paragraph-based transcript chunker.
func NewChunker() Chunker {
	return &transcriptChunker{}
}

// Chunk splits on blank lines, merges spans shorter than MinSpanLength with
// their neighbours, and splits spans longer than MaxSpanLength at sentence
// boundaries. Span order follows the source text.
func (c *transcriptChunker) Chunk(body string) []string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var paragraphs []string
	for _, part := range strings.Split(normalized, "\n\n") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	return splitLongSpans(mergeShortSpans(paragraphs))
}

// mergeShortSpans glues runs of short paragraphs together and, when a run is
// still under the minimum, folds it into the neighbouring long span so no
// fragment is dropped.
func mergeShortSpans(paragraphs []string) []string {
	var merged []string
	var pending string

	flush := func(next string) string {
		if pending == "" {
			return next
		}
		if utf8.RuneCountInString(pending) >= MinSpanLength {
			merged = append(merged, pending)
		} else if len(merged) > 0 {
			merged[len(merged)-1] += "\n\n" + pending
		} else if next != "" {
			next = pending + "\n\n" + next
		} else {
			merged = append(merged, pending)
		}
		pending = ""
		return next
	}

	for _, para := range paragraphs {
		if utf8.RuneCountInString(para) >= MinSpanLength {
			merged = append(merged, flush(para))
			continue
		}
		if pending == "" {
			pending = para
		} else {
			pending += "\n\n" + para
		}
	}
	flush("")

	return merged
}

func splitLongSpans(spans []string) []string {
	var result []string
	for _, span := range spans {
		if utf8.RuneCountInString(span) <= MaxSpanLength {
			result = append(result, span)
			continue
		}

		var current string
		for _, sentence := range splitSentences(span) {
			currentLen := utf8.RuneCountInString(current)
			if currentLen > 0 && currentLen+1+utf8.RuneCountInString(sentence) > MaxSpanLength {
				result = append(result, current)
				current = sentence
				continue
			}
			if current != "" {
				current += " "
			}
			current += sentence
		}
		if current != "" {
			result = append(result, current)
		}
	}
	return result
}

// splitSentences breaks text at terminal punctuation followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var sb strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		sb.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') &&
			(i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n') {
			if s := strings.TrimSpace(sb.String()); s != "" {
				sentences = append(sentences, s)
			}
			sb.Reset()
		}
	}
	if s := strings.TrimSpace(sb.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
