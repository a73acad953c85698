package usecase

import (
	"strings"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
)

const (
	// shortQuestionThreshold marks questions likely to be elliptical
	// references to the previous turn ("why did she...?").
	shortQuestionThreshold = 60

	// DefaultHistoryWindow is how many trailing turns are folded into a
	// contextualized query.
	DefaultHistoryWindow = 4
)

// ReformulatedQuery is the query text actually embedded, plus the intent flag
// that drives branch selection.
type ReformulatedQuery struct {
	Text        string
	Comparative bool
}

// ReformulateQuery decides whether the raw question needs conversational
// grounding. Short questions, questions opening with why/how, and questions
// without a question mark get the last window turns of history folded in;
// explicit full questions are embedded as-is.
func ReformulateQuery(question string, history []domain.ConversationTurn, window int) ReformulatedQuery {
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	text := question
	if needsHistory(question) && len(history) > 0 {
		start := len(history) - window
		if start < 0 {
			start = 0
		}
		parts := make([]string, 0, window+1)
		for _, turn := range history[start:] {
			parts = append(parts, turn.Content)
		}
		parts = append(parts, question)
		text = strings.Join(parts, " ")
	}

	lowered := strings.ToLower(text)
	return ReformulatedQuery{
		Text:        text,
		Comparative: strings.Contains(lowered, "between") || strings.Contains(lowered, "compare"),
	}
}

func needsHistory(question string) bool {
	if len(question) < shortQuestionThreshold {
		return true
	}
	lowered := strings.ToLower(question)
	if strings.HasPrefix(lowered, "why") || strings.HasPrefix(lowered, "how") {
		return true
	}
	return !strings.Contains(question, "?")
}
