package usecase

import (
	"strings"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
)

// PromptInput feeds the prompt builder: the question, the session history,
// and the retrieval outcome to interpolate into the system instructions.
type PromptInput struct {
	Question string
	History  []domain.ConversationTurn
	Context  domain.RetrievalResult
}

// PromptBuilder composes the ordered message list for the generation
// provider: system instructions (with the retrieved context interpolated),
// then the history, then the user turn.
type PromptBuilder interface {
	Build(input PromptInput) []domain.Message
}

type interviewPromptBuilder struct {
	extraInstructions []string
}

// NewPromptBuilder creates the transcript Q&A prompt builder; extra
// instructions are appended to the system message.
func NewPromptBuilder(extraInstructions ...string) PromptBuilder {
	return &interviewPromptBuilder{extraInstructions: extraInstructions}
}

func (b *interviewPromptBuilder) Build(input PromptInput) []domain.Message {
	var sys strings.Builder
	sys.WriteString("You are an assistant answering questions about a collection of oral history interview transcripts.\n")
	sys.WriteString("Answer using only the interview excerpts provided below. ")
	sys.WriteString("Cite the interview number and page when you quote or paraphrase.\n\n")

	if input.Context.Found {
		sys.WriteString("Relevant excerpts:\n\n")
		sys.WriteString(input.Context.Context)
		sys.WriteString("\n")
	} else {
		sys.WriteString("No relevant excerpts were found for this question. ")
		sys.WriteString("Say that the interviews do not cover it; do not invent sources.\n")
	}

	for _, extra := range b.extraInstructions {
		sys.WriteString("\n")
		sys.WriteString(extra)
	}

	messages := make([]domain.Message, 0, len(input.History)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: sys.String()})
	for _, turn := range input.History {
		messages = append(messages, domain.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: input.Question})
	return messages
}
