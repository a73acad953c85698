package usecase_test

import (
	"testing"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
	"github.com/annavdvet2000/chatbot11directanswers/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func turns(contents ...string) []domain.ConversationTurn {
	out := make([]domain.ConversationTurn, len(contents))
	for i, c := range contents {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		out[i] = domain.ConversationTurn{Role: role, Content: c}
	}
	return out
}

func TestReformulateQuery_ShortQuestionFoldsHistory(t *testing.T) {
	history := turns("what did she film?", "She filmed the demonstrations.")

	got := usecase.ReformulateQuery("why?", history, 4)

	assert.Equal(t, "what did she film? She filmed the demonstrations. why?", got.Text)
}

func TestReformulateQuery_LongExplicitQuestionUnchanged(t *testing.T) {
	question := "What specific organization did Jean Carlomusto found in 1987 according to the interview?"
	history := turns("earlier question", "earlier answer")

	got := usecase.ReformulateQuery(question, history, 4)

	assert.Equal(t, question, got.Text)
	assert.False(t, got.Comparative)
}

func TestReformulateQuery_WhyHowPrefixTriggersFolding(t *testing.T) {
	history := turns("tell me about the oral history project please and thanks")
	question := "How did the project handle interviews that ran over multiple sessions in total?"

	got := usecase.ReformulateQuery(question, history, 4)

	assert.Contains(t, got.Text, history[0].Content)
	assert.Contains(t, got.Text, question)
}

func TestReformulateQuery_MissingQuestionMarkTriggersFolding(t *testing.T) {
	history := turns("previous turn content")
	question := "tell me more about the organization she founded and what it did in the city"

	got := usecase.ReformulateQuery(question, history, 4)

	assert.Equal(t, "previous turn content "+question, got.Text)
}

func TestReformulateQuery_WindowLimitsFoldedTurns(t *testing.T) {
	history := turns("t1", "t2", "t3", "t4", "t5", "t6")

	got := usecase.ReformulateQuery("why?", history, 4)

	assert.Equal(t, "t3 t4 t5 t6 why?", got.Text)
}

func TestReformulateQuery_NoHistoryKeepsQuestion(t *testing.T) {
	got := usecase.ReformulateQuery("why?", nil, 4)

	assert.Equal(t, "why?", got.Text)
}

func TestReformulateQuery_ComparativeDetection(t *testing.T) {
	cases := []struct {
		question string
		history  []domain.ConversationTurn
		want     bool
	}{
		{"compare the activism of Jean Carlomusto and Vito Russo", nil, true},
		{"what is the difference between their approaches to direct action?", nil, true},
		{"What did Jean Carlomusto do at GMHC during the late eighties exactly?", nil, false},
		// the flag is computed on the contextualized query, not the raw question
		{"why?", turns("compare their tactics", "they differed"), true},
	}
	for _, tc := range cases {
		got := usecase.ReformulateQuery(tc.question, tc.history, 4)
		assert.Equal(t, tc.want, got.Comparative, tc.question)
	}
}
