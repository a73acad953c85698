package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
	"github.com/annavdvet2000/chatbot11directanswers/internal/session"
	"github.com/annavdvet2000/chatbot11directanswers/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Chat(ctx context.Context, messages []domain.Message, maxTokens int) (*domain.LLMResponse, error) {
	args := m.Called(ctx, messages, maxTokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LLMResponse), args.Error(1)
}

func (m *mockLLMClient) Version() string { return "mock-llm" }

type stubRetrieve struct {
	result domain.RetrievalResult
	err    error
	seen   usecase.RetrieveContextInput
}

func (s *stubRetrieve) Execute(ctx context.Context, input usecase.RetrieveContextInput) (domain.RetrievalResult, error) {
	s.seen = input
	return s.result, s.err
}

type recordingArchive struct {
	mu   sync.Mutex
	logs []usecase.ChatLog
	err  error
	done chan struct{}
}

func newRecordingArchive(err error) *recordingArchive {
	return &recordingArchive{err: err, done: make(chan struct{}, 1)}
}

func (a *recordingArchive) Insert(ctx context.Context, log usecase.ChatLog) error {
	a.mu.Lock()
	a.logs = append(a.logs, log)
	a.mu.Unlock()
	a.done <- struct{}{}
	return a.err
}

func TestAnswerUsecase_HappyPath(t *testing.T) {
	sessions := session.NewStore()
	retrieve := &stubRetrieve{result: domain.FoundContext("Interview 1 with Jean Carlomusto (2002):\n[Page 5] text")}
	llm := new(mockLLMClient)
	archive := newRecordingArchive(nil)
	uc := usecase.NewAnswerUsecase(sessions, retrieve, usecase.NewPromptBuilder(), llm, archive, 4, 512, testLogger())

	llm.On("Chat", mock.Anything, mock.MatchedBy(func(messages []domain.Message) bool {
		return len(messages) == 2 && messages[0].Role == domain.RoleSystem
	}), 512).Return(&domain.LLMResponse{Text: "She founded the video collective.", Done: true}, nil)

	out, err := uc.Execute(context.Background(), usecase.AnswerInput{Question: "What did Jean found?"})

	require.NoError(t, err)
	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, "She founded the video collective.", out.Answer)
	assert.True(t, out.ContextFound)

	// exactly one user and one assistant turn recorded
	turns := sessions.Recent(out.SessionID, 10)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "What did Jean found?", turns[0].Content)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)

	select {
	case <-archive.done:
	case <-time.After(time.Second):
		t.Fatal("archive was never called")
	}
	archive.mu.Lock()
	defer archive.mu.Unlock()
	require.Len(t, archive.logs, 1)
	assert.Equal(t, out.SessionID, archive.logs[0].SessionID)
	assert.True(t, archive.logs[0].ContextFound)
}

func TestAnswerUsecase_ReusesSessionHistory(t *testing.T) {
	sessions := session.NewStore()
	sessions.Append("existing",
		domain.ConversationTurn{Role: domain.RoleUser, Content: "old question"},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: "old answer"},
	)
	retrieve := &stubRetrieve{result: domain.NoContext()}
	llm := new(mockLLMClient)
	uc := usecase.NewAnswerUsecase(sessions, retrieve, usecase.NewPromptBuilder(), llm, nil, 4, 512, testLogger())

	llm.On("Chat", mock.Anything, mock.Anything, 512).
		Return(&domain.LLMResponse{Text: "answer", Done: true}, nil)

	out, err := uc.Execute(context.Background(), usecase.AnswerInput{SessionID: "existing", Question: "why?"})

	require.NoError(t, err)
	assert.Equal(t, "existing", out.SessionID)
	assert.False(t, out.ContextFound)

	// the retrieval saw the prior exchange as read-only history
	require.Len(t, retrieve.seen.History, 2)
	assert.Equal(t, "old question", retrieve.seen.History[0].Content)

	assert.Equal(t, 4, sessions.Len("existing"))
}

func TestAnswerUsecase_GenerationFailureLeavesSessionUntouched(t *testing.T) {
	sessions := session.NewStore()
	retrieve := &stubRetrieve{result: domain.FoundContext("ctx")}
	llm := new(mockLLMClient)
	uc := usecase.NewAnswerUsecase(sessions, retrieve, usecase.NewPromptBuilder(), llm, nil, 4, 512, testLogger())

	llm.On("Chat", mock.Anything, mock.Anything, 512).Return(nil, errors.New("model offline"))

	_, err := uc.Execute(context.Background(), usecase.AnswerInput{SessionID: "s", Question: "q?"})

	require.Error(t, err)
	assert.Equal(t, 0, sessions.Len("s"))
}

func TestAnswerUsecase_RetrievalFailurePropagates(t *testing.T) {
	sessions := session.NewStore()
	retrieve := &stubRetrieve{err: domain.ErrEmbeddingProvider}
	llm := new(mockLLMClient)
	uc := usecase.NewAnswerUsecase(sessions, retrieve, usecase.NewPromptBuilder(), llm, nil, 4, 512, testLogger())

	_, err := uc.Execute(context.Background(), usecase.AnswerInput{SessionID: "s", Question: "q?"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingProvider))
	llm.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerUsecase_EmptyQuestionRejected(t *testing.T) {
	uc := usecase.NewAnswerUsecase(session.NewStore(), &stubRetrieve{}, usecase.NewPromptBuilder(), new(mockLLMClient), nil, 4, 512, testLogger())

	_, err := uc.Execute(context.Background(), usecase.AnswerInput{Question: " "})

	assert.Error(t, err)
}
