package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
	"github.com/annavdvet2000/chatbot11directanswers/internal/session"

	"github.com/google/uuid"
)

// AnswerInput is one chat request. An empty SessionID starts a new session.
type AnswerInput struct {
	SessionID string
	Question  string
}

// AnswerOutput is the generated answer plus the session it belongs to.
type AnswerOutput struct {
	SessionID    string
	Answer       string
	ContextFound bool
	Context      string
}

// ChatLog is one completed exchange handed to the archive.
type ChatLog struct {
	ID           uuid.UUID
	SessionID    string
	Question     string
	Answer       string
	ContextFound bool
	CreatedAt    time.Time
}

// ChatLogArchive persists completed exchanges. Archiving is best-effort and
// must never fail a request.
type ChatLogArchive interface {
	Insert(ctx context.Context, log ChatLog) error
}

// AnswerUsecase runs the full per-request pipeline: retrieve context, build
// the prompt, call the generator, and record the exchange in the session.
type AnswerUsecase interface {
	Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error)
}

type answerUsecase struct {
	sessions      *session.Store
	retrieve      RetrieveContextUsecase
	promptBuilder PromptBuilder
	llmClient     domain.LLMClient
	archive       ChatLogArchive // nil when archiving is disabled
	historyWindow int
	maxTokens     int
	logger        *slog.Logger
}

// NewAnswerUsecase wires the answer pipeline. archive may be nil.
func NewAnswerUsecase(
	sessions *session.Store,
	retrieve RetrieveContextUsecase,
	promptBuilder PromptBuilder,
	llmClient domain.LLMClient,
	archive ChatLogArchive,
	historyWindow, maxTokens int,
	logger *slog.Logger,
) AnswerUsecase {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &answerUsecase{
		sessions:      sessions,
		retrieve:      retrieve,
		promptBuilder: promptBuilder,
		llmClient:     llmClient,
		archive:       archive,
		historyWindow: historyWindow,
		maxTokens:     maxTokens,
		logger:        logger,
	}
}

func (u *answerUsecase) Execute(ctx context.Context, input AnswerInput) (*AnswerOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	history := u.sessions.Recent(sessionID, u.historyWindow)

	result, err := u.retrieve.Execute(ctx, RetrieveContextInput{Question: question, History: history})
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	messages := u.promptBuilder.Build(PromptInput{Question: question, History: history, Context: result})
	resp, err := u.llmClient.Chat(ctx, messages, u.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	answer := strings.TrimSpace(resp.Text)

	// One user turn and, now that generation succeeded, one assistant turn.
	u.sessions.Append(sessionID,
		domain.ConversationTurn{Role: domain.RoleUser, Content: question},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: answer},
	)

	u.archiveExchange(sessionID, question, answer, result.Found)

	return &AnswerOutput{
		SessionID:    sessionID,
		Answer:       answer,
		ContextFound: result.Found,
		Context:      result.Context,
	}, nil
}

func (u *answerUsecase) archiveExchange(sessionID, question, answer string, contextFound bool) {
	if u.archive == nil {
		return
	}
	log := ChatLog{
		ID:           uuid.New(),
		SessionID:    sessionID,
		Question:     question,
		Answer:       answer,
		ContextFound: contextFound,
		CreatedAt:    time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := u.archive.Insert(ctx, log); err != nil {
			u.logger.Warn("chat_log_archive_failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
		}
	}()
}
