package httpapi

import (
	"errors"
	"net/http"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
	"github.com/annavdvet2000/chatbot11directanswers/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	answerUsecase   usecase.AnswerUsecase
	retrieveUsecase usecase.RetrieveContextUsecase
}

func NewHandler(answerUsecase usecase.AnswerUsecase, retrieveUsecase usecase.RetrieveContextUsecase) *Handler {
	return &Handler{
		answerUsecase:   answerUsecase,
		retrieveUsecase: retrieveUsecase,
	}
}

// Register wires the API routes onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.POST("/chat", h.Chat)
	v1.POST("/retrieve", h.Retrieve)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	SessionID    string `json:"session_id"`
	Answer       string `json:"answer"`
	ContextFound bool   `json:"context_found"`
	Context      string `json:"context,omitempty"`
}

// Chat answers a question within a session.
// (POST /api/v1/chat)
func (h *Handler) Chat(ctx echo.Context) error {
	var req chatRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Question == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	output, err := h.answerUsecase.Execute(ctx.Request().Context(), usecase.AnswerInput{
		SessionID: req.SessionID,
		Question:  req.Question,
	})
	if err != nil {
		return providerError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, chatResponse{
		SessionID:    output.SessionID,
		Answer:       output.Answer,
		ContextFound: output.ContextFound,
		Context:      output.Context,
	})
}

type retrieveRequest struct {
	Question string              `json:"question"`
	History  []conversationTurn  `json:"history,omitempty"`
}

type conversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type retrieveResponse struct {
	Found   bool   `json:"found"`
	Context string `json:"context,omitempty"`
}

// Retrieve runs the retrieval engine alone, without generation. Useful for
// inspecting what context a question would be answered from.
// (POST /api/v1/retrieve)
func (h *Handler) Retrieve(ctx echo.Context) error {
	var req retrieveRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Question == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	history := make([]domain.ConversationTurn, len(req.History))
	for i, turn := range req.History {
		history[i] = domain.ConversationTurn{Role: turn.Role, Content: turn.Content}
	}

	result, err := h.retrieveUsecase.Execute(ctx.Request().Context(), usecase.RetrieveContextInput{
		Question: req.Question,
		History:  history,
	})
	if err != nil {
		return providerError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, retrieveResponse{Found: result.Found, Context: result.Context})
}

// providerError maps upstream provider failures to 502 and everything else
// to 500, so callers can tell "provider down" from "engine bug".
func providerError(ctx echo.Context, err error) error {
	if errors.Is(err, domain.ErrEmbeddingProvider) {
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
