package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annavdvet2000/chatbot11directanswers/internal/adapter/httpapi"
	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
	"github.com/annavdvet2000/chatbot11directanswers/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnswerUsecase struct {
	output *usecase.AnswerOutput
	err    error
}

func (s *stubAnswerUsecase) Execute(ctx context.Context, input usecase.AnswerInput) (*usecase.AnswerOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := *s.output
	if out.SessionID == "" {
		out.SessionID = input.SessionID
	}
	return &out, nil
}

type stubRetrieveUsecase struct {
	result domain.RetrievalResult
	err    error
}

func (s *stubRetrieveUsecase) Execute(ctx context.Context, input usecase.RetrieveContextInput) (domain.RetrievalResult, error) {
	return s.result, s.err
}

func doRequest(t *testing.T, h *httpapi.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.Register(e)

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChat_Success(t *testing.T) {
	h := httpapi.NewHandler(&stubAnswerUsecase{output: &usecase.AnswerOutput{
		SessionID:    "abc",
		Answer:       "She founded DIVA TV.",
		ContextFound: true,
	}}, &stubRetrieveUsecase{})

	rec := doRequest(t, h, "/api/v1/chat", map[string]string{"question": "What did she found?"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp["session_id"])
	assert.Equal(t, "She founded DIVA TV.", resp["answer"])
	assert.Equal(t, true, resp["context_found"])
}

func TestChat_MissingQuestion(t *testing.T) {
	h := httpapi.NewHandler(&stubAnswerUsecase{}, &stubRetrieveUsecase{})

	rec := doRequest(t, h, "/api/v1/chat", map[string]string{"session_id": "abc"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_EmbeddingProviderFailureIsBadGateway(t *testing.T) {
	h := httpapi.NewHandler(&stubAnswerUsecase{err: domain.ErrEmbeddingProvider}, &stubRetrieveUsecase{})

	rec := doRequest(t, h, "/api/v1/chat", map[string]string{"question": "q"})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRetrieve_FoundAndNotFoundAreDistinct(t *testing.T) {
	found := httpapi.NewHandler(&stubAnswerUsecase{}, &stubRetrieveUsecase{
		result: domain.FoundContext("Interview 1 with Jean Carlomusto (2002):\n[Page 5] text"),
	})
	rec := doRequest(t, found, "/api/v1/retrieve", map[string]string{"question": "q"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["found"])
	assert.Contains(t, resp["context"], "Interview 1")

	notFound := httpapi.NewHandler(&stubAnswerUsecase{}, &stubRetrieveUsecase{result: domain.NoContext()})
	rec = doRequest(t, notFound, "/api/v1/retrieve", map[string]string{"question": "q"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp = map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["found"])
	_, hasContext := resp["context"]
	assert.False(t, hasContext)
}
