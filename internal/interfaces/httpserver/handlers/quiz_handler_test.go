package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"organquiz/internal/config"
	domain "organquiz/internal/domain/quiz"
	"organquiz/internal/interfaces/httpserver/responses"
	"organquiz/utils/quizid"
)

type fakeGenerator struct {
	subject string
	err     error
	calls   int
}

func (g *fakeGenerator) Generate(_ context.Context) (*domain.Generation, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	id := quizid.NewArtifact()
	return &domain.Generation{
		Subject: g.subject,
		Artifact: &domain.Artifact{
			ID:       id,
			Path:     "/tmp/" + id + ".png",
			MimeType: "image/png",
			Bytes:    128,
		},
	}, nil
}

type fakeStorage struct {
	published []string
	removed   []string
}

func (s *fakeStorage) Publish(_ context.Context, artifact *domain.Artifact) (string, error) {
	s.published = append(s.published, artifact.ID)
	return "/v1/files/" + artifact.ID + ".png?v=" + artifact.ID, nil
}

func (s *fakeStorage) Remove(_ context.Context, artifactID string) error {
	s.removed = append(s.removed, artifactID)
	return nil
}

func newTestRouter(t *testing.T, generator domain.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pool, err := domain.NewPool([]string{"Heart", "Lungs", "Liver", "Kidney", "Brain"})
	require.NoError(t, err)

	service := domain.NewService(pool, generator, &fakeStorage{}, zerolog.Nop())
	handler := NewQuizHandler(&config.Config{}, service, zerolog.Nop())

	engine := gin.New()
	engine.GET("/v1/quiz/question", handler.Question)
	engine.POST("/v1/quiz/answer", handler.Answer)
	return engine
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookie {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestQuestion_ReturnsOptionsAndMintsSession(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{subject: "Heart"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quiz/question", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.QuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Options, 4)
	assert.Contains(t, resp.Options, "Heart")
	assert.Contains(t, resp.ImageURL, "?v=img_")

	cookie := sessionCookieFrom(t, rec)
	assert.True(t, quizid.IsSession(cookie.Value))
}

func TestQuestion_PoolExhausted(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{err: domain.ErrPoolExhausted})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quiz/question", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "POOL_EXHAUSTED", resp.Code)
}

func TestQuestion_GenerationFailure(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{err: &domain.ProviderError{Op: "invoke_model"}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quiz/question", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnswer_WithoutRound(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{subject: "Heart"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/quiz/answer", strings.NewReader(`{"selected_option":"Heart"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NO_ACTIVE_ROUND", resp.Code)
}

func TestAnswer_MissingSelection(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{subject: "Heart"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/quiz/answer", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuestionThenAnswer_FullFlow(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{subject: "Liver"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/quiz/question", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookieFrom(t, rec)

	answer := func(selected string) (*httptest.ResponseRecorder, *responses.AnswerResponse) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/quiz/answer", strings.NewReader(`{"selected_option":"`+selected+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return rec, nil
		}
		var resp responses.AnswerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return rec, &resp
	}

	// Wrong guess keeps the round open and reveals the answer.
	wrongRec, wrong := answer("Kidney")
	require.Equal(t, http.StatusOK, wrongRec.Code)
	assert.False(t, wrong.IsCorrect)
	assert.Equal(t, "Liver", wrong.CorrectAnswer)

	// Correct guess consumes the round.
	correctRec, correct := answer("Liver")
	require.Equal(t, http.StatusOK, correctRec.Code)
	assert.True(t, correct.IsCorrect)

	spentRec, _ := answer("Liver")
	require.Equal(t, http.StatusBadRequest, spentRec.Code)
	var spent responses.ErrorResponse
	require.NoError(t, json.Unmarshal(spentRec.Body.Bytes(), &spent))
	assert.Equal(t, "NO_ACTIVE_ROUND", spent.Code)
}

func TestSessionCookie_ReusedAcrossRequests(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{subject: "Brain"})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/quiz/question", nil))
	cookie := sessionCookieFrom(t, first)

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/quiz/question", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(second, req)
	require.Equal(t, http.StatusOK, second.Code)

	for _, c := range second.Result().Cookies() {
		assert.NotEqual(t, sessionCookie, c.Name, "a valid session cookie must not be replaced")
	}
}

func TestSessionCookie_MalformedValueIsReplaced(t *testing.T) {
	router := newTestRouter(t, &fakeGenerator{subject: "Heart"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/quiz/question", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-session-id"})
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookieFrom(t, rec)
	assert.True(t, quizid.IsSession(cookie.Value))
}
