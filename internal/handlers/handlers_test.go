package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitsuz/habits-backend/internal/config"
	"github.com/habitsuz/habits-backend/internal/services"
)

func doRequest(t *testing.T, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandlersRequireAuthenticatedUser(t *testing.T) {
	// Without RequireAuth in front there is no user in the context; every
	// protected handler must refuse rather than act on nobody.
	protected := map[string]http.HandlerFunc{
		"create habit": CreateHabit,
		"update habit": UpdateHabit,
		"delete habit": DeleteHabit,
		"create task":  CreateTask,
		"update task":  UpdateTask,
		"delete task":  DeleteTask,
		"send message": SendMessage,
		"get data":     GetData,
	}

	for name, handler := range protected {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/x", `{}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGetMessagesValidation(t *testing.T) {
	t.Run("rejects non-numeric limit", func(t *testing.T) {
		rec := doRequest(t, GetMessages, http.MethodGet, "/api/chat?limit=abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects zero limit", func(t *testing.T) {
		rec := doRequest(t, GetMessages, http.MethodGet, "/api/chat?limit=0", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed since cursor", func(t *testing.T) {
		rec := doRequest(t, GetMessages, http.MethodGet, "/api/chat?since=xyz", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCoachHandlersFallbacks(t *testing.T) {
	// No API key configured: every endpoint serves static content instead
	// of calling out.
	InitCoachService(&config.Config{
		GeminiAPIURL: "http://localhost:0",
		GeminiModel:  "test-model",
	})

	t.Run("quote falls back", func(t *testing.T) {
		rec := doRequest(t, GetQuote, http.MethodPost, "/api/ai/quote", `{}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp QuoteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, services.FallbackQuote, resp.Quote)
	})

	t.Run("chat falls back", func(t *testing.T) {
		rec := doRequest(t, CoachChat, http.MethodPost, "/api/ai/chat", `{"message":"help me focus"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CoachChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, services.FallbackReply, resp.Reply)
	})

	t.Run("plan returns empty list", func(t *testing.T) {
		rec := doRequest(t, GetPlan, http.MethodPost, "/api/ai/plan", `{"goal":"run a marathon"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PlanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Habits)
		assert.Empty(t, resp.Habits)
	})

	t.Run("plan requires a goal", func(t *testing.T) {
		rec := doRequest(t, GetPlan, http.MethodPost, "/api/ai/plan", `{"goal":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("chat requires a message", func(t *testing.T) {
		rec := doRequest(t, CoachChat, http.MethodPost, "/api/ai/chat", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
