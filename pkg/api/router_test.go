package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/webchat-backend/pkg/api/handler"
	"github.com/dskvich/webchat-backend/pkg/api/middleware"
	"github.com/dskvich/webchat-backend/pkg/domain"
	"github.com/dskvich/webchat-backend/pkg/logger"
)

var devOrigins = []string{"http://localhost:5173", "http://localhost:5174"}

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePipeline struct {
	err       error
	got       []domain.ChatMessage
	requestID string
}

func (f *fakePipeline) Run(ctx context.Context, state *domain.ChatState) error {
	f.got = append([]domain.ChatMessage(nil), state.Messages...)
	f.requestID, _ = logger.RequestIDFromContext(ctx)
	if f.err != nil {
		return f.err
	}
	state.Append(domain.RoleSystem, "[WEB] Recent search results:\n- t (u)")
	state.Append(domain.RoleAssistant, "hello back")
	return nil
}

func newTestRouter(p *fakePipeline) *gin.Engine {
	return NewRouter(handler.NewChat(p), devOrigins)
}

func postChat(t *testing.T, router http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChat_Success(t *testing.T) {
	p := &fakePipeline{}
	rec := postChat(t, newTestRouter(p), `{"messages":[{"role":"user","content":"hello"}]}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Messages, 3)
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleUser, Content: "hello"}, resp.Messages[0])
	assert.Equal(t, domain.RoleSystem, resp.Messages[1].Role)
	assert.Equal(t, domain.ChatMessage{Role: domain.RoleAssistant, Content: "hello back"}, resp.Messages[2])

	assert.Equal(t, []domain.ChatMessage{{Role: domain.RoleUser, Content: "hello"}}, p.got)
}

func TestChat_EmptyMessagesIsAccepted(t *testing.T) {
	p := &fakePipeline{}
	rec := postChat(t, newTestRouter(p), `{"messages":[]}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, p.got)
}

func TestChat_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing messages",
			body:    `{}`,
			wantErr: "messages field required",
		},
		{
			name:    "unknown role",
			body:    `{"messages":[{"role":"robot","content":"x"}]}`,
			wantErr: "messages[0].role must be one of [user assistant system]",
		},
		{
			name:    "missing role",
			body:    `{"messages":[{"content":"x"}]}`,
			wantErr: "messages[0].role field required",
		},
		{
			name:    "malformed json",
			body:    `{"messages":`,
			wantErr: "invalid request body",
		},
		{
			name:    "messages not a list",
			body:    `{"messages":"hello"}`,
			wantErr: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{}
			rec := postChat(t, newTestRouter(p), tt.body, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantErr)
			assert.Nil(t, p.got, "pipeline must not run")
		})
	}
}

func TestChat_PipelineFailure(t *testing.T) {
	p := &fakePipeline{err: errors.New("node llm: upstream returned status 503")}
	rec := postChat(t, newTestRouter(p), `{"messages":[{"role":"user","content":"hi"}]}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "503", "upstream details stay in the log")
}

func TestChat_RequestID(t *testing.T) {
	t.Run("propagates incoming id", func(t *testing.T) {
		p := &fakePipeline{}
		rec := postChat(t, newTestRouter(p), `{"messages":[]}`, map[string]string{
			middleware.RequestIDHeader: "req-42",
		})

		assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "req-42", p.requestID)
	})

	t.Run("generates one when absent", func(t *testing.T) {
		p := &fakePipeline{}
		rec := postChat(t, newTestRouter(p), `{"messages":[]}`, nil)

		id := rec.Header().Get(middleware.RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, p.requestID)
	})
}

func TestCORS(t *testing.T) {
	router := newTestRouter(&fakePipeline{})

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "content-type")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "content-type")
	})

	t.Run("simple request from second dev origin", func(t *testing.T) {
		rec := postChat(t, router, `{"messages":[]}`, map[string]string{"Origin": "http://localhost:5174"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5174", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin is rejected", func(t *testing.T) {
		rec := postChat(t, router, `{"messages":[]}`, map[string]string{"Origin": "http://evil.example"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakePipeline{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
