package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"money-copilot/internal/domain"
	"money-copilot/internal/llm"
	"money-copilot/internal/marketdata"
	"money-copilot/internal/repository"
)

func newTestRouter(llmClient llm.Client) (*gin.Engine, *repository.MemSessionRepository, *repository.MemMessageRepository) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	sessions := repository.NewMemSessionRepository()
	messages := repository.NewMemMessageRepository()
	chatH := NewChatHandler(logger, sessions, messages, llmClient)
	tradesH := NewTradesHandler(logger, marketdata.NewProvider(), marketdata.NewSnapshotCache(nil, time.Minute))
	return NewRouter(logger, chatH, tradesH), sessions, messages
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, decoded
}

func TestCreateSession_ReturnsID(t *testing.T) {
	router, sessions, _ := newTestRouter(nil)

	rec, resp := doJSON(t, router, http.MethodPost, "/api/chat/sessions", `{"title": "New Chat Session"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	id, _ := resp["session_id"].(string)
	if id == "" {
		t.Fatalf("expected session_id, got %v", resp)
	}
	if _, err := sessions.GetByID(context.Background(), id); err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
}

func TestPostMessage_UnknownSessionIs404(t *testing.T) {
	router, _, _ := newTestRouter(nil)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/chat/sessions/missing/messages", `{"content": "hello"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPostMessage_CannedReplyWithTickerMetadata(t *testing.T) {
	router, sessions, messages := newTestRouter(nil)
	_ = sessions.Create(context.Background(), domain.ChatSession{SessionID: "sess-1", Title: "t"})

	rec, resp := doJSON(t, router, http.MethodPost, "/api/chat/sessions/sess-1/messages", `{"content": "any news on AAPL today?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	content, _ := resp["content"].(string)
	if content == "" {
		t.Fatal("expected assistant content")
	}
	metadata, _ := resp["metadata"].(map[string]any)
	news, _ := metadata["news"].(map[string]any)
	if news["ticker"] != "AAPL" {
		t.Fatalf("expected AAPL news metadata, got %v", metadata)
	}

	stored, _ := messages.ListBySessionID(context.Background(), "sess-1")
	if len(stored) != 2 {
		t.Fatalf("expected user + assistant stored, got %d", len(stored))
	}
	if stored[0].Role != domain.RoleUser || stored[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", stored)
	}
}

func TestPostMessage_LLMMetadataBlockIsSplit(t *testing.T) {
	mock := &llm.MockClient{
		Response: "NVDA looks strong here.\n---METADATA---\n{\"news\": {\"ticker\": \"NVDA\"}, \"chart\": null}",
	}
	router, sessions, _ := newTestRouter(mock)
	_ = sessions.Create(context.Background(), domain.ChatSession{SessionID: "sess-1", Title: "t"})

	_, resp := doJSON(t, router, http.MethodPost, "/api/chat/sessions/sess-1/messages", `{"content": "thoughts on NVDA?"}`)

	content, _ := resp["content"].(string)
	if content != "NVDA looks strong here." {
		t.Fatalf("metadata block leaked into content: %q", content)
	}
	metadata, _ := resp["metadata"].(map[string]any)
	news, _ := metadata["news"].(map[string]any)
	if news["ticker"] != "NVDA" {
		t.Fatalf("expected NVDA metadata, got %v", metadata)
	}
}

func TestPostMessage_LLMFailureFallsBackToCanned(t *testing.T) {
	mock := &llm.MockClient{Err: context.DeadlineExceeded}
	router, sessions, _ := newTestRouter(mock)
	_ = sessions.Create(context.Background(), domain.ChatSession{SessionID: "sess-1", Title: "t"})

	rec, resp := doJSON(t, router, http.MethodPost, "/api/chat/sessions/sess-1/messages", `{"content": "hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite llm failure, got %d", rec.Code)
	}
	if content, _ := resp["content"].(string); content == "" {
		t.Fatal("expected canned reply content")
	}
}

func TestExtractTicker(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"any news on AAPL today?", "AAPL"},
		{"i like turtles", ""},
		{"compare MSFT and NVDA", "MSFT"},
		{"what about a?", ""},
	}
	for _, tc := range cases {
		if got := extractTicker(tc.in); got != tc.want {
			t.Fatalf("extractTicker(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
