package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"money-copilot/internal/domain"
	"money-copilot/internal/llm"
	"money-copilot/internal/repository"
)

// metadataMarker separa la respuesta del asistente del bloque JSON de
// metadata en la salida del LLM.
const metadataMarker = "---METADATA---"

var tickerPattern = regexp.MustCompile(`\b([A-Z]{2,5})\b`)

// ChatHandler atiende los endpoints de sesiones y mensajes de chat.
type ChatHandler struct {
	logger    *zap.Logger
	sessions  repository.SessionRepository
	messages  repository.MessageRepository
	llmClient llm.Client
}

// NewChatHandler acepta llmClient nil: sin modelo configurado las
// respuestas salen de una plantilla determinista.
func NewChatHandler(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	llmClient llm.Client,
) *ChatHandler {
	return &ChatHandler{
		logger:    logger,
		sessions:  sessions,
		messages:  messages,
		llmClient: llmClient,
	}
}

// CreateSession maneja POST /api/chat/sessions.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Title == "" {
		req.Title = "New Chat Session"
	}

	session := domain.ChatSession{
		SessionID: uuid.NewString(),
		Title:     req.Title,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		h.logger.Error("create session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": session.SessionID})
}

// PostMessage maneja POST /api/chat/sessions/:id/messages.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	sessionID := c.Param("id")

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if _, err := h.sessions.GetByID(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}

	now := time.Now().UTC()
	_ = h.messages.Create(c.Request.Context(), domain.SessionMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   req.Content,
		CreatedAt: now,
	})

	assistantText, metadata := h.draftReply(c.Request.Context(), req.Content)

	_ = h.messages.Create(c.Request.Context(), domain.SessionMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   assistantText,
		CreatedAt: time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{
		"id":       now.Unix(),
		"content":  assistantText,
		"metadata": metadata,
	})
}

// draftReply genera el texto del asistente y la metadata de news/chart.
// Con LLM configurado el modelo decide la metadata vía el bloque marcado;
// sin LLM, o si el modelo falla, cae a plantilla más extracción simple de
// ticker del mensaje del usuario.
func (h *ChatHandler) draftReply(ctx context.Context, userContent string) (string, map[string]any) {
	if h.llmClient != nil {
		prompt := fmt.Sprintf(`You are an expert trading assistant. User message: %q
Return a helpful human-readable reply. If the user's message references a stock ticker or requests news or a chart, append a line %s followed by a JSON object with keys "news" ({"ticker": "AAPL"} or null) and "chart" (same shape).`,
			userContent, metadataMarker)

		raw, err := h.llmClient.Generate(ctx, prompt)
		if err == nil {
			return splitReply(raw, userContent)
		}
		h.logger.Warn("llm generate failed, using canned reply", zap.Error(err))
	}
	return cannedReply(userContent), tickerMetadata(userContent)
}

func splitReply(raw, userContent string) (string, map[string]any) {
	text := raw
	metadata := map[string]any{}
	if idx := strings.Index(raw, metadataMarker); idx >= 0 {
		text = strings.TrimSpace(raw[:idx])
		block := llm.ExtractFirstJSONObject(raw[idx+len(metadataMarker):])
		if block != "" {
			if err := json.Unmarshal([]byte(block), &metadata); err != nil {
				metadata = map[string]any{}
			}
		}
	} else {
		metadata = tickerMetadata(userContent)
	}
	return text, metadata
}

func cannedReply(userContent string) string {
	if ticker := extractTicker(userContent); ticker != "" {
		return fmt.Sprintf("Here's what I can tell you about %s: check the research and trade analysis features for a deeper dive into fundamentals and technicals.", ticker)
	}
	return "I'm your trading assistant. Ask me about a ticker, or use the feature buttons for market analysis, research and recommendations."
}

func tickerMetadata(content string) map[string]any {
	ticker := extractTicker(content)
	if ticker == "" {
		return map[string]any{}
	}
	return map[string]any{
		"news":  map[string]string{"ticker": ticker},
		"chart": map[string]string{"ticker": ticker},
	}
}

// extractTicker busca el primer token en mayúsculas con pinta de ticker.
func extractTicker(content string) string {
	match := tickerPattern.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	return match[1]
}
