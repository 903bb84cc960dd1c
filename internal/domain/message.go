package domain

import (
	"encoding/json"
	"time"
)

// Roles de un turno de conversación.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MessageKind discrimina cómo se renderiza un mensaje.
type MessageKind string

const (
	KindText                MessageKind = "text"
	KindMarketAnalysis      MessageKind = "market_analysis"
	KindStockResearch       MessageKind = "stock_research"
	KindTradeAnalysis       MessageKind = "trade_analysis"
	KindInterviewQuestion   MessageKind = "interview_question"
	KindStockRecommendation MessageKind = "stock_recommendation"
)

// Message es una entrada del log de conversación. Content y Data son
// situacionales: un payload estructurado implica siempre un Kind distinto
// de texto plano.
type Message struct {
	ID          string          `json:"id"`
	Role        string          `json:"role"`
	Content     string          `json:"content,omitempty"`
	Kind        MessageKind     `json:"type,omitempty"`
	Data        any             `json:"data,omitempty"`
	News        json.RawMessage `json:"news,omitempty"`
	Chart       json.RawMessage `json:"chart,omitempty"`
	Placeholder bool            `json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SessionMessage es el registro persistido por el backend de desarrollo.
type SessionMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession identifica una conversación del lado del servidor.
type ChatSession struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
