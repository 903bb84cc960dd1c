package gateway

import (
	"context"
	"encoding/json"

	"money-copilot/internal/domain"
)

// Gateway define las llamadas al backend de las que depende el núcleo
// conversacional. Cada llamada es idempotente desde la perspectiva del
// flujo: sin reintentos automáticos.
type Gateway interface {
	CreateSession(ctx context.Context, title string) (string, error)
	PostMessage(ctx context.Context, sessionID, content string) (ChatReply, error)
	Recommendations(ctx context.Context, profile domain.InvestorProfile) (domain.RecommendationSet, error)
	MarketAnalysis(ctx context.Context) (domain.MarketSnapshot, error)
	StockResearch(ctx context.Context, symbol string) (json.RawMessage, error)
	TradeAnalysis(ctx context.Context, symbol string) (json.RawMessage, error)
}

// ChatReply es la respuesta del endpoint de mensajes. Content puede ser
// texto plano o un sobre JSON doblemente codificado; el núcleo lo decide.
type ChatReply struct {
	ID      int64
	Content string
	News    json.RawMessage
	Chart   json.RawMessage
}
