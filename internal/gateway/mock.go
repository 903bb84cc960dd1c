package gateway

import (
	"context"
	"encoding/json"

	"money-copilot/internal/domain"
)

// MockGateway permite probar el flujo conversacional sin backend real.
// Registra cada llamada en Calls con el formato "operación:argumento".
type MockGateway struct {
	SessionID  string
	SessionErr error

	Reply    ChatReply
	ReplyErr error

	Recs    domain.RecommendationSet
	RecsErr error

	Snapshot    domain.MarketSnapshot
	SnapshotErr error

	ResearchData json.RawMessage
	ResearchErr  error

	TradeData json.RawMessage
	TradeErr  error

	Calls    []string
	Profiles []domain.InvestorProfile
}

func (m *MockGateway) CreateSession(_ context.Context, title string) (string, error) {
	m.Calls = append(m.Calls, "create_session:"+title)
	return m.SessionID, m.SessionErr
}

func (m *MockGateway) PostMessage(_ context.Context, sessionID, content string) (ChatReply, error) {
	m.Calls = append(m.Calls, "post_message:"+content)
	return m.Reply, m.ReplyErr
}

func (m *MockGateway) Recommendations(_ context.Context, profile domain.InvestorProfile) (domain.RecommendationSet, error) {
	m.Calls = append(m.Calls, "recommendations:"+profile.RiskTolerance)
	m.Profiles = append(m.Profiles, profile)
	return m.Recs, m.RecsErr
}

func (m *MockGateway) MarketAnalysis(_ context.Context) (domain.MarketSnapshot, error) {
	m.Calls = append(m.Calls, "market_analysis:")
	return m.Snapshot, m.SnapshotErr
}

func (m *MockGateway) StockResearch(_ context.Context, symbol string) (json.RawMessage, error) {
	m.Calls = append(m.Calls, "stock_research:"+symbol)
	return m.ResearchData, m.ResearchErr
}

func (m *MockGateway) TradeAnalysis(_ context.Context, symbol string) (json.RawMessage, error) {
	m.Calls = append(m.Calls, "trade_analysis:"+symbol)
	return m.TradeData, m.TradeErr
}
