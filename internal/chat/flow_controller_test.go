package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"money-copilot/internal/domain"
	"money-copilot/internal/gateway"
)

func newTestController(gw *gateway.MockGateway) (*Controller, *MessageLog) {
	log := NewMessageLog()
	sessions := NewSessionManager(gw, "")
	return NewController(gw, log, sessions, nil), log
}

func lastMessage(t *testing.T, log *MessageLog) domain.Message {
	t.Helper()
	all := log.All()
	if len(all) == 0 {
		t.Fatal("log is empty")
	}
	return all[len(all)-1]
}

func countCalls(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func TestIdleChat_PlainTextRoundTrip(t *testing.T) {
	gw := &gateway.MockGateway{
		SessionID: "sess-1",
		Reply:     gateway.ChatReply{ID: 99, Content: "hi there"},
	}
	ctrl, log := newTestController(gw)

	ctrl.HandleInput(context.Background(), "hello")

	all := log.All()
	if len(all) != 2 {
		t.Fatalf("expected user + assistant messages, got %d", len(all))
	}
	if all[0].Role != domain.RoleUser || all[0].Content != "hello" {
		t.Fatalf("unexpected user message: %+v", all[0])
	}
	reply := all[1]
	if reply.Role != domain.RoleAssistant || reply.Kind != domain.KindText || reply.Content != "hi there" {
		t.Fatalf("unexpected assistant message: %+v", reply)
	}
	if reply.ID != "99" {
		t.Fatalf("expected backend-assigned id 99, got %q", reply.ID)
	}
	if got := ctrl.Status().Mode; got != ModeIdle {
		t.Fatalf("expected idle after chat, got %v", got)
	}
}

func TestIdleChat_StructuredEnvelopeContent(t *testing.T) {
	content := `{"success": true, "type": "basic", "data": {"answer": "42"}}`
	gw := &gateway.MockGateway{
		SessionID: "sess-1",
		Reply:     gateway.ChatReply{ID: 1, Content: content},
	}
	ctrl, log := newTestController(gw)

	ctrl.HandleInput(context.Background(), "what is the answer")

	reply := lastMessage(t, log)
	if reply.Kind != domain.MessageKind("basic") {
		t.Fatalf("expected structured kind basic, got %q", reply.Kind)
	}
	if reply.Content != "" {
		t.Fatalf("structured reply must not keep literal text, got %q", reply.Content)
	}
	if reply.Data == nil {
		t.Fatal("expected structured payload")
	}
}

func TestIdleChat_UnparseableContentNeverRaises(t *testing.T) {
	raw := `{"success": true, "type": ` // JSON truncado
	gw := &gateway.MockGateway{
		SessionID: "sess-1",
		Reply:     gateway.ChatReply{Content: raw},
	}
	ctrl, log := newTestController(gw)

	ctrl.HandleInput(context.Background(), "hello")

	reply := lastMessage(t, log)
	if reply.Kind != domain.KindText || reply.Content != raw {
		t.Fatalf("expected raw content as plain text, got %+v", reply)
	}
}

func TestIdleChat_MissingSessionSkipsSend(t *testing.T) {
	gw := &gateway.MockGateway{SessionErr: errors.New("backend down")}
	ctrl, log := newTestController(gw)

	ctrl.HandleInput(context.Background(), "hello")

	if countCalls(gw.Calls, "post_message:") != 0 {
		t.Fatal("send must not be attempted without a session")
	}
	if countCalls(gw.Calls, "create_session:") != 1 {
		t.Fatalf("expected one opportunistic create attempt, calls: %v", gw.Calls)
	}
	reply := lastMessage(t, log)
	if reply.Role != domain.RoleAssistant || reply.Content != msgChatUnavailable {
		t.Fatalf("expected templated failure, got %+v", reply)
	}
	if ctrl.Status().Mode != ModeIdle {
		t.Fatal("controller must rest in idle")
	}
}

func TestInterview_EntryAlwaysResetsToStepOne(t *testing.T) {
	gw := &gateway.MockGateway{}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureRecommendations)
	ctrl.HandleInput(context.Background(), "High")
	if got := ctrl.Status().Step; got != 2 {
		t.Fatalf("expected step 2 after one answer, got %d", got)
	}

	// Disparo consecutivo: reinicia progreso y limpia respuestas.
	ctrl.HandleFeature(context.Background(), FeatureRecommendations)
	status := ctrl.Status()
	if status.Mode != ModeInterview || status.Step != 1 {
		t.Fatalf("expected interview step 1 on re-entry, got %+v", status)
	}

	prompt := lastMessage(t, log)
	if prompt.Kind != domain.KindInterviewQuestion {
		t.Fatalf("expected interview question, got %+v", prompt)
	}
	data, ok := prompt.Data.(domain.InterviewPrompt)
	if !ok {
		t.Fatalf("unexpected payload type %T", prompt.Data)
	}
	if data.Progress != 1 || data.Question != domain.InterviewQuestions[0].Question {
		t.Fatalf("expected first question with progress 1, got %+v", data)
	}
}

func TestInterview_FiveAnswersIssueOneRecommendationRequest(t *testing.T) {
	gw := &gateway.MockGateway{
		Recs: domain.RecommendationSet{
			Summary:         "picked for you",
			Recommendations: []domain.Recommendation{{Symbol: "NVDA"}},
		},
	}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureRecommendations)
	for _, answer := range []string{"Medium", "Growth", "$1k-$10k", "Intermediate", "Tech"} {
		ctrl.HandleInput(context.Background(), answer)
	}

	if ctrl.Status().Mode != ModeIdle {
		t.Fatal("controller must end idle after the interview")
	}
	if countCalls(gw.Calls, "recommendations:") != 1 {
		t.Fatalf("expected exactly one recommendation request, calls: %v", gw.Calls)
	}
	profile := gw.Profiles[0]
	if profile.RiskTolerance != "Medium" || profile.InvestmentGoal != "Growth" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profile.PreferredSectors) != 1 || profile.PreferredSectors[0] != "Tech" {
		t.Fatalf("unexpected sectors: %v", profile.PreferredSectors)
	}
	if profile.RegionalFocus != "US" {
		t.Fatalf("unexpected region: %q", profile.RegionalFocus)
	}

	final := lastMessage(t, log)
	if final.Kind != domain.KindStockRecommendation {
		t.Fatalf("expected stock_recommendation, got %+v", final)
	}
}

func TestInterview_FailedRecommendationYieldsTemplatedMessage(t *testing.T) {
	gw := &gateway.MockGateway{RecsErr: gateway.ErrBackend}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureRecommendations)
	for _, answer := range []string{"Low", "Income", "Under $1k", "Beginner", "Finance"} {
		ctrl.HandleInput(context.Background(), answer)
	}

	if lastMessage(t, log).Content != msgRecsFailed {
		t.Fatalf("expected templated failure, got %+v", lastMessage(t, log))
	}
	if ctrl.Status().Mode != ModeIdle {
		t.Fatal("controller must rest in idle after failure")
	}
}

func TestAwaitingSymbol_SuccessReturnsToIdle(t *testing.T) {
	gw := &gateway.MockGateway{
		ResearchData: json.RawMessage(`{"profile": {"name": "Apple Inc."}}`),
	}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureStockResearch)
	status := ctrl.Status()
	if status.Mode != ModeAwaitingSymbol || status.Purpose != PurposeResearch {
		t.Fatalf("expected awaiting_symbol(research), got %+v", status)
	}
	if lastMessage(t, log).Content != msgPromptResearch {
		t.Fatalf("expected symbol prompt, got %+v", lastMessage(t, log))
	}

	ctrl.HandleInput(context.Background(), "AAPL")

	if countCalls(gw.Calls, "stock_research:") != 1 || gw.Calls[len(gw.Calls)-1] != "stock_research:AAPL" {
		t.Fatalf("expected one research lookup for AAPL, calls: %v", gw.Calls)
	}
	if ctrl.Status().Mode != ModeIdle {
		t.Fatal("controller must return to idle after the lookup")
	}
	final := lastMessage(t, log)
	if final.Kind != domain.KindStockResearch || final.Data == nil {
		t.Fatalf("expected structured research message, got %+v", final)
	}
}

func TestAwaitingSymbol_FailureDoesNotRearm(t *testing.T) {
	gw := &gateway.MockGateway{ResearchErr: gateway.ErrBackend}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureStockResearch)
	ctrl.HandleInput(context.Background(), "ZZZZZ")

	if ctrl.Status().Mode != ModeIdle {
		t.Fatal("failed lookup must not re-arm awaiting_symbol")
	}
	final := lastMessage(t, log)
	want := fmt.Sprintf(msgSymbolFailedFmt, "ZZZZZ")
	if final.Content != want {
		t.Fatalf("expected %q, got %q", want, final.Content)
	}

	// La siguiente entrada va por la ruta de chat, no como símbolo.
	gw.SessionID = "sess-1"
	gw.Reply = gateway.ChatReply{Content: "ok"}
	ctrl.HandleInput(context.Background(), "hello again")
	if countCalls(gw.Calls, "post_message:") != 1 {
		t.Fatalf("expected chat routing after failure, calls: %v", gw.Calls)
	}
}

func TestAwaitingSymbol_TransportErrorMessage(t *testing.T) {
	gw := &gateway.MockGateway{TradeErr: errors.New("connection refused")}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureTradeAnalysis)
	ctrl.HandleInput(context.Background(), "NVDA")

	if lastMessage(t, log).Content != msgLookupTransport {
		t.Fatalf("expected transport failure message, got %+v", lastMessage(t, log))
	}
}

func TestAwaitingSymbol_PlaceholderNeverDangles(t *testing.T) {
	gw := &gateway.MockGateway{TradeData: json.RawMessage(`{"symbol": "NVDA"}`)}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureTradeAnalysis)
	ctrl.HandleInput(context.Background(), "NVDA")

	for _, msg := range log.All() {
		if msg.Placeholder {
			t.Fatalf("placeholder %q left in the log", msg.ID)
		}
	}

	// También en el camino de error.
	gw.TradeErr = errors.New("boom")
	ctrl.HandleFeature(context.Background(), FeatureTradeAnalysis)
	ctrl.HandleInput(context.Background(), "TSLA")
	for _, msg := range log.All() {
		if msg.Placeholder {
			t.Fatalf("placeholder %q left after failure", msg.ID)
		}
	}
}

func TestAwaitingSymbol_EmptyInputSurfacesTemplatedMessage(t *testing.T) {
	gw := &gateway.MockGateway{}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureStockResearch)
	ctrl.HandleInput(context.Background(), "   ")

	if countCalls(gw.Calls, "stock_research:") != 0 {
		t.Fatal("empty symbol must not reach the gateway")
	}
	final := lastMessage(t, log)
	if !strings.Contains(final.Content, "Please try a valid ticker") {
		t.Fatalf("expected templated symbol failure, got %q", final.Content)
	}
	if ctrl.Status().Mode != ModeIdle {
		t.Fatal("controller must rest in idle")
	}
}

func TestRoutingPrecedence_InterviewAnswerNotConsumedAsSymbol(t *testing.T) {
	gw := &gateway.MockGateway{}
	ctrl, _ := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureRecommendations)
	// "AAPL" a mitad de cuestionario es una respuesta, nunca un ticker.
	ctrl.HandleInput(context.Background(), "AAPL")

	if countCalls(gw.Calls, "stock_research:") != 0 || countCalls(gw.Calls, "trade_analysis:") != 0 {
		t.Fatalf("interview answer misrouted as symbol, calls: %v", gw.Calls)
	}
	status := ctrl.Status()
	if status.Mode != ModeInterview || status.Step != 2 {
		t.Fatalf("expected interview advanced to step 2, got %+v", status)
	}
}

func TestGuidedFlowEntry_CancelsOtherFlow(t *testing.T) {
	gw := &gateway.MockGateway{}
	ctrl, _ := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureRecommendations)
	ctrl.HandleFeature(context.Background(), FeatureTradeAnalysis)

	status := ctrl.Status()
	if status.Mode != ModeAwaitingSymbol || status.Purpose != PurposeTradeAnalysis {
		t.Fatalf("expected awaiting_symbol(trade_analysis), got %+v", status)
	}
	if status.Step != 0 {
		t.Fatalf("interview progress must be cleared, got step %d", status.Step)
	}
}

func TestMarketAnalysis_AppendsEchoAndSnapshot(t *testing.T) {
	gw := &gateway.MockGateway{
		Snapshot: domain.MarketSnapshot{
			Indices:   []domain.IndexQuote{{Name: "S&P 500", Price: 512.1, Change: 0.4}},
			Sentiment: domain.MarketSentiment{Score: 55, Text: "neutral"},
		},
	}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureMarketAnalysis)

	all := log.All()
	if len(all) != 2 {
		t.Fatalf("expected echo + snapshot, got %d messages", len(all))
	}
	if all[0].Role != domain.RoleUser || all[0].Content != msgMarketEcho {
		t.Fatalf("expected user echo, got %+v", all[0])
	}
	if all[1].Kind != domain.KindMarketAnalysis {
		t.Fatalf("expected market_analysis message, got %+v", all[1])
	}
}

func TestMarketAnalysis_FailureIsVisible(t *testing.T) {
	gw := &gateway.MockGateway{SnapshotErr: errors.New("rate limited")}
	ctrl, log := newTestController(gw)

	ctrl.HandleFeature(context.Background(), FeatureMarketAnalysis)

	if lastMessage(t, log).Content != msgMarketFailed {
		t.Fatalf("expected visible failure message, got %+v", lastMessage(t, log))
	}
}

func TestFlowState_AlwaysExactlyOneMode(t *testing.T) {
	gw := &gateway.MockGateway{
		SessionID:    "sess-1",
		Reply:        gateway.ChatReply{Content: "ok"},
		ResearchData: json.RawMessage(`{}`),
		TradeData:    json.RawMessage(`{}`),
	}
	ctrl, _ := newTestController(gw)

	steps := []func(){
		func() { ctrl.HandleInput(context.Background(), "hello") },
		func() { ctrl.HandleFeature(context.Background(), FeatureStockResearch) },
		func() { ctrl.HandleInput(context.Background(), "AAPL") },
		func() { ctrl.HandleFeature(context.Background(), FeatureRecommendations) },
		func() { ctrl.HandleInput(context.Background(), "High") },
		func() { ctrl.HandleFeature(context.Background(), FeatureTradeAnalysis) },
		func() { ctrl.HandleInput(context.Background(), "BTC-USD") },
		func() { ctrl.HandleInput(context.Background(), "what now") },
	}
	for i, step := range steps {
		step()
		mode := ctrl.Status().Mode
		if mode != ModeIdle && mode != ModeInterview && mode != ModeAwaitingSymbol {
			t.Fatalf("step %d: invalid mode %v", i, mode)
		}
	}
}
