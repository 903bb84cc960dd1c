package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"money-copilot/internal/domain"
	"money-copilot/internal/gateway"
)

// FlowMode identifica el sub-flujo guiado activo. Exactamente uno está
// vigente en cada momento.
type FlowMode int

const (
	ModeIdle FlowMode = iota
	ModeInterview
	ModeAwaitingSymbol
)

func (m FlowMode) String() string {
	switch m {
	case ModeInterview:
		return "interview"
	case ModeAwaitingSymbol:
		return "awaiting_symbol"
	default:
		return "idle"
	}
}

// SymbolPurpose indica para qué se espera el próximo símbolo.
type SymbolPurpose string

const (
	PurposeResearch      SymbolPurpose = "research"
	PurposeTradeAnalysis SymbolPurpose = "trade_analysis"
)

// Feature es una acción de botón que dispara un flujo guiado o un fetch
// directo.
type Feature string

const (
	FeatureRecommendations Feature = "recommendations"
	FeatureMarketAnalysis  Feature = "market_analysis"
	FeatureStockResearch   Feature = "stock_research"
	FeatureTradeAnalysis   Feature = "trade_analysis"
)

// Mensajes con plantilla que el flujo emite; visibles para el usuario y
// parte del contrato observable del cliente.
const (
	msgPromptResearch      = "Please enter the stock symbol you want to research (e.g., AAPL, TSLA)."
	msgPromptTradeAnalysis = "Please enter the stock symbol for trade analysis (e.g., BTC-USD, NVDA)."
	msgFetching            = "Fetching data..."
	msgAnalyzing           = "Analyzing market data based on your preferences..."
	msgMarketEcho          = "Show me the Market Analysis"
	msgRecsFailed          = "Sorry, I couldn't generate recommendations at this time."
	msgMarketFailed        = "Sorry, I couldn't load the market analysis right now."
	msgLookupTransport     = "An error occurred while fetching data. Please check the backend connection."
	msgChatUnavailable     = "Sorry, I couldn't reach the assistant. Please try again."
	msgSymbolFailedFmt     = "Sorry, I couldn't fetch data for %s. Please try a valid ticker like AAPL or BTC-USD."
)

// flowState es la unión etiquetada del estado del flujo: los campos step,
// answers y purpose solo tienen sentido bajo su modo correspondiente.
type flowState struct {
	mode    FlowMode
	step    int // índice 1-based de la próxima pregunta sin responder
	answers map[string]string
	purpose SymbolPurpose
}

func idleState() flowState {
	return flowState{mode: ModeIdle}
}

// FlowStatus es la vista observable del estado, para el adaptador de
// presentación y los tests.
type FlowStatus struct {
	Mode    FlowMode
	Step    int
	Purpose SymbolPurpose
}

// Controller es la máquina de estados de la conversación: clasifica cada
// entrada contra el estado vigente, emite las llamadas al gateway y muta el
// log. Las transiciones se serializan y corren hasta completarse, así que
// una respuesta nunca se aplica después de que el estado avanzó.
type Controller struct {
	mu       sync.Mutex
	gw       gateway.Gateway
	log      *MessageLog
	sessions *SessionManager
	logger   *zap.Logger

	state     flowState
	turn      uint64
	questions []domain.InterviewQuestion
	now       func() time.Time
}

func NewController(gw gateway.Gateway, log *MessageLog, sessions *SessionManager, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		gw:        gw,
		log:       log,
		sessions:  sessions,
		logger:    logger,
		state:     idleState(),
		questions: domain.InterviewQuestions,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Status devuelve una instantánea del estado del flujo.
func (c *Controller) Status() FlowStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FlowStatus{Mode: c.state.mode, Step: c.state.step, Purpose: c.state.purpose}
}

// HandleInput enruta una entrada libre del usuario. La precedencia es fija:
// awaiting_symbol antes que interview antes que chat por defecto; una
// respuesta a mitad de cuestionario jamás debe interpretarse como símbolo.
func (c *Controller) HandleInput(ctx context.Context, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.mode {
	case ModeAwaitingSymbol:
		purpose := c.state.purpose
		c.state = idleState()
		c.handleSymbolInput(ctx, text, purpose)
	case ModeInterview:
		c.handleInterviewAnswer(ctx, text)
	default:
		c.handleChatMessage(ctx, text)
	}
}

// HandleFeature procesa una acción de botón. Entrar a un flujo guiado
// cancela implícitamente cualquier otro.
func (c *Controller) HandleFeature(ctx context.Context, feature Feature) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch feature {
	case FeatureRecommendations:
		// Reentrada idempotente: el cuestionario siempre arranca en 1
		// con respuestas limpias.
		c.state = flowState{mode: ModeInterview, step: 1, answers: make(map[string]string)}
		c.appendInterviewQuestion(c.questions[0], 1)

	case FeatureMarketAnalysis:
		c.appendUser(msgMarketEcho)
		snap, err := c.gw.MarketAnalysis(ctx)
		if err != nil {
			c.logger.Warn("market analysis fetch failed", zap.Error(err))
			c.appendAssistantText(msgMarketFailed)
			return
		}
		c.log.Append(domain.Message{
			Role:      domain.RoleAssistant,
			Kind:      domain.KindMarketAnalysis,
			Data:      snap,
			CreatedAt: c.now(),
		})

	case FeatureStockResearch:
		c.state = flowState{mode: ModeAwaitingSymbol, purpose: PurposeResearch}
		c.appendAssistantText(msgPromptResearch)

	case FeatureTradeAnalysis:
		c.state = flowState{mode: ModeAwaitingSymbol, purpose: PurposeTradeAnalysis}
		c.appendAssistantText(msgPromptTradeAnalysis)

	default:
		c.logger.Warn("unknown feature ignored", zap.String("feature", string(feature)))
	}
}

// handleChatMessage es la ruta por defecto: texto libre hacia el endpoint
// de chat.
func (c *Controller) handleChatMessage(ctx context.Context, text string) {
	c.appendUser(text)

	sessionID, err := c.sessions.EnsureSession(ctx)
	if err != nil {
		// Fatal para este turno: el envío no se intenta y no se
		// reintenta automáticamente.
		c.logger.Warn("no session, chat send skipped", zap.Error(err))
		c.appendAssistantText(msgChatUnavailable)
		return
	}

	reply, err := c.gw.PostMessage(ctx, sessionID, text)
	if err != nil {
		c.logger.Warn("chat message failed", zap.Error(err))
		c.appendAssistantText(msgChatUnavailable)
		return
	}

	msg := domain.Message{
		Role:      domain.RoleAssistant,
		News:      reply.News,
		Chart:     reply.Chart,
		CreatedAt: c.now(),
	}
	if reply.ID != 0 {
		msg.ID = strconv.FormatInt(reply.ID, 10)
	}
	if kind, data, ok := DecodeStructuredContent(reply.Content); ok {
		msg.Kind = kind
		msg.Data = data
	} else {
		// Contenido no parseable se degrada a texto plano, nunca a error.
		msg.Kind = domain.KindText
		msg.Content = reply.Content
	}
	c.log.Append(msg)
}

// handleInterviewAnswer registra la respuesta de la pregunta vigente y
// emite la siguiente, o cierra el cuestionario y pide recomendaciones.
func (c *Controller) handleInterviewAnswer(ctx context.Context, answer string) {
	question := c.questions[c.state.step-1]
	c.appendUser(answer)
	c.state.answers[question.ID] = answer

	if c.state.step < len(c.questions) {
		c.state.step++
		next := c.questions[c.state.step-1]
		c.appendInterviewQuestion(next, c.state.step)
		return
	}

	answers := c.state.answers
	c.state = idleState()
	c.fetchRecommendations(ctx, answers)
}

func (c *Controller) fetchRecommendations(ctx context.Context, answers map[string]string) {
	c.appendAssistantText(msgAnalyzing)

	profile := domain.BuildProfile(answers)
	set, err := c.gw.Recommendations(ctx, profile)
	if err != nil {
		c.logger.Warn("recommendations fetch failed", zap.Error(err))
		c.appendAssistantText(msgRecsFailed)
		return
	}
	c.log.Append(domain.Message{
		Role:      domain.RoleAssistant,
		Kind:      domain.KindStockRecommendation,
		Data:      set,
		CreatedAt: c.now(),
	})
}

// handleSymbolInput consume la entrada como ticker crudo. El estado ya
// volvió a idle antes de entrar aquí: un lookup fallido no re-arma la
// espera de símbolo.
func (c *Controller) handleSymbolInput(ctx context.Context, raw string, purpose SymbolPurpose) {
	symbol := strings.TrimSpace(raw)
	c.appendUser(raw)

	if symbol == "" {
		c.appendAssistantText(fmt.Sprintf(msgSymbolFailedFmt, strconv.Quote(raw)))
		return
	}

	c.turn++
	placeholder := c.log.Append(domain.Message{
		ID:          "pending-" + strconv.FormatUint(c.turn, 10),
		Role:        domain.RoleAssistant,
		Kind:        domain.KindText,
		Content:     msgFetching,
		Placeholder: true,
		CreatedAt:   c.now(),
	})

	var (
		data json.RawMessage
		err  error
		kind domain.MessageKind
	)
	switch purpose {
	case PurposeTradeAnalysis:
		kind = domain.KindTradeAnalysis
		data, err = c.gw.TradeAnalysis(ctx, symbol)
	default:
		kind = domain.KindStockResearch
		data, err = c.gw.StockResearch(ctx, symbol)
	}

	c.log.RemoveByID(placeholder.ID)

	if err != nil {
		c.logger.Warn("symbol lookup failed",
			zap.String("symbol", symbol),
			zap.String("purpose", string(purpose)),
			zap.Error(err),
		)
		if errors.Is(err, gateway.ErrBackend) {
			c.appendAssistantText(fmt.Sprintf(msgSymbolFailedFmt, symbol))
		} else {
			c.appendAssistantText(msgLookupTransport)
		}
		return
	}

	c.log.Append(domain.Message{
		Role:      domain.RoleAssistant,
		Kind:      kind,
		Data:      data,
		CreatedAt: c.now(),
	})
}

func (c *Controller) appendUser(content string) {
	c.log.Append(domain.Message{
		Role:      domain.RoleUser,
		Kind:      domain.KindText,
		Content:   content,
		CreatedAt: c.now(),
	})
}

func (c *Controller) appendAssistantText(content string) {
	c.log.Append(domain.Message{
		Role:      domain.RoleAssistant,
		Kind:      domain.KindText,
		Content:   content,
		CreatedAt: c.now(),
	})
}

func (c *Controller) appendInterviewQuestion(q domain.InterviewQuestion, progress int) {
	c.log.Append(domain.Message{
		Role: domain.RoleAssistant,
		Kind: domain.KindInterviewQuestion,
		Data: domain.InterviewPrompt{
			Question: q.Question,
			Options:  q.Options,
			Progress: progress,
		},
		CreatedAt: c.now(),
	})
}
