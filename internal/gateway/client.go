package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"money-copilot/internal/domain"
)

// ErrBackend indica que el backend respondió con un sobre {success:false}.
// Es distinto de un fallo de transporte: la conexión funcionó pero la
// operación fue rechazada.
var ErrBackend = errors.New("backend rejected request")

// HTTPClient implementa Gateway contra la API HTTP del asistente.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye el cliente apuntando a la base de la API
// (por ejemplo http://localhost:8000/api).
func NewHTTPClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		logger:  logger,
	}
}

func (c *HTTPClient) CreateSession(ctx context.Context, title string) (string, error) {
	var resp struct {
		SessionID string `json:"session_id"`
	}
	body := map[string]string{"title": title}
	if err := c.doJSON(ctx, http.MethodPost, "/chat/sessions", body, &resp); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("create session: empty session_id")
	}
	return resp.SessionID, nil
}

func (c *HTTPClient) PostMessage(ctx context.Context, sessionID, content string) (ChatReply, error) {
	var resp struct {
		ID       int64  `json:"id"`
		Content  string `json:"content"`
		Metadata struct {
			News  json.RawMessage `json:"news"`
			Chart json.RawMessage `json:"chart"`
		} `json:"metadata"`
	}
	path := "/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	body := map[string]string{"content": content}
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return ChatReply{}, fmt.Errorf("post message: %w", err)
	}
	return ChatReply{
		ID:      resp.ID,
		Content: resp.Content,
		News:    nullToNil(resp.Metadata.News),
		Chart:   nullToNil(resp.Metadata.Chart),
	}, nil
}

func (c *HTTPClient) Recommendations(ctx context.Context, profile domain.InvestorProfile) (domain.RecommendationSet, error) {
	body := map[string]domain.InvestorProfile{"profile": profile}
	data, err := c.doEnvelope(ctx, http.MethodPost, "/trades/recommendations", body)
	if err != nil {
		return domain.RecommendationSet{}, fmt.Errorf("recommendations: %w", err)
	}
	var set domain.RecommendationSet
	if err := json.Unmarshal(data, &set); err != nil {
		return domain.RecommendationSet{}, fmt.Errorf("recommendations: decode data: %w", err)
	}
	return set, nil
}

func (c *HTTPClient) MarketAnalysis(ctx context.Context) (domain.MarketSnapshot, error) {
	data, err := c.doEnvelope(ctx, http.MethodGet, "/trades/market-analysis", nil)
	if err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("market analysis: %w", err)
	}
	var snap domain.MarketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("market analysis: decode data: %w", err)
	}
	return snap, nil
}

func (c *HTTPClient) StockResearch(ctx context.Context, symbol string) (json.RawMessage, error) {
	data, err := c.doEnvelope(ctx, http.MethodGet, "/trades/stock-research/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("stock research %s: %w", symbol, err)
	}
	return data, nil
}

func (c *HTTPClient) TradeAnalysis(ctx context.Context, symbol string) (json.RawMessage, error) {
	data, err := c.doEnvelope(ctx, http.MethodGet, "/trades/trade-analysis/"+url.PathEscape(symbol), nil)
	if err != nil {
		return nil, fmt.Errorf("trade analysis %s: %w", symbol, err)
	}
	return data, nil
}

// successEnvelope es el sobre {success, data, error} de los endpoints
// de trades.
type successEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// doEnvelope ejecuta la llamada y desenvuelve {success, data}; un
// success:false se traduce a ErrBackend.
func (c *HTTPClient) doEnvelope(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var env successEnvelope
	if err := c.doJSON(ctx, method, path, body, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrBackend, env.Error)
		}
		return nil, ErrBackend
	}
	return env.Data, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("backend error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("backend http error: status=%d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// nullToNil normaliza un RawMessage "null" a nil para que los adjuntos
// ausentes no viajen como payloads.
func nullToNil(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
