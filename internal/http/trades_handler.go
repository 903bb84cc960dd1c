package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"money-copilot/internal/domain"
	"money-copilot/internal/marketdata"
)

// TradesHandler atiende los endpoints de análisis y recomendaciones.
type TradesHandler struct {
	logger   *zap.Logger
	provider *marketdata.Provider
	cache    *marketdata.SnapshotCache
}

func NewTradesHandler(logger *zap.Logger, provider *marketdata.Provider, cache *marketdata.SnapshotCache) *TradesHandler {
	return &TradesHandler{logger: logger, provider: provider, cache: cache}
}

// Recommendations maneja POST /api/trades/recommendations.
func (h *TradesHandler) Recommendations(c *gin.Context) {
	var req struct {
		Profile domain.InvestorProfile `json:"profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid recommendations request", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "invalid profile"})
		return
	}

	set := h.provider.Recommendations(req.Profile)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": set})
}

// MarketAnalysis maneja GET /api/trades/market-analysis.
func (h *TradesHandler) MarketAnalysis(c *gin.Context) {
	if snap, ok := h.cache.Get(c.Request.Context()); ok {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
		return
	}

	snap := h.provider.Snapshot()
	h.cache.Set(c.Request.Context(), snap)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": snap})
}

// StockResearch maneja GET /api/trades/stock-research/:symbol.
func (h *TradesHandler) StockResearch(c *gin.Context) {
	symbol := c.Param("symbol")
	research, err := h.provider.Research(symbol)
	if err != nil {
		h.envelopeError(c, symbol, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": research})
}

// TradeAnalysis maneja GET /api/trades/trade-analysis/:symbol.
func (h *TradesHandler) TradeAnalysis(c *gin.Context) {
	symbol := c.Param("symbol")
	setup, err := h.provider.Analysis(symbol)
	if err != nil {
		h.envelopeError(c, symbol, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": setup})
}

// Los fallos de datos viajan en el sobre con HTTP 200; el status HTTP
// queda reservado para fallos de transporte.
func (h *TradesHandler) envelopeError(c *gin.Context, symbol string, err error) {
	if errors.Is(err, marketdata.ErrUnknownSymbol) {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "No data found for symbol"})
		return
	}
	h.logger.Error("market data failure", zap.String("symbol", symbol), zap.Error(err))
	c.JSON(http.StatusOK, gin.H{"success": false, "error": "market data unavailable"})
}
