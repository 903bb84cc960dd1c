package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y el contrato de
// rutas que espera el cliente.
func NewRouter(
	logger *zap.Logger,
	chatH *ChatHandler,
	tradesH *TradesHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	api := r.Group("/api")

	chat := api.Group("/chat")
	chat.POST("/sessions", chatH.CreateSession)
	chat.POST("/sessions/:id/messages", chatH.PostMessage)

	trades := api.Group("/trades")
	trades.POST("/recommendations", tradesH.Recommendations)
	trades.GET("/market-analysis", tradesH.MarketAnalysis)
	trades.GET("/stock-research/:symbol", tradesH.StockResearch)
	trades.GET("/trade-analysis/:symbol", tradesH.TradeAnalysis)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
