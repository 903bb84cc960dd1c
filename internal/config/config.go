package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración de ambos binarios. Los subsistemas
// opcionales (Postgres, Redis, LLM) se activan solo con su variable puesta.
type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8000"`
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	// ChatSessionID permite retomar una sesión existente; vacío crea una
	// nueva on demand.
	ChatSessionID string `env:"CHAT_SESSION_ID"`

	DatabaseURL string `env:"DATABASE_URL"`

	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"llama-3.3-70b-versatile"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	// MarketCacheTTLSeconds controla cuánto vive el snapshot de mercado
	// en Redis antes de regenerarse.
	MarketCacheTTLSeconds int `env:"MARKET_CACHE_TTL_SECONDS" envDefault:"60"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
