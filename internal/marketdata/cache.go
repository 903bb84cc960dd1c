package marketdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"money-copilot/internal/domain"
)

const snapshotKey = "market:analysis"

// SnapshotCache guarda el snapshot de mercado en Redis con TTL para no
// regenerarlo en cada petición. Con cliente nil se comporta como cache
// apagada, igual que el resto de la infraestructura opcional.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get devuelve el snapshot cacheado si existe y decodifica bien; cualquier
// fallo de Redis o de formato se trata como cache miss.
func (c *SnapshotCache) Get(ctx context.Context) (domain.MarketSnapshot, bool) {
	if c == nil || c.client == nil {
		return domain.MarketSnapshot{}, false
	}
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		return domain.MarketSnapshot{}, false
	}
	var snap domain.MarketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.MarketSnapshot{}, false
	}
	return snap, true
}

// Set guarda el snapshot; los errores se ignoran, la cache es best effort.
func (c *SnapshotCache) Set(ctx context.Context, snap domain.MarketSnapshot) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	c.client.Set(ctx, snapshotKey, raw, c.ttl)
}
