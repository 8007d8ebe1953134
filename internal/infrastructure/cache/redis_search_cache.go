package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ appinventory.SearchCache = (*RedisSearchCache)(nil)

const (
	keyPrefix     = "stock:search:"
	generationKey = keyPrefix + "gen"
)

// RedisSearchCache guarda resultados del buscador. Las claves incluyen un número de generación;
// Invalidate lo incrementa y las entradas viejas quedan huérfanas hasta su TTL.
type RedisSearchCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisSearchCache construye el caché. ttl <= 0 usa 1 minuto.
func NewRedisSearchCache(client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *RedisSearchCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisSearchCache{client: client, ttl: ttl, log: log}
}

// Get devuelve (items, token, true) en un hit. En un miss el token es la clave de la
// generación leída; Set lo usa tal cual. Cualquier error de Redis cuenta como miss
// con token vacío.
func (c *RedisSearchCache) Get(ctx context.Context, query string, limit int) ([]entity.ItemSummary, string, bool) {
	key, err := c.key(ctx, query, limit)
	if err != nil {
		return nil, "", false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("cache_key", key).Msg("leer caché de búsqueda")
			return nil, "", false
		}
		return nil, key, false
	}
	var items []entity.ItemSummary
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, key, false
	}
	c.log.Debug().Str("cache_key", key).Msg("cache hit")
	return items, key, true
}

// Set guarda el resultado bajo la clave que devolvió Get. Si hubo una invalidación en
// el medio la clave ya pertenece a una generación vieja y nadie la vuelve a leer.
// Los errores sólo se registran.
func (c *RedisSearchCache) Set(ctx context.Context, token string, items []entity.ItemSummary) {
	if token == "" {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, token, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("cache_key", token).Msg("guardar caché de búsqueda")
	}
}

// Invalidate descarta todos los resultados guardados.
func (c *RedisSearchCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("invalidar caché: %w", err)
	}
	return nil
}

func (c *RedisSearchCache) key(ctx context.Context, query string, limit int) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Msg("leer generación del caché")
		return "", err
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", query, limit)))
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, hex.EncodeToString(sum[:])), nil
}
