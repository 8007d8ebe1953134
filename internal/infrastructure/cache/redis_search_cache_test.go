package cache

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// memRedis implementa sólo los comandos que usa RedisSearchCache.
type memRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
}

func newMemRedis() *memRedis { return &memRedis{data: map[string]string{}} }

func (m *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func summary(total int64) []entity.ItemSummary {
	return []entity.ItemSummary{{Code: "10", Name: "Tubo seco", Total: decimal.NewFromInt(total)}}
}

func TestRedisSearchCache_HitDentroDeLaMismaGeneracion(t *testing.T) {
	c := NewRedisSearchCache(newMemRedis(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, token, ok := c.Get(ctx, "tubo", 400)
	require.False(t, ok)
	require.NotEmpty(t, token)
	c.Set(ctx, token, summary(10))

	items, _, ok := c.Get(ctx, "tubo", 400)
	require.True(t, ok)
	assert.True(t, items[0].Total.Equal(decimal.NewFromInt(10)))

	_, _, ok = c.Get(ctx, "tubo", 20)
	assert.False(t, ok)
}

// Una búsqueda que leyó antes de una invalidación y guarda después no debe
// servir su resultado en las lecturas siguientes.
func TestRedisSearchCache_EscrituraTardiaNoSobreviveALaInvalidacion(t *testing.T) {
	c := NewRedisSearchCache(newMemRedis(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, token, ok := c.Get(ctx, "tubo", 400)
	require.False(t, ok)

	require.NoError(t, c.Invalidate(ctx))
	c.Set(ctx, token, summary(10))

	items, fresh, ok := c.Get(ctx, "tubo", 400)
	assert.False(t, ok)
	assert.Nil(t, items)
	assert.NotEqual(t, token, fresh)

	c.Set(ctx, fresh, summary(6))
	items, _, ok = c.Get(ctx, "tubo", 400)
	require.True(t, ok)
	assert.True(t, items[0].Total.Equal(decimal.NewFromInt(6)))
}

// Sin servidor Redis el caché se comporta como miss permanente y no rompe la búsqueda.
func TestRedisSearchCache_SinServidorEsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisSearchCache(client, 0, zerolog.Nop())
	ctx := context.Background()

	items, token, ok := c.Get(ctx, "tubo", 400)
	assert.False(t, ok)
	assert.Nil(t, items)
	assert.Empty(t, token)
	c.Set(ctx, token, summary(1))
	assert.Error(t, c.Invalidate(ctx))
	assert.Equal(t, time.Minute, c.ttl)
}
