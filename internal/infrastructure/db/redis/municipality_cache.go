package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

const municipalityListKey = keyPrefixMunicipality + "all"

// MunicipalityCache is a read-through cache in front of a
// MunicipalityRepository. Cache failures fall through to the repository.
type MunicipalityCache struct {
	next   ports.MunicipalityRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.MunicipalityRepository = (*MunicipalityCache)(nil)

func NewMunicipalityCache(next ports.MunicipalityRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *MunicipalityCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &MunicipalityCache{next: next, client: client, ttl: ttl, log: log}
}

func (c *MunicipalityCache) List(ctx context.Context) ([]*domain.Municipality, error) {
	var cached []*domain.Municipality
	if c.get(ctx, municipalityListKey, &cached) {
		return cached, nil
	}

	out, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, municipalityListKey, out)
	return out, nil
}

// FindByID caches hits only; a missing municipality is always re-read.
func (c *MunicipalityCache) FindByID(ctx context.Context, id string) (*domain.Municipality, error) {
	key := keyPrefixMunicipality + id

	var cached domain.Municipality
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}

	m, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, m)
	return m, nil
}

func (c *MunicipalityCache) get(ctx context.Context, key string, dest any) bool {
	if c.client == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("municipality cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("municipality cache entry corrupt")
		return false
	}
	return true
}

func (c *MunicipalityCache) set(ctx context.Context, key string, value any) {
	if c.client == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("municipality cache write failed")
	}
}
