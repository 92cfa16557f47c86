package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sirupsen/logrus"
)

// CatalogCache is a read-through cache in front of a catalog repository.
// Cache failures degrade to the repository; they never fail a lookup.
type CatalogCache struct {
	next  repository.CatalogRepository
	store Store
	ttl   time.Duration
	log   logrus.FieldLogger
}

// NewCatalogCache wraps next with store.
func NewCatalogCache(next repository.CatalogRepository, store Store, ttl time.Duration, log logrus.FieldLogger) *CatalogCache {
	return &CatalogCache{next: next, store: store, ttl: ttl, log: log}
}

func (c *CatalogCache) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	key := "catalog:product:" + id.String()
	if c.load(ctx, key, &product) {
		return &product, nil
	}

	p, err := c.next.GetProduct(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	c.save(ctx, key, p)
	return p, nil
}

func (c *CatalogCache) GetAddon(ctx context.Context, id uuid.UUID) (*entity.Addon, error) {
	var addon entity.Addon
	key := "catalog:addon:" + id.String()
	if c.load(ctx, key, &addon) {
		return &addon, nil
	}

	a, err := c.next.GetAddon(ctx, id)
	if err != nil || a == nil {
		return a, err
	}
	c.save(ctx, key, a)
	return a, nil
}

func (c *CatalogCache) load(ctx context.Context, key string, dst interface{}) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.WithField("key", key).WithError(err).Warn("Catalog cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.WithField("key", key).WithError(err).Warn("Discarding corrupt catalog cache entry")
		return false
	}
	return true
}

func (c *CatalogCache) save(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.WithField("key", key).WithError(err).Warn("Catalog cache write failed")
	}
}
