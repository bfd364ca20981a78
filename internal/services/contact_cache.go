package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/contactbook-backend/internal/models"
	"github.com/AnshRaj112/contactbook-backend/internal/store"
	"github.com/AnshRaj112/contactbook-backend/pkg/validation"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// MaxCacheTTL caps how long a list may be served from cache
	MaxCacheTTL = time.Hour

	// generationTTL outlives any cached list so a generation never resets
	// while an entry it guards is live.
	generationTTL = 24 * time.Hour
)

var errStaleSnapshot = errors.New("contact list changed while it was fetched")

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s%s:%s", CacheKeyPrefix, resource, identifier)
}

// CachedContactStore serves List from a per-owner Redis entry and drops the
// entry on every successful write. The store stays authoritative: cache
// failures are logged and the call falls through.
type CachedContactStore struct {
	inner store.ContactStore
	rdb   *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedContactStore wraps inner. With no Redis client or a zero TTL it
// returns inner unchanged.
func NewCachedContactStore(inner store.ContactStore, rdb *redis.Client, ttl time.Duration, log *zap.Logger) store.ContactStore {
	if rdb == nil || ttl <= 0 {
		return inner
	}
	if ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}
	return &CachedContactStore{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedContactStore) Create(ctx context.Context, ownerID string, in validation.ContactInput) (*models.Contact, error) {
	contact, err := c.inner.Create(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ownerID)
	return contact, nil
}

func (c *CachedContactStore) List(ctx context.Context, ownerID string) ([]models.Contact, error) {
	key := CacheKey("contacts", ownerID)

	val, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var contacts []models.Contact
		if jsonErr := json.Unmarshal([]byte(val), &contacts); jsonErr == nil && contacts != nil {
			return contacts, nil
		}
		c.log.Warn("discarding unreadable contact cache entry", zap.String("owner_id", ownerID))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("contact cache read failed", zap.String("owner_id", ownerID), zap.Error(err))
	}

	// The generation is read before the store so a write that lands while
	// we fetch makes the snapshot ineligible for caching.
	genKey := generationKey(ownerID)
	gen, genErr := c.rdb.Get(ctx, genKey).Result()
	if genErr != nil && !errors.Is(genErr, redis.Nil) {
		c.log.Warn("contact cache read failed", zap.String("owner_id", ownerID), zap.Error(genErr))
	}

	contacts, err := c.inner.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if genErr == nil || errors.Is(genErr, redis.Nil) {
		if data, err := json.Marshal(contacts); err == nil {
			c.store(ctx, ownerID, key, genKey, gen, data)
		}
	}
	return contacts, nil
}

// store writes data under key only while genKey still holds gen. WATCH
// aborts the transaction if an invalidation bumps the generation between
// the check and the write.
func (c *CachedContactStore) store(ctx context.Context, ownerID, key, genKey, gen string, data []byte) {
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleSnapshot
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleSnapshot), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("skipping contact cache write after concurrent change", zap.String("owner_id", ownerID))
	default:
		c.log.Warn("contact cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (c *CachedContactStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := c.inner.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	c.invalidate(ctx, ownerID)
	return nil
}

func (c *CachedContactStore) invalidate(ctx context.Context, ownerID string) {
	genKey := generationKey(ownerID)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, CacheKey("contacts", ownerID))
		return nil
	})
	if err != nil {
		c.log.Warn("contact cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func generationKey(ownerID string) string {
	return CacheKey("contacts:gen", ownerID)
}
