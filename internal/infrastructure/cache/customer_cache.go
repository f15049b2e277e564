package cache

import (
	"context"
	"customer-service/internal/domain/customer"
	"customer-service/internal/infrastructure/monitoring"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "customer:"

	deletedMarker    = "deleted"
	// deletedMarkerTTL outlives the longest request, so any read that started
	// before the delete has finished by the time the marker expires.
	deletedMarkerTTL = 2 * time.Minute
)

// CustomerCache is a JSON read cache for merged customers keyed by id. Every
// failure is logged and treated as a miss. Cached values never carry the
// credential.
type CustomerCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ customer.Cache = (*CustomerCache)(nil)

// NewCustomerCache creates a cache backed by client. A zero ttl keeps entries
// until they are evicted by a write.
func NewCustomerCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CustomerCache {
	if client == nil {
		panic("redis client cannot be nil for CustomerCache")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "CustomerCache"),
	}
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

func (c *CustomerCache) Get(ctx context.Context, id int64) (*customer.Customer, bool) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Cache read failed", slog.Int64("customerID", id), slog.Any("error", err))
		}
		monitoring.RecordCacheLookup(false)
		return nil, false
	}
	if string(data) == deletedMarker {
		monitoring.RecordCacheLookup(false)
		return nil, false
	}

	var cached customer.Customer
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.WarnContext(ctx, "Cache entry could not be decoded", slog.Int64("customerID", id), slog.Any("error", err))
		monitoring.RecordCacheLookup(false)
		return nil, false
	}

	monitoring.RecordCacheLookup(true)
	return &cached, true
}

func (c *CustomerCache) Set(ctx context.Context, cust *customer.Customer) {
	data, ok := c.encode(ctx, cust)
	if !ok {
		return
	}
	if err := c.client.Set(ctx, key(cust.ID), data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache write failed", slog.Int64("customerID", cust.ID), slog.Any("error", err))
	}
}

// Fill writes with SETNX. An entry stored by a concurrent write or a deleted
// marker wins over the view loaded by the read.
func (c *CustomerCache) Fill(ctx context.Context, cust *customer.Customer) {
	data, ok := c.encode(ctx, cust)
	if !ok {
		return
	}
	stored, err := c.client.SetNX(ctx, key(cust.ID), data, c.ttl).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "Cache fill failed", slog.Int64("customerID", cust.ID), slog.Any("error", err))
		return
	}
	if !stored {
		c.logger.DebugContext(ctx, "Cache fill skipped, entry already present", slog.Int64("customerID", cust.ID))
	}
}

func (c *CustomerCache) encode(ctx context.Context, cust *customer.Customer) ([]byte, bool) {
	if cust == nil || cust.ID <= 0 {
		return nil, false
	}
	data, err := json.Marshal(cust)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache entry could not be encoded", slog.Int64("customerID", cust.ID), slog.Any("error", err))
		return nil, false
	}
	return data, true
}

func (c *CustomerCache) Delete(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache delete failed", slog.Int64("customerID", id), slog.Any("error", err))
	}
}

func (c *CustomerCache) MarkDeleted(ctx context.Context, id int64) {
	if err := c.client.Set(ctx, key(id), deletedMarker, deletedMarkerTTL).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache delete marker failed", slog.Int64("customerID", id), slog.Any("error", err))
	}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
