// Пакет cache — Redis-кэш записей передач.
// Снимает нагрузку с PostgreSQL на горячем пути коротких ссылок
// и выдачи метаданных. Кэш best-effort: недоступность Redis
// не блокирует запросы, источник истины — PostgreSQL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bigkaa/gotransfer/internal/config"
	"github.com/bigkaa/gotransfer/internal/domain/model"
)

// ErrCacheMiss — запись отсутствует в кэше.
var ErrCacheMiss = errors.New("запись отсутствует в кэше")

// keyPrefix — префикс ключей Transfer Module в Redis.
const keyPrefix = "tm:transfer:"

// RedisCache — кэш записей передач поверх Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New создаёт подключение к Redis и проверяет его через ping.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	logger.Info("Подключение к Redis установлено",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	return &RedisCache{
		client: client,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}, nil
}

// Get возвращает запись передачи из кэша или ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context, shortCode string) (*model.TransferRecord, error) {
	raw, err := c.client.Get(ctx, keyPrefix+shortCode).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}

	rec := &model.TransferRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("ошибка десериализации записи из кэша: %w", err)
	}
	return rec, nil
}

// Set сохраняет запись передачи в кэш с настроенным TTL.
func (c *RedisCache) Set(ctx context.Context, rec *model.TransferRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи для кэша: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+rec.ShortCode, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}
	return nil
}

// Delete удаляет запись передачи из кэша (инвалидация после изменения).
func (c *RedisCache) Delete(ctx context.Context, shortCode string) error {
	if err := c.client.Del(ctx, keyPrefix+shortCode).Err(); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	return nil
}

// Close закрывает подключение к Redis.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// ReadinessChecker — проверка готовности Redis для health endpoint.
type ReadinessChecker struct {
	client *redis.Client
}

// NewReadinessChecker создаёт проверку готовности Redis.
func (c *RedisCache) NewReadinessChecker() *ReadinessChecker {
	return &ReadinessChecker{client: c.client}
}

// CheckReady проверяет подключение к Redis через ping.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return "fail", fmt.Sprintf("Redis недоступен: %v", err)
	}
	return "ok", "подключение активно"
}
