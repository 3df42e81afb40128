package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// FileIDCache remembers which remote file ID holds the most recently
// uploaded history snapshot for a chat. It is a cache, not a source of
// truth: entries go stale as the history grows and are only replaced by
// a fresh upload or /refresh.
type FileIDCache interface {
	Lookup(chatID int64) (string, bool, error)
	Store(chatID int64, fileID string) error
	Evict(chatID int64) error
}

// DiskFileIDCache stores one small file per chat containing exactly the
// remote file ID. Every access is a direct read or write, so the cache
// survives restarts without any in-memory state.
type DiskFileIDCache struct {
	dir string
}

func NewDiskFileIDCache(dir string) (*DiskFileIDCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create file cache directory: %w", err)
	}
	return &DiskFileIDCache{dir: dir}, nil
}

func (c *DiskFileIDCache) path(chatID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("cache_%d.txt", chatID))
}

func (c *DiskFileIDCache) Lookup(chatID int64) (string, bool, error) {
	data, err := os.ReadFile(c.path(chatID))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cache entry: %w", err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

func (c *DiskFileIDCache) Store(chatID int64, fileID string) error {
	if err := os.WriteFile(c.path(chatID), []byte(fileID), 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (c *DiskFileIDCache) Evict(chatID int64) error {
	err := os.Remove(c.path(chatID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RedisFileIDCache is an alternative backend keyed by chat ID, selected
// when REDIS_ADDR is configured.
type RedisFileIDCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisFileIDCache(config Config) *RedisFileIDCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       0,
	})

	return &RedisFileIDCache{
		client: rdb,
		ctx:    context.Background(),
	}
}

func (c *RedisFileIDCache) key(chatID int64) string {
	return fmt.Sprintf("filecache:%d", chatID)
}

func (c *RedisFileIDCache) Lookup(chatID int64) (string, bool, error) {
	fileID, err := c.client.Get(c.ctx, c.key(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cache entry: %w", err)
	}
	return fileID, true, nil
}

func (c *RedisFileIDCache) Store(chatID int64, fileID string) error {
	return c.client.Set(c.ctx, c.key(chatID), fileID, 0).Err()
}

func (c *RedisFileIDCache) Evict(chatID int64) error {
	return c.client.Del(c.ctx, c.key(chatID)).Err()
}

// Check if the Redis connection is healthy
func (c *RedisFileIDCache) Ping() error {
	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	return c.client.Ping(ctx).Err()
}

// Clean up resources
func (c *RedisFileIDCache) Close() error {
	return c.client.Close()
}
