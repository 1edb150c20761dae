package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLContent = 5 * time.Minute  // 공개 상세 (slug 조회)
	TTLList    = 30 * time.Second // 공개 목록 (자주 갱신)
	TTLSitemap = 10 * time.Minute
)

// 캐시 키 접두사
const (
	PrefixContent = "content:"
	PrefixList    = "list:"
	KeySitemap    = "sitemap"
)

// ErrMiss key absent or Redis not configured
var ErrMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	// 기본 캐시 연산
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// 공개 콘텐츠 캐시 (table + slug)
	GetContent(ctx context.Context, table, slug string, dest interface{}) error
	SetContent(ctx context.Context, table, slug string, value interface{}) error
	InvalidateContent(ctx context.Context, table string, slugs ...string) error

	// 공개 목록 캐시 (table + page + limit)
	GetList(ctx context.Context, table string, page, limit int, dest interface{}) error
	SetList(ctx context.Context, table string, page, limit int, value interface{}) error
	InvalidateLists(ctx context.Context, table string) error

	// 유틸리티
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache Redis 기반 캐시 구현; nil client turns every read into a miss
type redisCache struct {
	client *redis.Client
}

// NewService 새로운 캐시 서비스 생성
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping Redis 연결 테스트
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// ========================================
// 콘텐츠 캐시
// ========================================

func contentKey(table, slug string) string {
	return PrefixContent + table + ":" + slug
}

func (c *redisCache) GetContent(ctx context.Context, table, slug string, dest interface{}) error {
	return c.Get(ctx, contentKey(table, slug), dest)
}

func (c *redisCache) SetContent(ctx context.Context, table, slug string, value interface{}) error {
	return c.Set(ctx, contentKey(table, slug), value, TTLContent)
}

func (c *redisCache) InvalidateContent(ctx context.Context, table string, slugs ...string) error {
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, contentKey(table, s))
		}
	}
	return c.Delete(ctx, keys...)
}

// ========================================
// 목록 캐시
// ========================================

func listKey(table string, page, limit int) string {
	return fmt.Sprintf("%s%s:%d:%d", PrefixList, table, page, limit)
}

func (c *redisCache) GetList(ctx context.Context, table string, page, limit int, dest interface{}) error {
	return c.Get(ctx, listKey(table, page, limit), dest)
}

func (c *redisCache) SetList(ctx context.Context, table string, page, limit int, value interface{}) error {
	return c.Set(ctx, listKey(table, page, limit), value, TTLList)
}

func (c *redisCache) InvalidateLists(ctx context.Context, table string) error {
	if c.client == nil {
		return nil
	}
	if err := c.deleteByPattern(ctx, PrefixList+table+":*"); err != nil {
		return err
	}
	return c.client.Del(ctx, KeySitemap).Err()
}

// ========================================
// 내부 유틸리티
// ========================================

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
