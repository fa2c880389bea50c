package store

import (
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"
)

// DefaultRedisKeyPrefix는 이벤트 키의 기본 접두사입니다.
const DefaultRedisKeyPrefix = "janush:event:"

// RedisProcessedStore는 Redis 기반 ProcessedStore 구현입니다.
// 여러 인스턴스가 같은 이벤트를 중복 처리하지 않도록 SETNX를 사용합니다.
// 레코드는 TTL로 만료되므로 Cleanup은 아무것도 삭제하지 않습니다.
type RedisProcessedStore struct {
	client redis.Cmdable
	closer func() error
	prefix string
	ttl    time.Duration
}

// NewRedisProcessedStore는 addr에 연결하고 ping으로 확인합니다.
func NewRedisProcessedStore(addr string, retentionDays int) (*RedisProcessedStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis 연결 실패 (%s): %w", addr, err)
	}

	store := NewRedisProcessedStoreWithClient(client, DefaultRedisKeyPrefix, retentionDays)
	store.closer = client.Close
	return store, nil
}

// NewRedisProcessedStoreWithClient는 기존 클라이언트로 저장소를 생성합니다.
func NewRedisProcessedStoreWithClient(client redis.Cmdable, prefix string, retentionDays int) *RedisProcessedStore {
	return &RedisProcessedStore{
		client: client,
		prefix: prefix,
		ttl:    time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// MarkProcessed는 키가 없을 때만 설정합니다.
func (s *RedisProcessedStore) MarkProcessed(eventID string, kind string) (bool, error) {
	ok, err := s.client.SetNX(s.prefix+eventID, kind, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("SETNX 실패: %w", err)
	}
	return ok, nil
}

// IsProcessed는 키 존재 여부를 확인합니다.
func (s *RedisProcessedStore) IsProcessed(eventID string) (bool, error) {
	n, err := s.client.Exists(s.prefix + eventID).Result()
	if err != nil {
		return false, fmt.Errorf("조회 실패: %w", err)
	}
	return n > 0, nil
}

// GetCount는 접두사에 해당하는 키 수를 SCAN으로 셉니다.
func (s *RedisProcessedStore) GetCount() (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("카운트 조회 실패: %w", err)
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

// Cleanup은 TTL이 만료를 처리하므로 0을 반환합니다.
func (s *RedisProcessedStore) Cleanup(retentionDays int) (int, error) {
	return 0, nil
}

// Close는 NewRedisProcessedStore로 만든 연결을 닫습니다.
func (s *RedisProcessedStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
