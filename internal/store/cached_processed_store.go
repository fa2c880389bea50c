package store

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// CachedProcessedStore는 최근 이벤트 ID를 메모리 ARC 캐시에 두는 ProcessedStore입니다.
// 캐시에 있는 ID는 하위 저장소를 조회하지 않고 중복으로 판정합니다.
type CachedProcessedStore struct {
	next  ProcessedStore
	cache *lru.ARCCache
}

// NewCachedProcessedStore는 next 앞에 size 크기의 캐시를 둡니다.
func NewCachedProcessedStore(next ProcessedStore, size int) (*CachedProcessedStore, error) {
	cache, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("캐시 생성 실패: %w", err)
	}
	return &CachedProcessedStore{next: next, cache: cache}, nil
}

// MarkProcessed는 캐시에 있으면 false를, 없으면 하위 저장소 결과를 반환합니다.
func (s *CachedProcessedStore) MarkProcessed(eventID string, kind string) (bool, error) {
	if s.cache.Contains(eventID) {
		return false, nil
	}

	first, err := s.next.MarkProcessed(eventID, kind)
	if err != nil {
		return false, err
	}
	s.cache.Add(eventID, kind)
	return first, nil
}

// IsProcessed는 캐시를 먼저 확인합니다.
func (s *CachedProcessedStore) IsProcessed(eventID string) (bool, error) {
	if s.cache.Contains(eventID) {
		return true, nil
	}
	return s.next.IsProcessed(eventID)
}

// GetCount는 하위 저장소의 레코드 수를 반환합니다.
func (s *CachedProcessedStore) GetCount() (int, error) {
	return s.next.GetCount()
}

// Cleanup은 하위 저장소를 정리합니다. 캐시는 크기 제한으로 스스로 비워집니다.
func (s *CachedProcessedStore) Cleanup(retentionDays int) (int, error) {
	return s.next.Cleanup(retentionDays)
}

// Close는 하위 저장소를 닫습니다.
func (s *CachedProcessedStore) Close() error {
	s.cache.Purge()
	return s.next.Close()
}
