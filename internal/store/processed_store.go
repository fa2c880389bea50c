package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// ProcessedStore는 처리된 Slack 이벤트 ID를 관리하는 저장소입니다.
// Slack 재전송으로 같은 이벤트가 두 번 처리되는 것을 막습니다.
type ProcessedStore interface {
	// MarkProcessed는 이벤트 ID를 처리됨으로 표시합니다.
	// 처음 표시된 경우에만 true를 반환합니다.
	MarkProcessed(eventID string, kind string) (bool, error)
	// IsProcessed는 해당 이벤트 ID가 이미 처리되었는지 확인합니다.
	IsProcessed(eventID string) (bool, error)
	// GetCount는 저장된 레코드 수를 반환합니다.
	GetCount() (int, error)
	// Cleanup은 오래된 레코드를 정리합니다 (retentionDays일 이전).
	Cleanup(retentionDays int) (int, error)
	// Close는 저장소를 닫습니다.
	Close() error
}

// SQLProcessedStore는 processed_events 테이블 기반 ProcessedStore 구현입니다.
type SQLProcessedStore struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// NewSQLProcessedStore는 Open으로 연 DB를 사용하는 저장소를 생성합니다.
func NewSQLProcessedStore(db *sqlx.DB) *SQLProcessedStore {
	return &SQLProcessedStore{db: db}
}

// MarkProcessed는 이벤트 ID를 처리됨으로 표시합니다.
func (s *SQLProcessedStore) MarkProcessed(eventID string, kind string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(
		s.db.Rebind("INSERT INTO processed_events (event_id, kind, processed_at) VALUES (?, ?, ?) ON CONFLICT (event_id) DO NOTHING"),
		eventID, kind, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("삽입 실패: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("삽입 개수 조회 실패: %w", err)
	}

	return inserted > 0, nil
}

// IsProcessed는 해당 이벤트 ID가 이미 처리되었는지 확인합니다.
func (s *SQLProcessedStore) IsProcessed(eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.Get(&count, s.db.Rebind("SELECT COUNT(*) FROM processed_events WHERE event_id = ?"), eventID)
	if err != nil {
		return false, fmt.Errorf("조회 실패: %w", err)
	}

	return count > 0, nil
}

// GetCount는 저장된 레코드 수를 반환합니다.
func (s *SQLProcessedStore) GetCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.Get(&count, "SELECT COUNT(*) FROM processed_events"); err != nil {
		return 0, fmt.Errorf("카운트 조회 실패: %w", err)
	}

	return count, nil
}

// Cleanup은 오래된 레코드를 정리합니다.
func (s *SQLProcessedStore) Cleanup(retentionDays int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	result, err := s.db.Exec(s.db.Rebind("DELETE FROM processed_events WHERE processed_at < ?"), cutoff)
	if err != nil {
		return 0, fmt.Errorf("정리 실패: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("삭제 개수 조회 실패: %w", err)
	}

	return int(deleted), nil
}

// Close는 아무것도 하지 않습니다. 공유 DB 연결은 Open을 호출한 쪽이 닫습니다.
func (s *SQLProcessedStore) Close() error {
	return nil
}
