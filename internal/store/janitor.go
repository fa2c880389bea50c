package store

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultJanitorInterval은 기본 정리 간격입니다.
const DefaultJanitorInterval = time.Hour

// JanitorConfig는 Janitor 설정입니다.
type JanitorConfig struct {
	// RetentionDays는 처리된 이벤트 보관 기간입니다.
	RetentionDays int
	// Interval은 정리 간격입니다 (기본값: 1시간)
	Interval time.Duration
}

// Janitor는 처리된 이벤트 기록을 주기적으로 정리합니다.
type Janitor struct {
	config   JanitorConfig
	store    ProcessedStore
	logger   *log.Logger
	mu       sync.Mutex
	stopChan chan struct{}
	running  bool
}

// NewJanitor는 새 Janitor를 생성합니다.
func NewJanitor(config JanitorConfig, store ProcessedStore, logger *log.Logger) *Janitor {
	if config.Interval == 0 {
		config.Interval = DefaultJanitorInterval
	}

	return &Janitor{
		config:   config,
		store:    store,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start는 시작 즉시 한 번 정리한 뒤 간격마다 정리합니다.
// ctx가 취소되거나 Stop이 호출될 때까지 블록됩니다.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil
	}
	j.running = true
	j.stopChan = make(chan struct{})
	stop := j.stopChan
	j.mu.Unlock()

	j.logf("[Janitor] 🧹 시작 (보관: %d일, 간격: %v)", j.config.RetentionDays, j.config.Interval)
	j.cleanup()

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.setStopped()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			j.cleanup()
		}
	}
}

// Stop은 정리 루프를 중지합니다.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}

	close(j.stopChan)
	j.running = false
}

// IsRunning은 루프가 실행 중인지 확인합니다.
func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *Janitor) setStopped() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = false
}

func (j *Janitor) cleanup() {
	deleted, err := j.store.Cleanup(j.config.RetentionDays)
	if err != nil {
		j.logf("[Janitor ERROR] 정리 실패: %v", err)
		return
	}
	if deleted > 0 {
		j.logf("[Janitor] 🗑️ 오래된 이벤트 %d건 삭제", deleted)
	}
}

func (j *Janitor) logf(format string, args ...interface{}) {
	if j.logger != nil {
		j.logger.Printf(format, args...)
	}
}
