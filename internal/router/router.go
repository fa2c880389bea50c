package router

import (
	"context"
	"fmt"
	"log"
	"maps"

	"github.com/zime/janushbot/internal/domain"
)

// Handler는 한 종류의 이벤트를 처리하는 인터페이스입니다.
type Handler interface {
	// Handle은 이벤트를 처리하고 동기 응답(없으면 nil)을 반환합니다.
	Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error)
}

// HandlerFunc는 함수를 Handler로 사용하기 위한 어댑터입니다.
type HandlerFunc func(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error)

// Handle은 f(ctx, event)를 호출합니다.
func (f HandlerFunc) Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	return f(ctx, event)
}

// Builder는 시작 시점에 핸들러를 등록하는 빌더입니다.
// 첫 번째 에러가 기록되면 이후 등록은 무시되고 Build가 실패합니다.
type Builder struct {
	handlers map[domain.EventKind]Handler
	logger   *log.Logger
	err      error
}

// NewBuilder는 새 Builder를 생성합니다.
func NewBuilder() *Builder {
	return &Builder{
		handlers: make(map[domain.EventKind]Handler),
	}
}

// WithLogger는 Router가 사용할 로거를 설정합니다.
func (b *Builder) WithLogger(logger *log.Logger) *Builder {
	b.logger = logger
	return b
}

// Register는 kind에 handler를 등록합니다.
// 같은 kind를 두 번 등록하면 ErrDuplicateHandler가 기록됩니다.
func (b *Builder) Register(kind domain.EventKind, handler Handler) *Builder {
	if b.err != nil {
		return b
	}
	if handler == nil {
		b.err = fmt.Errorf("%s 핸들러가 nil입니다", kind)
		return b
	}
	if _, exists := b.handlers[kind]; exists {
		b.err = fmt.Errorf("%w: %s", domain.ErrDuplicateHandler, kind)
		return b
	}
	b.handlers[kind] = handler
	return b
}

// Build는 등록 테이블을 복사한 불변 Router를 반환합니다.
func (b *Builder) Build() (*Router, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Router{
		handlers: maps.Clone(b.handlers),
		logger:   b.logger,
	}, nil
}

// Router는 이벤트 종류별로 핸들러를 선택해 실행합니다.
// 생성 이후 변경되지 않으므로 동시 호출에 안전합니다.
type Router struct {
	handlers map[domain.EventKind]Handler
	logger   *log.Logger
}

// Has는 kind에 등록된 핸들러가 있는지 확인합니다.
func (r *Router) Has(kind domain.EventKind) bool {
	_, ok := r.handlers[kind]
	return ok
}

// Dispatch는 이벤트를 등록된 핸들러로 전달합니다.
// 핸들러가 없으면 (nil, nil)을 반환합니다.
// 핸들러 에러나 panic은 ErrHandlerFailure로 감싸서 반환합니다.
func (r *Router) Dispatch(ctx context.Context, event *domain.InboundEvent) (reply *domain.Reply, err error) {
	handler, ok := r.handlers[event.Kind]
	if !ok {
		r.logInfo("등록된 핸들러 없음: %s", event.Kind)
		return nil, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			reply = nil
			err = fmt.Errorf("%w (%s): panic: %v", domain.ErrHandlerFailure, event.Kind, rec)
			r.logError("핸들러 panic: %v", err)
		}
	}()

	reply, err = handler.Handle(ctx, event)
	if err != nil {
		err = fmt.Errorf("%w (%s): %w", domain.ErrHandlerFailure, event.Kind, err)
		r.logError("핸들러 실패: %v", err)
		return nil, err
	}

	return reply, nil
}

func (r *Router) logInfo(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Printf("[Router] "+format, args...)
	}
}

func (r *Router) logError(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Printf("[Router ERROR] "+format, args...)
	}
}
