package handler

import (
	"context"
	"errors"

	"github.com/zime/janushbot/internal/domain"
	"github.com/zime/janushbot/internal/router"
)

// Chain은 여러 핸들러를 순차적으로 실행하는 핸들러입니다.
type Chain struct {
	handlers []router.Handler
}

// NewChain은 새로운 Chain을 생성합니다.
func NewChain(handlers ...router.Handler) *Chain {
	return &Chain{
		handlers: handlers,
	}
}

// Handle은 모든 핸들러를 순차적으로 호출합니다.
// 첫 번째로 nil이 아닌 응답을 반환하고 에러는 모두 합칩니다.
func (c *Chain) Handle(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	var (
		reply *domain.Reply
		errs  []error
	)
	for _, handler := range c.handlers {
		r, err := handler.Handle(ctx, event)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if reply == nil {
			reply = r
		}
	}
	return reply, errors.Join(errs...)
}
