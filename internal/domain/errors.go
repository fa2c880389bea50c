package domain

import "errors"

var (
	// ErrUnauthorized는 서명 또는 검증 토큰이 유효하지 않을 때 반환됩니다 (HTTP 403)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedPayload는 필수 필드가 없거나 형식이 잘못된 요청입니다
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrDuplicateHandler는 같은 이벤트 종류에 핸들러를 두 번 등록할 때 반환됩니다
	ErrDuplicateHandler = errors.New("duplicate handler")
	// ErrHandlerFailure는 핸들러 실행이 실패했음을 나타냅니다
	ErrHandlerFailure = errors.New("handler failure")
)
