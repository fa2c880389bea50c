package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zime/janushbot/internal/domain"
)

// endpoint는 요청을 받은 엔드포인트 종류입니다.
type endpoint int

const (
	// endpointEvents는 Events API 콜백 엔드포인트입니다 (서명 검증, 항상 즉시 응답)
	endpointEvents endpoint = iota
	// endpointCommand는 슬래시 커맨드 엔드포인트입니다 (토큰 검증, 동기 응답)
	endpointCommand
	// endpointSubmission은 모달 제출 엔드포인트입니다 (토큰 검증, 동기 응답)
	endpointSubmission
)

func (e endpoint) String() string {
	switch e {
	case endpointEvents:
		return "events"
	case endpointCommand:
		return "command"
	case endpointSubmission:
		return "submission"
	}
	return "unknown"
}

// statusFor는 처리 결과에 맞는 HTTP 상태 코드를 반환합니다.
//
// 인증 실패는 어느 엔드포인트든 403입니다.
// Events 엔드포인트는 Slack 재전송을 막기 위해 그 외 모든 경우 200으로 응답하고,
// 동기 엔드포인트는 잘못된 요청이면 400, 핸들러 실패면 500입니다.
func statusFor(ep endpoint, err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case ep == endpointEvents:
		return http.StatusOK
	case errors.Is(err, domain.ErrMalformedPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeStatus는 본문 없이 상태 코드만 응답합니다.
func writeStatus(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

// writeChallenge는 URL 검증 challenge를 그대로 응답합니다.
func writeChallenge(w http.ResponseWriter, challenge string) error {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(challenge))
	return err
}

// writeReply는 동기 응답을 작성합니다. nil이면 빈 200입니다.
func writeReply(w http.ResponseWriter, reply *domain.Reply) error {
	if reply == nil {
		w.WriteHeader(http.StatusOK)
		return nil
	}

	body, err := json.Marshal(reply)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(body)
	return err
}
