package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"
	"github.com/zime/janushbot/internal/domain"
)

// maxBodyBytes는 요청 본문의 최대 크기입니다.
const maxBodyBytes = 1 << 20

// Classifier는 요청 본문을 이벤트로 분류합니다.
type Classifier interface {
	Classify(contentType string, body []byte) (*domain.InboundEvent, error)
}

// Dispatcher는 분류된 이벤트를 핸들러로 전달합니다.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error)
}

// Deduplicator는 이미 처리한 Events API 콜백을 판별합니다.
// MarkProcessed는 처음 표시되면 true를 반환합니다.
type Deduplicator interface {
	MarkProcessed(eventID string, kind string) (bool, error)
}

// HandlerConfig는 Handler 설정입니다.
type HandlerConfig struct {
	Guard      *Guard
	Classifier Classifier
	Dispatcher Dispatcher
	Processed  Deduplicator // nil이면 중복 판별하지 않음
	Logger     *log.Logger
}

// Handler는 Slack 웹훅 요청을 검증, 분류, 디스패치합니다.
type Handler struct {
	guard      *Guard
	classifier Classifier
	dispatcher Dispatcher
	processed  Deduplicator
	logger     *log.Logger

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

// NewHandler는 새 Handler를 생성합니다.
func NewHandler(config HandlerConfig) *Handler {
	return &Handler{
		guard:      config.Guard,
		classifier: config.Classifier,
		dispatcher: config.Dispatcher,
		processed:  config.Processed,
		logger:     config.Logger,
	}
}

// SetLogger는 로거를 설정합니다.
func (h *Handler) SetLogger(logger *log.Logger) {
	h.logger = logger
}

// HandleEvents는 Events API 콜백을 처리합니다.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	h.serve(endpointEvents, w, r)
}

// HandleCommand는 슬래시 커맨드를 처리합니다.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	h.serve(endpointCommand, w, r)
}

// HandleSubmission은 모달 제출을 처리합니다.
func (h *Handler) HandleSubmission(w http.ResponseWriter, r *http.Request) {
	h.serve(endpointSubmission, w, r)
}

// Wait는 진행 중인 비동기 디스패치가 모두 끝날 때까지 대기합니다.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

// Drain은 새 비동기 디스패치를 거부한 뒤 진행 중인 디스패치를 기다립니다.
// 이후 도착한 콜백은 응답만 하고 디스패치하지 않습니다.
func (h *Handler) Drain() {
	h.mu.Lock()
	h.draining = true
	h.mu.Unlock()

	h.inflight.Wait()
}

// serve는 Received -> Classified -> 응답 순서로 요청을 처리합니다.
func (h *Handler) serve(ep endpoint, w http.ResponseWriter, r *http.Request) {
	requestID := ulid.Make().String()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logError(requestID, "페이로드 읽기 실패: %v", err)
		writeStatus(w, http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// 인증 실패 시 분류와 디스패치 모두 하지 않음
	if err := h.authenticate(ep, r.Header, body); err != nil {
		h.logError(requestID, "%s 인증 실패: %v", ep, err)
		writeStatus(w, statusFor(ep, err))
		return
	}

	if ep == endpointCommand {
		body = withPathCommand(body, mux.Vars(r)["command"])
	}

	event, err := h.classifier.Classify(r.Header.Get("Content-Type"), body)
	if err != nil {
		h.logError(requestID, "%s 분류 실패: %v", ep, err)
		writeStatus(w, statusFor(ep, err))
		return
	}

	switch {
	case event.Kind == domain.KindURLVerification:
		h.logInfo(requestID, "🔐 URL 검증 challenge 응답")
		if err := writeChallenge(w, event.URLVerification.Challenge); err != nil {
			h.logError(requestID, "challenge 응답 실패: %v", err)
		}
		return

	case event.Kind == domain.KindUnrecognized:
		h.logInfo(requestID, "처리하지 않는 요청 (%s)", event.Reason)
		writeStatus(w, http.StatusOK)
		return

	case event.IsCallback():
		if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
			h.logInfo(requestID, "🔁 재전송 수신: event=%s, retry=%s, reason=%s",
				event.EventID, retry, r.Header.Get("X-Slack-Retry-Reason"))
		}
		if h.isDuplicate(requestID, event) {
			h.logInfo(requestID, "중복 이벤트 무시: %s", event.EventID)
			writeStatus(w, http.StatusOK)
			return
		}
		h.dispatchAsync(r.Context(), requestID, event)
		writeStatus(w, http.StatusOK)
		return
	}

	reply, err := h.dispatcher.Dispatch(r.Context(), event)
	if err != nil {
		h.logError(requestID, "%s 처리 실패: %v", event.Kind, err)
		writeStatus(w, statusFor(ep, err))
		return
	}

	if err := writeReply(w, reply); err != nil {
		h.logError(requestID, "응답 작성 실패: %v", err)
	}
}

// authenticate는 엔드포인트 종류에 맞는 검증을 수행합니다.
func (h *Handler) authenticate(ep endpoint, header http.Header, body []byte) error {
	if h.guard == nil {
		return fmt.Errorf("%w: guard 미설정", domain.ErrUnauthorized)
	}
	if ep == endpointEvents {
		return h.guard.VerifySignature(header, body)
	}
	return h.guard.VerifyToken(body)
}

// isDuplicate는 같은 event_id를 이미 받았는지 확인합니다.
// 저장소 오류 시에는 디스패치를 진행합니다.
func (h *Handler) isDuplicate(requestID string, event *domain.InboundEvent) bool {
	if h.processed == nil || event.EventID == "" {
		return false
	}

	marked, err := h.processed.MarkProcessed(event.EventID, string(event.Kind))
	if err != nil {
		h.logError(requestID, "처리 이력 기록 실패: %v", err)
		return false
	}
	return !marked
}

// dispatchAsync는 응답과 무관하게 이벤트를 디스패치합니다.
// 요청 컨텍스트가 끝나도 취소되지 않습니다.
func (h *Handler) dispatchAsync(ctx context.Context, requestID string, event *domain.InboundEvent) {
	ctx = context.WithoutCancel(ctx)

	h.mu.Lock()
	if h.draining {
		h.mu.Unlock()
		h.logError(requestID, "종료 중, 디스패치하지 않음: %s (%s)", event.Kind, event.EventID)
		return
	}
	h.inflight.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.inflight.Done()

		if _, err := h.dispatcher.Dispatch(ctx, event); err != nil {
			h.logError(requestID, "%s 비동기 처리 실패: %v", event.Kind, err)
		}
	}()
}

// withPathCommand는 폼에 command가 없으면 경로의 커맨드 이름을 채웁니다.
// 필수 필드 검사가 커맨드 엔드포인트에서 항상 적용되도록 합니다.
func withPathCommand(body []byte, name string) []byte {
	if name == "" || bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return body
	}
	form, err := url.ParseQuery(string(body))
	if err != nil || form.Get("command") != "" {
		return body
	}
	form.Set("command", "/"+strings.TrimPrefix(name, "/"))
	return []byte(form.Encode())
}

func (h *Handler) logInfo(requestID, format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Printf("[Webhook] ["+requestID+"] "+format, args...)
	}
}

func (h *Handler) logError(requestID, format string, args ...interface{}) {
	if h.logger != nil {
		h.logger.Printf("[Webhook ERROR] ["+requestID+"] "+format, args...)
	}
}
