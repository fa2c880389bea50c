package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zime/janushbot/internal/domain"
	"github.com/zime/janushbot/internal/slackevent"
)

const (
	testSigningSecret = "test-signing-secret"
	testToken         = "test-verification-token"
)

// MockDispatcher는 테스트용 디스패처입니다.
type MockDispatcher struct {
	mu     sync.Mutex
	events []*domain.InboundEvent
	Reply  *domain.Reply
	Err    error
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event *domain.InboundEvent) (*domain.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Reply, m.Err
}

func (m *MockDispatcher) Events() []*domain.InboundEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.InboundEvent(nil), m.events...)
}

// MockDeduplicator는 메모리 기반 중복 판별기입니다.
type MockDeduplicator struct {
	mu   sync.Mutex
	seen map[string]bool
	Err  error
}

func (m *MockDeduplicator) MarkProcessed(eventID string, kind string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func newTestHandler(dispatcher *MockDispatcher, dedup Deduplicator) *Handler {
	config := HandlerConfig{
		Guard:      NewGuard(testSigningSecret, testToken),
		Classifier: slackevent.NewClassifier(),
		Dispatcher: dispatcher,
	}
	if dedup != nil {
		config.Processed = dedup
	}
	return NewHandler(config)
}

// signedRequest는 v0 서명이 포함된 Events API 요청을 만듭니다.
func signedRequest(t *testing.T, body string, ts time.Time) *http.Request {
	t.Helper()
	stamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	fmt.Fprintf(mac, "v0:%s:%s", stamp, body)

	req := httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Slack-Request-Timestamp", stamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func messageBody(eventID, text string) string {
	return fmt.Sprintf(`{"type":"event_callback","event_id":%q,"event":{"type":"message","channel":"C1","user":"U1","text":%q,"ts":"1.000"}}`, eventID, text)
}

func commandForm(token string) url.Values {
	return url.Values{
		"token":      {token},
		"command":    {"/question"},
		"trigger_id": {"T1"},
		"user_id":    {"U1"},
		"user_name":  {"janek"},
	}
}

// TestHandler_URLVerification은 challenge 응답을 테스트합니다.
func TestHandler_URLVerification(t *testing.T) {
	dispatcher := &MockDispatcher{}
	h := newTestHandler(dispatcher, nil)

	w := httptest.NewRecorder()
	h.HandleEvents(w, signedRequest(t, `{"type":"url_verification","challenge":"abc123"}`, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", w.Body.String())
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Empty(t, dispatcher.Events())
}

// TestHandler_Events_Unauthorized는 서명 검증 실패 시 아무것도 실행하지 않는지 테스트합니다.
func TestHandler_Events_Unauthorized(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
	}{
		{"서명 헤더 없음", func(t *testing.T) *http.Request {
			return httptest.NewRequest(http.MethodPost, "/slack/events", strings.NewReader(messageBody("Ev1", "hi")))
		}},
		{"본문 변조", func(t *testing.T) *http.Request {
			req := signedRequest(t, messageBody("Ev1", "hi"), time.Now())
			tampered := signedRequest(t, messageBody("Ev1", "tampered"), time.Now())
			tampered.Header = req.Header
			return tampered
		}},
		{"오래된 타임스탬프", func(t *testing.T) *http.Request {
			return signedRequest(t, messageBody("Ev1", "hi"), time.Now().Add(-10*time.Minute))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &MockDispatcher{}
			h := newTestHandler(dispatcher, nil)

			w := httptest.NewRecorder()
			h.HandleEvents(w, tt.req(t))
			h.Wait()

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Empty(t, dispatcher.Events())
		})
	}
}

// TestHandler_Events_AsyncDispatch는 콜백이 즉시 응답 후 디스패치되는지 테스트합니다.
func TestHandler_Events_AsyncDispatch(t *testing.T) {
	// Given
	dispatcher := &MockDispatcher{Err: domain.ErrHandlerFailure}
	h := newTestHandler(dispatcher, nil)

	// When
	w := httptest.NewRecorder()
	h.HandleEvents(w, signedRequest(t, messageBody("Ev1", "hello"), time.Now()))
	h.Wait()

	// Then: 핸들러 실패와 무관하게 200
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	events := dispatcher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.KindMessage, events[0].Kind)
	assert.Equal(t, "hello", events[0].Message.Text)
}

// TestHandler_Events_Duplicate는 같은 event_id 재전송을 한 번만 처리하는지 테스트합니다.
func TestHandler_Events_Duplicate(t *testing.T) {
	dispatcher := &MockDispatcher{}
	h := newTestHandler(dispatcher, &MockDeduplicator{})

	for i := 0; i < 3; i++ {
		req := signedRequest(t, messageBody("Ev1", "hello"), time.Now())
		if i > 0 {
			req.Header.Set("X-Slack-Retry-Num", strconv.Itoa(i))
		}
		w := httptest.NewRecorder()
		h.HandleEvents(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	h.Wait()

	assert.Len(t, dispatcher.Events(), 1)
}

// TestHandler_Events_DedupError는 저장소 오류 시에도 디스패치하는지 테스트합니다.
func TestHandler_Events_DedupError(t *testing.T) {
	dispatcher := &MockDispatcher{}
	h := newTestHandler(dispatcher, &MockDeduplicator{Err: errors.New("db down")})

	w := httptest.NewRecorder()
	h.HandleEvents(w, signedRequest(t, messageBody("Ev1", "hello"), time.Now()))
	h.Wait()

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dispatcher.Events(), 1)
}

// TestHandler_Events_NotDispatched는 디스패치하지 않는 요청도 200으로 응답하는지 테스트합니다.
func TestHandler_Events_NotDispatched(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"subtype 메시지", `{"type":"event_callback","event_id":"Ev2","event":{"type":"message","subtype":"message_changed","channel":"C1"}}`},
		{"다른 이벤트", `{"type":"event_callback","event_id":"Ev3","event":{"type":"reaction_added"}}`},
		{"잘못된 JSON", `{"type":`},
		{"challenge 없음", `{"type":"url_verification"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &MockDispatcher{}
			h := newTestHandler(dispatcher, nil)

			w := httptest.NewRecorder()
			h.HandleEvents(w, signedRequest(t, tt.body, time.Now()))
			h.Wait()

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Body.String())
			assert.Empty(t, dispatcher.Events())
		})
	}
}

// TestHandler_Command는 슬래시 커맨드 동기 응답을 테스트합니다.
func TestHandler_Command(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		reply      *domain.Reply
		err        error
		wantStatus int
		wantBody   string
		dispatched bool
	}{
		{"모달 열기 성공 (빈 응답)", commandForm(testToken), nil, nil, http.StatusOK, "", true},
		{"텍스트 응답", commandForm(testToken), &domain.Reply{Text: "Sorry"}, nil, http.StatusOK, `{"text":"Sorry"}`, true},
		{"핸들러 실패", commandForm(testToken), nil, fmt.Errorf("%w: open view", domain.ErrHandlerFailure), http.StatusInternalServerError, "", true},
		{"토큰 불일치", commandForm("wrong"), nil, nil, http.StatusForbidden, "", false},
		{"토큰 없음", url.Values{"command": {"/question"}, "trigger_id": {"T1"}, "user_id": {"U1"}}, nil, nil, http.StatusForbidden, "", false},
		{"trigger_id 없음", url.Values{"token": {testToken}, "command": {"/question"}, "user_id": {"U1"}}, nil, nil, http.StatusBadRequest, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &MockDispatcher{Reply: tt.reply, Err: tt.err}
			h := newTestHandler(dispatcher, nil)

			w := httptest.NewRecorder()
			h.HandleCommand(w, formRequest("/question", tt.form))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody == "" {
				assert.Empty(t, w.Body.String())
			} else {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
			assert.Equal(t, tt.dispatched, len(dispatcher.Events()) == 1)
		})
	}
}

// TestHandler_Command_PathName은 폼에 command가 없을 때 경로의 커맨드 이름을 사용하는지 테스트합니다.
func TestHandler_Command_PathName(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		dispatched bool
	}{
		{"trigger_id 누락은 400", url.Values{"token": {testToken}, "user_id": {"U1"}}, http.StatusBadRequest, false},
		{"user_id 누락은 400", url.Values{"token": {testToken}, "trigger_id": {"T1"}}, http.StatusBadRequest, false},
		{"필수 필드 있으면 디스패치", url.Values{"token": {testToken}, "trigger_id": {"T1"}, "user_id": {"U1"}}, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := &MockDispatcher{}
			h := newTestHandler(dispatcher, nil)
			req := mux.SetURLVars(formRequest("/question", tt.form), map[string]string{"command": "question"})

			w := httptest.NewRecorder()
			h.HandleCommand(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			events := dispatcher.Events()
			if !tt.dispatched {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, "/question", events[0].SlashCommand.CommandName)
		})
	}
}

// TestWithPathCommand는 경로 커맨드 보충 규칙을 테스트합니다.
func TestWithPathCommand(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
		want string
	}{
		{"command 없음", "token=x", "question", "command=%2Fquestion&token=x"},
		{"command 있음은 유지", "command=%2Fask&token=x", "question", "command=%2Fask&token=x"},
		{"경로 없음", "token=x", "", "token=x"},
		{"JSON 본문은 유지", `{"type":"event_callback"}`, "question", `{"type":"event_callback"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(withPathCommand([]byte(tt.body), tt.path)))
		})
	}
}

// TestHandler_Drain은 종료 중에는 새 콜백을 디스패치하지 않는지 테스트합니다.
func TestHandler_Drain(t *testing.T) {
	// Given
	dispatcher := &MockDispatcher{}
	h := newTestHandler(dispatcher, nil)
	h.HandleEvents(httptest.NewRecorder(), signedRequest(t, messageBody("Ev1", "before"), time.Now()))

	// When
	h.Drain()
	w := httptest.NewRecorder()
	h.HandleEvents(w, signedRequest(t, messageBody("Ev2", "after"), time.Now()))
	h.Wait()

	// Then: 종료 전 이벤트만 처리
	assert.Equal(t, http.StatusOK, w.Code)
	events := dispatcher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "before", events[0].Message.Text)
}

// TestHandler_Submission은 모달 제출 처리를 테스트합니다.
func TestHandler_Submission(t *testing.T) {
	payload := func(token string) url.Values {
		return url.Values{"payload": {fmt.Sprintf(`{"type":"view_submission","token":%q,"user":{"id":"U1","name":"janek"},"view":{"callback_id":"question-modal","state":{"values":{"task_name":{"task_name_input":{"type":"plain_text_input","value":"Lidar"}}}}}}`, token)}}
	}

	t.Run("성공", func(t *testing.T) {
		dispatcher := &MockDispatcher{}
		h := newTestHandler(dispatcher, nil)

		w := httptest.NewRecorder()
		h.HandleSubmission(w, formRequest("/submission", payload(testToken)))

		assert.Equal(t, http.StatusOK, w.Code)
		events := dispatcher.Events()
		require.Len(t, events, 1)
		assert.Equal(t, domain.KindViewSubmission, events[0].Kind)
		assert.Equal(t, "Lidar", events[0].ViewSubmission.FieldValues["task_name"])
	})

	t.Run("토큰 불일치", func(t *testing.T) {
		dispatcher := &MockDispatcher{}
		h := newTestHandler(dispatcher, nil)

		w := httptest.NewRecorder()
		h.HandleSubmission(w, formRequest("/submission", payload("wrong")))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, dispatcher.Events())
	})

	t.Run("선언된 필드 누락", func(t *testing.T) {
		// Given: question 필드가 선언된 폼, 제출에는 task_name만 있음
		form := domain.Form{
			CallbackID: "question-modal",
			Fields: []domain.FormField{
				{BlockID: "task_name", ActionID: "task_name_input", Label: "Task name:"},
				{BlockID: "question", ActionID: "question_input", Label: "Question:"},
			},
		}
		dispatcher := &MockDispatcher{}
		h := NewHandler(HandlerConfig{
			Guard:      NewGuard(testSigningSecret, testToken),
			Classifier: slackevent.NewClassifier(form),
			Dispatcher: dispatcher,
		})

		// When
		w := httptest.NewRecorder()
		h.HandleSubmission(w, formRequest("/submission", payload(testToken)))

		// Then
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, dispatcher.Events())
	})

	t.Run("처리하지 않는 interaction", func(t *testing.T) {
		dispatcher := &MockDispatcher{}
		h := newTestHandler(dispatcher, nil)
		form := url.Values{"payload": {fmt.Sprintf(`{"type":"block_actions","token":%q}`, testToken)}}

		w := httptest.NewRecorder()
		h.HandleSubmission(w, formRequest("/submission", form))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, dispatcher.Events())
	})
}

// TestStatusFor는 엔드포인트별 상태 코드 결정을 테스트합니다.
func TestStatusFor(t *testing.T) {
	malformed := fmt.Errorf("%w: x", domain.ErrMalformedPayload)
	unauthorized := fmt.Errorf("%w: x", domain.ErrUnauthorized)
	failure := fmt.Errorf("%w: x", domain.ErrHandlerFailure)

	tests := []struct {
		ep   endpoint
		err  error
		want int
	}{
		{endpointEvents, nil, http.StatusOK},
		{endpointEvents, unauthorized, http.StatusForbidden},
		{endpointEvents, malformed, http.StatusOK},
		{endpointEvents, failure, http.StatusOK},
		{endpointCommand, nil, http.StatusOK},
		{endpointCommand, unauthorized, http.StatusForbidden},
		{endpointCommand, malformed, http.StatusBadRequest},
		{endpointCommand, failure, http.StatusInternalServerError},
		{endpointSubmission, malformed, http.StatusBadRequest},
		{endpointSubmission, failure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.ep, tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.ep, tt.err))
		})
	}
}
