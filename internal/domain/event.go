package domain

import "time"

// EventKind는 분류된 인바운드 요청의 종류입니다.
type EventKind string

const (
	// KindURLVerification은 Slack URL 검증 챌린지입니다
	KindURLVerification EventKind = "url_verification"
	// KindMessage는 채널 메시지 이벤트입니다 (subtype 없는 일반 메시지만)
	KindMessage EventKind = "message_event"
	// KindAppMention은 앱 멘션 이벤트입니다
	KindAppMention EventKind = "app_mention_event"
	// KindSlashCommand는 슬래시 커맨드입니다
	KindSlashCommand EventKind = "slash_command"
	// KindViewSubmission은 모달 제출입니다
	KindViewSubmission EventKind = "view_submission"
	// KindUnrecognized는 처리 대상이 아닌 요청입니다
	KindUnrecognized EventKind = "unrecognized"
)

// URLVerification은 Events API URL 검증 요청입니다.
type URLVerification struct {
	Challenge string
}

// MessageEvent는 채널에 게시된 일반 메시지입니다.
type MessageEvent struct {
	ChannelID string
	UserID    string
	Text      string
	// SubType은 분류 단계에서 비어있음이 보장됩니다
	SubType string
	TS      string
}

// AppMentionEvent는 봇이 멘션된 메시지입니다.
type AppMentionEvent struct {
	ChannelID string
	UserID    string
	Text      string
	TS        string
}

// SlashCommand는 사용자가 호출한 슬래시 커맨드입니다.
type SlashCommand struct {
	Token       string
	TriggerID   string
	UserID      string
	UserName    string
	CommandName string
	Text        string
	ChannelID   string
}

// ViewSubmission은 모달 제출 콜백입니다.
// FieldValues는 block ID를 키로 합니다.
type ViewSubmission struct {
	CallbackID  string
	UserID      string
	UserName    string
	FieldValues map[string]string
}

// InboundEvent는 하나의 HTTP 요청에서 분류된 이벤트입니다.
// Kind에 해당하는 필드 하나만 설정되며, 생성 이후 변경하지 않습니다.
type InboundEvent struct {
	Kind EventKind
	// EventID는 Events API 콜백의 event_id입니다 (중복 수신 판별용)
	EventID string
	// Reason은 KindUnrecognized인 경우의 사유입니다
	Reason string

	URLVerification *URLVerification
	Message         *MessageEvent
	AppMention      *AppMentionEvent
	SlashCommand    *SlashCommand
	ViewSubmission  *ViewSubmission

	ReceivedAt time.Time
}

// NewURLVerificationEvent는 URL 검증 이벤트를 생성합니다.
func NewURLVerificationEvent(challenge string) *InboundEvent {
	return &InboundEvent{
		Kind:            KindURLVerification,
		URLVerification: &URLVerification{Challenge: challenge},
		ReceivedAt:      time.Now(),
	}
}

// NewMessageEvent는 메시지 이벤트를 생성합니다.
func NewMessageEvent(eventID string, msg *MessageEvent) *InboundEvent {
	return &InboundEvent{
		Kind:       KindMessage,
		EventID:    eventID,
		Message:    msg,
		ReceivedAt: time.Now(),
	}
}

// NewAppMentionEvent는 앱 멘션 이벤트를 생성합니다.
func NewAppMentionEvent(eventID string, mention *AppMentionEvent) *InboundEvent {
	return &InboundEvent{
		Kind:       KindAppMention,
		EventID:    eventID,
		AppMention: mention,
		ReceivedAt: time.Now(),
	}
}

// NewSlashCommandEvent는 슬래시 커맨드 이벤트를 생성합니다.
func NewSlashCommandEvent(cmd *SlashCommand) *InboundEvent {
	return &InboundEvent{
		Kind:         KindSlashCommand,
		SlashCommand: cmd,
		ReceivedAt:   time.Now(),
	}
}

// NewViewSubmissionEvent는 모달 제출 이벤트를 생성합니다.
func NewViewSubmissionEvent(submission *ViewSubmission) *InboundEvent {
	return &InboundEvent{
		Kind:           KindViewSubmission,
		ViewSubmission: submission,
		ReceivedAt:     time.Now(),
	}
}

// NewUnrecognizedEvent는 처리하지 않는 요청을 나타내는 이벤트를 생성합니다.
func NewUnrecognizedEvent(eventID, reason string) *InboundEvent {
	return &InboundEvent{
		Kind:       KindUnrecognized,
		EventID:    eventID,
		Reason:     reason,
		ReceivedAt: time.Now(),
	}
}

// IsCallback은 Events API를 통해 비동기로 전달된 이벤트인지 반환합니다.
func (e *InboundEvent) IsCallback() bool {
	return e.Kind == KindMessage || e.Kind == KindAppMention
}

// Reply는 동기 엔드포인트의 즉시 응답 본문입니다.
// nil Reply는 빈 200 응답을 의미합니다.
type Reply struct {
	Text string `json:"text"`
}

// OutboundMessage는 핸들러가 만들어 게이트웨이로 넘기는 채널 메시지입니다.
// 이 계층에서는 재시도하지 않습니다.
type OutboundMessage struct {
	ChannelID string
	Text      string
	// ThreadTS가 있으면 스레드 답글로 전송합니다
	ThreadTS string
}

// UserProfile은 Slack 사용자 프로필 요약입니다.
type UserProfile struct {
	UserID      string
	DisplayName string
	RealName    string
}
