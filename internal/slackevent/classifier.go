package slackevent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/zime/janushbot/internal/domain"
)

const (
	envelopeURLVerification = "url_verification"
	envelopeEventCallback   = "event_callback"

	innerTypeMessage    = "message"
	innerTypeAppMention = "app_mention"
)

// envelope는 Events API 요청의 분류에 필요한 최소 필드입니다.
type envelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	EventID   string `json:"event_id"`
	Event     struct {
		Type    string `json:"type"`
		SubType string `json:"subtype"`
		BotID   string `json:"bot_id"`
	} `json:"event"`
}

// Classifier는 요청 본문을 InboundEvent로 분류합니다.
type Classifier struct {
	forms map[string]domain.Form
}

// NewClassifier는 새 Classifier를 생성합니다.
// forms는 모달 제출 시 추출할 필드 선언이며 callback ID로 조회합니다.
func NewClassifier(forms ...domain.Form) *Classifier {
	registered := make(map[string]domain.Form, len(forms))
	for _, form := range forms {
		registered[form.CallbackID] = form
	}
	return &Classifier{forms: registered}
}

// Classify는 본문을 분류합니다.
// 순서: URL 검증 -> message -> app_mention -> 슬래시 커맨드 -> 모달 제출 -> 미인식.
func (c *Classifier) Classify(contentType string, body []byte) (*domain.InboundEvent, error) {
	if isJSON(contentType, body) {
		return c.classifyJSON(body)
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: 폼 파싱 실패: %v", domain.ErrMalformedPayload, err)
	}

	switch {
	case form.Get("command") != "":
		return classifySlashCommand(form)
	case form.Has("payload"):
		return c.classifyInteraction(form.Get("payload"))
	}

	return domain.NewUnrecognizedEvent("", "unknown form body"), nil
}

// classifyJSON은 Events API JSON 본문을 분류합니다.
func (c *Classifier) classifyJSON(body []byte) (*domain.InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: JSON 파싱 실패: %v", domain.ErrMalformedPayload, err)
	}

	switch env.Type {
	case envelopeURLVerification:
		if env.Challenge == "" {
			return nil, fmt.Errorf("%w: challenge 없음", domain.ErrMalformedPayload)
		}
		return domain.NewURLVerificationEvent(env.Challenge), nil
	case envelopeEventCallback:
		// 아래에서 처리
	default:
		return domain.NewUnrecognizedEvent(env.EventID, "envelope:"+env.Type), nil
	}

	if env.Event.Type != innerTypeMessage && env.Event.Type != innerTypeAppMention {
		return domain.NewUnrecognizedEvent(env.EventID, "event:"+env.Event.Type), nil
	}

	// 수정/삭제/봇 메시지 등 subtype이 있는 메시지는 처리하지 않음
	if env.Event.SubType != "" {
		return domain.NewUnrecognizedEvent(env.EventID, "subtype:"+env.Event.SubType), nil
	}
	if env.Event.BotID != "" {
		return domain.NewUnrecognizedEvent(env.EventID, "bot:"+env.Event.BotID), nil
	}

	parsed, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		return nil, fmt.Errorf("%w: 이벤트 파싱 실패: %v", domain.ErrMalformedPayload, err)
	}

	switch inner := parsed.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		if inner.Channel == "" || inner.User == "" {
			return nil, fmt.Errorf("%w: message 이벤트에 channel/user 없음", domain.ErrMalformedPayload)
		}
		return domain.NewMessageEvent(env.EventID, &domain.MessageEvent{
			ChannelID: inner.Channel,
			UserID:    inner.User,
			Text:      inner.Text,
			SubType:   inner.SubType,
			TS:        inner.TimeStamp,
		}), nil
	case *slackevents.AppMentionEvent:
		if inner.Channel == "" || inner.User == "" {
			return nil, fmt.Errorf("%w: app_mention 이벤트에 channel/user 없음", domain.ErrMalformedPayload)
		}
		return domain.NewAppMentionEvent(env.EventID, &domain.AppMentionEvent{
			ChannelID: inner.Channel,
			UserID:    inner.User,
			Text:      inner.Text,
			TS:        inner.TimeStamp,
		}), nil
	}

	return domain.NewUnrecognizedEvent(env.EventID, "event:"+env.Event.Type), nil
}

// classifySlashCommand는 폼 인코딩된 슬래시 커맨드를 분류합니다.
func classifySlashCommand(form url.Values) (*domain.InboundEvent, error) {
	cmd := &domain.SlashCommand{
		Token:       form.Get("token"),
		TriggerID:   form.Get("trigger_id"),
		UserID:      form.Get("user_id"),
		UserName:    form.Get("user_name"),
		CommandName: form.Get("command"),
		Text:        form.Get("text"),
		ChannelID:   form.Get("channel_id"),
	}

	if cmd.TriggerID == "" || cmd.UserID == "" {
		return nil, fmt.Errorf("%w: trigger_id 또는 user_id 없음", domain.ErrMalformedPayload)
	}

	return domain.NewSlashCommandEvent(cmd), nil
}

// classifyInteraction은 interactive payload를 분류합니다.
func (c *Classifier) classifyInteraction(raw string) (*domain.InboundEvent, error) {
	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(raw), &callback); err != nil {
		return nil, fmt.Errorf("%w: payload 파싱 실패: %v", domain.ErrMalformedPayload, err)
	}

	if callback.Type != slack.InteractionTypeViewSubmission {
		return domain.NewUnrecognizedEvent("", "interaction:"+string(callback.Type)), nil
	}

	if callback.User.ID == "" {
		return nil, fmt.Errorf("%w: view_submission에 user 없음", domain.ErrMalformedPayload)
	}

	values, err := c.extractFields(callback.View)
	if err != nil {
		return nil, err
	}

	return domain.NewViewSubmissionEvent(&domain.ViewSubmission{
		CallbackID:  callback.View.CallbackID,
		UserID:      callback.User.ID,
		UserName:    callback.User.Name,
		FieldValues: values,
	}), nil
}

// extractFields는 선언된 필드를 block/action ID 쌍으로 추출합니다.
// 선언되지 않은 callback이면 제출된 값을 block ID 기준으로 모두 담습니다.
func (c *Classifier) extractFields(view slack.View) (map[string]string, error) {
	var submitted map[string]map[string]slack.BlockAction
	if view.State != nil {
		submitted = view.State.Values
	}

	form, declared := c.forms[view.CallbackID]
	if !declared {
		values := make(map[string]string, len(submitted))
		for blockID, actions := range submitted {
			for _, action := range actions {
				values[blockID] = action.Value
				break
			}
		}
		return values, nil
	}

	values := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		action, ok := submitted[field.BlockID][field.ActionID]
		if !ok {
			return nil, fmt.Errorf("%w: 필드 누락 %s/%s", domain.ErrMalformedPayload, field.BlockID, field.ActionID)
		}
		values[field.BlockID] = action.Value
	}
	return values, nil
}

// isJSON은 본문이 JSON인지 판별합니다.
func isJSON(contentType string, body []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "application/json":
			return true
		case "application/x-www-form-urlencoded":
			return false
		}
	}
	return bytes.HasPrefix(bytes.TrimSpace(body), []byte("{"))
}
