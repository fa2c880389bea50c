package slack

import (
	"github.com/slack-go/slack"
	"github.com/zime/janushbot/internal/domain"
)

// BuildModal은 폼 선언으로 모달 요청을 만듭니다.
// 필드마다 plain text 입력 블록 하나를 생성합니다.
func BuildModal(form domain.Form) slack.ModalViewRequest {
	blocks := make([]slack.Block, 0, len(form.Fields))
	for _, field := range form.Fields {
		element := slack.NewPlainTextInputBlockElement(nil, field.ActionID).
			WithMultiline(field.Multiline)
		blocks = append(blocks, slack.NewInputBlock(
			field.BlockID,
			plainText(field.Label),
			nil,
			element,
		))
	}

	view := slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: form.CallbackID,
		Title:      plainText(form.Title),
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
	if form.SubmitLabel != "" {
		view.Submit = plainText(form.SubmitLabel)
	}
	return view
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}
