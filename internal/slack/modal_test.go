package slack

import (
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zime/janushbot/internal/domain"
)

// TestBuildModal은 폼 선언으로 모달이 생성되는지 테스트합니다.
func TestBuildModal(t *testing.T) {
	// Given: 두 필드를 가진 폼
	form := domain.Form{
		CallbackID:  "question-modal",
		Title:       "Your Question",
		SubmitLabel: "Submit",
		Fields: []domain.FormField{
			{BlockID: "task_name", ActionID: "task_name_input", Label: "Task name:"},
			{BlockID: "question", ActionID: "question_input", Label: "Question:", Multiline: true},
		},
	}

	// When: 모달 생성
	view := BuildModal(form)

	// Then: 필드 순서대로 입력 블록이 생성됨
	assert.Equal(t, slack.VTModal, view.Type)
	assert.Equal(t, "question-modal", view.CallbackID)
	assert.Equal(t, "Your Question", view.Title.Text)
	require.NotNil(t, view.Submit)
	assert.Equal(t, "Submit", view.Submit.Text)
	require.Len(t, view.Blocks.BlockSet, 2)

	second, ok := view.Blocks.BlockSet[1].(*slack.InputBlock)
	require.True(t, ok)
	assert.Equal(t, "question", second.BlockID)
	assert.Equal(t, "Question:", second.Label.Text)

	element, ok := second.Element.(*slack.PlainTextInputBlockElement)
	require.True(t, ok)
	assert.Equal(t, "question_input", element.ActionID)
	assert.True(t, element.Multiline)
}

// TestBuildModal_NoSubmit은 제출 라벨이 없으면 Submit이 비어있는지 테스트합니다.
func TestBuildModal_NoSubmit(t *testing.T) {
	view := BuildModal(domain.Form{CallbackID: "x", Title: "X"})

	assert.Nil(t, view.Submit)
	assert.Empty(t, view.Blocks.BlockSet)
}
