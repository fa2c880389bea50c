package main

import (
	"context"
	"sync"
	"testing"

	"github.com/samber/mo"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zime/janushbot/internal/config"
	"github.com/zime/janushbot/internal/domain"
)

// fakeClient는 전송 내역을 기록하는 Slack 클라이언트입니다.
type fakeClient struct {
	mu     sync.Mutex
	posted []domain.OutboundMessage
	opened []string
}

func (f *fakeClient) PostMessage(ctx context.Context, msg domain.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, msg)
	return nil
}

func (f *fakeClient) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, triggerID)
	return nil
}

func (f *fakeClient) GetUserProfile(ctx context.Context, userID string) (mo.Option[domain.UserProfile], error) {
	return mo.Some(domain.UserProfile{UserID: userID, DisplayName: "janek", RealName: "Jan Kowalski"}), nil
}

// TestBuildRouter는 모든 이벤트 종류가 핸들러에 연결되는지 테스트합니다.
func TestBuildRouter(t *testing.T) {
	for _, debug := range []bool{false, true} {
		cfg := &config.BotConfig{
			QuestionCommand: "/question",
			QuestionChannel: "#testing",
			Debug:           debug,
		}

		r, err := buildRouter(cfg, &fakeClient{}, nil, nil)

		require.NoError(t, err)
		for _, kind := range []domain.EventKind{
			domain.KindAppMention, domain.KindMessage, domain.KindSlashCommand, domain.KindViewSubmission,
		} {
			assert.True(t, r.Has(kind), "%s 핸들러 없음 (debug=%v)", kind, debug)
		}
	}
}

// TestBuildRouter_Dispatch는 기본 정책 목록으로 인사와 금칙어를 처리하는지 테스트합니다.
func TestBuildRouter_Dispatch(t *testing.T) {
	client := &fakeClient{}
	r, err := buildRouter(&config.BotConfig{QuestionCommand: "/question", QuestionChannel: "#testing"}, client, nil, nil)
	require.NoError(t, err)

	_, err = r.Dispatch(context.Background(), domain.NewAppMentionEvent("Ev1", &domain.AppMentionEvent{
		ChannelID: "C1", UserID: "U1", Text: "<@B1> hello", TS: "1.0",
	}))
	require.NoError(t, err)

	reply, err := r.Dispatch(context.Background(), domain.NewSlashCommandEvent(&domain.SlashCommand{
		TriggerID: "T1", UserID: "U1", CommandName: "/question",
	}))
	require.NoError(t, err)
	assert.Nil(t, reply)

	require.Len(t, client.posted, 1)
	assert.Equal(t, "Do roboty, <@U1>! :wat2:", client.posted[0].Text)
	assert.Equal(t, []string{"T1"}, client.opened)
}

// TestBuildRouter_GreetingWordBoundary는 기본 인사말 목록이 단어 경계에서만 답장하는지 테스트합니다.
func TestBuildRouter_GreetingWordBoundary(t *testing.T) {
	tests := []struct {
		text      string
		wantPosts int
	}{
		{"nothing relevant", 0},
		{"hey there", 1},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			// Given: 기본 정책 목록
			client := &fakeClient{}
			r, err := buildRouter(&config.BotConfig{QuestionCommand: "/question", QuestionChannel: "#testing"}, client, nil, nil)
			require.NoError(t, err)

			// When
			_, err = r.Dispatch(context.Background(), domain.NewAppMentionEvent("Ev1", &domain.AppMentionEvent{
				ChannelID: "C1", UserID: "U1", Text: tt.text, TS: "1.0",
			}))

			// Then
			require.NoError(t, err)
			require.Len(t, client.posted, tt.wantPosts)
			if tt.wantPosts > 0 {
				assert.Equal(t, "Do roboty, <@U1>! :wat2:", client.posted[0].Text)
				assert.Equal(t, "C1", client.posted[0].ChannelID)
			}
		})
	}
}
