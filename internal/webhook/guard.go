package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/slack-go/slack"
	"github.com/zime/janushbot/internal/domain"
)

// Guard는 핸들러 실행 전에 요청의 출처를 검증합니다.
// 상태를 갖지 않으며 동시 호출에 안전합니다.
type Guard struct {
	signingSecret     string
	verificationToken string
}

// NewGuard는 새 Guard를 생성합니다.
func NewGuard(signingSecret, verificationToken string) *Guard {
	return &Guard{
		signingSecret:     signingSecret,
		verificationToken: verificationToken,
	}
}

// VerifySignature는 Events API 요청의 v0 서명을 검증합니다.
// 5분이 지난 타임스탬프는 거부됩니다.
func (g *Guard) VerifySignature(header http.Header, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(header, g.signingSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if _, err := verifier.Write(body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if err := verifier.Ensure(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return nil
}

// VerifyToken은 폼 본문의 검증 토큰을 확인합니다.
// 슬래시 커맨드는 token 필드, 모달 제출은 payload JSON의 token 필드를 사용합니다.
func (g *Guard) VerifyToken(body []byte) error {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return fmt.Errorf("%w: 폼 파싱 실패", domain.ErrUnauthorized)
	}

	token := form.Get("token")
	if token == "" && form.Has("payload") {
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal([]byte(form.Get("payload")), &payload); err == nil {
			token = payload.Token
		}
	}

	if token == "" {
		return fmt.Errorf("%w: 토큰 없음", domain.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(g.verificationToken)) != 1 {
		return fmt.Errorf("%w: 토큰 불일치", domain.ErrUnauthorized)
	}
	return nil
}
