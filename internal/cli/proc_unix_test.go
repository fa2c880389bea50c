//go:build !windows

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGetSysProcAttr는 자식 프로세스가 새 세션으로 분리되는지 테스트합니다.
func TestGetSysProcAttr(t *testing.T) {
	assert.True(t, getSysProcAttr().Setsid)
}
