//go:build !windows

package cli

import "syscall"

// getSysProcAttr는 백그라운드 실행을 위한 SysProcAttr을 반환합니다.
// 새 세션으로 분리하여 터미널의 SIGHUP을 받지 않습니다.
func getSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
