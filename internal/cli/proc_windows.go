//go:build windows

package cli

import "syscall"

// detachedProcess는 콘솔을 물려받지 않는 프로세스 생성 플래그입니다 (DETACHED_PROCESS).
const detachedProcess = 0x00000008

// getSysProcAttr는 백그라운드 실행을 위한 SysProcAttr을 반환합니다.
// 콘솔 창을 닫거나 Ctrl+C를 눌러도 자식 프로세스가 유지됩니다.
func getSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
		HideWindow:    true,
	}
}
