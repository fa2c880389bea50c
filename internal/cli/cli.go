package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/zime/janushbot/internal/logging"
)

// DefaultVersion은 VERSION 파일이 없을 때의 버전입니다.
const DefaultVersion = "1.0.0"

// output은 CLI 메시지 출력 대상입니다. 테스트에서 교체합니다.
var output io.Writer = os.Stdout

// AppInfo는 애플리케이션 정보입니다.
type AppInfo struct {
	Name        string
	Description string
	Version     string
	ConfigFile  string
	Usage       string
}

// ParseArgs는 명령줄 인자(프로그램 이름 제외)를 파싱합니다.
// --help, -h, --version, -v, --bg, --status, --stop 옵션을 처리합니다.
// 이 옵션들이 사용되면 정보를 출력하고 true를 반환합니다.
func ParseArgs(info AppInfo, args []string) bool {
	if len(args) < 1 {
		return false
	}

	switch args[0] {
	case "-h", "--help":
		printHelp(info)
		return true
	case "-v", "--version":
		printVersion(info)
		return true
	case "--bg":
		startBackground(info)
		return true
	case "--status":
		showStatus(info, executableDir())
		return true
	case "--stop":
		stopProcess(info, executableDir())
		return true
	}

	return false
}

func printHelp(info AppInfo) {
	name := strings.ToLower(info.Name)
	fmt.Fprintf(output, "%s - %s\n\n", info.Name, info.Description)
	fmt.Fprintf(output, "버전: %s\n\n", info.Version)
	fmt.Fprintln(output, "사용법:")
	fmt.Fprintf(output, "  %s [옵션]\n\n", name)
	fmt.Fprintln(output, "옵션:")
	fmt.Fprintln(output, "  -h, --help      도움말 표시")
	fmt.Fprintln(output, "  -v, --version   버전 정보 표시")
	fmt.Fprintln(output, "  --bg            백그라운드로 실행")
	fmt.Fprintln(output, "  --status        실행 상태 확인")
	fmt.Fprintln(output, "  --stop          실행 중인 프로세스 종료")
	fmt.Fprintln(output)
	fmt.Fprintln(output, "설정 파일:")
	fmt.Fprintf(output, "  %s (바이너리와 같은 디렉토리)\n\n", info.ConfigFile)
	if info.Usage != "" {
		fmt.Fprintln(output, "상세 사용법:")
		fmt.Fprintln(output, info.Usage)
		fmt.Fprintln(output)
	}
	fmt.Fprintln(output, "환경변수:")
	fmt.Fprintln(output, "  LOG_TO_FILE=1   로그를 파일로 저장 (logs/ 디렉토리)")
}

func printVersion(info AppInfo) {
	fmt.Fprintf(output, "%s v%s\n", info.Name, info.Version)
}

// executableDir은 실행 파일 디렉토리를 반환합니다. 실패하면 현재 디렉토리를 사용합니다.
func executableDir() string {
	exePath, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exePath)
}

// startBackground는 백그라운드로 프로세스를 시작합니다.
// 자식 프로세스는 LOG_TO_FILE=1로 회전 로그 파일에 기록하고,
// 로거를 거치지 않는 출력(패닉 등)은 logs/<name>.out에 남습니다.
func startBackground(info AppInfo) {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(output, "❌ 실행 파일 경로 조회 실패: %v\n", err)
		os.Exit(1)
	}

	exeDir := filepath.Dir(exePath)
	logFile := logging.FilePath(exeDir, info.Name)
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		fmt.Fprintf(output, "❌ 로그 디렉토리 생성 실패: %v\n", err)
		os.Exit(1)
	}

	pidFile := getPIDFile(info, exeDir)

	// 이미 실행 중인지 확인
	if isRunning(pidFile) {
		fmt.Fprintf(output, "⚠️  %s가 이미 실행 중입니다.\n", info.Name)
		fmt.Fprintf(output, "   상태 확인: %s --status\n", strings.ToLower(info.Name))
		return
	}

	cmd := exec.Command(exePath)
	cmd.Dir = exeDir
	cmd.Env = append(os.Environ(), "LOG_TO_FILE=1")

	outPath := strings.TrimSuffix(logFile, ".log") + ".out"
	outFile, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(output, "❌ 출력 파일 생성 실패: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()
	cmd.Stdout = outFile
	cmd.Stderr = outFile

	// 새 세션으로 실행 (터미널 종료해도 유지)
	cmd.SysProcAttr = getSysProcAttr()

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(output, "❌ 백그라운드 실행 실패: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0644); err != nil {
		fmt.Fprintf(output, "⚠️  PID 파일 저장 실패: %v\n", err)
	}

	fmt.Fprintf(output, "✅ %s가 백그라운드로 시작되었습니다.\n", info.Name)
	fmt.Fprintf(output, "   PID: %d\n", cmd.Process.Pid)
	fmt.Fprintf(output, "   로그: %s\n", logFile)
	fmt.Fprintf(output, "   상태: %s --status\n", strings.ToLower(info.Name))
	fmt.Fprintf(output, "   종료: %s --stop\n", strings.ToLower(info.Name))
}

// showStatus는 프로세스 상태를 표시합니다.
func showStatus(info AppInfo, exeDir string) {
	pidFile := getPIDFile(info, exeDir)

	pid, ok := readPID(pidFile)
	if !ok || !processAlive(pid) {
		fmt.Fprintf(output, "❌ %s가 실행 중이 아닙니다.\n", info.Name)
		return
	}

	fmt.Fprintf(output, "✅ %s가 실행 중입니다.\n", info.Name)
	fmt.Fprintf(output, "   PID: %d\n", pid)

	logFile := logging.FilePath(exeDir, info.Name)
	if _, err := os.Stat(logFile); err == nil {
		fmt.Fprintf(output, "   로그: %s\n", logFile)
	}
}

// stopProcess는 실행 중인 프로세스를 종료합니다.
func stopProcess(info AppInfo, exeDir string) {
	pidFile := getPIDFile(info, exeDir)

	pid, ok := readPID(pidFile)
	if !ok || !processAlive(pid) {
		fmt.Fprintf(output, "❌ %s가 실행 중이 아닙니다.\n", info.Name)
		return
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		fmt.Fprintf(output, "❌ 프로세스 찾기 실패: %v\n", err)
		return
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		fmt.Fprintf(output, "❌ 프로세스 종료 실패: %v\n", err)
		return
	}

	os.Remove(pidFile)
	fmt.Fprintf(output, "✅ %s가 종료되었습니다. (PID: %d)\n", info.Name, pid)
}

// getPIDFile는 PID 파일 경로를 반환합니다.
func getPIDFile(info AppInfo, exeDir string) string {
	return filepath.Join(exeDir, strings.ToLower(info.Name)+".pid")
}

func readPID(pidFile string) (int, bool) {
	pidBytes, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(pidBytes)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// isRunning은 PID 파일의 프로세스가 실행 중인지 확인합니다.
func isRunning(pidFile string) bool {
	pid, ok := readPID(pidFile)
	return ok && processAlive(pid)
}

// processAlive는 signal 0을 보내 프로세스 존재를 확인합니다.
func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// GetVersion은 VERSION 파일에서 버전을 읽습니다.
func GetVersion() string {
	paths := []string{
		filepath.Join(executableDir(), "VERSION"),
		"VERSION",
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err == nil {
			if v := strings.TrimSpace(string(data)); v != "" {
				return v
			}
		}
	}

	return DefaultVersion
}
