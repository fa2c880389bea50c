package logging

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 로그 파일 회전 기본값
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
)

// Config는 로거 설정입니다.
type Config struct {
	AppName string // 로그 파일 이름에 사용 (소문자로 변환)
	Dir     string // 실행 파일 디렉토리. 로그 파일은 Dir/logs 아래에 생성
	ToFile  bool   // true면 stdout 대신 회전 파일에 기록
}

// FilePath는 앱의 로그 파일 경로를 반환합니다.
func FilePath(dir, appName string) string {
	return filepath.Join(dir, "logs", strings.ToLower(appName)+".log")
}

// New는 설정에 맞는 로거와 닫기 함수를 반환합니다.
// stdout 로거의 닫기 함수는 아무것도 하지 않습니다.
func New(config Config) (*log.Logger, func() error) {
	if !config.ToFile {
		return log.New(os.Stdout, "", log.LstdFlags), func() error { return nil }
	}

	writer := &lumberjack.Logger{
		Filename:   FilePath(config.Dir, config.AppName),
		MaxSize:    DefaultMaxSizeMB,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAgeDays,
		Compress:   true,
	}
	return log.New(writer, "", log.LstdFlags), writer.Close
}
