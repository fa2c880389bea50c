package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ConfigFileName은 바이너리와 같은 디렉토리에 두는 설정 파일 이름입니다.
const ConfigFileName = "config.ini"

// GetExecutableDir은 실행 바이너리가 있는 디렉토리 경로를 반환합니다.
func GetExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	// 심볼릭 링크 해결
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadEnvFile은 지정된 경로의 KEY=VALUE 파일을 로드합니다.
// 파일이 없으면 무시하고, 이미 설정된 환경변수는 덮어쓰지 않습니다.
func LoadEnvFile(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil // 파일 없으면 무시
		}
		return err
	}

	if err := godotenv.Load(filePath); err != nil {
		return fmt.Errorf("%s 로드 실패: %w", filePath, err)
	}
	return nil
}
