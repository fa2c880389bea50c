package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ErrMissingRequired는 필수 환경변수가 없을 때 반환됩니다.
var ErrMissingRequired = errors.New("필수 환경변수 누락")

// 설정 키와 환경변수 이름
const (
	keySigningSecret     = "signing_secret"
	keyBotToken          = "bot_token"
	keyVerificationToken = "verification_token"
	keyVerificationAlias = "verification_alias"
	keyPort              = "port"
	keyQuestionCommand   = "question_command"
	keyQuestionChannel   = "question_channel"
	keyGreetings         = "greetings"
	keyForbiddenWords    = "forbidden_words"
	keyDatabaseDriver    = "database_driver"
	keyDatabaseURL       = "database_url"
	keyRedisAddr         = "redis_addr"
	keyRetentionDays     = "processed_retention_days"
	keyDedupCacheSize    = "dedup_cache_size"
	keyDebug             = "debug"
	keyLogToFile         = "log_to_file"
	keyStatsTopN         = "stats_top_n"
	keyStatsExcludeWords = "stats_exclude_words"
)

var envBindings = map[string]string{
	keySigningSecret:     "SLACK_SIGNING_SECRET",
	keyBotToken:          "SLACK_BOT_TOKEN",
	keyVerificationToken: "SLACK_VERIFICATION_TOKEN",
	keyVerificationAlias: "VERIFICATION",
	keyPort:              "PORT",
	keyQuestionCommand:   "QUESTION_COMMAND",
	keyQuestionChannel:   "QUESTION_CHANNEL",
	keyGreetings:         "GREETINGS",
	keyForbiddenWords:    "FORBIDDEN_WORDS",
	keyDatabaseDriver:    "DATABASE_DRIVER",
	keyDatabaseURL:       "DATABASE_URL",
	keyRedisAddr:         "REDIS_ADDR",
	keyRetentionDays:     "PROCESSED_RETENTION_DAYS",
	keyDedupCacheSize:    "DEDUP_CACHE_SIZE",
	keyDebug:             "DEBUG",
	keyLogToFile:         "LOG_TO_FILE",
	keyStatsTopN:         "STATS_TOP_N",
	keyStatsExcludeWords: "STATS_EXCLUDE_WORDS",
}

// 기본값
const (
	DefaultPort            = 3000
	DefaultQuestionCommand = "/question"
	DefaultQuestionChannel = "#testing"
	DefaultDatabaseDriver  = "sqlite3"
	DefaultDatabaseFile    = "janush.db"
	DefaultRetentionDays   = 7
	DefaultDedupCacheSize  = 1024
	DefaultStatsTopN       = 10
)

// DatabaseConfig는 DB 연결 설정입니다.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// BotConfig는 웹훅 봇 설정입니다.
type BotConfig struct {
	SigningSecret     string
	BotToken          string
	VerificationToken string

	Port            int
	QuestionCommand string
	QuestionChannel string

	// 비어있으면 기본 목록 사용
	Greetings      []string
	ForbiddenWords []string

	Database       DatabaseConfig
	RedisAddr      string // 설정되면 중복 이벤트 판별에 Redis 사용
	RetentionDays  int
	DedupCacheSize int

	Debug     bool
	LogToFile bool
}

// StatsConfig는 질문 통계 도구 설정입니다.
type StatsConfig struct {
	Database     DatabaseConfig
	TopN         int
	ExcludeWords []string // 기본 제외 단어에 추가
	LogToFile    bool
}

// newViper는 환경변수 바인딩과 기본값을 가진 viper 인스턴스를 만듭니다.
func newViper() *viper.Viper {
	v := viper.New()
	for key, env := range envBindings {
		// 키가 비어있지 않으므로 에러가 나지 않음
		_ = v.BindEnv(key, env)
	}

	v.SetDefault(keyPort, DefaultPort)
	v.SetDefault(keyQuestionCommand, DefaultQuestionCommand)
	v.SetDefault(keyQuestionChannel, DefaultQuestionChannel)
	v.SetDefault(keyDatabaseDriver, DefaultDatabaseDriver)
	v.SetDefault(keyRetentionDays, DefaultRetentionDays)
	v.SetDefault(keyDedupCacheSize, DefaultDedupCacheSize)
	v.SetDefault(keyStatsTopN, DefaultStatsTopN)
	return v
}

// LoadBot은 환경변수에서 봇 설정을 읽고 검증합니다.
// 필수 값이 없으면 ErrMissingRequired를 반환합니다.
func LoadBot(exeDir string) (*BotConfig, error) {
	v := newViper()

	verification := v.GetString(keyVerificationToken)
	if verification == "" {
		verification = v.GetString(keyVerificationAlias)
	}

	cfg := &BotConfig{
		SigningSecret:     v.GetString(keySigningSecret),
		BotToken:          v.GetString(keyBotToken),
		VerificationToken: verification,
		Port:              v.GetInt(keyPort),
		QuestionCommand:   v.GetString(keyQuestionCommand),
		QuestionChannel:   v.GetString(keyQuestionChannel),
		Greetings:         SplitList(v.GetString(keyGreetings)),
		ForbiddenWords:    SplitList(v.GetString(keyForbiddenWords)),
		Database:          loadDatabase(v, exeDir),
		RedisAddr:         v.GetString(keyRedisAddr),
		RetentionDays:     v.GetInt(keyRetentionDays),
		DedupCacheSize:    v.GetInt(keyDedupCacheSize),
		Debug:             v.GetBool(keyDebug),
		LogToFile:         v.GetBool(keyLogToFile),
	}

	var missing []string
	if cfg.SigningSecret == "" {
		missing = append(missing, envBindings[keySigningSecret])
	}
	if cfg.BotToken == "" {
		missing = append(missing, envBindings[keyBotToken])
	}
	if cfg.VerificationToken == "" {
		missing = append(missing, envBindings[keyVerificationToken]+" (또는 VERIFICATION)")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("잘못된 PORT: %s", v.GetString(keyPort))
	}
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("잘못된 PROCESSED_RETENTION_DAYS: %s", v.GetString(keyRetentionDays))
	}
	if cfg.DedupCacheSize <= 0 {
		return nil, fmt.Errorf("잘못된 DEDUP_CACHE_SIZE: %s", v.GetString(keyDedupCacheSize))
	}
	if !strings.HasPrefix(cfg.QuestionCommand, "/") {
		cfg.QuestionCommand = "/" + cfg.QuestionCommand
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadStats는 환경변수에서 통계 도구 설정을 읽습니다.
func LoadStats(exeDir string) (*StatsConfig, error) {
	v := newViper()

	cfg := &StatsConfig{
		Database:     loadDatabase(v, exeDir),
		TopN:         v.GetInt(keyStatsTopN),
		ExcludeWords: SplitList(v.GetString(keyStatsExcludeWords)),
		LogToFile:    v.GetBool(keyLogToFile),
	}

	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("잘못된 STATS_TOP_N: %s", v.GetString(keyStatsTopN))
	}
	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDatabase는 DB 설정을 읽습니다. SQLite는 URL이 없으면 실행 디렉토리의 파일을 사용합니다.
func loadDatabase(v *viper.Viper, exeDir string) DatabaseConfig {
	db := DatabaseConfig{
		Driver: v.GetString(keyDatabaseDriver),
		URL:    v.GetString(keyDatabaseURL),
	}
	if db.URL == "" && db.Driver == DefaultDatabaseDriver {
		db.URL = filepath.Join(exeDir, DefaultDatabaseFile)
	}
	return db
}

func (d DatabaseConfig) validate() error {
	switch d.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("지원하지 않는 DATABASE_DRIVER: %s", d.Driver)
	}
	if d.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL (%s)", ErrMissingRequired, d.Driver)
	}
	return nil
}

// SplitList는 쉼표로 구분된 목록을 나눕니다. 빈 항목은 제외합니다.
func SplitList(value string) []string {
	var result []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
