package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/zime/janushbot/internal/cli"
	"github.com/zime/janushbot/internal/config"
	"github.com/zime/janushbot/internal/domain"
	"github.com/zime/janushbot/internal/handler"
	"github.com/zime/janushbot/internal/logging"
	"github.com/zime/janushbot/internal/policy"
	"github.com/zime/janushbot/internal/router"
	slackclient "github.com/zime/janushbot/internal/slack"
	"github.com/zime/janushbot/internal/slackevent"
	"github.com/zime/janushbot/internal/store"
	"github.com/zime/janushbot/internal/webhook"
)

const appName = "Janush"

func main() {
	// CLI 옵션 처리 (--help, --version, --bg, --status, --stop)
	info := cli.AppInfo{
		Name:        appName,
		Description: "Slack 인사/금칙어/질문 폼 웹훅 봇",
		Version:     cli.GetVersion(),
		ConfigFile:  config.ConfigFileName,
		Usage: `  POST /slack/events  Events API (인사 답장, 금칙어 경고)
  POST /<command>     슬래시 커맨드 (기본: /question, 질문 모달 열기)
  POST /submission    모달 제출 (질문 채널에 게시)`,
	}
	if cli.ParseArgs(info, os.Args[1:]) {
		return
	}

	// 실행 파일 디렉토리 가져오기
	exeDir, err := config.GetExecutableDir()
	if err != nil {
		log.Printf("[WARN] ⚠️ 실행 파일 디렉토리 조회 실패: %v\n", err)
		exeDir = "." // 현재 디렉토리 사용
	}

	// config.ini 파일 로드 (바이너리와 같은 위치)
	configPath := filepath.Join(exeDir, config.ConfigFileName)
	envErr := config.LoadEnvFile(configPath)

	cfg, cfgErr := config.LoadBot(exeDir)

	// 로거 설정 (LOG_TO_FILE=1 이면 logs/janush.log)
	logger, closeLog := logging.New(logging.Config{
		AppName: appName,
		Dir:     exeDir,
		ToFile:  cfg != nil && cfg.LogToFile,
	})
	defer closeLog()

	if envErr != nil {
		logger.Printf("[WARN] ⚠️ %s 로드 실패: %v\n", config.ConfigFileName, envErr)
	} else if _, err := os.Stat(configPath); err == nil {
		logger.Printf("[CONFIG] 설정 파일: %s\n", configPath)
	}
	if cfgErr != nil {
		logger.Fatalf("[ERROR] ❌ 설정 오류: %v\n   %s 파일을 확인하세요: %s", cfgErr, config.ConfigFileName, configPath)
	}

	logger.Println("====================================")
	logger.Println("   Janush Slack 웹훅 봇")
	logger.Println("====================================")
	logger.Printf("[CONFIG] 실행 디렉토리: %s\n", exeDir)
	logger.Printf("[CONFIG] 포트: %d\n", cfg.Port)
	logger.Printf("[CONFIG] 질문 커맨드: %s -> %s\n", cfg.QuestionCommand, cfg.QuestionChannel)
	logger.Printf("[CONFIG] DB: %s\n", cfg.Database.Driver)
	if cfg.RedisAddr != "" {
		logger.Printf("[CONFIG] 중복 이벤트 판별: Redis (%s)\n", cfg.RedisAddr)
	} else {
		logger.Println("[CONFIG] 중복 이벤트 판별: DB")
	}
	logger.Println("------------------------------------")

	// 시그널 핸들링 (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Printf("[ERROR] ❌ 서비스 에러: %v\n", err)
		closeLog()
		os.Exit(1)
	}

	logger.Println("[INFO] 👋 웹훅 봇이 정상 종료되었습니다")
}

// run은 저장소, 핸들러, 서버를 연결하고 ctx가 끝날 때까지 실행합니다.
func run(ctx context.Context, cfg *config.BotConfig, logger *log.Logger) error {
	// 질문 로그 DB
	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("DB 열기 실패: %w", err)
	}
	defer db.Close()

	// 처리된 이벤트 저장소 (Redis 또는 DB) + 메모리 캐시
	var processed store.ProcessedStore
	if cfg.RedisAddr != "" {
		processed, err = store.NewRedisProcessedStore(cfg.RedisAddr, cfg.RetentionDays)
		if err != nil {
			return fmt.Errorf("Redis 연결 실패: %w", err)
		}
	} else {
		processed = store.NewSQLProcessedStore(db)
	}
	cached, err := store.NewCachedProcessedStore(processed, cfg.DedupCacheSize)
	if err != nil {
		processed.Close()
		return fmt.Errorf("캐시 생성 실패: %w", err)
	}
	defer cached.Close()

	janitor := store.NewJanitor(store.JanitorConfig{RetentionDays: cfg.RetentionDays}, cached, logger)
	go func() {
		if err := janitor.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("[Janitor ERROR] 중단: %v", err)
		}
	}()
	defer janitor.Stop()

	dispatcher, err := buildRouter(cfg, slackclient.NewSlackClient(cfg.BotToken), store.NewQuestionLog(db), logger)
	if err != nil {
		return fmt.Errorf("라우터 구성 실패: %w", err)
	}

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		Guard:      webhook.NewGuard(cfg.SigningSecret, cfg.VerificationToken),
		Classifier: slackevent.NewClassifier(handler.QuestionForm),
		Dispatcher: dispatcher,
		Processed:  cached,
	})

	server := webhook.NewServer(webhook.ServerConfig{Port: cfg.Port}, webhookHandler)
	server.SetLogger(logger)

	return server.Start(ctx)
}

// buildRouter는 이벤트 종류별 핸들러를 등록합니다.
func buildRouter(cfg *config.BotConfig, client slackclient.Client, questions handler.QuestionLogger, logger *log.Logger) (*router.Router, error) {
	greetings := cfg.Greetings
	if len(greetings) == 0 {
		greetings = policy.DefaultGreetings
	}
	forbidden := cfg.ForbiddenWords
	if len(forbidden) == 0 {
		forbidden = policy.DefaultForbiddenWords
	}
	matcher := policy.NewMatcher(policy.NewPolicyList(greetings), policy.NewPolicyList(forbidden))

	greeting := handler.NewGreetingHandler(handler.GreetingHandlerConfig{
		Poster:  client,
		Matcher: matcher,
		Logger:  logger,
	})
	forbiddenWord := handler.NewForbiddenWordHandler(handler.ForbiddenWordHandlerConfig{
		Poster:  client,
		Matcher: matcher,
		Logger:  logger,
	})

	// DEBUG 모드에서는 수신 이벤트를 먼저 로그로 남김
	var mentionHandler, messageHandler router.Handler = greeting, forbiddenWord
	if cfg.Debug {
		logHandler := handler.NewLogHandler(logger)
		mentionHandler = handler.NewChain(logHandler, greeting)
		messageHandler = handler.NewChain(logHandler, forbiddenWord)
	}

	return router.NewBuilder().
		WithLogger(logger).
		Register(domain.KindAppMention, mentionHandler).
		Register(domain.KindMessage, messageHandler).
		Register(domain.KindSlashCommand, handler.NewQuestionCommandHandler(handler.QuestionCommandHandlerConfig{
			Command:  cfg.QuestionCommand,
			Opener:   client,
			Profiles: client,
			Logger:   logger,
		})).
		Register(domain.KindViewSubmission, handler.NewSubmissionHandler(handler.SubmissionHandlerConfig{
			Poster:    client,
			Profiles:  client,
			Questions: questions,
			ChannelID: cfg.QuestionChannel,
			Logger:    logger,
		})).
		Build()
}
