package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/zime/janushbot/internal/analysis"
	"github.com/zime/janushbot/internal/cli"
	"github.com/zime/janushbot/internal/config"
	"github.com/zime/janushbot/internal/logging"
	"github.com/zime/janushbot/internal/store"
)

const appName = "QuestionStats"

func main() {
	info := cli.AppInfo{
		Name:        appName,
		Description: "질문 로그에서 자주 나오는 단어 집계",
		Version:     cli.GetVersion(),
		ConfigFile:  config.ConfigFileName,
		Usage: `  STATS_TOP_N=10                 출력할 단어 수
  STATS_EXCLUDE_WORDS=a,b        추가 제외 단어`,
	}
	if cli.ParseArgs(info, os.Args[1:]) {
		return
	}

	exeDir, err := config.GetExecutableDir()
	if err != nil {
		exeDir = "."
	}

	configPath := filepath.Join(exeDir, config.ConfigFileName)
	envErr := config.LoadEnvFile(configPath)
	cfg, cfgErr := config.LoadStats(exeDir)

	logger, closeLog := logging.New(logging.Config{
		AppName: appName,
		Dir:     exeDir,
		ToFile:  cfg != nil && cfg.LogToFile,
	})
	defer closeLog()

	if envErr != nil {
		logger.Printf("[WARN] ⚠️ %s 로드 실패: %v\n", config.ConfigFileName, envErr)
	}
	if cfgErr != nil {
		logger.Fatalf("[ERROR] ❌ 설정 오류: %v", cfgErr)
	}

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		logger.Printf("[ERROR] ❌ 집계 실패: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}

// run은 질문 로그를 읽어 상위 단어를 out에 출력합니다.
func run(ctx context.Context, cfg *config.StatsConfig, out io.Writer) error {
	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("DB 열기 실패: %w", err)
	}
	defer db.Close()

	questions, err := store.NewQuestionLog(db).ListQuestions(ctx)
	if err != nil {
		return err
	}

	texts := make([]string, 0, len(questions))
	for _, q := range questions {
		texts = append(texts, q.Question)
	}

	analyzer := analysis.NewAnalyzer(slices.Concat(analysis.DefaultExcludeWords, cfg.ExcludeWords))
	printTopWords(out, len(texts), analyzer.TopWords(texts, cfg.TopN))
	return nil
}

// printTopWords는 "단어: 횟수" 형식으로 출력합니다.
func printTopWords(out io.Writer, total int, words []analysis.WordCount) {
	fmt.Fprintf(out, "Questions analysed: %d\n", total)
	fmt.Fprintln(out, "Most common phrases:")
	for _, wc := range words {
		fmt.Fprintf(out, "%s: %d\n", wc.Word, wc.Count)
	}
}
