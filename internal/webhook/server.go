package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// 서버 타임아웃 기본값
const (
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// ServerConfig는 웹훅 서버 설정입니다.
type ServerConfig struct {
	Port         int           // 수신 포트
	ReadTimeout  time.Duration // 0이면 기본값
	WriteTimeout time.Duration // 0이면 기본값
}

// Server는 Slack 웹훅을 수신하는 HTTP 서버입니다.
type Server struct {
	config     ServerConfig
	handler    *Handler
	httpServer *http.Server
	logger     *log.Logger
}

// NewServer는 새 웹훅 서버를 생성합니다.
func NewServer(config ServerConfig, handler *Handler) *Server {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = DefaultReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}

	return &Server{
		config:  config,
		handler: handler,
	}
}

// SetLogger는 로거를 설정합니다.
func (s *Server) SetLogger(logger *log.Logger) {
	s.logger = logger
	s.handler.SetLogger(logger)
}

// Routes는 엔드포인트가 등록된 라우터를 반환합니다.
// 고정 경로를 /{command}보다 먼저 등록합니다.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/", s.healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/", s.handler.HandleEvents).Methods(http.MethodPost)
	router.HandleFunc("/slack/events", s.handler.HandleEvents).Methods(http.MethodPost)
	router.HandleFunc("/submission", s.handler.HandleSubmission).Methods(http.MethodPost)
	router.HandleFunc("/{command}", s.handler.HandleCommand).Methods(http.MethodPost)
	return router
}

// Start는 서버를 시작합니다. 컨텍스트가 취소되면 정상 종료 후 반환합니다.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	if s.logger != nil {
		s.logger.Printf("[Webhook Server] 시작: %s", addr)
	}

	// 컨텍스트 취소 시 서버 종료
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		if err := s.Shutdown(context.Background()); err != nil && s.logger != nil {
			s.logger.Printf("[Webhook Server ERROR] 종료 실패: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("서버 시작 실패: %w", err)
	}

	if ctx.Err() != nil {
		<-stopped
	}
	return nil
}

// Shutdown는 새 요청 수신을 멈추고 진행 중인 비동기 디스패치를 기다립니다.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	if s.logger != nil {
		s.logger.Println("[Webhook Server] 종료 중...")
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.handler.Drain()
	return err
}

// healthHandler는 헬스체크 엔드포인트입니다.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
