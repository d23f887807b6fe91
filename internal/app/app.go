package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/clip-in/clip-server/internal/auth"
	"github.com/clip-in/clip-server/internal/clip"
	"github.com/clip-in/clip-server/internal/config"
	"github.com/clip-in/clip-server/internal/database"
	"github.com/clip-in/clip-server/internal/handler"
	"github.com/clip-in/clip-server/internal/logger"
	"github.com/clip-in/clip-server/internal/metrics"
	"github.com/clip-in/clip-server/internal/middleware"
	"github.com/clip-in/clip-server/internal/repository"
	"github.com/clip-in/clip-server/internal/security"
	"github.com/clip-in/clip-server/internal/supabase"
)

// Init 은 애플리케이션 초기화를 수행한다.
// JSON 구조화 로그를 설정한 뒤 환경 변수에서 Config 를 읽어 들인다.
// writer 가 지정되면 로그 출력 대상으로 그 writer 를 사용한다.
func Init(w io.Writer) (*config.Config, error) {
	// 1. 로그 초기화 (설정 읽기 전에도 로그를 쓸 수 있도록)
	logger.SetupDefault(w)

	// 2. 환경 변수에서 설정 읽기
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run 은 애플리케이션의 메인 엔트리 포인트.
// 커맨드라인 인자에서 서브커맨드를 해석해 해당 모드로 기동한다.
// args 에는 os.Args[1:] 을 넘긴다.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck 는 경량 서브커맨드이므로 풀 초기화를 건너뛴다
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe 는 API 서버 모드로 기동한다.
// Supabase 클라이언트와 전체 의존성을 와이어링하고 HTTP 서버를 띄운다.
// SIGINT 또는 SIGTERM 수신 시 그레이스풀 셧다운한다.
func runServe(cfg *config.Config) error {
	// 1. 메트릭 레지스트리
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 2. 관리형 백엔드 클라이언트
	sbClient := supabase.NewClient(supabase.Config{
		BaseURL:    cfg.SupabaseURL,
		ServiceKey: cfg.SupabaseServiceKey,
		AnonKey:    cfg.SupabaseAnonKey,
		Timeout:    cfg.UpstreamTimeout,
	}, slog.Default(), collector)

	// 3. 리포지토리 초기화
	profileRepo := repository.NewSupabaseProfileRepo(sbClient)
	tagRepo := repository.NewSupabaseTagRepo(sbClient)
	clipRepo := repository.NewSupabaseClipRepo(sbClient)

	// 4. 도메인 서비스 초기화
	sanitizer := security.NewContentSanitizer()
	authService := auth.NewService(sbClient, profileRepo)
	clipService := clip.NewService(tagRepo, clipRepo, sanitizer)

	// 5. 레이트 리미터 (config 의 req/min 을 req/sec 으로 변환)
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.AuthRate = rate.Limit(float64(cfg.RateLimitAuth) / 60.0)
	rateLimiterCfg.AuthBurst = cfg.RateLimitAuth
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	rateLimiter.SetRejectRecorder(collector)
	defer rateLimiter.Stop()

	// 6. 라우터 구축
	deps := &handler.RouterDeps{
		Verifier:          sbClient,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		Metrics:  collector,
		Gatherer: registry,

		AuthService: authService,
		ClipService: clipService,
	}

	router := handler.NewRouter(deps)

	// 7. HTTP 서버 기동
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 그레이스풀 셧다운을 위한 시그널 핸들링
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate 는 데이터베이스 마이그레이션을 실행한다.
// 관리형 백엔드의 직결 Postgres 연결에 미적용 마이그레이션을 순서대로 적용한다.
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	// 연결 확인을 먼저 수행해 접속 오류와 마이그레이션 오류를 구분한다
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck 는 헬스체크를 실행한다.
// distroless 환경의 Docker 헬스체크용 서브커맨드.
// /healthz 엔드포인트에 HTTP 요청을 보내 결과를 반환한다.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL 은 데이터베이스 URL 의 인증 정보를 마스킹한다.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
