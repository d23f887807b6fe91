package handler

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clip-in/clip-server/internal/metrics"
	"github.com/clip-in/clip-server/internal/middleware"
)

// RouterDeps 는 NewRouter 에 필요한 의존성을 모은 구조체.
type RouterDeps struct {
	// 미들웨어 의존
	Verifier          middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 메트릭
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	// 서비스
	AuthService AuthServiceInterface
	ClipService ClipServiceInterface
}

// authExclusions 는 조건부 인증 게이트의 정적 제외 목록.
// 기동 시 1회 컴파일되는 (매처, 인증 면제) 쌍으로, 인증 엔드포인트 자신과
// 인증이 선택인 클립 상세 GET 을 필수 인증에서 면제한다.
// 클립 상세는 형식이 틀린 ID도 인증보다 먼저 400으로 걸러져야 하므로
// 숫자 패턴이 아닌 단일 세그먼트 전체를 면제 대상으로 잡는다.
var authExclusions = []middleware.AuthExclusion{
	{Prefix: "/api/auth"},
	{Method: http.MethodGet, Pattern: regexp.MustCompile(`^/api/clips/[^/]+$`)},
}

// NewRouter 는 전체 API 엔드포인트의 라우팅과 미들웨어 체인을 구성한 chi.Router 를 반환한다.
//
// 미들웨어 스택 실행 순서:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Logging → HTTPMetrics
//	→ (api 하위) ConditionalAuth → RateLimit
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		r.Use(metrics.NewHTTPMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	clipHandler := NewClipHandler(deps.ClipService)

	// 운영용 루트
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("CLIP API 서버입니다."))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewConditionalAuthMiddleware(deps.Verifier, authExclusions))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 인증 (게이트 면제, 전용 레이트 제한 추가)
		r.Route("/auth", func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())

			r.Post("/login", authHandler.Login)
			r.Post("/signup", authHandler.Signup)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/check/duplicateId/{userId}", authHandler.CheckUserID)
			r.Post("/check/duplicateNickname/{nickname}", authHandler.CheckNickname)
		})

		// 클립
		r.Route("/clips", func(r chi.Router) {
			r.Get("/", clipHandler.GetAll)
			r.Post("/", clipHandler.Create)

			// 상세 조회만 선택적 인증: 토큰 부재는 허용, 무효 토큰은 401.
			r.With(middleware.NewOptionalAuthMiddleware(deps.Verifier)).
				Get("/{clipId}", clipHandler.GetByID)
			r.Delete("/{clipId}", clipHandler.Delete)
		})
	})

	return r
}
