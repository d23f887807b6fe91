package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/response"
)

// RateLimiterConfig 는 레이트 제한 설정을 보유한다.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API 전반의 레이트(req/sec). 120/60 = 2 req/sec
	GeneralBurst    int           // API 전반의 버스트 크기
	AuthRate        rate.Limit    // 인증 엔드포인트의 레이트(req/sec). 10/60
	AuthBurst       int           // 인증 엔드포인트의 버스트 크기
	CleanupInterval time.Duration // 만료 엔트리 정리 주기
}

// DefaultRateLimiterConfig 는 기본 레이트 제한 설정을 반환한다.
// API 전반 120 req/min, 인증(로그인·회원가입·갱신) 10 req/min — 호출자 단위.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		AuthRate:        rate.Limit(10.0 / 60.0),
		AuthBurst:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// callerLimiter 는 호출자별 리미터와 마지막 접근 시각을 보유한다.
type callerLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterBucket 은 하나의 제한 종류에 대한 호출자별 리미터 집합.
type limiterBucket struct {
	mu       sync.RWMutex
	limiters map[string]*callerLimiter
	rateVal  rate.Limit
	burst    int
}

// RejectRecorder 는 레이트 제한 거부 횟수를 기록한다.
type RejectRecorder interface {
	RecordRateLimitReject()
}

// RateLimiter 는 호출자별 레이트 제한을 관리한다.
// 인증된 요청은 사용자 ID, 비인증 요청은 원격 IP를 호출자 키로 쓴다.
type RateLimiter struct {
	config   RateLimiterConfig
	general  *limiterBucket
	auth     *limiterBucket
	recorder RejectRecorder
	stopCh   chan struct{}
}

// SetRejectRecorder 는 거부 메트릭 기록기를 설정한다. nil 이면 기록하지 않는다.
func (rl *RateLimiter) SetRejectRecorder(rec RejectRecorder) {
	rl.recorder = rec
}

// NewRateLimiter 는 새 RateLimiter 를 생성하고
// 백그라운드에서 만료 엔트리 정리를 시작한다.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config: config,
		general: &limiterBucket{
			limiters: make(map[string]*callerLimiter),
			rateVal:  config.GeneralRate,
			burst:    config.GeneralBurst,
		},
		auth: &limiterBucket{
			limiters: make(map[string]*callerLimiter),
			rateVal:  config.AuthRate,
			burst:    config.AuthBurst,
		},
		stopCh: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop 은 정리 백그라운드 고루틴을 중지한다.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// callerKey 는 레이트 제한 키를 결정한다.
// 인증 게이트 이후에는 사용자 ID, 이전에는 원격 IP가 된다.
func callerKey(r *http.Request) string {
	if userID, err := UserIDFromContext(r.Context()); err == nil {
		return userID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GeneralMiddleware 는 API 전반의 레이트 제한 미들웨어를 반환한다.
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.general, "general")
}

// AuthMiddleware 는 인증 엔드포인트 전용의 더 엄격한 레이트 제한 미들웨어를 반환한다.
// API 전반의 제한과는 독립적으로 동작한다.
func (rl *RateLimiter) AuthMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.auth, "auth")
}

func (rl *RateLimiter) middleware(bucket *limiterBucket, limitType string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := callerKey(r)
			limiter := bucket.getOrCreate(key)

			if !limiter.Allow() {
				if rl.recorder != nil {
					rl.recorder.RecordRateLimitReject()
				}
				writeRateLimitResponse(w, bucket.rateVal)
				slog.Warn("rate limit exceeded",
					slog.String("caller", key),
					slog.String("limit_type", limitType),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Count 는 현재 관리 중인 리미터 엔트리 수를 반환한다. 테스트용.
func (b *limiterBucket) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.limiters)
}

// GeneralLimiterCount 는 API 전반 버킷의 엔트리 수를 반환한다.
func (rl *RateLimiter) GeneralLimiterCount() int { return rl.general.Count() }

// AuthLimiterCount 는 인증 버킷의 엔트리 수를 반환한다.
func (rl *RateLimiter) AuthLimiterCount() int { return rl.auth.Count() }

// getOrCreate 는 호출자의 리미터를 가져오거나 생성한다.
func (b *limiterBucket) getOrCreate(key string) *rate.Limiter {
	b.mu.RLock()
	cl, exists := b.limiters[key]
	b.mu.RUnlock()

	if exists {
		b.mu.Lock()
		cl.lastAccess = time.Now()
		b.mu.Unlock()
		return cl.limiter
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// 더블 체크
	if cl, exists := b.limiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(b.rateVal, b.burst)
	b.limiters[key] = &callerLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanup 은 idleTimeout 동안 접근이 없던 엔트리를 제거한다.
func (b *limiterBucket) cleanup(idleTimeout time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, cl := range b.limiters {
		if time.Since(cl.lastAccess) > idleTimeout {
			delete(b.limiters, key)
		}
	}
}

// cleanupLoop 는 주기적으로 만료 엔트리를 정리한다.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.general.cleanup(rl.config.CleanupInterval * 2)
			rl.auth.cleanup(rl.config.CleanupInterval * 2)
		case <-rl.stopCh:
			return
		}
	}
}

// writeRateLimitResponse 는 429 봉투를 Retry-After 헤더와 함께 쓴다.
func writeRateLimitResponse(w http.ResponseWriter, limit rate.Limit) {
	retryAfter := 1
	if limit > 0 {
		retryAfter = int(math.Ceil(1.0 / float64(limit)))
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

	apiErr := &model.APIError{
		Code:    "RATE_LIMITED",
		Message: "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.",
		Status:  http.StatusTooManyRequests,
	}
	response.WriteAPIError(w, apiErr)
}
