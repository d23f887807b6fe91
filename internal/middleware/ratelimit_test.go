package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// okHandler 는 항상 200을 반환한다.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// newTestRateLimiter 는 버스트가 작은 테스트용 리미터를 생성한다.
func newTestRateLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // 리필이 사실상 없도록
		GeneralBurst:    2,
		AuthRate:        rate.Limit(0.001),
		AuthBurst:       1,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)
	return rl
}

// TestGeneralMiddleware_BurstExceeded 는 버스트 초과 시 429 봉투를 검증한다.
func TestGeneralMiddleware_BurstExceeded(t *testing.T) {
	rl := newTestRateLimiter(t)
	handler := rl.GeneralMiddleware()(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/api/clips", nil)
	r.RemoteAddr = "10.0.0.1:12345"

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header must be set")
	}

	var env struct {
		Status    string  `json:"status"`
		ErrorCode *string `json:"errorCode"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.ErrorCode == nil || *env.ErrorCode != "RATE_LIMITED" {
		t.Errorf("errorCode = %v, want RATE_LIMITED", env.ErrorCode)
	}
	if env.Status != "FAIL" {
		t.Errorf("status = %q, want FAIL", env.Status)
	}
}

// TestCallerKey_PerCallerIsolation 은 호출자별 버킷 분리를 검증한다.
// 한 IP의 소진이 다른 IP에 영향을 주면 안 된다.
func TestCallerKey_PerCallerIsolation(t *testing.T) {
	rl := newTestRateLimiter(t)
	handler := rl.AuthMiddleware()(okHandler)

	first := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	first.RemoteAddr = "10.0.0.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("first caller should be limited, status = %d", w.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	second.RemoteAddr = "10.0.0.2:9999"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, second)
	if w.Code != http.StatusOK {
		t.Errorf("second caller status = %d, want 200", w.Code)
	}

	if rl.AuthLimiterCount() != 2 {
		t.Errorf("auth bucket entries = %d, want 2", rl.AuthLimiterCount())
	}
}

// TestCallerKey_AuthenticatedUsesUserID 는 인증된 요청이 IP 대신
// 사용자 ID로 키잉됨을 검증한다.
func TestCallerKey_AuthenticatedUsesUserID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/clips", nil)
	r.RemoteAddr = "10.0.0.1:12345"
	r = r.WithContext(ContextWithUser(r.Context(), "uid-1", "token"))

	if got := callerKey(r); got != "uid-1" {
		t.Errorf("callerKey() = %q, want uid-1", got)
	}

	anon := httptest.NewRequest(http.MethodGet, "/api/clips", nil)
	anon.RemoteAddr = "10.0.0.1:12345"
	if got := callerKey(anon); got != "10.0.0.1" {
		t.Errorf("callerKey() = %q, want 10.0.0.1", got)
	}
}

// TestBuckets_Independent 는 일반 버킷과 인증 버킷이 독립적으로 소진됨을 검증한다.
func TestBuckets_Independent(t *testing.T) {
	rl := newTestRateLimiter(t)
	authHandler := rl.AuthMiddleware()(okHandler)
	generalHandler := rl.GeneralMiddleware()(okHandler)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:12345"

	// 인증 버킷 소진
	w := httptest.NewRecorder()
	authHandler.ServeHTTP(w, r)
	w = httptest.NewRecorder()
	authHandler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("auth bucket should be exhausted, status = %d", w.Code)
	}

	// 일반 버킷은 영향을 받지 않는다
	w = httptest.NewRecorder()
	generalHandler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("general bucket status = %d, want 200", w.Code)
	}
}

// TestCleanup 은 유휴 엔트리가 정리됨을 검증한다.
func TestCleanup(t *testing.T) {
	rl := newTestRateLimiter(t)
	handler := rl.GeneralMiddleware()(okHandler)

	r := httptest.NewRequest(http.MethodGet, "/api/clips", nil)
	r.RemoteAddr = "10.0.0.1:12345"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("entries = %d, want 1", rl.GeneralLimiterCount())
	}

	rl.general.cleanup(0)
	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("entries after cleanup = %d, want 0", rl.GeneralLimiterCount())
	}
}

// rejectCounter 는 RejectRecorder 의 테스트 구현.
type rejectCounter struct {
	count int
}

func (c *rejectCounter) RecordRateLimitReject() { c.count++ }

// TestRejectRecorder 는 거부 시 메트릭 기록기가 호출됨을 검증한다.
func TestRejectRecorder(t *testing.T) {
	rl := newTestRateLimiter(t)
	counter := &rejectCounter{}
	rl.SetRejectRecorder(counter)
	handler := rl.AuthMiddleware()(okHandler)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	r.RemoteAddr = "10.0.0.1:12345"
	handler.ServeHTTP(httptest.NewRecorder(), r)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if counter.count != 1 {
		t.Errorf("reject count = %d, want 1", counter.count)
	}
}
