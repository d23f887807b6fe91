// Package metrics 는 Prometheus 메트릭 수집과 공개를 제공한다.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 는 HTTP 응답과 업스트림(관리형 백엔드) 호출 메트릭을 수집한다.
// supabase.Client 와 HTTP 미들웨어가 기록 주체다.
type Collector struct {
	httpStatus       *prometheus.CounterVec
	httpLatency      prometheus.Histogram
	upstreamCalls    *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
	rateLimitRejects prometheus.Counter
}

// NewCollector 는 새 Collector 를 생성하고 지정된 레지스트리에 메트릭을 등록한다.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_http_status_total",
			Help: "HTTP 상태 코드별 응답 수",
		}, []string{"status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clip_http_request_duration_seconds",
			Help:    "HTTP 요청 처리 시간(초)",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_upstream_calls_total",
			Help: "백엔드 경로·상태 코드별 업스트림 호출 수",
		}, []string{"endpoint", "status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clip_upstream_call_duration_seconds",
			Help:    "업스트림 호출 지연 시간(초)",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimitRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clip_rate_limit_rejects_total",
			Help: "레이트 제한으로 거부된 요청 수",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.httpLatency,
		c.upstreamCalls,
		c.upstreamLatency,
		c.rateLimitRejects,
	)

	return c
}

// RecordHTTPStatus 는 응답 상태 코드를 기록한다.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPLatency 는 요청 처리 시간을 기록한다.
func (c *Collector) RecordHTTPLatency(duration time.Duration) {
	c.httpLatency.Observe(duration.Seconds())
}

// RecordUpstreamCall 은 업스트림 호출의 경로와 상태 코드를 기록한다.
// 전송 실패는 상태 코드 0으로 기록된다.
func (c *Collector) RecordUpstreamCall(endpoint string, statusCode int) {
	c.upstreamCalls.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamLatency 는 업스트림 호출 지연을 기록한다.
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordRateLimitReject 는 레이트 제한 거부를 기록한다.
func (c *Collector) RecordRateLimitReject() {
	c.rateLimitRejects.Inc()
}

// Handler 는 Prometheus 스크레이프용 HTTP 핸들러를 반환한다.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NewHTTPMetricsMiddleware 는 응답 상태와 지연을 기록하는 미들웨어를 반환한다.
func NewHTTPMetricsMiddleware(c *Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			c.RecordHTTPStatus(rec.statusCode)
			c.RecordHTTPLatency(time.Since(start))
		})
	}
}

// statusRecorder 는 상태 코드 기록용 ResponseWriter 래퍼.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}
