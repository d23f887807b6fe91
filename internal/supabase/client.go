// Package supabase 는 외부 관리형 백엔드(Supabase)의 HTTP 클라이언트를 제공한다.
// GoTrue 인증 API(/auth/v1)와 PostgREST 행 저장소 API(/rest/v1) 호출을 포함한다.
// 전역 싱글턴 대신 명시적으로 주입되는 클라이언트로, 테스트에서는
// httptest 서버를 가리키는 인스턴스로 대체한다.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// defaultTimeout 은 업스트림 호출의 기본 제한 시간.
// 백엔드 호출이 멈춰도 요청이 무한정 매달리지 않도록 한다.
const defaultTimeout = 10 * time.Second

// UpstreamMetrics 는 업스트림 호출 메트릭 수집의 인터페이스.
// metrics.Collector 의 부분집합으로 정의한다.
type UpstreamMetrics interface {
	RecordUpstreamCall(endpoint string, statusCode int)
	RecordUpstreamLatency(duration time.Duration)
}

// Config 는 클라이언트 생성에 필요한 설정.
type Config struct {
	BaseURL    string        // 예: https://xyzcompany.supabase.co
	ServiceKey string        // service_role 키 (서버 전용)
	AnonKey    string        // anon 키 (사용자 토큰 스코프 요청용)
	Timeout    time.Duration // 0이면 defaultTimeout 사용
}

// Client 는 Supabase REST API 클라이언트.
// 호출자 토큰이 주어지면 anon 키 + 사용자 토큰으로(RLS 적용),
// 없으면 service_role 키로 요청한다.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	anonKey    string
	logger     *slog.Logger
	metrics    UpstreamMetrics // nil 허용
}

// NewClient 는 Client 의 새 인스턴스를 생성한다.
// metrics 는 nil을 허용한다(수집 생략).
func NewClient(cfg Config, logger *slog.Logger, metrics UpstreamMetrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		anonKey:    cfg.AnonKey,
		logger:     logger,
		metrics:    metrics,
	}
}

// doJSON 은 업스트림에 JSON 요청을 보내고 응답을 out에 디코딩한다.
// token이 비어 있으면 service_role 키로, 있으면 anon 키 + 사용자 토큰으로 요청한다.
// 4xx/5xx 응답은 *RequestError 로 변환된다.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, token string, headers map[string]string, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("요청 본문 인코딩에 실패했습니다: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("HTTP 요청 생성에 실패했습니다: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("apikey", c.anonKey)
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("apikey", c.serviceKey)
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.RecordUpstreamLatency(time.Since(start))
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamCall(path, 0)
		}
		c.logger.Error("업스트림 호출에 실패했습니다",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("업스트림 호출에 실패했습니다: %w", err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.RecordUpstreamCall(path, resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("응답 본문 읽기에 실패했습니다: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		reqErr := parseRequestError(resp.StatusCode, respBody)
		if resp.StatusCode >= http.StatusInternalServerError {
			c.logger.Error("업스트림이 서버 오류를 반환했습니다",
				slog.String("path", path),
				slog.Int("http_status", resp.StatusCode),
				slog.String("upstream_code", reqErr.Code),
			)
		}
		return reqErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("응답 디코딩에 실패했습니다: %w", err)
		}
	}

	return nil
}
