// Package response 는 모든 엔드포인트가 공유하는 응답 봉투를 제공한다.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/clip-in/clip-server/internal/model"
)

// 봉투 status 값. 2xx는 SUCCESS, 4xx 도메인 에러는 FAIL, 5xx는 ERROR.
const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
	StatusError   = "ERROR"
)

// Envelope 는 고정된 응답 형태.
type Envelope struct {
	Data           any     `json:"data"`
	Status         string  `json:"status"`
	ServerDateTime string  `json:"serverDateTime"`
	ErrorCode      *string `json:"errorCode"`
	ErrorMessage   *string `json:"errorMessage"`
}

// now 는 테스트에서 시각을 고정하기 위해 교체 가능하다.
var now = time.Now

// serverDateTime 은 봉투의 서버 시각(UTC, ISO8601)을 생성한다.
func serverDateTime() string {
	return now().UTC().Format(time.RFC3339)
}

// Success 는 성공 봉투를 생성한다.
func Success(data any) Envelope {
	return Envelope{
		Data:           data,
		Status:         StatusSuccess,
		ServerDateTime: serverDateTime(),
	}
}

// Error 는 에러 봉투를 생성한다. 4xx는 FAIL, 5xx는 ERROR로 분류한다.
func Error(code, message string, httpStatus int) Envelope {
	status := StatusFail
	if httpStatus >= http.StatusInternalServerError {
		status = StatusError
	}
	return Envelope{
		Status:         status,
		ServerDateTime: serverDateTime(),
		ErrorCode:      &code,
		ErrorMessage:   &message,
	}
}

// Write 는 봉투를 JSON으로 직렬화해 응답에 쓴다.
func Write(w http.ResponseWriter, httpStatus int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		// 헤더가 이미 전송된 뒤이므로 로그만 남긴다.
		slog.Error("응답 인코딩에 실패했습니다", slog.String("error", err.Error()))
	}
}

// WriteSuccess 는 성공 봉투를 쓴다.
func WriteSuccess(w http.ResponseWriter, httpStatus int, data any) {
	Write(w, httpStatus, Success(data))
}

// WriteAPIError 는 도메인 에러를 봉투로 변환해 쓴다.
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	Write(w, apiErr.Status, Error(apiErr.Code, apiErr.Message, apiErr.Status))
}

// WriteInternalError 는 일반화된 500 봉투를 쓴다.
// 상세는 호출자가 로그로만 남기고 사용자에게는 고정 메시지를 반환한다.
func WriteInternalError(w http.ResponseWriter) {
	WriteAPIError(w, model.NewInternalError("서버에서 알 수 없는 오류가 발생했습니다."))
}
