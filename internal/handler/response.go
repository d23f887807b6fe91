// Package handler 는 HTTP 요청 핸들러와 라우팅을 제공한다.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/response"
)

// writeSuccess 는 성공 봉투를 쓴다.
func writeSuccess(w http.ResponseWriter, httpStatus int, data any) {
	response.WriteSuccess(w, httpStatus, data)
}

// writeServiceError 는 서비스 계층에서 올라온 에러를 봉투로 변환한다.
// 도메인 에러(APIError)는 보유한 상태 코드 그대로 통과시키고,
// 그 외의 에러는 상세를 로그에만 남기고 일반화된 500으로 강등한다.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		response.WriteAPIError(w, apiErr)
		return
	}

	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	response.WriteInternalError(w)
}

// writeUnauthorized 는 인증 필요 응답을 쓴다.
func writeUnauthorized(w http.ResponseWriter) {
	response.WriteAPIError(w, model.NewUnauthorizedError("인증이 필요합니다."))
}

// writeBadRequest 는 요청 본문 해석 실패 응답을 쓴다.
func writeBadRequest(w http.ResponseWriter) {
	response.WriteAPIError(w, model.NewValidationError("요청 본문이 올바르지 않습니다."))
}
