package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDHeader 는 요청 식별자를 전달하는 헤더.
const requestIDHeader = "X-Request-Id"

// NewRequestIDMiddleware 는 요청마다 식별자를 부여하는 미들웨어를 반환한다.
// 클라이언트가 보낸 식별자가 있으면 그대로 쓰고, 없으면 새로 생성한다.
// 식별자는 응답 헤더와 요청 컨텍스트에 모두 실린다.
func NewRequestIDMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			w.Header().Set(requestIDHeader, requestID)
			ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext 는 컨텍스트에서 요청 식별자를 꺼낸다. 없으면 빈 문자열.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
