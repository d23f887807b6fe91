package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/clip-in/clip-server/internal/response"
)

// NewRecoveryMiddleware 는 panic 발생 시 프로세스 크래시를 막고
// 고정 메시지의 500 봉투를 반환하는 미들웨어를 생성한다.
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					response.WriteInternalError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
