// Package middleware 는 HTTP 미들웨어를 제공한다.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/response"
	"github.com/clip-in/clip-server/internal/supabase"
)

// contextKey 는 컨텍스트에 값을 저장하기 위한 타입 안전한 키.
type contextKey string

var (
	userIDContextKey      = contextKey("user_id")
	accessTokenContextKey = contextKey("access_token")
	requestIDContextKey   = contextKey("request_id")
)

// TokenVerifier 는 액세스 토큰을 외부 백엔드로 검증하는 인터페이스.
// supabase.Client 의 부분집합으로 정의한다.
type TokenVerifier interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.AuthUser, error)
}

// bearerPattern 은 Authorization 헤더의 Bearer 스킴을 추출한다.
// 스킴은 대소문자를 구분하지 않으며 뒤의 공백은 임의 길이를 허용한다.
var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// extractBearerToken 은 Authorization 헤더에서 토큰을 추출한다. 없으면 빈 문자열.
func extractBearerToken(r *http.Request) string {
	match := bearerPattern.FindStringSubmatch(r.Header.Get("Authorization"))
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// authenticate 는 토큰을 검증하고 사용자 ID와 토큰을 컨텍스트에 주입한다.
func authenticate(verifier TokenVerifier, r *http.Request, token string) (*http.Request, error) {
	user, err := verifier.GetUser(r.Context(), token)
	if err != nil || user == nil {
		return nil, model.NewUnauthorizedError("유효하지 않거나 만료된 토큰입니다.")
	}

	ctx := context.WithValue(r.Context(), userIDContextKey, user.ID)
	ctx = context.WithValue(ctx, accessTokenContextKey, token)
	return r.WithContext(ctx), nil
}

// NewRequiredAuthMiddleware 는 Bearer 토큰을 필수로 검증하는 미들웨어를 반환한다.
// 토큰 부재·무효는 401로 끝나고, 유효하면 사용자 식별 정보를 컨텍스트에 주입한다.
func NewRequiredAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				response.WriteAPIError(w, model.NewUnauthorizedError("토큰이 제공되지 않았습니다."))
				return
			}

			authed, err := authenticate(verifier, r, token)
			if err != nil {
				response.WriteAPIError(w, model.NewUnauthorizedError("유효하지 않거나 만료된 토큰입니다."))
				return
			}

			next.ServeHTTP(w, authed)
		})
	}
}

// NewOptionalAuthMiddleware 는 토큰이 없으면 익명으로 통과시키는 미들웨어를 반환한다.
// 용인되는 것은 토큰의 부재뿐이며, 제시된 토큰이 무효하면 401로 끝난다.
func NewOptionalAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			authed, err := authenticate(verifier, r, token)
			if err != nil {
				response.WriteAPIError(w, model.NewUnauthorizedError("유효하지 않거나 만료된 토큰입니다."))
				return
			}

			next.ServeHTTP(w, authed)
		})
	}
}

// AuthExclusion 은 인증 제외 경로의 정적 매처.
// Method 가 비어 있으면 모든 메서드에 적용된다.
// Prefix 와 Pattern 중 설정된 쪽으로 일치 여부를 판정한다.
type AuthExclusion struct {
	Method  string
	Prefix  string
	Pattern *regexp.Regexp
}

// matches 는 요청이 이 제외 규칙에 해당하는지 판정한다.
func (e AuthExclusion) matches(r *http.Request) bool {
	if e.Method != "" && e.Method != r.Method {
		return false
	}
	if e.Prefix != "" {
		return strings.HasPrefix(r.URL.Path, e.Prefix)
	}
	if e.Pattern != nil {
		return e.Pattern.MatchString(r.URL.Path)
	}
	return false
}

// NewConditionalAuthMiddleware 는 필수 인증을 감싸되, 기동 시 구성된
// 제외 목록에 일치하는 요청은 인증 없이 통과시키는 미들웨어를 반환한다.
// 인증 엔드포인트 자신을 인증에서 면제하는 데 사용한다.
func NewConditionalAuthMiddleware(verifier TokenVerifier, exclusions []AuthExclusion) func(next http.Handler) http.Handler {
	required := NewRequiredAuthMiddleware(verifier)

	return func(next http.Handler) http.Handler {
		guarded := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, exclusion := range exclusions {
				if exclusion.matches(r) {
					next.ServeHTTP(w, r)
					return
				}
			}
			guarded.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext 는 컨텍스트에서 인증된 사용자 ID를 꺼낸다.
// 인증 게이트를 통과한 요청에서만 유효하다.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("인증된 사용자 정보가 없습니다")
	}
	return userID, nil
}

// AccessTokenFromContext 는 컨텍스트에서 검증된 액세스 토큰을 꺼낸다.
// 인증이 선택인 경로에서는 빈 문자열일 수 있다.
func AccessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenContextKey).(string)
	return token
}

// ContextWithUser 는 컨텍스트에 사용자 ID와 토큰을 주입한다.
// 테스트에서 인증 게이트 통과 상태를 재현할 때 사용한다.
func ContextWithUser(ctx context.Context, userID, accessToken string) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, accessTokenContextKey, accessToken)
}
