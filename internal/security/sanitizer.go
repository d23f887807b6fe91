// Package security 는 애플리케이션의 보안 기능을 제공한다.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer 는 사용자 입력 텍스트에서 HTML을 제거한다.
// 클립 메모는 프론트엔드에서 그대로 렌더링될 수 있으므로
// 저장 전에 태그와 이벤트 속성을 모두 걷어낸다.
// 허용 목록이 비어 있는 엄격한 정책을 사용하며, 제거 후 남은
// 엔티티는 되돌려 평문을 보존한다. 같은 입력에는 항상 같은 출력을 낸다.
type ContentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer 는 ContentSanitizer 의 새 인스턴스를 생성한다.
func NewContentSanitizer() *ContentSanitizer {
	return &ContentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize 는 HTML 태그를 모두 제거한 평문을 반환한다.
// 빈 문자열 입력에는 빈 문자열을 반환한다.
func (s *ContentSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := s.policy.Sanitize(raw)
	// bluemonday 는 남은 텍스트를 엔티티로 이스케이프하므로
	// 평문 보존을 위해 되돌린다.
	return strings.TrimSpace(html.UnescapeString(stripped))
}
