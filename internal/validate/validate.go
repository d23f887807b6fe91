// Package validate 는 입력값 검증 규칙을 제공한다.
// 모든 함수는 I/O 없는 순수 함수이며, 정규화된 값을 반환하거나
// model.APIError(VALIDATION_ERROR, 400)를 반환한다.
package validate

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/clip-in/clip-server/internal/model"
)

// 패키지 초기화 시 1회만 컴파일한다.
var (
	// userIDPattern 은 영문자, 숫자, 언더스코어만 허용한다.
	userIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	// nicknamePattern 은 한글 음절, 영문, 숫자만 허용한다.
	nicknamePattern = regexp.MustCompile(`^[가-힣a-zA-Z0-9]+$`)
)

// UserID 는 사용자 ID를 검증하고 공백이 제거된 값을 반환한다.
// 규칙: 필수, 공백 제거 후 4~20자, [A-Za-z0-9_]만 허용.
func UserID(userID string) (string, error) {
	if userID == "" {
		return "", model.NewValidationError("사용자 ID는 필수입니다.")
	}

	trimmed := strings.TrimSpace(userID)
	if len(trimmed) < 4 {
		return "", model.NewValidationError("사용자 ID는 4자 이상이어야 합니다.")
	}
	if len(trimmed) > 20 {
		return "", model.NewValidationError("사용자 ID는 20자 이하여야 합니다.")
	}
	if !userIDPattern.MatchString(trimmed) {
		return "", model.NewValidationError("사용자 ID는 영문자, 숫자, 언더스코어만 사용할 수 있습니다.")
	}

	return trimmed, nil
}

// Nickname 은 닉네임을 검증하고 공백이 제거된 값을 반환한다.
// 규칙: 필수, 공백 제거 후 2~10자, 한글 음절·영문·숫자만 허용.
// 길이는 바이트가 아닌 문자(룬) 단위로 센다.
func Nickname(nickname string) (string, error) {
	if nickname == "" {
		return "", model.NewValidationError("닉네임은 필수입니다.")
	}

	trimmed := strings.TrimSpace(nickname)
	length := len([]rune(trimmed))
	if length < 2 {
		return "", model.NewValidationError("닉네임은 최소 2자 이상이어야 합니다.")
	}
	if length > 10 {
		return "", model.NewValidationError("닉네임은 최대 10자 이하여야 합니다.")
	}
	if !nicknamePattern.MatchString(trimmed) {
		return "", model.NewValidationError("닉네임은 한글, 영문, 숫자만 사용할 수 있습니다.")
	}

	return trimmed, nil
}

// ClipID 는 클립 ID 문자열을 양의 정수로 검증한다.
// 파싱된 정수의 문자열 표현이 입력과 정확히 일치해야 하므로
// "1.5", "01", "+1", "abc" 같은 입력은 모두 거부된다.
func ClipID(clipID string) (int64, error) {
	if clipID == "" {
		return 0, model.NewValidationError("클립 ID는 필수입니다.")
	}

	id, err := strconv.ParseInt(clipID, 10, 64)
	if err != nil || id <= 0 || strconv.FormatInt(id, 10) != clipID {
		return 0, model.NewValidationError("올바른 클립 ID 형식이 아닙니다.")
	}

	return id, nil
}

// ClipURL 은 클립 URL을 검증하고 공백이 제거된 값을 반환한다.
// 절대 URL로 파싱 가능해야 한다.
func ClipURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", model.NewValidationError("클립 URL은 필수입니다.")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", model.NewValidationError("올바른 URL 형식이 아닙니다.")
	}

	return trimmed, nil
}

// Required 는 공백 제거 후 비어 있지 않은 값인지 검증한다.
// message 는 비어 있을 때 반환할 검증 에러 메시지.
func Required(value, message string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", model.NewValidationError(message)
	}
	return trimmed, nil
}
