package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
)

// 업스트림이 반환하는 에러 코드.
// 23505/23503은 PostgreSQL 제약 위반, PGRST116은 PostgREST의 "행 없음".
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNoRows              = "PGRST116"
)

// RequestError 는 업스트림의 4xx/5xx 응답을 표현한다.
type RequestError struct {
	StatusCode int    // 업스트림 HTTP 상태 코드
	Code       string // 업스트림 에러 코드 (없으면 빈 문자열)
	Message    string // 업스트림 에러 메시지
}

// Error 는 error 인터페이스를 구현한다.
func (e *RequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream %d [%s]: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
}

// upstreamErrorBody 는 GoTrue/PostgREST 에러 응답의 합집합.
// GoTrue는 {"msg": ...} 또는 {"error_description": ...},
// PostgREST는 {"code": "...", "message": ...} 형태를 사용한다.
type upstreamErrorBody struct {
	Code             json.RawMessage `json:"code"` // 문자열 또는 숫자
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	ErrorField       string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

// parseRequestError 는 업스트림 에러 응답 본문을 RequestError 로 변환한다.
// 본문이 JSON이 아니어도 상태 코드는 보존한다.
func parseRequestError(statusCode int, body []byte) *RequestError {
	reqErr := &RequestError{StatusCode: statusCode}

	var parsed upstreamErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		reqErr.Message = string(body)
		return reqErr
	}

	// code 필드는 PostgREST에서 문자열("23505"), GoTrue 구버전에서 숫자(400)로 온다.
	var codeStr string
	if len(parsed.Code) > 0 && json.Unmarshal(parsed.Code, &codeStr) == nil {
		reqErr.Code = codeStr
	}
	if reqErr.Code == "" {
		reqErr.Code = parsed.ErrorCode
	}

	switch {
	case parsed.Message != "":
		reqErr.Message = parsed.Message
	case parsed.Msg != "":
		reqErr.Message = parsed.Msg
	case parsed.ErrorDescription != "":
		reqErr.Message = parsed.ErrorDescription
	default:
		reqErr.Message = parsed.ErrorField
	}

	return reqErr
}

// IsUniqueViolation 은 유니크 제약 위반 에러인지 판별한다.
func IsUniqueViolation(err error) bool {
	return hasCode(err, CodeUniqueViolation)
}

// IsForeignKeyViolation 은 외래 키 제약 위반 에러인지 판별한다.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, CodeForeignKeyViolation)
}

// IsNoRows 는 조회 결과가 없음을 나타내는 에러인지 판별한다.
func IsNoRows(err error) bool {
	return hasCode(err, CodeNoRows)
}

func hasCode(err error, code string) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Code == code
}
