// Package model 은 도메인 모델을 정의한다.
package model

import "net/http"

// APIError 는 서비스 계층에서 핸들러까지 그대로 전달되는 도메인 에러를 표현한다.
// 에러 코드와 HTTP 상태 코드를 함께 보유하며, 핸들러 경계에서 응답 봉투로 변환된다.
type APIError struct {
	Code    string // 에러 코드
	Message string // 사용자에게 노출되는 메시지
	Status  int    // HTTP 상태 코드
}

// Error 는 error 인터페이스를 구현한다.
func (e *APIError) Error() string {
	return "[" + e.Code + "] " + e.Message
}

// 정의된 에러 코드
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// NewValidationError 는 입력값 검증 실패 에러(400)를 생성한다.
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewUnauthorizedError 는 인증 실패 에러(401)를 생성한다.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewNotFoundError 는 리소스 부재 에러(404)를 생성한다.
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewConflictError 는 중복 충돌 에러(409)를 생성한다.
func NewConflictError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

// NewInternalError 는 내부 오류(500)를 생성한다.
// 원인 에러의 상세는 로그에만 남기고 메시지에는 포함하지 않는다.
func NewInternalError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}
