package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/clip-in/clip-server/internal/auth"
)

// AuthServiceInterface 는 인증 핸들러가 필요로 하는 서비스 인터페이스.
type AuthServiceInterface interface {
	// Login 은 로그인하고 토큰 쌍과 닉네임을 반환한다.
	Login(ctx context.Context, userID, password string) (*auth.LoginResult, error)
	// Signup 은 계정과 프로필을 생성한다.
	Signup(ctx context.Context, userID, password, nickname string) (*auth.SignupResult, error)
	// Refresh 는 리프레시 토큰으로 새 세션을 발급받는다.
	Refresh(ctx context.Context, refreshToken string) (*auth.RefreshResult, error)
	// CheckUserIDDuplication 은 사용자 ID 사용 가능 여부를 반환한다.
	CheckUserIDDuplication(ctx context.Context, userID string) (*auth.DuplicationResult, error)
	// CheckNicknameDuplication 은 닉네임 사용 가능 여부를 반환한다.
	CheckNicknameDuplication(ctx context.Context, nickname string) (*auth.DuplicationResult, error)
}

// AuthHandler 는 인증 엔드포인트의 HTTP 핸들러.
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler 는 AuthHandler 를 생성한다.
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest 는 로그인 요청 본문.
type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// Login 은 로그인을 처리한다.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := h.service.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// signupRequest 는 회원가입 요청 본문.
type signupRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Signup 은 회원가입을 처리한다.
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := h.service.Signup(r.Context(), req.UserID, req.Password, req.Nickname)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, result)
}

// refreshRequest 는 토큰 갱신 요청 본문.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh 는 토큰 갱신을 처리한다.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// CheckUserID 는 사용자 ID 중복 확인을 처리한다.
// POST /api/auth/check/duplicateId/:userId
func (h *AuthHandler) CheckUserID(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	result, err := h.service.CheckUserIDDuplication(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// CheckNickname 은 닉네임 중복 확인을 처리한다.
// 한글 닉네임은 퍼센트 인코딩으로 도착하므로 디코딩 후 검증한다.
// POST /api/auth/check/duplicateNickname/:nickname
func (h *AuthHandler) CheckNickname(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")
	if decoded, err := url.PathUnescape(nickname); err == nil {
		nickname = decoded
	}

	result, err := h.service.CheckNicknameDuplication(r.Context(), nickname)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}
