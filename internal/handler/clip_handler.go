package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clip-in/clip-server/internal/clip"
	"github.com/clip-in/clip-server/internal/middleware"
	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/response"
	"github.com/clip-in/clip-server/internal/validate"
)

// ClipServiceInterface 는 클립 핸들러가 필요로 하는 서비스 인터페이스.
type ClipServiceInterface interface {
	// Create 는 새 클립을 생성한다.
	Create(ctx context.Context, input clip.CreateInput) (*clip.CreateResult, error)
	// GetByID 는 클립 상세를 조회한다. token 은 비어 있을 수 있다.
	GetByID(ctx context.Context, clipID int64, token string) (*clip.Detail, error)
	// GetAll 은 모든 클립을 고정 페이지 봉투로 반환한다.
	GetAll(ctx context.Context) (*clip.Page, error)
	// Delete 는 호출자가 소유한 클립을 삭제한다.
	Delete(ctx context.Context, clipID int64, userID string) (*clip.DeleteResult, error)
}

// ClipHandler 는 클립 엔드포인트의 HTTP 핸들러.
type ClipHandler struct {
	service ClipServiceInterface
}

// NewClipHandler 는 ClipHandler 를 생성한다.
func NewClipHandler(service ClipServiceInterface) *ClipHandler {
	return &ClipHandler{service: service}
}

// createClipRequest 는 클립 생성 요청 본문.
type createClipRequest struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	TagName   string `json:"tagName"`
	Memo      string `json:"memo"`
	Thumbnail string `json:"thumbnail"`
}

// Create 는 클립 생성을 처리한다. 소유자는 인증 게이트가 주입한 사용자다.
// POST /api/clips
func (h *ClipHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := h.service.Create(r.Context(), clip.CreateInput{
		Title:     req.Title,
		URL:       req.URL,
		TagName:   req.TagName,
		UserID:    userID,
		Token:     middleware.AccessTokenFromContext(r.Context()),
		Memo:      req.Memo,
		Thumbnail: req.Thumbnail,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, result)
}

// GetAll 은 전체 클립 목록을 반환한다.
// GET /api/clips
func (h *ClipHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// GetByID 는 클립 상세를 반환한다. 인증은 선택이며,
// 토큰이 있으면 호출자 스코프로 조회한다.
// 저장소 호출 전에 ID 형식 검증이 먼저 수행된다.
// GET /api/clips/:clipId
func (h *ClipHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	clipID, err := validate.ClipID(chi.URLParam(r, "clipId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := h.service.GetByID(r.Context(), clipID, middleware.AccessTokenFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}

// Delete 는 호출자 소유 클립의 삭제를 처리한다.
// DELETE /api/clips/:clipId
func (h *ClipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	clipID, err := validate.ClipID(chi.URLParam(r, "clipId"))
	if err != nil {
		response.WriteAPIError(w, model.NewValidationError("유효하지 않은 클립 ID입니다."))
		return
	}

	result, err := h.service.Delete(r.Context(), clipID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, result)
}
