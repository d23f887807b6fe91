// Package clip 은 클립 관리의 도메인 로직을 제공한다.
package clip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/repository"
	"github.com/clip-in/clip-server/internal/supabase"
	"github.com/clip-in/clip-server/internal/validate"
)

// Sanitizer 는 저장 전 텍스트 정화 인터페이스.
// security.ContentSanitizer 의 부분집합으로 정의한다.
type Sanitizer interface {
	Sanitize(raw string) string
}

// Service 는 클립 유스케이스의 서비스 계층.
type Service struct {
	tags      repository.TagRepository
	clips     repository.ClipRepository
	sanitizer Sanitizer
}

// NewService 는 Service 의 새 인스턴스를 생성한다.
func NewService(tags repository.TagRepository, clips repository.ClipRepository, sanitizer Sanitizer) *Service {
	return &Service{
		tags:      tags,
		clips:     clips,
		sanitizer: sanitizer,
	}
}

// CreateInput 은 클립 생성 입력. Token 은 호출자의 액세스 토큰(저장소 스코프용).
type CreateInput struct {
	Title     string
	URL       string
	TagName   string
	UserID    string
	Token     string
	Memo      string
	Thumbnail string
}

// CreateResult 는 클립 생성 성공 응답.
type CreateResult struct {
	ID      int64  `json:"id"`
	TagID   int64  `json:"tagId"`
	Message string `json:"message"`
}

// Create 는 새 클립을 생성한다.
// 필수 필드와 URL 형식을 검증하고, 태그를 조회-또는-생성한 뒤 클립을 저장한다.
func (s *Service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	title, err := validate.Required(input.Title, "클립 제목은 필수입니다.")
	if err != nil {
		return nil, err
	}
	if _, err := validate.Required(input.URL, "클립 URL은 필수입니다."); err != nil {
		return nil, err
	}
	clipURL, err := validate.ClipURL(input.URL)
	if err != nil {
		return nil, err
	}
	tagName, err := validate.Required(input.TagName, "태그는 필수입니다.")
	if err != nil {
		return nil, err
	}
	userID, err := validate.Required(input.UserID, "사용자 ID는 필수입니다.")
	if err != nil {
		return nil, err
	}

	tag, err := s.findOrCreateTag(ctx, input.Token, tagName, userID)
	if err != nil {
		return nil, err
	}

	created, err := s.clips.Create(ctx, input.Token, repository.NewClip{
		Title:     title,
		URL:       clipURL,
		TagID:     tag.ID,
		UserID:    userID,
		Memo:      s.optionalText(input.Memo, true),
		Thumbnail: s.optionalText(input.Thumbnail, false),
	})
	if err != nil {
		if supabase.IsForeignKeyViolation(err) {
			return nil, model.NewValidationError("존재하지 않는 태그 또는 사용자입니다.")
		}
		slog.Error("클립 저장에 실패했습니다",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInternalError("클립 생성 중 오류가 발생했습니다.")
	}

	return &CreateResult{
		ID:      created.ID,
		TagID:   created.TagID,
		Message: "클립이 성공적으로 생성되었습니다.",
	}, nil
}

// optionalText 는 선택 필드를 정리한다. 공백 제거 후 비어 있으면 nil(null 저장).
// sanitize 가 참이면 저장 전에 HTML을 제거한다.
func (s *Service) optionalText(value string, sanitize bool) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if sanitize && s.sanitizer != nil {
		trimmed = s.sanitizer.Sanitize(trimmed)
	}
	return &trimmed
}

// findOrCreateTag 는 (이름, 소유자) 태그를 조회하고, 없으면 생성한다.
// 낙관적 삽입 후 복구: 동시 요청이 같은 태그를 먼저 생성해 유니크 제약
// 위반이 발생하면 다시 조회해 그 결과를 반환한다. 재조회에도 없으면
// 일관성 문제이므로 500으로 처리한다. 이 복구 분기를 제거하면 동시
// 생성 시 사용자에게 중복 태그 에러가 새어 나가므로 단순화하지 않는다.
func (s *Service) findOrCreateTag(ctx context.Context, token, name, userID string) (*model.Tag, error) {
	tag, err := s.tags.FindByName(ctx, token, name, userID)
	if err != nil {
		return nil, fmt.Errorf("태그 조회에 실패했습니다: %w", err)
	}
	if tag != nil {
		return tag, nil
	}

	created, createErr := s.tags.Create(ctx, token, name, userID)
	if createErr == nil {
		return created, nil
	}

	if supabase.IsUniqueViolation(createErr) {
		tag, err = s.tags.FindByName(ctx, token, name, userID)
		if err != nil || tag == nil {
			slog.Error("태그 동시 생성 복구에 실패했습니다",
				slog.String("tag_name", name),
				slog.String("user_id", userID),
			)
			return nil, model.NewInternalError("태그 처리 중 오류가 발생했습니다.")
		}
		return tag, nil
	}

	slog.Error("태그 생성에 실패했습니다",
		slog.String("tag_name", name),
		slog.String("user_id", userID),
		slog.String("error", createErr.Error()),
	)
	return nil, model.NewInternalError("태그 생성 중 오류가 발생했습니다.")
}

// Detail 은 클립 상세 응답.
type Detail struct {
	ClipID    int64           `json:"clipId"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Memo      *string         `json:"memo"`
	Thumbnail *string         `json:"thumbnail"`
	IsPublic  bool            `json:"isPublic"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Tags      []model.ClipTag `json:"tags"`
}

// GetByID 는 클립 상세를 조회한다.
// token 이 있으면 호출자 스코프로, 없으면 비인증 조회로 수행한다.
func (s *Service) GetByID(ctx context.Context, clipID int64, token string) (*Detail, error) {
	row, err := s.clips.FindByID(ctx, token, clipID)
	if err != nil {
		slog.Error("클립 조회에 실패했습니다",
			slog.Int64("clip_id", clipID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInternalError("서버 내부 오류가 발생했습니다.")
	}
	if row == nil {
		return nil, model.NewNotFoundError("클립을 찾을 수 없습니다.")
	}

	return &Detail{
		ClipID:    row.ID,
		Title:     row.Title,
		URL:       row.URL,
		Memo:      row.Memo,
		Thumbnail: row.Thumbnail,
		IsPublic:  row.IsPublic,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Tags:      normalizeTags(row.Tags),
	}, nil
}

// DeleteResult 는 클립 삭제 성공 응답.
type DeleteResult struct {
	Message          string `json:"message"`
	DeletedClipID    int64  `json:"deletedClipId"`
	DeletedClipTitle string `json:"deletedClipTitle"`
}

// Delete 는 클립을 삭제한다. 삭제 조건은 id와 소유자의 동시 일치이므로
// 타인의 클립 삭제와 부재 클립 삭제는 같은 404로 귀결된다.
func (s *Service) Delete(ctx context.Context, clipID int64, userID string) (*DeleteResult, error) {
	if userID == "" {
		return nil, model.NewValidationError("유효하지 않은 사용자 ID입니다.")
	}

	deleted, err := s.clips.DeleteByID(ctx, clipID, userID)
	if err != nil {
		slog.Error("클립 삭제에 실패했습니다",
			slog.Int64("clip_id", clipID),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInternalError("클립 삭제 중 오류가 발생했습니다.")
	}
	if deleted == nil {
		return nil, model.NewNotFoundError("삭제할 클립을 찾을 수 없습니다.")
	}

	return &DeleteResult{
		Message:          "클립이 성공적으로 삭제되었습니다.",
		DeletedClipID:    deleted.ID,
		DeletedClipTitle: deleted.Title,
	}, nil
}
