package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/supabase"
)

// newClipRow 는 클립 삽입 페이로드. 저장소는 snake_case를 사용한다.
type newClipRow struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	TagID     int64   `json:"tag_id"`
	UserID    string  `json:"user_id"`
	Memo      *string `json:"memo"`
	Thumbnail *string `json:"thumbnail"`
}

// CreatedClip 은 클립 생성 직후의 요약.
type CreatedClip struct {
	ID    int64 `json:"id"`
	TagID int64 `json:"tag_id"`
}

// ClipDetailRow 는 클립 상세 조회 결과의 와이어 포맷.
// Tags 는 관계 임베딩 결과로, 객체 하나·배열·부재 어느 형태로든 올 수 있어
// 원본 JSON을 보존했다가 서비스 계층에서 정규화한다.
type ClipDetailRow struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Memo      *string         `json:"memo"`
	Thumbnail *string         `json:"thumbnail"`
	IsPublic  bool            `json:"is_public"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Tags      json.RawMessage `json:"tags"`
}

// ClipListRow 는 전체 클립 목록 조회 결과의 와이어 포맷.
type ClipListRow struct {
	Title     string    `json:"title"`
	TagID     int64     `json:"tag_id"`
	URL       string    `json:"url"`
	Memo      *string   `json:"memo"`
	Thumbnail *string   `json:"thumbnail"`
	CreatedAt time.Time `json:"created_at"`
	Tags      *struct {
		Name string `json:"name"`
	} `json:"tags"`
}

// deletedClipRow 는 삭제 응답의 와이어 포맷.
type deletedClipRow struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// SupabaseClipRepo 는 ClipRepository 의 Supabase 구현.
type SupabaseClipRepo struct {
	client *supabase.Client
}

// NewSupabaseClipRepo 는 SupabaseClipRepo 를 생성한다.
func NewSupabaseClipRepo(client *supabase.Client) *SupabaseClipRepo {
	return &SupabaseClipRepo{client: client}
}

// Create 는 클립 행을 저장한다. 제약 위반 에러는 래핑된 채로 반환되어
// 서비스 계층에서 supabase.IsForeignKeyViolation 으로 판별된다.
func (r *SupabaseClipRepo) Create(ctx context.Context, token string, clip NewClip) (*CreatedClip, error) {
	row := newClipRow{
		Title:     clip.Title,
		URL:       clip.URL,
		TagID:     clip.TagID,
		UserID:    clip.UserID,
		Memo:      clip.Memo,
		Thumbnail: clip.Thumbnail,
	}

	var created CreatedClip
	if err := r.client.InsertOne(ctx, token, "clips", "id,tag_id", row, &created); err != nil {
		return nil, fmt.Errorf("클립 생성 실패: %w", err)
	}
	return &created, nil
}

// FindByID 는 클립 상세를 태그 관계와 함께 조회한다. 없으면 (nil, nil).
// 호출자 토큰이 있으면 토큰 스코프로(RLS 적용), 없으면 서비스 키로 조회한다.
func (r *SupabaseClipRepo) FindByID(ctx context.Context, token string, clipID int64) (*ClipDetailRow, error) {
	var row ClipDetailRow
	err := r.client.SelectOne(ctx, token, "clips", "*,tags(id,name)",
		supabase.Filters{"id": strconv.FormatInt(clipID, 10)}, &row)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("클립 조회 실패: %w", err)
	}
	return &row, nil
}

// FindAll 은 모든 클립을 태그명과 조인해 조회한다.
func (r *SupabaseClipRepo) FindAll(ctx context.Context) ([]ClipListRow, error) {
	var rows []ClipListRow
	err := r.client.SelectList(ctx, "", "clips",
		"title,tag_id,url,memo,created_at,thumbnail,tags(name)", nil, &rows)
	if err != nil {
		return nil, fmt.Errorf("클립 목록 조회 실패: %w", err)
	}
	return rows, nil
}

// DeleteByID 는 id와 소유자가 모두 일치하는 클립을 삭제한다.
// 삭제 조건이 소유자 검증을 겸하므로 타인 클립과 부재 클립 모두 (nil, nil)이 된다.
func (r *SupabaseClipRepo) DeleteByID(ctx context.Context, clipID int64, userID string) (*model.DeletedClip, error) {
	var row deletedClipRow
	err := r.client.DeleteOne(ctx, "", "clips", "id,title",
		supabase.Filters{"id": strconv.FormatInt(clipID, 10), "user_id": userID}, &row)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("클립 삭제 실패: %w", err)
	}
	return &model.DeletedClip{ID: row.ID, Title: row.Title}, nil
}
