package repository

import (
	"context"
	"fmt"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/supabase"
)

// tagRow 는 tags 테이블의 와이어 포맷.
type tagRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// newTagRow 는 태그 삽입 페이로드. id는 저장소가 생성하므로 포함하지 않는다.
type newTagRow struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

// SupabaseTagRepo 는 TagRepository 의 Supabase 구현.
type SupabaseTagRepo struct {
	client *supabase.Client
}

// NewSupabaseTagRepo 는 SupabaseTagRepo 를 생성한다.
func NewSupabaseTagRepo(client *supabase.Client) *SupabaseTagRepo {
	return &SupabaseTagRepo{client: client}
}

// FindByName 은 (이름, 소유자) 쌍으로 태그를 조회한다. 없으면 (nil, nil).
func (r *SupabaseTagRepo) FindByName(ctx context.Context, token, name, userID string) (*model.Tag, error) {
	var row tagRow
	err := r.client.SelectOne(ctx, token, "tags", "id,name",
		supabase.Filters{"name": name, "user_id": userID}, &row)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("태그 조회 실패: %w", err)
	}
	return &model.Tag{ID: row.ID, Name: row.Name, UserID: userID}, nil
}

// Create 는 새 태그를 생성한다. 동시 생성으로 인한 유니크 제약 위반은
// 래핑된 채로 반환되어 서비스 계층의 복구 분기에서 판별된다.
func (r *SupabaseTagRepo) Create(ctx context.Context, token, name, userID string) (*model.Tag, error) {
	var row tagRow
	err := r.client.InsertOne(ctx, token, "tags", "id,name",
		newTagRow{Name: name, UserID: userID}, &row)
	if err != nil {
		return nil, fmt.Errorf("태그 생성 실패: %w", err)
	}
	return &model.Tag{ID: row.ID, Name: row.Name, UserID: userID}, nil
}
