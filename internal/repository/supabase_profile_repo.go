package repository

import (
	"context"
	"fmt"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/supabase"
)

// profileRow 는 profiles 테이블의 와이어 포맷.
type profileRow struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// SupabaseProfileRepo 는 ProfileRepository 의 Supabase 구현.
type SupabaseProfileRepo struct {
	client *supabase.Client
}

// NewSupabaseProfileRepo 는 SupabaseProfileRepo 를 생성한다.
func NewSupabaseProfileRepo(client *supabase.Client) *SupabaseProfileRepo {
	return &SupabaseProfileRepo{client: client}
}

// FindByUserID 는 인증 계정 ID로 프로필을 조회한다. 없으면 (nil, nil).
func (r *SupabaseProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var row profileRow
	err := r.client.SelectOne(ctx, "", "profiles", "id,nickname", supabase.Filters{"id": userID}, &row)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("프로필 조회 실패: %w", err)
	}
	return &model.Profile{ID: row.ID, Nickname: row.Nickname}, nil
}

// FindByNickname 은 닉네임으로 프로필을 조회한다. 없으면 (nil, nil).
func (r *SupabaseProfileRepo) FindByNickname(ctx context.Context, nickname string) (*model.Profile, error) {
	var row profileRow
	err := r.client.SelectOne(ctx, "", "profiles", "id,nickname", supabase.Filters{"nickname": nickname}, &row)
	if err != nil {
		if supabase.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("닉네임 중복 확인 실패: %w", err)
	}
	return &model.Profile{ID: row.ID, Nickname: row.Nickname}, nil
}

// Create 는 프로필 행을 생성한다.
func (r *SupabaseProfileRepo) Create(ctx context.Context, userID, nickname string) (*model.Profile, error) {
	var row profileRow
	err := r.client.InsertOne(ctx, "", "profiles", "id,nickname",
		profileRow{ID: userID, Nickname: nickname}, &row)
	if err != nil {
		return nil, fmt.Errorf("프로필 생성 실패: %w", err)
	}
	return &model.Profile{ID: row.ID, Nickname: row.Nickname}, nil
}
