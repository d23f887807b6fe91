// Package repository 는 외부 저장소 호출 어댑터를 제공한다.
// 어댑터는 호출 1건당 메서드 1개로 구성되며, 저장소의 snake_case 필드와
// 도메인 모델 사이의 변환을 담당한다.
package repository

import (
	"context"

	"github.com/clip-in/clip-server/internal/model"
)

// ProfileRepository 는 프로필 행 저장소의 인터페이스.
// 조회 계열 메서드는 행이 없으면 (nil, nil)을 반환한다.
type ProfileRepository interface {
	// FindByUserID 는 인증 계정 ID로 프로필을 조회한다.
	FindByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// FindByNickname 은 닉네임으로 프로필을 조회한다.
	FindByNickname(ctx context.Context, nickname string) (*model.Profile, error)
	// Create 는 인증 계정 ID와 닉네임으로 프로필을 생성한다.
	Create(ctx context.Context, userID, nickname string) (*model.Profile, error)
}

// TagRepository 는 태그 행 저장소의 인터페이스.
// token 이 비어 있지 않으면 호출자 토큰 스코프로 요청한다.
type TagRepository interface {
	// FindByName 은 (이름, 소유자) 쌍으로 태그를 조회한다. 없으면 (nil, nil).
	FindByName(ctx context.Context, token, name, userID string) (*model.Tag, error)
	// Create 는 새 태그를 생성한다. 유니크 제약 위반은
	// supabase.IsUniqueViolation 으로 판별 가능한 에러로 반환된다.
	Create(ctx context.Context, token, name, userID string) (*model.Tag, error)
}

// NewClip 은 클립 생성 입력. Memo/Thumbnail 이 nil이면 null로 저장된다.
type NewClip struct {
	Title     string
	URL       string
	TagID     int64
	UserID    string
	Memo      *string
	Thumbnail *string
}

// ClipRepository 는 클립 행 저장소의 인터페이스.
type ClipRepository interface {
	// Create 는 클립을 저장하고 생성된 행의 요약을 반환한다.
	Create(ctx context.Context, token string, clip NewClip) (*CreatedClip, error)
	// FindByID 는 클립 상세를 태그 관계와 함께 조회한다. 없으면 (nil, nil).
	FindByID(ctx context.Context, token string, clipID int64) (*ClipDetailRow, error)
	// FindAll 은 모든 클립을 태그명과 조인해 조회한다.
	FindAll(ctx context.Context) ([]ClipListRow, error)
	// DeleteByID 는 id와 소유자가 모두 일치하는 클립을 삭제한다.
	// 일치하는 행이 없으면 (nil, nil) — 타인 클립과 부재 클립은 구분되지 않는다.
	DeleteByID(ctx context.Context, clipID int64, userID string) (*model.DeletedClip, error)
}
