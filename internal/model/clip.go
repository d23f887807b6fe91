package model

import "time"

// Profile 은 외부 인증 계정과 1:1로 연결되는 애플리케이션 사용자 레코드.
// 닉네임 유일성은 저장소의 유니크 제약이 보장한다.
type Profile struct {
	ID       string // 외부 인증 계정의 UUID
	Nickname string
}

// Tag 는 사용자별 클립 분류. (name, user_id) 쌍이 유일하다.
type Tag struct {
	ID     int64
	Name   string
	UserID string
}

// Clip 은 저장된 북마크 레코드.
type Clip struct {
	ID        int64
	Title     string
	URL       string
	Memo      string
	Thumbnail string
	IsPublic  bool
	TagID     int64
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClipTag 는 클립 상세 응답에서 정규화된 태그 정보.
type ClipTag struct {
	TagID   int64  `json:"tagId"`
	TagName string `json:"tagName"`
}

// DeletedClip 은 삭제된 클립의 기본 정보.
type DeletedClip struct {
	ID    int64
	Title string
}
