package clip

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/repository"
	"github.com/clip-in/clip-server/internal/supabase"
)

// mockTagRepo 는 함수 필드로 동작을 주입하는 TagRepository 목 구현.
type mockTagRepo struct {
	findByNameFunc func(ctx context.Context, token, name, userID string) (*model.Tag, error)
	createFunc     func(ctx context.Context, token, name, userID string) (*model.Tag, error)
}

func (m *mockTagRepo) FindByName(ctx context.Context, token, name, userID string) (*model.Tag, error) {
	return m.findByNameFunc(ctx, token, name, userID)
}

func (m *mockTagRepo) Create(ctx context.Context, token, name, userID string) (*model.Tag, error) {
	return m.createFunc(ctx, token, name, userID)
}

// mockClipRepo 는 함수 필드로 동작을 주입하는 ClipRepository 목 구현.
type mockClipRepo struct {
	createFunc     func(ctx context.Context, token string, clip repository.NewClip) (*repository.CreatedClip, error)
	findByIDFunc   func(ctx context.Context, token string, clipID int64) (*repository.ClipDetailRow, error)
	findAllFunc    func(ctx context.Context) ([]repository.ClipListRow, error)
	deleteByIDFunc func(ctx context.Context, clipID int64, userID string) (*model.DeletedClip, error)
}

func (m *mockClipRepo) Create(ctx context.Context, token string, clip repository.NewClip) (*repository.CreatedClip, error) {
	return m.createFunc(ctx, token, clip)
}

func (m *mockClipRepo) FindByID(ctx context.Context, token string, clipID int64) (*repository.ClipDetailRow, error) {
	return m.findByIDFunc(ctx, token, clipID)
}

func (m *mockClipRepo) FindAll(ctx context.Context) ([]repository.ClipListRow, error) {
	return m.findAllFunc(ctx)
}

func (m *mockClipRepo) DeleteByID(ctx context.Context, clipID int64, userID string) (*model.DeletedClip, error) {
	return m.deleteByIDFunc(ctx, clipID, userID)
}

// passthroughSanitizer 는 입력을 그대로 반환하되 호출 여부를 기록한다.
type passthroughSanitizer struct {
	called bool
}

func (s *passthroughSanitizer) Sanitize(raw string) string {
	s.called = true
	return raw
}

// newRequestError 는 지정 코드의 업스트림 에러를 생성한다.
// 판별 함수가 errors.As 로 타입을 확인하므로 실제 타입을 써야 한다.
func newRequestError(code string) error {
	return &supabase.RequestError{StatusCode: 409, Code: code, Message: "constraint violation"}
}

// uniqueViolationError 는 리포지토리 계층에서 래핑된 유니크 위반을 흉내 낸다.
func uniqueViolationError() error {
	return fmt.Errorf("태그 생성 실패: %w", newRequestError("23505"))
}

// TestCreate_Success 는 기존 태그로 클립이 생성되는 기본 경로를 검증한다.
func TestCreate_Success(t *testing.T) {
	tags := &mockTagRepo{
		findByNameFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return &model.Tag{ID: 7, Name: name, UserID: userID}, nil
		},
	}
	var gotClip repository.NewClip
	clips := &mockClipRepo{
		createFunc: func(ctx context.Context, token string, clip repository.NewClip) (*repository.CreatedClip, error) {
			gotClip = clip
			return &repository.CreatedClip{ID: 42, TagID: clip.TagID}, nil
		},
	}
	sanitizer := &passthroughSanitizer{}

	svc := NewService(tags, clips, sanitizer)
	result, err := svc.Create(context.Background(), CreateInput{
		Title:   "  제목  ",
		URL:     "https://example.com/article",
		TagName: "개발",
		UserID:  "uid-1",
		Token:   "user-token",
		Memo:    "메모",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if result.ID != 42 || result.TagID != 7 {
		t.Errorf("result = %+v, want id=42 tagId=7", result)
	}
	if result.Message != "클립이 성공적으로 생성되었습니다." {
		t.Errorf("message = %q", result.Message)
	}
	if gotClip.Title != "제목" {
		t.Errorf("title = %q, want trimmed 제목", gotClip.Title)
	}
	if gotClip.Memo == nil || *gotClip.Memo != "메모" {
		t.Errorf("memo = %v, want 메모", gotClip.Memo)
	}
	if !sanitizer.called {
		t.Error("memo must pass through the sanitizer")
	}
	if gotClip.Thumbnail != nil {
		t.Errorf("thumbnail = %v, want nil for empty input", gotClip.Thumbnail)
	}
}

// TestCreate_Validation 은 필수 필드와 URL 형식 검증을 확인한다.
func TestCreate_Validation(t *testing.T) {
	svc := NewService(&mockTagRepo{}, &mockClipRepo{}, nil)

	tests := []struct {
		name    string
		input   CreateInput
		wantMsg string
	}{
		{
			name:    "제목 누락",
			input:   CreateInput{URL: "https://example.com", TagName: "개발", UserID: "uid-1"},
			wantMsg: "클립 제목은 필수입니다.",
		},
		{
			name:    "URL 누락",
			input:   CreateInput{Title: "제목", TagName: "개발", UserID: "uid-1"},
			wantMsg: "클립 URL은 필수입니다.",
		},
		{
			name:    "잘못된 URL 형식",
			input:   CreateInput{Title: "제목", URL: "example.com", TagName: "개발", UserID: "uid-1"},
			wantMsg: "올바른 URL 형식이 아닙니다.",
		},
		{
			name:    "태그 누락",
			input:   CreateInput{Title: "제목", URL: "https://example.com", UserID: "uid-1"},
			wantMsg: "태그는 필수입니다.",
		},
		{
			name:    "사용자 ID 누락",
			input:   CreateInput{Title: "제목", URL: "https://example.com", TagName: "개발"},
			wantMsg: "사용자 ID는 필수입니다.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assertAPIError(t, err, 400, tt.wantMsg)
		})
	}
}

// TestCreate_TagCreatedWhenAbsent 는 태그 부재 시 새로 생성됨을 검증한다.
func TestCreate_TagCreatedWhenAbsent(t *testing.T) {
	created := false
	tags := &mockTagRepo{
		findByNameFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return nil, nil
		},
		createFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			created = true
			return &model.Tag{ID: 8, Name: name, UserID: userID}, nil
		},
	}
	clips := &mockClipRepo{
		createFunc: func(ctx context.Context, token string, clip repository.NewClip) (*repository.CreatedClip, error) {
			return &repository.CreatedClip{ID: 42, TagID: clip.TagID}, nil
		},
	}

	svc := NewService(tags, clips, nil)
	result, err := svc.Create(context.Background(), CreateInput{
		Title: "제목", URL: "https://example.com", TagName: "새태그", UserID: "uid-1",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if !created {
		t.Error("absent tag must be created")
	}
	if result.TagID != 8 {
		t.Errorf("tagId = %d, want 8", result.TagID)
	}
}

// TestCreate_TagRaceRecovery 는 동시 태그 생성의 복구 분기를 검증한다.
// 유니크 위반 후 재조회가 성공하면 그 태그로 계속 진행해야 한다.
func TestCreate_TagRaceRecovery(t *testing.T) {
	findCalls := 0
	tags := &mockTagRepo{
		findByNameFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			findCalls++
			if findCalls == 1 {
				// 첫 조회 시점에는 아직 없다
				return nil, nil
			}
			// 경합 상대가 먼저 생성한 뒤의 재조회
			return &model.Tag{ID: 9, Name: name, UserID: userID}, nil
		},
		createFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return nil, uniqueViolationError()
		},
	}
	clips := &mockClipRepo{
		createFunc: func(ctx context.Context, token string, clip repository.NewClip) (*repository.CreatedClip, error) {
			return &repository.CreatedClip{ID: 42, TagID: clip.TagID}, nil
		},
	}

	svc := NewService(tags, clips, nil)
	result, err := svc.Create(context.Background(), CreateInput{
		Title: "제목", URL: "https://example.com", TagName: "개발", UserID: "uid-1",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if findCalls != 2 {
		t.Errorf("find calls = %d, want 2", findCalls)
	}
	if result.TagID != 9 {
		t.Errorf("tagId = %d, want 9 from recovered tag", result.TagID)
	}
}

// TestCreate_TagRaceRecoveryFails 는 유니크 위반 후 재조회에도 태그가 없으면
// 500으로 처리됨을 검증한다.
func TestCreate_TagRaceRecoveryFails(t *testing.T) {
	tags := &mockTagRepo{
		findByNameFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return nil, nil
		},
		createFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return nil, uniqueViolationError()
		},
	}

	svc := NewService(tags, &mockClipRepo{}, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		Title: "제목", URL: "https://example.com", TagName: "개발", UserID: "uid-1",
	})
	assertAPIError(t, err, 500, "태그 처리 중 오류가 발생했습니다.")
}

// TestCreate_TagCreateFailure 는 유니크 위반이 아닌 태그 생성 실패의 500을 검증한다.
func TestCreate_TagCreateFailure(t *testing.T) {
	tags := &mockTagRepo{
		findByNameFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return nil, nil
		},
		createFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return nil, errors.New("upstream down")
		},
	}

	svc := NewService(tags, &mockClipRepo{}, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		Title: "제목", URL: "https://example.com", TagName: "개발", UserID: "uid-1",
	})
	assertAPIError(t, err, 500, "태그 생성 중 오류가 발생했습니다.")
}

// TestCreate_ForeignKeyViolation 은 FK 위반이 400으로 변환됨을 검증한다.
func TestCreate_ForeignKeyViolation(t *testing.T) {
	tags := &mockTagRepo{
		findByNameFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return &model.Tag{ID: 7, Name: name, UserID: userID}, nil
		},
	}
	clips := &mockClipRepo{
		createFunc: func(ctx context.Context, token string, clip repository.NewClip) (*repository.CreatedClip, error) {
			return nil, fmt.Errorf("클립 생성 실패: %w", newRequestError("23503"))
		},
	}

	svc := NewService(tags, clips, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		Title: "제목", URL: "https://example.com", TagName: "개발", UserID: "uid-1",
	})
	assertAPIError(t, err, 400, "존재하지 않는 태그 또는 사용자입니다.")
}

// TestCreate_StorageFailure 는 일반 저장 실패의 500을 검증한다.
func TestCreate_StorageFailure(t *testing.T) {
	tags := &mockTagRepo{
		findByNameFunc: func(ctx context.Context, token, name, userID string) (*model.Tag, error) {
			return &model.Tag{ID: 7, Name: name, UserID: userID}, nil
		},
	}
	clips := &mockClipRepo{
		createFunc: func(ctx context.Context, token string, clip repository.NewClip) (*repository.CreatedClip, error) {
			return nil, errors.New("timeout")
		},
	}

	svc := NewService(tags, clips, nil)
	_, err := svc.Create(context.Background(), CreateInput{
		Title: "제목", URL: "https://example.com", TagName: "개발", UserID: "uid-1",
	})
	assertAPIError(t, err, 500, "클립 생성 중 오류가 발생했습니다.")
}

// TestGetByID 는 상세 조회의 성공·부재·실패 분기를 검증한다.
func TestGetByID(t *testing.T) {
	t.Run("성공", func(t *testing.T) {
		createdAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		clips := &mockClipRepo{
			findByIDFunc: func(ctx context.Context, token string, clipID int64) (*repository.ClipDetailRow, error) {
				return &repository.ClipDetailRow{
					ID:        clipID,
					Title:     "제목",
					URL:       "https://example.com",
					CreatedAt: createdAt,
					UpdatedAt: createdAt,
					Tags:      []byte(`{"id":7,"name":"개발"}`),
				}, nil
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		detail, err := svc.GetByID(context.Background(), 42, "user-token")
		if err != nil {
			t.Fatalf("GetByID() unexpected error: %v", err)
		}
		if detail.ClipID != 42 || detail.Title != "제목" {
			t.Errorf("detail = %+v", detail)
		}
		if len(detail.Tags) != 1 || detail.Tags[0].TagID != 7 || detail.Tags[0].TagName != "개발" {
			t.Errorf("tags = %+v, want [{7 개발}]", detail.Tags)
		}
	})

	t.Run("부재 시 404", func(t *testing.T) {
		clips := &mockClipRepo{
			findByIDFunc: func(ctx context.Context, token string, clipID int64) (*repository.ClipDetailRow, error) {
				return nil, nil
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		_, err := svc.GetByID(context.Background(), 999, "")
		assertAPIError(t, err, 404, "클립을 찾을 수 없습니다.")
	})

	t.Run("조회 실패 시 500", func(t *testing.T) {
		clips := &mockClipRepo{
			findByIDFunc: func(ctx context.Context, token string, clipID int64) (*repository.ClipDetailRow, error) {
				return nil, errors.New("timeout")
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		_, err := svc.GetByID(context.Background(), 42, "")
		assertAPIError(t, err, 500, "서버 내부 오류가 발생했습니다.")
	})
}

// TestDelete 는 삭제의 성공·부재·사용자 누락 분기를 검증한다.
func TestDelete(t *testing.T) {
	t.Run("성공", func(t *testing.T) {
		clips := &mockClipRepo{
			deleteByIDFunc: func(ctx context.Context, clipID int64, userID string) (*model.DeletedClip, error) {
				return &model.DeletedClip{ID: clipID, Title: "제목"}, nil
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		result, err := svc.Delete(context.Background(), 42, "uid-1")
		if err != nil {
			t.Fatalf("Delete() unexpected error: %v", err)
		}
		if result.DeletedClipID != 42 || result.DeletedClipTitle != "제목" {
			t.Errorf("result = %+v", result)
		}
		if result.Message != "클립이 성공적으로 삭제되었습니다." {
			t.Errorf("message = %q", result.Message)
		}
	})

	t.Run("타인 클립과 부재 클립은 같은 404", func(t *testing.T) {
		clips := &mockClipRepo{
			deleteByIDFunc: func(ctx context.Context, clipID int64, userID string) (*model.DeletedClip, error) {
				return nil, nil
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		_, err := svc.Delete(context.Background(), 42, "uid-other")
		assertAPIError(t, err, 404, "삭제할 클립을 찾을 수 없습니다.")
	})

	t.Run("사용자 ID 누락 시 400", func(t *testing.T) {
		svc := NewService(&mockTagRepo{}, &mockClipRepo{}, nil)
		_, err := svc.Delete(context.Background(), 42, "")
		assertAPIError(t, err, 400, "유효하지 않은 사용자 ID입니다.")
	})
}

// TestGetAll 은 목록 조회와 고정 페이지 봉투를 검증한다.
func TestGetAll(t *testing.T) {
	t.Run("태그명이 조인된 목록", func(t *testing.T) {
		createdAt := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		clips := &mockClipRepo{
			findAllFunc: func(ctx context.Context) ([]repository.ClipListRow, error) {
				return []repository.ClipListRow{
					{
						Title: "제목", TagID: 7, URL: "https://example.com", CreatedAt: createdAt,
						Tags: &struct {
							Name string `json:"name"`
						}{Name: "개발"},
					},
					{Title: "태그 없음", TagID: 8, URL: "https://example.org", CreatedAt: createdAt},
				}, nil
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		page, err := svc.GetAll(context.Background())
		if err != nil {
			t.Fatalf("GetAll() unexpected error: %v", err)
		}

		if len(page.Content) != 2 {
			t.Fatalf("content length = %d, want 2", len(page.Content))
		}
		if page.Content[0].TagName != "개발" {
			t.Errorf("tagName = %q, want 개발", page.Content[0].TagName)
		}
		if page.Content[1].TagName != "" {
			t.Errorf("tagName = %q, want empty for missing tag join", page.Content[1].TagName)
		}

		// 페이지 봉투의 고정 필드
		if page.Size != 20 || page.Number != 0 || !page.First || !page.Last {
			t.Errorf("page envelope = %+v", page)
		}
		if page.NumberOfElements != 2 || page.Empty {
			t.Errorf("numberOfElements = %d, empty = %v", page.NumberOfElements, page.Empty)
		}
		if len(page.Sort) != 1 || page.Sort[0].Property != "createdAt" || page.Sort[0].Direction != "DESC" {
			t.Errorf("sort = %+v", page.Sort)
		}
	})

	t.Run("빈 목록", func(t *testing.T) {
		clips := &mockClipRepo{
			findAllFunc: func(ctx context.Context) ([]repository.ClipListRow, error) {
				return nil, nil
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		page, err := svc.GetAll(context.Background())
		if err != nil {
			t.Fatalf("GetAll() unexpected error: %v", err)
		}
		if !page.Empty || page.NumberOfElements != 0 {
			t.Errorf("page = %+v, want empty", page)
		}
		if page.Content == nil {
			t.Error("content must be an empty slice, not nil")
		}
	})

	t.Run("조회 실패 시 500", func(t *testing.T) {
		clips := &mockClipRepo{
			findAllFunc: func(ctx context.Context) ([]repository.ClipListRow, error) {
				return nil, errors.New("timeout")
			},
		}

		svc := NewService(&mockTagRepo{}, clips, nil)
		_, err := svc.GetAll(context.Background())
		assertAPIError(t, err, 500, "데이터베이스 조회에 실패했습니다.")
	})
}

// assertAPIError 는 기대 상태 코드와 메시지의 APIError 인지 확인한다.
func assertAPIError(t *testing.T, err error, wantStatus int, wantMsg string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != wantStatus {
		t.Errorf("status = %d, want %d", apiErr.Status, wantStatus)
	}
	if apiErr.Message != wantMsg {
		t.Errorf("message = %q, want %q", apiErr.Message, wantMsg)
	}
}
