package clip

import (
	"context"
	"log/slog"
	"time"

	"github.com/clip-in/clip-server/internal/model"
)

// Summary 는 전체 목록의 클립 요약.
type Summary struct {
	Title     string    `json:"title"`
	TagID     int64     `json:"tagId"`
	URL       string    `json:"url"`
	Thumbnail *string   `json:"thumbnail"`
	TagName   string    `json:"tagName"`
	Memo      *string   `json:"memo"`
	CreatedAt time.Time `json:"createdAt"`
}

// SortOrder 는 페이지 응답의 정렬 기술자.
type SortOrder struct {
	Direction    string `json:"direction"`
	NullHandling string `json:"nullHandling"`
	Ascending    bool   `json:"ascending"`
	Property     string `json:"property"`
	IgnoreCase   bool   `json:"ignoreCase"`
}

// Pageable 은 페이지 응답의 페이징 기술자.
type Pageable struct {
	Offset     int         `json:"offset"`
	Sort       []SortOrder `json:"sort"`
	Paged      bool        `json:"paged"`
	PageNumber int         `json:"pageNumber"`
	PageSize   int         `json:"pageSize"`
	Unpaged    bool        `json:"unpaged"`
}

// Page 는 클립 전체 목록의 페이지 봉투.
type Page struct {
	Size             int         `json:"size"`
	Content          []Summary   `json:"content"`
	Number           int         `json:"number"`
	Sort             []SortOrder `json:"sort"`
	NumberOfElements int         `json:"numberOfElements"`
	Pageable         Pageable    `json:"pageable"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	Empty            bool        `json:"empty"`
}

// GetAll 은 모든 클립을 태그명과 함께 반환한다.
// 페이징 필드(size=20, number=0, first/last=true)는 실제 페이징과
// 무관한 고정값이다. 엔드포인트는 항상 전체를 1페이지로 반환한다.
func (s *Service) GetAll(ctx context.Context) (*Page, error) {
	rows, err := s.clips.FindAll(ctx)
	if err != nil {
		slog.Error("클립 목록 조회에 실패했습니다", slog.String("error", err.Error()))
		return nil, model.NewInternalError("데이터베이스 조회에 실패했습니다.")
	}

	content := make([]Summary, 0, len(rows))
	for _, row := range rows {
		summary := Summary{
			Title:     row.Title,
			TagID:     row.TagID,
			URL:       row.URL,
			Thumbnail: row.Thumbnail,
			Memo:      row.Memo,
			CreatedAt: row.CreatedAt,
		}
		if row.Tags != nil {
			summary.TagName = row.Tags.Name
		}
		content = append(content, summary)
	}

	sort := []SortOrder{{
		Direction:    "DESC",
		NullHandling: "NATIVE",
		Ascending:    false,
		Property:     "createdAt",
		IgnoreCase:   false,
	}}

	return &Page{
		Size:             20,
		Content:          content,
		Number:           0,
		Sort:             sort,
		NumberOfElements: len(content),
		Pageable: Pageable{
			Offset:     0,
			Sort:       sort,
			Paged:      true,
			PageNumber: 0,
			PageSize:   20,
			Unpaged:    false,
		},
		First: true,
		Last:  true,
		Empty: len(content) == 0,
	}, nil
}
