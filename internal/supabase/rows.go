package supabase

import (
	"context"
	"net/http"
	"net/url"
)

// PostgREST 요청 헤더 값.
const (
	acceptSingleObject   = "application/vnd.pgrst.object+json"
	preferRepresentation = "return=representation"
)

// Filters 는 PostgREST 동등 필터 집합. 키는 컬럼명, 값은 비교 대상이다.
type Filters map[string]string

// query 는 select 컬럼과 eq 필터를 PostgREST 쿼리 문자열로 변환한다.
func (f Filters) query(columns string) url.Values {
	q := url.Values{}
	if columns != "" {
		q.Set("select", columns)
	}
	for column, value := range f {
		q.Set(column, "eq."+value)
	}
	return q
}

// SelectOne 은 필터에 일치하는 단일 행을 조회해 out에 디코딩한다.
// 일치하는 행이 없으면 IsNoRows 가 참인 에러를 반환한다.
func (c *Client) SelectOne(ctx context.Context, token, table, columns string, filters Filters, out any) error {
	headers := map[string]string{"Accept": acceptSingleObject}
	return c.doJSON(ctx, http.MethodGet, "/rest/v1/"+table, filters.query(columns), token, headers, nil, out)
}

// SelectList 는 필터에 일치하는 모든 행을 조회해 out(슬라이스)에 디코딩한다.
func (c *Client) SelectList(ctx context.Context, token, table, columns string, filters Filters, out any) error {
	return c.doJSON(ctx, http.MethodGet, "/rest/v1/"+table, filters.query(columns), token, nil, nil, out)
}

// InsertOne 은 단일 행을 삽입하고 생성된 행을 out에 디코딩한다.
// 제약 위반은 IsUniqueViolation / IsForeignKeyViolation 으로 판별할 수 있는
// 에러로 반환된다.
func (c *Client) InsertOne(ctx context.Context, token, table, columns string, row, out any) error {
	headers := map[string]string{
		"Accept": acceptSingleObject,
		"Prefer": preferRepresentation,
	}
	return c.doJSON(ctx, http.MethodPost, "/rest/v1/"+table, Filters{}.query(columns), token, headers, row, out)
}

// DeleteOne 은 필터에 일치하는 단일 행을 삭제하고 삭제된 행을 out에 디코딩한다.
// 일치하는 행이 없으면 IsNoRows 가 참인 에러를 반환한다.
func (c *Client) DeleteOne(ctx context.Context, token, table, columns string, filters Filters, out any) error {
	headers := map[string]string{
		"Accept": acceptSingleObject,
		"Prefer": preferRepresentation,
	}
	return c.doJSON(ctx, http.MethodDelete, "/rest/v1/"+table, filters.query(columns), token, headers, nil, out)
}
