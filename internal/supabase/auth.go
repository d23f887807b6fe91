package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AuthUser 는 GoTrue가 관리하는 인증 계정.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session 은 GoTrue가 발급한 토큰 쌍.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenResponse 는 토큰 발급 계열 엔드포인트의 응답.
// 이메일 확인이 필요한 설정에서는 /signup 이 세션 없이
// 사용자 객체를 최상위에 그대로 반환하므로 두 형태를 모두 수용한다.
type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         *AuthUser `json:"user"`

	// 최상위가 사용자 객체인 경우
	ID    string `json:"id"`
	Email string `json:"email"`
}

// user 는 응답에서 사용자 객체를 정규화해 꺼낸다.
func (r *tokenResponse) user() *AuthUser {
	if r.User != nil {
		return r.User
	}
	if r.ID != "" {
		return &AuthUser{ID: r.ID, Email: r.Email}
	}
	return nil
}

// session 은 응답에서 세션을 정규화해 꺼낸다. 세션이 없으면 nil.
func (r *tokenResponse) session() *Session {
	if r.AccessToken == "" {
		return nil
	}
	return &Session{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// SignUp 은 이메일/비밀번호로 새 인증 계정을 생성한다.
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthUser, *Session, error) {
	var resp tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", nil, "", nil,
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, nil, err
	}

	user := resp.user()
	if user == nil {
		return nil, nil, fmt.Errorf("회원가입 응답에 사용자 정보가 없습니다")
	}
	return user, resp.session(), nil
}

// SignInWithPassword 는 이메일/비밀번호로 로그인하고 세션을 발급받는다.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthUser, *Session, error) {
	query := url.Values{"grant_type": []string{"password"}}

	var resp tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token", query, "", nil,
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return nil, nil, err
	}

	user := resp.user()
	session := resp.session()
	if user == nil || session == nil {
		return nil, nil, fmt.Errorf("로그인 응답에 세션 정보가 없습니다")
	}
	return user, session, nil
}

// RefreshSession 은 리프레시 토큰으로 새 세션을 발급받는다.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	query := url.Values{"grant_type": []string{"refresh_token"}}

	var resp tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token", query, "", nil,
		map[string]string{"refresh_token": refreshToken}, &resp)
	if err != nil {
		return nil, err
	}

	session := resp.session()
	if session == nil {
		return nil, fmt.Errorf("토큰 갱신 응답에 세션 정보가 없습니다")
	}
	return session, nil
}

// GetUser 는 액세스 토큰을 검증하고 해당 사용자를 반환한다.
// 인증 게이트에서 Bearer 토큰 검증에 사용한다.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	var user AuthUser
	err := c.doJSON(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken, nil, nil, &user)
	if err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("토큰 검증 응답에 사용자 정보가 없습니다")
	}
	return &user, nil
}

// adminUserList 는 관리자 사용자 목록 조회 응답.
type adminUserList struct {
	Users []AuthUser `json:"users"`
}

// AdminUserByEmail 은 관리자 API로 이메일이 일치하는 계정을 조회한다.
// 계정이 없으면 (nil, nil)을 반환한다. service_role 키가 필요하다.
func (c *Client) AdminUserByEmail(ctx context.Context, email string) (*AuthUser, error) {
	query := url.Values{
		"filter":   []string{email},
		"page":     []string{"1"},
		"per_page": []string{"50"},
	}

	var resp adminUserList
	err := c.doJSON(ctx, http.MethodGet, "/auth/v1/admin/users", query, "", nil, nil, &resp)
	if err != nil {
		return nil, err
	}

	// filter 는 부분 일치 검색이므로 정확히 일치하는 계정만 인정한다.
	for i := range resp.Users {
		if resp.Users[i].Email == email {
			return &resp.Users[i], nil
		}
	}
	return nil, nil
}

// AdminDeleteUser 는 관리자 API로 인증 계정을 삭제한다.
// 회원가입 보상 처리(프로필 생성 실패 시 계정 정리)에 사용한다.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/auth/v1/admin/users/"+userID, nil, "", nil, nil, nil)
}
