// Package auth 는 인증 유스케이스(로그인, 회원가입, 토큰 갱신, 중복 확인)를 제공한다.
// 계정 관리와 토큰 발급은 외부 관리형 백엔드에 위임하고, 이 계층은
// 입력 검증과 외부 실패의 도메인 에러 변환, 응답 재구성만 담당한다.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clip-in/clip-server/internal/model"
	"github.com/clip-in/clip-server/internal/repository"
	"github.com/clip-in/clip-server/internal/supabase"
	"github.com/clip-in/clip-server/internal/validate"
)

// emailDomain 은 로그인 핸들을 외부 계정 식별자로 변환할 때 붙는 고정 도메인.
// 설정이 아니라 서비스 전체에 고정된 규약이다.
const emailDomain = "@clip.com"

// AccountAPI 는 외부 백엔드의 인증 프리미티브 인터페이스.
// supabase.Client 의 부분집합으로 정의한다.
type AccountAPI interface {
	SignUp(ctx context.Context, email, password string) (*supabase.AuthUser, *supabase.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.AuthUser, *supabase.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
	AdminUserByEmail(ctx context.Context, email string) (*supabase.AuthUser, error)
	AdminDeleteUser(ctx context.Context, userID string) error
}

// Service 는 인증 유스케이스의 서비스 계층.
type Service struct {
	accounts AccountAPI
	profiles repository.ProfileRepository
}

// NewService 는 Service 의 새 인스턴스를 생성한다.
func NewService(accounts AccountAPI, profiles repository.ProfileRepository) *Service {
	return &Service{
		accounts: accounts,
		profiles: profiles,
	}
}

// accountEmail 은 로그인 핸들을 외부 계정 이메일로 변환한다.
func accountEmail(userID string) string {
	return userID + emailDomain
}

// LoginResult 는 로그인 성공 응답.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Nickname     string `json:"nickname"`
}

// Login 은 사용자 로그인을 처리한다.
// 외부 인증 실패는 고정 메시지의 404로 변환되며, 이 경우 프로필 조회는 수행되지 않는다.
func (s *Service) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	if _, err := validate.Required(userID, "사용자 ID는 필수입니다."); err != nil {
		return nil, err
	}
	if _, err := validate.Required(password, "비밀번호는 필수입니다."); err != nil {
		return nil, err
	}

	user, session, err := s.accounts.SignInWithPassword(ctx, accountEmail(userID), password)
	if err != nil {
		return nil, model.NewNotFoundError("아이디 또는 비밀번호가 잘못되었습니다.")
	}

	profile, err := s.profiles.FindByUserID(ctx, user.ID)
	if err != nil {
		slog.Error("로그인 프로필 조회에 실패했습니다",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInternalError("서버 내부 오류가 발생했습니다.")
	}
	if profile == nil {
		return nil, model.NewNotFoundError("사용자 프로필을 찾을 수 없습니다.")
	}

	return &LoginResult{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		Nickname:     profile.Nickname,
	}, nil
}

// SignupResult 는 회원가입 성공 응답.
type SignupResult struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
}

// Signup 은 회원가입을 처리한다.
// 닉네임 사전 확인은 check-then-act 성격의 조언적 검사이며,
// 최종 유일성은 저장소의 유니크 제약이 보장한다.
// 외부 계정 생성 후 프로필 생성이 실패하면 고아 계정이 남지 않도록
// 생성된 계정을 보상 삭제한다.
func (s *Service) Signup(ctx context.Context, userID, password, nickname string) (*SignupResult, error) {
	trimmedUserID, err := validate.UserID(userID)
	if err != nil {
		return nil, err
	}
	trimmedNickname, err := validate.Nickname(nickname)
	if err != nil {
		return nil, err
	}
	if _, err := validate.Required(password, "비밀번호는 필수입니다."); err != nil {
		return nil, err
	}

	existing, err := s.profiles.FindByNickname(ctx, trimmedNickname)
	if err != nil {
		slog.Error("닉네임 사전 확인에 실패했습니다", slog.String("error", err.Error()))
		return nil, model.NewInternalError("닉네임 중복 확인 중 오류가 발생했습니다.")
	}
	if existing != nil {
		return nil, model.NewConflictError("이미 사용 중인 닉네임입니다.")
	}

	user, _, err := s.accounts.SignUp(ctx, accountEmail(trimmedUserID), password)
	if err != nil {
		slog.Warn("외부 계정 생성에 실패했습니다",
			slog.String("user_id", trimmedUserID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewConflictError("이미 등록된 사용자입니다.")
	}

	profile, err := s.profiles.Create(ctx, user.ID, trimmedNickname)
	if err != nil {
		// 프로필 생성 실패 시 방금 만든 외부 계정을 정리한다.
		// 보상 삭제까지 실패하면 고아 계정이 남으므로 로그로 추적한다.
		if delErr := s.accounts.AdminDeleteUser(ctx, user.ID); delErr != nil {
			slog.Error("회원가입 보상 삭제에 실패했습니다. 고아 계정이 남았습니다",
				slog.String("account_id", user.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, fmt.Errorf("프로필 생성에 실패했습니다: %w", err)
	}

	slog.Info("회원가입이 완료되었습니다",
		slog.String("user_id", trimmedUserID),
		slog.String("account_id", user.ID),
	)

	return &SignupResult{
		UserID:   trimmedUserID,
		Nickname: profile.Nickname,
	}, nil
}

// RefreshResult 는 토큰 갱신 성공 응답.
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh 는 리프레시 토큰으로 새 세션을 발급받는다.
// 토큰이 비어 있으면 외부 호출 없이 400을 반환한다.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, model.NewValidationError("리프레시 토큰이 필요합니다.")
	}

	session, err := s.accounts.RefreshSession(ctx, refreshToken)
	if err != nil || session == nil {
		return nil, model.NewUnauthorizedError("유효하지 않은 리프레시 토큰입니다.")
	}

	return &RefreshResult{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, nil
}

// DuplicationResult 는 중복 확인 응답.
type DuplicationResult struct {
	IsDuplicated bool   `json:"isDuplicated"`
	Message      string `json:"message"`
}

// CheckUserIDDuplication 은 사용자 ID의 사용 가능 여부를 확인한다.
func (s *Service) CheckUserIDDuplication(ctx context.Context, userID string) (*DuplicationResult, error) {
	trimmed, err := validate.UserID(userID)
	if err != nil {
		return nil, err
	}

	user, err := s.accounts.AdminUserByEmail(ctx, accountEmail(trimmed))
	if err != nil {
		slog.Error("사용자 ID 중복 확인에 실패했습니다", slog.String("error", err.Error()))
		return nil, model.NewInternalError("아이디 중복 확인 중 오류가 발생했습니다.")
	}

	if user != nil {
		return &DuplicationResult{IsDuplicated: true, Message: "이미 사용 중인 아이디입니다."}, nil
	}
	return &DuplicationResult{IsDuplicated: false, Message: "사용할 수 있는 아이디입니다."}, nil
}

// CheckNicknameDuplication 은 닉네임의 사용 가능 여부를 확인한다.
func (s *Service) CheckNicknameDuplication(ctx context.Context, nickname string) (*DuplicationResult, error) {
	trimmed, err := validate.Nickname(nickname)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindByNickname(ctx, trimmed)
	if err != nil {
		slog.Error("닉네임 중복 확인에 실패했습니다", slog.String("error", err.Error()))
		return nil, model.NewInternalError("닉네임 중복 확인 중 오류가 발생했습니다.")
	}

	if profile != nil {
		return &DuplicationResult{IsDuplicated: true, Message: "이미 사용 중인 닉네임입니다."}, nil
	}
	return &DuplicationResult{IsDuplicated: false, Message: "사용할 수 있는 닉네임입니다."}, nil
}
