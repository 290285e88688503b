package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/account_service/internal/models"
	"github.com/Skotchmaster/account_service/internal/repo"
	"github.com/Skotchmaster/account_service/pkg/hash"
	"github.com/Skotchmaster/account_service/pkg/logging"
	"github.com/Skotchmaster/account_service/pkg/tokens"
)

const (
	AccessTTL  = 10 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type UserService struct {
	Repo          repo.GormRepo
	AccessSecret  []byte
	RefreshSecret []byte
}

// Profile is the public-safe projection of a user. It never carries
// the password hash.
type Profile struct {
	Username    string   `json:"username"`
	Nickname    string   `json:"nickname"`
	Authorities []string `json:"authorities"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type RefreshResult struct {
	AccessToken string
	AccessExp   time.Time
}

func (s *UserService) SignUp(ctx context.Context, username, nickname, password string) (*Profile, error) {
	l := logging.FromContext(ctx).With("svc", "user.signup")

	if err := validateSignUp(username, nickname, password); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := models.User{
		Username:     username,
		Nickname:     nickname,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("signup_conflict", "username", username)
			return nil, ErrConflict
		}
		l.Error("signup_error", "error", err)
		return nil, err
	}

	l.Info("user_created", "username", username)
	return &Profile{
		Username:    user.Username,
		Nickname:    user.Nickname,
		Authorities: user.Authorities(),
	}, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.login", "username", username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.Repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			// Same error as a wrong password: no username enumeration.
			l.Warn("login_failed", "reason", "no matching user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_error", "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	accessToken, accessExp, err := tokens.IssueAccess(user.Username, s.AccessSecret, AccessTTL)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign access token", "error", err)
		return nil, err
	}

	refreshToken, refreshExp, err := tokens.IssueRefresh(user.Username, s.RefreshSecret, RefreshTTL)
	if err != nil {
		l.Error("login_error", "reason", "cannot sign refresh token", "error", err)
		return nil, err
	}

	if err := s.Repo.SaveRefreshToken(ctx, user.Username, refreshToken); err != nil {
		l.Error("login_error", "reason", "cannot persist refresh token", "error", err)
		return nil, err
	}

	l.Info("login_successful")
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "user.refresh")

	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token is required", ErrValidation)
	}

	claims, err := tokens.ClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "reason", "verification failed", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_failed", "reason", "no matching user")
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh_error", "error", err)
		return nil, err
	}

	// A token that no longer matches the stored slot was superseded by
	// a newer login; treat it the same as a forged one.
	if user.RefreshToken != refreshToken {
		l.Warn("refresh_failed", "reason", "token does not match stored slot")
		return nil, ErrInvalidRefreshToken
	}

	accessToken, accessExp, err := tokens.IssueAccess(user.Username, s.AccessSecret, AccessTTL)
	if err != nil {
		l.Error("refresh_error", "reason", "cannot sign access token", "error", err)
		return nil, err
	}

	l.Info("access_token_renewed", "username", user.Username)
	return &RefreshResult{AccessToken: accessToken, AccessExp: accessExp}, nil
}

func validateSignUp(username, nickname, password string) error {
	switch {
	case len(username) < 2:
		return fmt.Errorf("%w: username must be at least 2 characters", ErrValidation)
	case len(nickname) < 2:
		return fmt.Errorf("%w: nickname must be at least 2 characters", ErrValidation)
	case len(password) < 4 || len(password) > 16:
		return fmt.Errorf("%w: password must be between 4 and 16 characters", ErrValidation)
	}
	return nil
}
