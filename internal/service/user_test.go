package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/account_service/internal/models"
	"github.com/Skotchmaster/account_service/internal/repo"
	"github.com/Skotchmaster/account_service/pkg/hash"
	"github.com/Skotchmaster/account_service/pkg/tokens"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Role{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestService(t *testing.T) *UserService {
	t.Helper()

	return &UserService{
		Repo:          repo.GormRepo{DB: initTestDB(t)},
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestUserService_SignUp_Validation(t *testing.T) {
	t.Parallel()

	svc := &UserService{}
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		nickname string
		password string
	}{
		{name: "empty username", username: "", nickname: "nick", password: "secret1"},
		{name: "short username", username: "a", nickname: "nick", password: "secret1"},
		{name: "empty nickname", username: "alice", nickname: "", password: "secret1"},
		{name: "short nickname", username: "alice", nickname: "n", password: "secret1"},
		{name: "empty password", username: "alice", nickname: "nick", password: ""},
		{name: "short password", username: "alice", nickname: "nick", password: "abc"},
		{name: "long password", username: "alice", nickname: "nick", password: "12345678901234567"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profile, err := svc.SignUp(ctx, tt.username, tt.nickname, tt.password)
			require.Error(t, err)
			assert.Nil(t, profile)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_Login_Validation(t *testing.T) {
	t.Parallel()

	svc := &UserService{}
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret1"},
		{name: "empty password", username: "alice", password: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := svc.Login(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_SignUp_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	profile, err := svc.SignUp(ctx, "alice", "A1", "secret1")
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "A1", profile.Nickname)
	assert.Equal(t, []string{models.DefaultAuthority}, profile.Authorities)

	stored, err := svc.Repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, hash.CheckPassword(stored.PasswordHash, "secret1"))
}

func TestUserService_SignUp_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "A1", "secret1")
	require.NoError(t, err)

	profile, err := svc.SignUp(ctx, "alice", "B2", "other1")
	require.Error(t, err)
	assert.Nil(t, profile)
	assert.ErrorIs(t, err, ErrConflict)

	// The original row survives the conflict.
	stored, err := svc.Repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "A1", stored.Nickname)
	assert.True(t, hash.CheckPassword(stored.PasswordHash, "secret1"))
}

func TestUserService_Login_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "A1", "secret1")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)

	accessClaims, err := tokens.ClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", accessClaims.Username)

	refreshClaims, err := tokens.ClaimsFromToken(res.RefreshToken, svc.RefreshSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", refreshClaims.Username)
	assert.NotEmpty(t, refreshClaims.ID)

	stored, err := svc.Repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, res.RefreshToken, stored.RefreshToken)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "A1", "secret1")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login_UnknownUser_SameErrorKind(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	res, err := svc.Login(context.Background(), "nobody", "secret1")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Refresh_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "A1", "secret1")
	require.NoError(t, err)
	loginRes, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, loginRes.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.AccessToken)

	claims, err := tokens.ClaimsFromToken(res.AccessToken, svc.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestUserService_Refresh_InvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty token", token: "", want: ErrValidation},
		{name: "garbage token", token: "not-a-valid-jwt", want: ErrInvalidRefreshToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Refresh(context.Background(), tt.token)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUserService_Refresh_SignedWithWrongSecret(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "A1", "secret1")
	require.NoError(t, err)

	forged, _, err := tokens.IssueRefresh("alice", []byte("attacker-secret"), RefreshTTL)
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, forged)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestUserService_Refresh_SupersededTokenRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "alice", "A1", "secret1")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The slot now holds the second token; the first is dead even
	// though its signature and expiry still verify.
	res, err := svc.Refresh(ctx, first.RefreshToken)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	res, err = svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
}
