package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"repairtrack/internal/config"
	"repairtrack/internal/dto"
	"repairtrack/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUserRepo struct {
	users map[string]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.Username]; ok {
		return gorm.ErrDuplicatedKey
	}
	u.ID = uuid.New()
	r.users[u.Username] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.Username] = u
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:   testSecret,
		BcryptCost:  4, // bcrypt.MinCost keeps the suite fast
		Departments: config.DefaultDepartments,
	}
}

func parseToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	return claims
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRegister_IssuesTokenForNewUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newTestCfg())

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{Username: "alice", Password: "pw123456"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	stored := repo.users["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw123456", stored.PasswordHash)

	claims := parseToken(t, resp.Token)
	assert.Equal(t, stored.ID.String(), claims["user_id"])
	assert.Equal(t, "alice", claims["username"])
	_, hasExp := claims["exp"]
	assert.False(t, hasExp)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newTestCfg())
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, dto.RegisterRequest{Username: "alice", Password: "different"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newTestCfg())
	ctx := context.Background()
	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "bob", Password: "correctpass"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "bob", Password: "correctpass"})
	require.NoError(t, err)
	assert.Equal(t, repo.users["bob"].ID.String(), parseToken(t, resp.Token)["user_id"])

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "bob", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "correctpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestToken_ExpiryWhenConfigured(t *testing.T) {
	cfg := newTestCfg()
	cfg.JWTExpirationHours = 8
	svc := NewAuthService(newStubUserRepo(), cfg).(*authService)
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{Username: "carol", Password: "pw123456"})
	require.NoError(t, err)

	claims := parseToken(t, resp.Token)
	assert.EqualValues(t, fixed.Add(8*time.Hour).Unix(), claims["exp"])
}

func TestIdentify(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newTestCfg())
	ctx := context.Background()
	_, err := svc.Register(ctx, dto.RegisterRequest{Username: "dave", Password: "pw123456"})
	require.NoError(t, err)

	u, err := svc.Identify(ctx, repo.users["dave"].ID)
	require.NoError(t, err)
	assert.Equal(t, "dave", u.Username)

	_, err = svc.Identify(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidationError_Message(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.orNil())
	v.add("name", "required")
	v.add("department", "required")
	assert.Equal(t, "validation failed: department, name", v.Error())
}

func TestRegister_PasswordOverBcryptLimit(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newTestCfg())

	// 40 runes pass the validator's max=72 but encode to 80 bytes
	_, err := svc.Register(context.Background(), dto.RegisterRequest{Username: "alice", Password: strings.Repeat("é", 40)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "max", verr.Fields["password"])
	assert.Empty(t, repo.users)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{Username: "alice", Password: strings.Repeat("é", 36)})
	assert.NoError(t, err)
}
