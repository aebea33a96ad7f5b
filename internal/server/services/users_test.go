package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/dmitrijs2005/easydrink/internal/dbx"
	"github.com/dmitrijs2005/easydrink/internal/logging"
	"github.com/dmitrijs2005/easydrink/internal/server/config"
	"github.com/dmitrijs2005/easydrink/internal/server/models"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/resets"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- in-memory repositories ---

type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User // by id
	tokens  map[string]*models.RefreshToken
	resets  []*models.PasswordReset
	failErr error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.CreatedAt = testNow
	cp := *u
	r.s.users[u.ID] = &cp
	return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failErr != nil {
		return nil, r.s.failErr
	}
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(_ context.Context, t *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *t
	r.s.tokens[t.Token] = &cp
	return nil
}

func (r memTokens) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.s.tokens, token)
	return t, nil
}

func (r memTokens) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failErr != nil {
		return r.s.failErr
	}
	delete(r.s.tokens, token)
	return nil
}

type memResets struct{ s *memStore }

func (r memResets) Create(_ context.Context, p *models.PasswordReset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.resets = append(r.s.resets, p)
	return nil
}

type memManager struct{ s *memStore }

func (m memManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m memManager) Users(dbx.DBTX) users.Repository {
	return memUsers{m.s}
}

func (m memManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return memTokens{m.s}
}

func (m memManager) PasswordResets(dbx.DBTX) resets.Repository {
	return memResets{m.s}
}

// --- helpers ---

func newTestService(t *testing.T) (*UserService, *memStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	store := newMemStore()
	s := NewUserService(db, memManager{store}, cfg, logging.Nop())
	s.bcryptCost = bcrypt.MinCost
	s.now = func() time.Time { return testNow }
	s.limiter.now = s.now
	return s, store, mock
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, code, e.Code)
}

// --- tests ---

func TestRegister(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	sess, err := s.Register(ctx, "  Ana@Example.com ", "secret1", " Ana ")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.Equal(t, "Ana", sess.User.DisplayName)
	assert.Len(t, sess.User.ID, 36)
	assert.NotEmpty(t, sess.AccessToken)
	assert.Len(t, sess.RefreshToken, 64)

	stored := store.users[sess.User.ID]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PasswordHash, []byte("secret1")))
	assert.Contains(t, store.tokens, sess.RefreshToken)
	assert.Equal(t, testNow.Add(24*time.Hour), store.tokens[sess.RefreshToken].Expires)

	claims, err := s.Signer().WithClock(s.now).Verify(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.Subject)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name, email, password, display string
		code                           string
	}{
		{"bad email", "not-an-email", "secret1", "", common.CodeInvalidEmail},
		{"empty email", "", "secret1", "", common.CodeInvalidEmail},
		{"short password", "a@b.co", "123", "", common.CodeWeakPassword},
		{"empty password", "a@b.co", "", "", common.CodeWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, store, _ := newTestService(t)
			_, err := s.Register(context.Background(), tt.email, tt.password, tt.display)
			requireCode(t, err, tt.code)
			assert.Empty(t, store.users)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = s.Register(ctx, "ANA@example.com", "secret2", "")
	requireCode(t, err, common.CodeEmailAlreadyInUse)
}

func TestRegister_StorageError(t *testing.T) {
	s, store, _ := newTestService(t)
	store.failErr = errors.New("db down")

	_, err := s.Register(context.Background(), "ana@example.com", "secret1", "")
	require.Error(t, err)
	var e *Error
	assert.False(t, errors.As(err, &e))
	assert.Contains(t, err.Error(), "db down")
}

func TestLogin(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	sess, err := s.Login(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.User.ID)
	assert.NotEqual(t, reg.RefreshToken, sess.RefreshToken)
	assert.Len(t, store.tokens, 2)

	_, err = s.Login(ctx, "ana@example.com", "wrong!!")
	requireCode(t, err, common.CodeWrongPassword)

	_, err = s.Login(ctx, "bob@example.com", "secret1")
	requireCode(t, err, common.CodeUserNotFound)

	_, err = s.Login(ctx, "bob", "secret1")
	requireCode(t, err, common.CodeInvalidEmail)

	_, err = s.Login(ctx, "ana@example.com", "")
	requireCode(t, err, common.CodeInvalidCredential)
}

func TestLogin_Disabled(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)
	store.users[reg.User.ID].Disabled = true

	_, err = s.Login(ctx, "ana@example.com", "secret1")
	requireCode(t, err, common.CodeUserDisabled)
}

func TestLogin_Throttled(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)

	// Default burst is 5 attempts.
	for i := 0; i < 5; i++ {
		_, err = s.Login(ctx, "ana@example.com", "wrong!!")
		requireCode(t, err, common.CodeWrongPassword)
	}
	_, err = s.Login(ctx, "ana@example.com", "secret1")
	requireCode(t, err, common.CodeTooManyRequests)

	// Other emails are unaffected.
	_, err = s.Login(ctx, "bob@example.com", "secret1")
	requireCode(t, err, common.CodeUserNotFound)

	// One attempt is refilled after 12s at 5/minute.
	later := testNow.Add(13 * time.Second)
	s.limiter.now = func() time.Time { return later }
	_, err = s.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
}

func TestRefreshToken(t *testing.T) {
	s, store, mock := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	sess, err := s.RefreshToken(ctx, reg.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.User.ID)
	assert.NotContains(t, store.tokens, reg.RefreshToken)
	assert.Contains(t, store.tokens, sess.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())

	// A consumed token cannot be redeemed again.
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Expired(t *testing.T) {
	s, store, mock := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)
	store.tokens[reg.RefreshToken].Expires = testNow

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	_, err = s.RefreshToken(ctx, "")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestRefreshToken_DisabledUser(t *testing.T) {
	s, store, mock := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)
	store.users[reg.User.ID].Disabled = true

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = s.RefreshToken(ctx, reg.RefreshToken)
	requireCode(t, err, common.CodeUserDisabled)
}

func TestLogout(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, reg.RefreshToken))
	assert.Empty(t, store.tokens)

	require.NoError(t, s.Logout(ctx, "unknown"))
	require.NoError(t, s.Logout(ctx, ""))

	store.failErr = errors.New("db down")
	assert.Error(t, s.Logout(ctx, "any"))
}

func TestRequestPasswordReset(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "")
	require.NoError(t, err)

	require.NoError(t, s.RequestPasswordReset(ctx, "Ana@Example.com"))
	require.Len(t, store.resets, 1)
	assert.Equal(t, reg.User.ID, store.resets[0].UserID)
	assert.Len(t, store.resets[0].Token, 64)
	assert.Equal(t, testNow.Add(time.Hour), store.resets[0].Expires)

	requireCode(t, s.RequestPasswordReset(ctx, "bob@example.com"), common.CodeUserNotFound)
	requireCode(t, s.RequestPasswordReset(ctx, "bob"), common.CodeInvalidEmail)
}

func TestAccount(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)

	u, err := s.Account(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.DisplayName)

	_, err = s.Account(ctx, "missing")
	requireCode(t, err, common.CodeUserNotFound)

	store.users[reg.User.ID].Disabled = true
	_, err = s.Account(ctx, reg.User.ID)
	requireCode(t, err, common.CodeUserDisabled)
}

func TestLoginLimiter_Prunes(t *testing.T) {
	l := newLoginLimiter(60, 1)
	now := testNow
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	now = now.Add(time.Hour)
	l.prune(now)
	assert.Empty(t, l.limiters)
}
