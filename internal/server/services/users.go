// Package services implements the identity server's account logic on top of
// the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/easydrink/internal/common"
	"github.com/dmitrijs2005/easydrink/internal/dbx"
	"github.com/dmitrijs2005/easydrink/internal/logging"
	"github.com/dmitrijs2005/easydrink/internal/server/auth"
	"github.com/dmitrijs2005/easydrink/internal/server/config"
	"github.com/dmitrijs2005/easydrink/internal/server/models"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Session is what a successful sign-up, sign-in or refresh returns.
type Session struct {
	TokenPair
	User *models.User
}

type credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

type registration struct {
	credentials
	DisplayName string `validate:"max=100"`
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	signer                       *auth.Signer
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
	limiter                      *loginLimiter
	validate                     *validator.Validate
	logger                       logging.Logger
	bcryptCost                   int
	now                          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		signer:                       auth.NewSigner(cfg.SecretKey, cfg.AccessTokenValidityDuration),
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
		limiter:                      newLoginLimiter(cfg.LoginAttemptsPerMinute, cfg.LoginBurst),
		validate:                     validator.New(validator.WithRequiredStructEnabled()),
		logger:                       l.With("module", "users"),
		bcryptCost:                   bcrypt.DefaultCost,
		now:                          time.Now,
	}
}

// Signer exposes the access token signer for the transport layer.
func (s *UserService) Signer() *auth.Signer {
	return s.signer
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validationError maps the first failed field to its auth/ code.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return codeError(common.CodeInternalError)
	}
	switch verrs[0].Field() {
	case "Email":
		return codeError(common.CodeInvalidEmail)
	case "Password":
		if verrs[0].Tag() == "max" {
			return codeError(common.CodeInvalidCredential)
		}
		return codeError(common.CodeWeakPassword)
	}
	return codeError(common.CodeOperationNotAllowed)
}

// Register creates an account and signs it in.
func (s *UserService) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	in := registration{
		credentials: credentials{Email: normalizeEmail(email), Password: password},
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, codeError(common.CodeWeakPassword)
	}
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		DisplayName:  in.DisplayName,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, codeError(common.CodeEmailAlreadyInUse)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return s.newSession(ctx, s.db, user)
}

// Login checks the password. Attempts per email are rate limited, whether or
// not they succeed.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	in := credentials{Email: normalizeEmail(email), Password: password}
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		return nil, codeError(common.CodeInvalidEmail)
	}
	if in.Password == "" {
		return nil, codeError(common.CodeInvalidCredential)
	}

	if !s.limiter.Allow(in.Email) {
		s.logger.Warn(ctx, "sign-in throttled", "email", in.Email)
		return nil, codeError(common.CodeTooManyRequests)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, codeError(common.CodeUserNotFound)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(in.Password)); err != nil {
		return nil, codeError(common.CodeWrongPassword)
	}
	if user.Disabled {
		return nil, codeError(common.CodeUserDisabled)
	}

	return s.newSession(ctx, s.db, user)
}

// RefreshToken redeems a refresh token for a new pair. The old token is
// consumed in the same transaction that stores the new one.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, common.ErrRefreshTokenExpired
	}

	var session *Session

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrRefreshTokenExpired
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if !token.Expires.After(s.now()) {
			return common.ErrRefreshTokenExpired
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return codeError(common.CodeUserNotFound)
			}
			return fmt.Errorf("error loading user: %w", err)
		}
		if user.Disabled {
			return codeError(common.CodeUserDisabled)
		}

		session, err = s.newSession(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Logout revokes the refresh token. Unknown tokens are ignored.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

// RequestPasswordReset stores a reset token for the account. Delivery is
// out of scope; the dispatch is logged.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return codeError(common.CodeInvalidEmail)
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return codeError(common.CodeUserNotFound)
		}
		return fmt.Errorf("error loading user: %w", err)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("error generating reset token: %w", err)
	}

	reset := &models.PasswordReset{
		UserID:  user.ID,
		Token:   token,
		Expires: s.now().Add(s.resetTokenValidityDuration),
	}
	if err := s.repomanager.PasswordResets(s.db).Create(ctx, reset); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}

	s.logger.Info(ctx, "password reset dispatched", "user_id", user.ID, "expires_at", reset.Expires)
	return nil
}

// Account returns the user behind a verified access token.
func (s *UserService) Account(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, codeError(common.CodeUserNotFound)
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if user.Disabled {
		return nil, codeError(common.CodeUserDisabled)
	}
	return user, nil
}

func (s *UserService) newSession(ctx context.Context, db dbx.DBTX, user *models.User) (*Session, error) {
	accessToken, err := s.signer.WithClock(s.now).Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error signing access token: %w", err)
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	err = s.repomanager.RefreshTokens(db).Create(ctx, &models.RefreshToken{
		UserID:  user.ID,
		Token:   refreshToken,
		Expires: s.now().Add(s.refreshTokenValidityDuration),
	})
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &Session{
		TokenPair: TokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
		User:      user,
	}, nil
}
