package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

const invalidCredentials = "Invalid credentials"

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

func subject(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func parseSubject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid subject")
	}
	return uint(id), nil
}

func (s *AuthService) CreateAccessToken(u *models.User, exp time.Time) (string, error) {
	return tokens.Sign(tokens.AccessClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject(u.ID),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}, s.JWTSecret)
}

func (s *AuthService) CreateRefreshToken(userID uint, jti string, exp time.Time) (string, error) {
	return tokens.Sign(tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject(userID),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        jti,
		},
	}, s.RefreshSecret)
}

// issue signs a fresh pair without persisting the refresh token.
func (s *AuthService) issue(u *models.User) (*LoginResult, *models.RefreshToken, error) {
	now := time.Now()
	res := &LoginResult{
		AccessExp:  now.Add(s.AccessTTL),
		RefreshExp: now.Add(s.RefreshTTL),
		User:       u,
	}

	var err error
	if res.AccessToken, err = s.CreateAccessToken(u, res.AccessExp); err != nil {
		return nil, nil, httperr.Wrap(err, httperr.KindService)
	}
	jti := tokens.NewJTI()
	if res.RefreshToken, err = s.CreateRefreshToken(u.ID, jti, res.RefreshExp); err != nil {
		return nil, nil, httperr.Wrap(err, httperr.KindService)
	}

	row := &models.RefreshToken{
		Token:     tokens.Sha256Hex(res.RefreshToken),
		UserID:    u.ID,
		JTI:       jti,
		ExpiresAt: res.RefreshExp.Unix(),
	}
	return res, row, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	return s.createUser(ctx, req.Name, req.Email, req.Password, models.RoleCustomer)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.create_user")
	email = strings.ToLower(strings.TrimSpace(email))

	taken, err := s.Repo.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, dbErr(err, "")
	}
	if taken {
		return nil, fail(ErrConflict, "User with this email already exists")
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, httperr.Wrap(err, httperr.KindService)
	}

	user := &models.User{
		Name:         validation.Sanitize(name),
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(dbErr(err, ""), ErrConflict) {
			return nil, fail(ErrConflict, "User with this email already exists")
		}
		return nil, dbErr(err, "")
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if err = dbErr(err, invalidCredentials); errors.Is(err, ErrNotFound) {
			return nil, fail(ErrUnauthorized, invalidCredentials)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, fail(ErrUnauthorized, invalidCredentials)
	}

	res, row, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateRefreshToken(ctx, row); err != nil {
		return nil, dbErr(err, "")
	}
	return res, nil
}

// Refresh rotates refreshToken: the old row is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")
	if refreshToken == "" {
		return nil, fail(ErrUnauthorized, "Refresh token required")
	}

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid token", "error", err)
		return nil, fail(ErrUnauthorized, "Invalid refresh token")
	}
	userID, err := parseSubject(claims.Subject)
	if err != nil {
		return nil, fail(ErrUnauthorized, "Invalid refresh token")
	}

	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if err = dbErr(err, ""); errors.Is(err, ErrNotFound) {
			return nil, fail(ErrUnauthorized, "Invalid refresh token")
		}
		return nil, err
	}
	if stored.Token != tokens.Sha256Hex(refreshToken) || stored.UserID != userID {
		return nil, fail(ErrUnauthorized, "Invalid refresh token")
	}

	user, err := s.Repo.GetUserByID(ctx, userID, false)
	if err != nil {
		if err = dbErr(err, ""); errors.Is(err, ErrNotFound) {
			return nil, fail(ErrUnauthorized, "Invalid refresh token")
		}
		return nil, err
	}

	res, row, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, row); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) {
			l.Warn("refresh_failed", "status", 401, "reason", "token expired or revoked", "user_id", userID)
			return nil, fail(ErrTokenReused, "Refresh token expired or revoked")
		}
		return nil, dbErr(err, "Invalid refresh token")
	}
	return res, nil
}

func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return dbErr(s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(refreshToken)), "")
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req transport.ChangePasswordRequest) error {
	user, err := s.Repo.GetUserByID(ctx, userID, false)
	if err != nil {
		return dbErr(err, "User not found")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return fail(ErrValidation, "Current password is incorrect")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return httperr.Wrap(err, httperr.KindService)
	}
	return s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if err := tx.UpdatePassword(ctx, userID, pwHash); err != nil {
			return dbErr(err, "User not found")
		}
		return dbErr(tx.RevokeUserTokens(ctx, userID), "")
	})
}

// Authenticate validates an access token and returns the user id and role it carries.
func (s *AuthService) Authenticate(token string) (uint, models.Role, error) {
	claims, err := tokens.AccessClaimsFromToken(token, s.JWTSecret)
	if err != nil {
		return 0, "", err
	}
	id, err := parseSubject(claims.Subject)
	if err != nil {
		return 0, "", err
	}
	return id, models.Role(claims.Role), nil
}
