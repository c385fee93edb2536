package service

import (
	"context"
	"time"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"
	"algoritmia_backend/pkg/monitoring"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenRevoker remembers logged out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	UserRepo *repository.UserRepository
	Revoker  TokenRevoker
	Cfg      *config.Config
}

// NewAuthService accepts a nil revoker, in which case logout only ends the
// session client side.
func NewAuthService(userRepo *repository.UserRepository, revoker TokenRevoker, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Revoker:  revoker,
		Cfg:      cfg,
	}
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	user, err := s.UserRepo.FindByEmail(ctx, dto.NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		monitoring.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		monitoring.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	monitoring.LoginAttempts.WithLabelValues("success").Inc()

	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.Cfg.JWT.ExpireTime.Seconds()),
		User:      user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if s.Revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return errors.Wrap(s.Revoker.Revoke(ctx, claims.ID, ttl), "revoke token")
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return user, nil
}
