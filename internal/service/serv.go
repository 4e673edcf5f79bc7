package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/shopping-mall/internal/domain/models"
	security "github.com/linemk/shopping-mall/internal/jwt-new"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	log             *slog.Logger
	profiles        storage.ProfileStorage
	tokenTTL        time.Duration
	secret          string
	initialPayMoney int64
}

func NewAuthService(log *slog.Logger, profiles storage.ProfileStorage, tokenTTL time.Duration, secret string,
	initialPayMoney int64) *AuthService {
	return &AuthService{
		log:             log,
		profiles:        profiles,
		tokenTTL:        tokenTTL,
		secret:          secret,
		initialPayMoney: initialPayMoney,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Login осуществляет аутентификацию профиля.
// Неизвестный email регистрируется: пароль хэшируется через bcrypt, создается покупатель
// с начальным балансом pay-money. Для существующего профиля пароль сверяется с хэшем.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking profile")

	profile, err := a.profiles.GetProfileByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrProfileNotFound):
		logger.Info("profile not found, registering consumer")
		profile, err = a.register(ctx, email, password)
		if err != nil {
			logger.Error("failed to register profile", slog.Any("error", err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		logger.Error("failed to get profile", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get profile: %w", op, err)
	default:
		if err := bcrypt.CompareHashAndPassword(profile.PassHash, []byte(password)); err != nil {
			logger.Warn("invalid password")
			return "", fmt.Errorf("%s: %w", op, apperr.Unauthorized.Wrap(ErrInvalidCredentials))
		}
	}

	token, err := security.NewToken(profile, a.tokenTTL, a.secret)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("profile logged in successfully", slog.Int64("profileID", profile.ID))
	return token, nil
}

func (a *AuthService) register(ctx context.Context, email, password string) (*models.Profile, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	nickname, _, _ := strings.Cut(email, "@")

	return a.profiles.CreateConsumerProfile(ctx, &models.Profile{
		Email:    email,
		Nickname: nickname,
		PassHash: passHash,
		PayMoney: a.initialPayMoney,
	})
}
