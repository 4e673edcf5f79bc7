package jwtmiddleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/shopping-mall/internal/lib/api/response"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
)

type contextKey string

const ProfileIDKey contextKey = "profileID"

var (
	errMissingToken  = errors.New("missing token")
	errTokenFormat   = errors.New("invalid token format")
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid token claims")
)

// NewJWTMiddleware создаёт middleware для проверки JWT и кладет id профиля в контекст.
func NewJWTMiddleware(log *slog.Logger, secret string) func(http.Handler) http.Handler {
	if secret == "" {
		panic("JWT_SECRET is not set")
	}
	log = log.With(slog.String("op", "jwtmiddleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profileID, err := parseProfileID(r.Header.Get("Authorization"), secret)
			if err != nil {
				response.Error(w, log, apperr.Unauthorized.Wrap(err))
				return
			}

			ctx := context.WithValue(r.Context(), ProfileIDKey, profileID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseProfileID разбирает заголовок формата "Bearer <token>"
func parseProfileID(authHeader, secret string) (int64, error) {
	if authHeader == "" {
		return 0, errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, errTokenFormat
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errInvalidClaims
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, errInvalidClaims
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, errInvalidClaims
	}
	return id, nil
}

// FromContext извлекает id профиля из контекста.
func FromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ProfileIDKey).(int64)
	return id, ok
}
