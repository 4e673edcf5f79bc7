package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/shopping-mall/internal/lib/api/response"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/service"
)

// AuthRequest представляет структуру запроса для аутентификации с тегами валидации
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthResponse представляет структуру ответа с JWT-токеном
type AuthResponse struct {
	Token string `json:"token"`
}

// AuthHandler обрабатывает POST /api/auth. Неизвестный email регистрируется как покупатель
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, logger, apperr.InvalidRequest.Wrap(err))
			return
		}
		if err := validate.Struct(req); err != nil {
			response.Error(w, logger, apperr.InvalidRequest.Wrap(err))
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			response.Error(w, logger, err)
			return
		}

		response.OK(w, logger, "login succeeded", AuthResponse{Token: token})
	}
}
