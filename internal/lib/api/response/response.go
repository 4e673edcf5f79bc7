package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/shopping-mall/internal/lib/apperr"
)

// Response общий конверт ответа: сообщение и полезная нагрузка
type Response[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Page полезная нагрузка постраничного ответа
type Page[T any] struct {
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
	TotalPages  int  `json:"totalPages"`
	Contents    []T  `json:"contents"`
}

// NewPage считает флаги страницы. page нумеруется с нуля
func NewPage[T any](contents []T, page, size int, total int64) Page[T] {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	if contents == nil {
		contents = []T{}
	}
	return Page[T]{
		HasNext:     page+1 < totalPages,
		HasPrevious: page > 0,
		TotalPages:  totalPages,
		Contents:    contents,
	}
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// OK пишет конверт со статусом 200
func OK[T any](w http.ResponseWriter, log *slog.Logger, message string, data T) {
	JSON(w, log, http.StatusOK, Response[T]{Message: message, Data: data})
}

// Error отображает ошибку сервиса на HTTP-статус
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	appErr := apperr.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("code", string(appErr.Code)), slog.Any("error", err))
	} else {
		log.Warn("request rejected", slog.String("code", string(appErr.Code)), slog.Any("error", err))
	}
	JSON(w, log, appErr.Status, ErrorResponse{Code: appErr.Code, Message: appErr.Message})
}

func JSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}
