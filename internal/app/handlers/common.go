package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/shopping-mall/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/shopping-mall/internal/lib/api/response"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
)

const (
	defaultPageSize = 10
)

var validate = validator.New()

var errNoProfile = errors.New("profile id not found in context")

// PageQuery параметры постраничного запроса, page нумеруется с нуля
type PageQuery struct {
	Page int `validate:"min=0"`
	Size int `validate:"min=1,max=100"`
}

// profileID достает id профиля, положенный JWT middleware. При ошибке ответ уже записан
func profileID(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	id, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		response.Error(w, logger, apperr.Unauthorized.Wrap(errNoProfile))
		return 0, false
	}
	return id, true
}

// pathID разбирает числовой параметр пути
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.InvalidQueryParameter.Wrap(errors.New("invalid " + name))
	}
	return id, nil
}

func pageQuery(r *http.Request) (PageQuery, error) {
	q := PageQuery{Page: 0, Size: defaultPageSize}
	var err error
	if v := r.URL.Query().Get("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			return q, apperr.InvalidQueryParameter.Wrap(err)
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if q.Size, err = strconv.Atoi(v); err != nil {
			return q, apperr.InvalidQueryParameter.Wrap(err)
		}
	}
	if err := validate.Struct(q); err != nil {
		return q, apperr.InvalidQueryParameter.Wrap(err)
	}
	return q, nil
}
