package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/linemk/shopping-mall/internal/lib/api/response"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/service"
)

// ReviewForm поля multipart-формы отзыва
type ReviewForm struct {
	Content string  `validate:"required,max=1000"`
	Rating  float64 `validate:"min=0,max=5"`
}

// CreateReviewForm форма создания отзыва
type CreateReviewForm struct {
	ProductID int64 `validate:"required,min=1"`
	ReviewForm
}

// DeleteReviewsRequest тело DELETE /api/reviews
type DeleteReviewsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,min=1"`
}

// ProductReviewsHandler обрабатывает GET /api/reviews/product/{productId}
func ProductReviewsHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductReviewsHandler"
		logger := log.With(slog.String("op", op))

		productID, err := pathID(r, "productId")
		if err != nil {
			response.Error(w, logger, err)
			return
		}

		reviews, err := reviewService.GetProductReviews(r.Context(), productID)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "product reviews", reviews)
	}
}

// ProductReviewsPageHandler обрабатывает GET /api/reviews/product/{productId}/page?page=&size=
func ProductReviewsPageHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductReviewsPageHandler"
		logger := log.With(slog.String("op", op))

		productID, err := pathID(r, "productId")
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		q, err := pageQuery(r)
		if err != nil {
			response.Error(w, logger, err)
			return
		}

		result, err := reviewService.GetProductReviewsPage(r.Context(), productID, q.Page, q.Size)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "product reviews page", response.NewPage(result.Reviews, q.Page, q.Size, result.Total))
	}
}

// MyReviewsHandler обрабатывает GET /api/reviews/my
func MyReviewsHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MyReviewsHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		reviews, err := reviewService.GetMyReviews(r.Context(), id)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "my reviews", reviews)
	}
}

// MyReviewsPageHandler обрабатывает GET /api/reviews/my/page?page=&size=
func MyReviewsPageHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.MyReviewsPageHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}
		q, err := pageQuery(r)
		if err != nil {
			response.Error(w, logger, err)
			return
		}

		result, err := reviewService.GetMyReviewsPage(r.Context(), id, q.Page, q.Size)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "my reviews page", response.NewPage(result.Reviews, q.Page, q.Size, result.Total))
	}
}

// CreateReviewHandler обрабатывает POST /api/reviews (multipart: productId, content, rating, image)
func CreateReviewHandler(log *slog.Logger, reviewService service.ReviewService, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateReviewHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		if err := parseMultipart(w, r, maxUploadSize); err != nil {
			response.Error(w, logger, err)
			return
		}
		productID, err := strconv.ParseInt(r.FormValue("productId"), 10, 64)
		if err != nil {
			response.Error(w, logger, apperr.InvalidRequest.Wrap(err))
			return
		}
		base, err := reviewForm(r)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		form := CreateReviewForm{ProductID: productID, ReviewForm: base}
		if err := validate.Struct(form); err != nil {
			response.Error(w, logger, apperr.InvalidRequest.Wrap(err))
			return
		}

		image, closeImage, err := formImage(r)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		defer closeImage()

		review, err := reviewService.CreateReview(r.Context(), id, service.ReviewInput{
			ProductID: form.ProductID,
			Content:   form.Content,
			Rating:    form.Rating,
			Image:     image,
		})
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "review created", review)
	}
}

// ModifyReviewHandler обрабатывает PUT /api/reviews/{reviewId} (multipart: content, rating, image)
func ModifyReviewHandler(log *slog.Logger, reviewService service.ReviewService, maxUploadSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ModifyReviewHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}
		reviewID, err := pathID(r, "reviewId")
		if err != nil {
			response.Error(w, logger, err)
			return
		}

		if err := parseMultipart(w, r, maxUploadSize); err != nil {
			response.Error(w, logger, err)
			return
		}
		form, err := reviewForm(r)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		if err := validate.Struct(form); err != nil {
			response.Error(w, logger, apperr.InvalidRequest.Wrap(err))
			return
		}

		image, closeImage, err := formImage(r)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		defer closeImage()

		review, err := reviewService.ModifyReview(r.Context(), id, reviewID, service.ReviewInput{
			Content: form.Content,
			Rating:  form.Rating,
			Image:   image,
		})
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "review modified", review)
	}
}

// DeleteReviewsHandler обрабатывает DELETE /api/reviews с телом {"ids": [...]}
func DeleteReviewsHandler(log *slog.Logger, reviewService service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteReviewsHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		var req DeleteReviewsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, logger, apperr.InvalidRequest.Wrap(err))
			return
		}
		if err := validate.Struct(req); err != nil {
			response.Error(w, logger, apperr.InvalidRequest.Wrap(err))
			return
		}

		deleted, err := reviewService.SoftDeleteReviews(r.Context(), id, req.IDs)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		if deleted == nil {
			deleted = []*models.Review{}
		}
		response.OK(w, logger, "reviews deleted", deleted)
	}
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxUploadSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return apperr.InvalidRequest.Wrap(err)
	}
	return nil
}

func reviewForm(r *http.Request) (ReviewForm, error) {
	rating, err := strconv.ParseFloat(r.FormValue("rating"), 64)
	if err != nil {
		return ReviewForm{}, apperr.InvalidRequest.Wrap(err)
	}
	return ReviewForm{Content: r.FormValue("content"), Rating: rating}, nil
}

// formImage возвращает необязательный файл "image". Закрывать файл нужно после вызова сервиса
func formImage(r *http.Request) (*service.ImageUpload, func(), error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperr.IOE.Wrap(err)
	}
	return imageUpload(file, header), func() { _ = file.Close() }, nil
}

func imageUpload(file multipart.File, header *multipart.FileHeader) *service.ImageUpload {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	}
}
