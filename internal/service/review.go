package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/linemk/shopping-mall/internal/cache"
	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/lib/metrics"
	"github.com/linemk/shopping-mall/internal/objectstore"
	"github.com/linemk/shopping-mall/internal/storage"
	"golang.org/x/sync/singleflight"
)

const reviewNamespace = "review"

// ImageUpload файл изображения из multipart-запроса
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ReviewInput данные для создания и изменения отзыва. ProductID используется только при создании
type ReviewInput struct {
	ProductID int64
	Content   string
	Rating    float64
	Image     *ImageUpload
}

// ReviewPage страница отзывов и общее количество
type ReviewPage struct {
	Reviews []*models.Review `json:"reviews"`
	Total   int64            `json:"total"`
}

type ReviewService interface {
	GetProductReviews(ctx context.Context, productID int64) ([]*models.Review, error)
	GetProductReviewsPage(ctx context.Context, productID int64, page, size int) (*ReviewPage, error)
	GetMyReviews(ctx context.Context, profileID int64) ([]*models.Review, error)
	GetMyReviewsPage(ctx context.Context, profileID int64, page, size int) (*ReviewPage, error)
	CreateReview(ctx context.Context, profileID int64, in ReviewInput) (*models.Review, error)
	ModifyReview(ctx context.Context, profileID, reviewID int64, in ReviewInput) (*models.Review, error)
	SoftDeleteReviews(ctx context.Context, profileID int64, ids []int64) ([]*models.Review, error)
}

// ReviewRepositories хранилища, которые использует сервис отзывов
type ReviewRepositories struct {
	Consumers storage.ConsumerStorage
	Products  storage.ProductStorage
	Reviews   storage.ReviewStorage
}

type reviewService struct {
	log      *slog.Logger
	db       *sql.DB
	repos    ReviewRepositories
	cache    cache.Cache
	uploader objectstore.Uploader
	metrics  *metrics.Metrics
	group    singleflight.Group
}

// NewReviewService собирает сервис отзывов. cache может быть nil, тогда чтения идут прямо в БД
func NewReviewService(log *slog.Logger, db *sql.DB, repos ReviewRepositories, c cache.Cache,
	uploader objectstore.Uploader, m *metrics.Metrics) ReviewService {
	return &reviewService{
		log:      log,
		db:       db,
		repos:    repos,
		cache:    c,
		uploader: uploader,
		metrics:  m,
	}
}

func (s *reviewService) GetProductReviews(ctx context.Context, productID int64) ([]*models.Review, error) {
	const op = "service.ReviewService.GetProductReviews"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", productID))

	key := fmt.Sprintf("product:%d", productID)
	reviews, err := loadThrough(ctx, s, logger, key, func(ctx context.Context) ([]*models.Review, error) {
		return s.repos.Reviews.GetReviewsByProductID(ctx, productID)
	})
	if err != nil {
		logger.Error("failed to get reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

func (s *reviewService) GetProductReviewsPage(ctx context.Context, productID int64, page, size int) (*ReviewPage, error) {
	const op = "service.ReviewService.GetProductReviewsPage"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", productID))

	if err := checkPage(page, size); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := fmt.Sprintf("product:%d:page:%d:%d", productID, page, size)
	result, err := loadThrough(ctx, s, logger, key, func(ctx context.Context) (*ReviewPage, error) {
		reviews, total, err := s.repos.Reviews.GetReviewsPageByProductID(ctx, productID, size, page*size)
		if err != nil {
			return nil, err
		}
		return &ReviewPage{Reviews: reviews, Total: total}, nil
	})
	if err != nil {
		logger.Error("failed to get reviews page", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *reviewService) GetMyReviews(ctx context.Context, profileID int64) ([]*models.Review, error) {
	const op = "service.ReviewService.GetMyReviews"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))

	key := fmt.Sprintf("my:%d", profileID)
	reviews, err := loadThrough(ctx, s, logger, key, func(ctx context.Context) ([]*models.Review, error) {
		consumer, err := s.consumer(ctx, profileID)
		if err != nil {
			return nil, err
		}
		return s.repos.Reviews.GetReviewsByConsumerID(ctx, consumer.ID)
	})
	if err != nil {
		logger.Warn("failed to get own reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

func (s *reviewService) GetMyReviewsPage(ctx context.Context, profileID int64, page, size int) (*ReviewPage, error) {
	const op = "service.ReviewService.GetMyReviewsPage"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))

	if err := checkPage(page, size); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := fmt.Sprintf("my:%d:page:%d:%d", profileID, page, size)
	result, err := loadThrough(ctx, s, logger, key, func(ctx context.Context) (*ReviewPage, error) {
		consumer, err := s.consumer(ctx, profileID)
		if err != nil {
			return nil, err
		}
		reviews, total, err := s.repos.Reviews.GetReviewsPageByConsumerID(ctx, consumer.ID, size, page*size)
		if err != nil {
			return nil, err
		}
		return &ReviewPage{Reviews: reviews, Total: total}, nil
	})
	if err != nil {
		logger.Warn("failed to get own reviews page", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *reviewService) CreateReview(ctx context.Context, profileID int64, in ReviewInput) (review *models.Review, err error) {
	const op = "service.ReviewService.CreateReview"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID), slog.Int64("productID", in.ProductID))
	defer func(start time.Time) { s.metrics.ObserveUseCase("create_review", start, err) }(time.Now())

	consumer, err := s.consumer(ctx, profileID)
	if err != nil {
		logger.Warn("failed to resolve consumer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repos.Products.GetProductByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("product not found")
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundProduct.Wrap(err))
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	review, err = s.repos.Reviews.CreateReview(ctx, tx, &models.Review{
		ConsumerID: consumer.ID,
		ProductID:  in.ProductID,
		Content:    in.Content,
		Rating:     in.Rating,
	})
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to create review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create review: %w", op, err)
	}

	if in.Image != nil {
		url, err := s.uploadImage(ctx, review.ID, in.Image)
		if err != nil {
			rollback(logger, tx)
			logger.Error("failed to upload review image", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repos.Reviews.UpdateReviewImage(ctx, tx, review.ID, &url); err != nil {
			rollback(logger, tx)
			logger.Error("failed to save review image", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to save review image: %w", op, err)
		}
		review.ImageURL = &url
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	s.invalidate(ctx, logger)

	logger.Info("review created", slog.Int64("reviewID", review.ID))
	return review, nil
}

// ModifyReview заменяет текст и оценку. Изображение заменяется новым, а без файла удаляется.
func (s *reviewService) ModifyReview(ctx context.Context, profileID, reviewID int64, in ReviewInput) (review *models.Review, err error) {
	const op = "service.ReviewService.ModifyReview"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID), slog.Int64("reviewID", reviewID))
	defer func(start time.Time) { s.metrics.ObserveUseCase("modify_review", start, err) }(time.Now())

	consumer, err := s.consumer(ctx, profileID)
	if err != nil {
		logger.Warn("failed to resolve consumer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	review, err = s.repos.Reviews.GetReviewForUpdateTx(ctx, tx, consumer.ID, reviewID)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrReviewNotFound) {
			logger.Warn("review not found for consumer")
			return nil, fmt.Errorf("%s: %w", op, apperr.BadID.Wrap(err))
		}
		if errors.Is(err, storage.ErrResourceLocked) {
			logger.Warn("review is locked by another request")
			return nil, fmt.Errorf("%s: %w", op, apperr.ResourceLocked.Wrap(err))
		}
		logger.Error("failed to get review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get review: %w", op, err)
	}

	review.Content = in.Content
	review.Rating = in.Rating
	review.ImageURL = nil
	if in.Image != nil {
		url, err := s.uploadImage(ctx, review.ID, in.Image)
		if err != nil {
			rollback(logger, tx)
			logger.Error("failed to upload review image", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		review.ImageURL = &url
	}

	review, err = s.repos.Reviews.UpdateReview(ctx, tx, review)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to update review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update review: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	s.invalidate(ctx, logger)

	logger.Info("review modified")
	return review, nil
}

func (s *reviewService) SoftDeleteReviews(ctx context.Context, profileID int64, ids []int64) (deleted []*models.Review, err error) {
	const op = "service.ReviewService.SoftDeleteReviews"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))
	defer func(start time.Time) { s.metrics.ObserveUseCase("delete_reviews", start, err) }(time.Now())

	if len(ids) == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.InvalidRequest)
	}

	consumer, err := s.consumer(ctx, profileID)
	if err != nil {
		logger.Warn("failed to resolve consumer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	deleted, err = s.repos.Reviews.SoftDeleteReviews(ctx, tx, consumer.ID, ids)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to delete reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to delete reviews: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	s.invalidate(ctx, logger)

	logger.Info("reviews deleted", slog.Int("requested", len(ids)), slog.Int("deleted", len(deleted)))
	return deleted, nil
}

func (s *reviewService) consumer(ctx context.Context, profileID int64) (*models.Consumer, error) {
	consumer, err := s.repos.Consumers.GetConsumerByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrConsumerNotFound) {
			return nil, apperr.NotFoundByID.Wrap(err)
		}
		return nil, fmt.Errorf("failed to get consumer: %w", err)
	}
	return consumer, nil
}

func (s *reviewService) uploadImage(ctx context.Context, reviewID int64, img *ImageUpload) (string, error) {
	key := objectstore.ReviewImageKey(reviewID, img.Filename)
	url, err := s.uploader.Upload(ctx, key, img.Reader, img.Size, img.ContentType)
	if err != nil {
		s.metrics.UploadFailure()
		return "", apperr.IOE.Wrap(err)
	}
	return url, nil
}

// invalidate сбрасывает все кэшированные списки отзывов. Ошибка кэша не ломает запись
func (s *reviewService) invalidate(ctx context.Context, logger *slog.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ClearNamespace(ctx, reviewNamespace); err != nil {
		logger.Warn("failed to clear review cache", slog.Any("error", err))
	}
}

// loadThrough читает значение из кэша, а при промахе загружает его один раз на ключ и кладет в кэш.
// Ключ включает поколение пространства имен: загрузка, начатая до записи, попадает
// в ключ старого поколения и не видна читателям после очистки
func loadThrough[T any](ctx context.Context, s *reviewService, logger *slog.Logger, key string,
	load func(ctx context.Context) (T, error)) (T, error) {
	useCache := s.cache != nil
	if useCache {
		gen, err := s.cache.Generation(ctx, reviewNamespace)
		if err != nil {
			logger.Warn("review cache generation read failed", slog.Any("error", err))
			useCache = false
		} else {
			key = fmt.Sprintf("v%d:%s", gen, key)
		}
	}

	if useCache {
		var cached T
		err := s.cache.Get(ctx, reviewNamespace, key, &cached)
		if err == nil {
			s.metrics.CacheLookup(reviewNamespace, true)
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn("review cache read failed", slog.Any("error", err))
		}
		s.metrics.CacheLookup(reviewNamespace, false)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if useCache {
			if err := s.cache.Set(ctx, reviewNamespace, key, value); err != nil {
				logger.Warn("review cache write failed", slog.Any("error", err))
			}
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func checkPage(page, size int) error {
	if page < 0 || size < 1 || size > maxPageSize {
		return apperr.InvalidQueryParameter
	}
	return nil
}

const maxPageSize = 100
