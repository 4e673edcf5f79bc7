package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/shopping-mall/internal/domain/models"
)

var ErrReviewNotFound = errors.New("review not found")

// ReviewStorage описывает методы для работы с отзывами.
// Все чтения возвращают только не удаленные отзывы.
type ReviewStorage interface {
	GetReviewsByProductID(ctx context.Context, productID int64) ([]*models.Review, error)
	GetReviewsPageByProductID(ctx context.Context, productID int64, limit, offset int) ([]*models.Review, int64, error)
	GetReviewsByConsumerID(ctx context.Context, consumerID int64) ([]*models.Review, error)
	GetReviewsPageByConsumerID(ctx context.Context, consumerID int64, limit, offset int) ([]*models.Review, int64, error)
	// GetAverageRating средняя оценка товара, 0 если отзывов нет
	GetAverageRating(ctx context.Context, productID int64) (float64, error)

	CreateReview(ctx context.Context, tx *sql.Tx, review *models.Review) (*models.Review, error)
	// GetReviewForUpdateTx возвращает отзыв покупателя и блокирует строку до конца транзакции
	GetReviewForUpdateTx(ctx context.Context, tx *sql.Tx, consumerID, reviewID int64) (*models.Review, error)
	UpdateReview(ctx context.Context, tx *sql.Tx, review *models.Review) (*models.Review, error)
	UpdateReviewImage(ctx context.Context, tx *sql.Tx, reviewID int64, imageURL *string) error
	// SoftDeleteReviews помечает удаленными отзывы покупателя из списка ids и возвращает их
	SoftDeleteReviews(ctx context.Context, tx *sql.Tx, consumerID int64, ids []int64) ([]*models.Review, error)
}

const reviewColumns = "id, consumer_id, product_id, content, rating, review_image_url, is_deleted, created_at, updated_at"

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewStorage {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) GetReviewsByProductID(ctx context.Context, productID int64) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE product_id = $1 AND is_deleted = FALSE ORDER BY id DESC", productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product reviews: %w", err)
	}
	return scanReviews(rows)
}

func (r *reviewRepository) GetReviewsPageByProductID(ctx context.Context, productID int64, limit, offset int) ([]*models.Review, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE product_id = $1 AND is_deleted = FALSE", productID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count product reviews: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE product_id = $1 AND is_deleted = FALSE ORDER BY id DESC LIMIT $2 OFFSET $3",
		productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query product reviews page: %w", err)
	}
	reviews, err := scanReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) GetReviewsByConsumerID(ctx context.Context, consumerID int64) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE consumer_id = $1 AND is_deleted = FALSE ORDER BY id DESC", consumerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query consumer reviews: %w", err)
	}
	return scanReviews(rows)
}

func (r *reviewRepository) GetReviewsPageByConsumerID(ctx context.Context, consumerID int64, limit, offset int) ([]*models.Review, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE consumer_id = $1 AND is_deleted = FALSE", consumerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count consumer reviews: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE consumer_id = $1 AND is_deleted = FALSE ORDER BY id DESC LIMIT $2 OFFSET $3",
		consumerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query consumer reviews page: %w", err)
	}
	reviews, err := scanReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) GetAverageRating(ctx context.Context, productID int64) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = $1 AND is_deleted = FALSE", productID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to get average rating: %w", err)
	}
	return avg, nil
}

func (r *reviewRepository) CreateReview(ctx context.Context, tx *sql.Tx, review *models.Review) (*models.Review, error) {
	query := `
		INSERT INTO reviews (consumer_id, product_id, content, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reviewColumns
	row := tx.QueryRowContext(ctx, query, review.ConsumerID, review.ProductID, review.Content, review.Rating)
	created, err := scanReview(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	return created, nil
}

func (r *reviewRepository) GetReviewForUpdateTx(ctx context.Context, tx *sql.Tx, consumerID, reviewID int64) (*models.Review, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE id = $1 AND consumer_id = $2 AND is_deleted = FALSE FOR UPDATE NOWAIT",
		reviewID, consumerID)
	review, err := scanReview(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "55P03" {
			return nil, fmt.Errorf("%w: %v", ErrResourceLocked, err)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (r *reviewRepository) UpdateReview(ctx context.Context, tx *sql.Tx, review *models.Review) (*models.Review, error) {
	query := `
		UPDATE reviews SET content = $1, rating = $2, review_image_url = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + reviewColumns
	row := tx.QueryRowContext(ctx, query, review.Content, review.Rating, nullString(review.ImageURL), review.ID)
	updated, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return updated, nil
}

func (r *reviewRepository) UpdateReviewImage(ctx context.Context, tx *sql.Tx, reviewID int64, imageURL *string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE reviews SET review_image_url = $1 WHERE id = $2", nullString(imageURL), reviewID)
	if err != nil {
		return fmt.Errorf("failed to update review image: %w", err)
	}
	return nil
}

func (r *reviewRepository) SoftDeleteReviews(ctx context.Context, tx *sql.Tx, consumerID int64, ids []int64) ([]*models.Review, error) {
	query := `
		UPDATE reviews SET is_deleted = TRUE, updated_at = NOW()
		WHERE consumer_id = $1 AND id = ANY($2) AND is_deleted = FALSE
		RETURNING ` + reviewColumns
	rows, err := tx.QueryContext(ctx, query, consumerID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to soft delete reviews: %w", err)
	}
	return scanReviews(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*models.Review, error) {
	review := &models.Review{}
	var imageURL sql.NullString
	if err := row.Scan(&review.ID, &review.ConsumerID, &review.ProductID, &review.Content, &review.Rating,
		&imageURL, &review.IsDeleted, &review.CreatedAt, &review.UpdatedAt); err != nil {
		return nil, err
	}
	if imageURL.Valid {
		review.ImageURL = &imageURL.String
	}
	return review, nil
}

func scanReviews(rows *sql.Rows) ([]*models.Review, error) {
	defer rows.Close()

	reviews := make([]*models.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
