package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/shopping-mall/internal/domain/models"
)

// ScrapStorage список желаний покупателя
type ScrapStorage interface {
	// AddScrap добавляет товар в список; повторное добавление игнорируется
	AddScrap(ctx context.Context, tx *sql.Tx, consumerID, productID int64) error
	GetScrapsByConsumerID(ctx context.Context, consumerID int64) ([]*models.Scrap, error)
}

type scrapRepository struct {
	db *sql.DB
}

func NewScrapRepository(db *sql.DB) ScrapStorage {
	return &scrapRepository{db: db}
}

func (r *scrapRepository) AddScrap(ctx context.Context, tx *sql.Tx, consumerID, productID int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO scraps (consumer_id, product_id) VALUES ($1, $2) ON CONFLICT (consumer_id, product_id) DO NOTHING",
		consumerID, productID)
	if err != nil {
		return fmt.Errorf("failed to insert scrap: %w", err)
	}
	return nil
}

func (r *scrapRepository) GetScrapsByConsumerID(ctx context.Context, consumerID int64) ([]*models.Scrap, error) {
	query := `
		SELECT s.id, s.consumer_id, s.product_id, s.created_at, p.title, p.price, p.main_image_url
		FROM scraps s
		JOIN products p ON s.product_id = p.id
		WHERE s.consumer_id = $1
		ORDER BY s.id DESC`
	rows, err := r.db.QueryContext(ctx, query, consumerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scraps: %w", err)
	}
	defer rows.Close()

	scraps := make([]*models.Scrap, 0)
	for rows.Next() {
		s := &models.Scrap{Product: &models.Product{}}
		if err := rows.Scan(&s.ID, &s.ConsumerID, &s.ProductID, &s.CreatedAt,
			&s.Product.Title, &s.Product.Price, &s.Product.MainImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan scrap: %w", err)
		}
		s.Product.ID = s.ProductID
		scraps = append(scraps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return scraps, nil
}
