package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/shopping-mall/internal/domain/models"
)

// CartStorage описывает методы для работы с корзиной.
type CartStorage interface {
	// GetActiveCartLinesTx возвращает не удаленные строки корзины вместе со снимком товара.
	GetActiveCartLinesTx(ctx context.Context, tx *sql.Tx, consumerID int64) ([]*models.CartLine, error)
	// SoftDeleteCartLine помечает строку корзины удаленной.
	SoftDeleteCartLine(ctx context.Context, tx *sql.Tx, id int64) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartStorage {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetActiveCartLinesTx(ctx context.Context, tx *sql.Tx, consumerID int64) ([]*models.CartLine, error) {
	query := `
		SELECT c.id, c.consumer_id, c.product_id, c.amount, p.seller_id, p.title, p.price, p.amount
		FROM shopping_carts c
		JOIN products p ON c.product_id = p.id
		WHERE c.consumer_id = $1 AND c.is_deleted = FALSE
		ORDER BY c.id`
	rows, err := tx.QueryContext(ctx, query, consumerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.CartLine
	for rows.Next() {
		line := &models.CartLine{Product: &models.Product{}}
		if err := rows.Scan(&line.ID, &line.ConsumerID, &line.ProductID, &line.Amount,
			&line.Product.SellerID, &line.Product.Title, &line.Product.Price, &line.Product.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		line.Product.ID = line.ProductID
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *cartRepository) SoftDeleteCartLine(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE shopping_carts SET is_deleted = TRUE WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to soft delete cart line: %w", err)
	}
	return nil
}
