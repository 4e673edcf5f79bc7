package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/shopping-mall/internal/domain/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductStorage описывает методы для работы с таблицей товаров.
type ProductStorage interface {
	// GetProductByID возвращает не удаленный товар.
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	// GetProductImages возвращает дополнительные изображения товара.
	GetProductImages(ctx context.Context, productID int64) ([]*models.ProductImage, error)
	// DecreaseStock уменьшает остаток в транзакции. Если остатка не хватает, возвращает ErrInsufficientStock.
	DecreaseStock(ctx context.Context, tx *sql.Tx, productID int64, amount int64) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	var closingAt sql.NullTime
	query := `SELECT id, seller_id, title, price, amount, main_image_url, closing_at
	          FROM products WHERE id = $1 AND is_deleted = FALSE`
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&product.ID, &product.SellerID, &product.Title, &product.Price, &product.Amount,
		&product.MainImageURL, &closingAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if closingAt.Valid {
		product.ClosingAt = &closingAt.Time
	}
	return product, nil
}

func (r *productRepository) GetProductImages(ctx context.Context, productID int64) ([]*models.ProductImage, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, product_id, image_url FROM product_images WHERE product_id = $1 ORDER BY id", productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		img := &models.ProductImage{}
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// DecreaseStock работает как compare-and-swap: строка обновится, только если amount >= запрошенного
func (r *productRepository) DecreaseStock(ctx context.Context, tx *sql.Tx, productID int64, amount int64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE products SET amount = amount - $1 WHERE id = $2 AND amount >= $1", amount, productID)
	if err != nil {
		return fmt.Errorf("failed to decrease stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
