package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/linemk/shopping-mall/internal/domain/models"
)

var (
	ErrConsumerNotFound = errors.New("consumer not found")
	ErrSellerNotFound   = errors.New("seller not found")
)

// ConsumerStorage поиск покупателя по профилю
type ConsumerStorage interface {
	GetConsumerByProfileID(ctx context.Context, profileID int64) (*models.Consumer, error)
}

// SellerStorage поиск продавца
type SellerStorage interface {
	GetSellerByProfileID(ctx context.Context, profileID int64) (*models.Seller, error)
	GetSellerByID(ctx context.Context, id int64) (*models.Seller, error)
}

type consumerRepository struct {
	db *sql.DB
}

func NewConsumerRepository(db *sql.DB) ConsumerStorage {
	return &consumerRepository{db: db}
}

func (r *consumerRepository) GetConsumerByProfileID(ctx context.Context, profileID int64) (*models.Consumer, error) {
	consumer := &models.Consumer{}
	row := r.db.QueryRowContext(ctx, "SELECT id, profile_id FROM consumers WHERE profile_id = $1", profileID)
	if err := row.Scan(&consumer.ID, &consumer.ProfileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConsumerNotFound
		}
		return nil, err
	}
	return consumer, nil
}

type sellerRepository struct {
	db *sql.DB
}

func NewSellerRepository(db *sql.DB) SellerStorage {
	return &sellerRepository{db: db}
}

func (r *sellerRepository) GetSellerByProfileID(ctx context.Context, profileID int64) (*models.Seller, error) {
	return r.getSeller(ctx, "SELECT id, profile_id, company_name FROM sellers WHERE profile_id = $1", profileID)
}

func (r *sellerRepository) GetSellerByID(ctx context.Context, id int64) (*models.Seller, error) {
	return r.getSeller(ctx, "SELECT id, profile_id, company_name FROM sellers WHERE id = $1", id)
}

func (r *sellerRepository) getSeller(ctx context.Context, query string, arg int64) (*models.Seller, error) {
	seller := &models.Seller{}
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&seller.ID, &seller.ProfileID, &seller.CompanyName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, err
	}
	return seller, nil
}
