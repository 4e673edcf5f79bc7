package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/shopping-mall/internal/domain/models"
)

// PaymentStorage описывает методы для работы с платежами
type PaymentStorage interface {
	ExistsByOrderNumber(ctx context.Context, tx *sql.Tx, orderNumber string) (bool, error)
	CreatePayment(ctx context.Context, tx *sql.Tx, payment *models.Payment) (int64, error)
	GetPaymentsByOrderNumber(ctx context.Context, tx *sql.Tx, orderNumber string) ([]*models.Payment, error)
	GetPaymentsByConsumerID(ctx context.Context, consumerID int64) ([]*models.Payment, error)
	GetPaymentsBySellerID(ctx context.Context, sellerID int64) ([]*models.Payment, error)
}

const paymentColumns = "id, order_number, consumer_id, seller_id, product_id, product_title, price, amount, total_price, paid_at"

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentStorage {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ExistsByOrderNumber(ctx context.Context, tx *sql.Tx, orderNumber string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM payments WHERE order_number = $1)", orderNumber).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

func (r *paymentRepository) CreatePayment(ctx context.Context, tx *sql.Tx, p *models.Payment) (int64, error) {
	query := `
		INSERT INTO payments (order_number, consumer_id, seller_id, product_id, product_title, price, amount, total_price, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, query, p.OrderNumber, p.ConsumerID, p.SellerID, p.ProductID,
		p.ProductTitle, p.Price, p.Amount, p.TotalPrice, p.PaidAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert payment: %w", err)
	}
	return id, nil
}

func (r *paymentRepository) GetPaymentsByOrderNumber(ctx context.Context, tx *sql.Tx, orderNumber string) ([]*models.Payment, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE order_number = $1 ORDER BY id", orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments by order number: %w", err)
	}
	return scanPayments(rows)
}

func (r *paymentRepository) GetPaymentsByConsumerID(ctx context.Context, consumerID int64) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE consumer_id = $1 ORDER BY paid_at DESC, id DESC", consumerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	return scanPayments(rows)
}

func (r *paymentRepository) GetPaymentsBySellerID(ctx context.Context, sellerID int64) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE seller_id = $1 ORDER BY paid_at DESC, id DESC", sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	return scanPayments(rows)
}

func scanPayments(rows *sql.Rows) ([]*models.Payment, error) {
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.OrderNumber, &p.ConsumerID, &p.SellerID, &p.ProductID,
			&p.ProductTitle, &p.Price, &p.Amount, &p.TotalPrice, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
