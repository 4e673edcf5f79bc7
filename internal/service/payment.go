package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/lib/metrics"
	"github.com/linemk/shopping-mall/internal/storage"
)

type PaymentService interface {
	// ProcessPayment оплачивает всю активную корзину покупателя одной транзакцией
	ProcessPayment(ctx context.Context, profileID int64) ([]*models.Payment, error)
	GetPurchaseHistory(ctx context.Context, profileID int64) ([]*models.Payment, error)
	GetSaleHistory(ctx context.Context, profileID int64) ([]*models.Payment, error)
}

// PaymentRepositories хранилища, которые нужны оформлению заказа
type PaymentRepositories struct {
	Profiles  storage.ProfileStorage
	Consumers storage.ConsumerStorage
	Sellers   storage.SellerStorage
	Products  storage.ProductStorage
	Carts     storage.CartStorage
	Payments  storage.PaymentStorage
}

type paymentService struct {
	log          *slog.Logger
	db           *sql.DB
	repos        PaymentRepositories
	orderNumbers *OrderNumberGenerator
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewPaymentService(log *slog.Logger, db *sql.DB, repos PaymentRepositories, orderNumbers *OrderNumberGenerator,
	m *metrics.Metrics) PaymentService {
	return &paymentService{
		log:          log,
		db:           db,
		repos:        repos,
		orderNumbers: orderNumbers,
		metrics:      m,
		now:          time.Now,
	}
}

// ProcessPayment проверяет остатки и баланс, генерирует номер заказа,
// списывает товар и pay-money, удаляет строки корзины и создает платежи.
// При любой ошибке транзакция откатывается.
func (s *paymentService) ProcessPayment(ctx context.Context, profileID int64) (payments []*models.Payment, err error) {
	const op = "service.PaymentService.ProcessPayment"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))
	defer func(start time.Time) { s.metrics.ObserveUseCase("process_payment", start, err) }(time.Now())

	logger.Info("starting checkout")

	consumer, err := s.repos.Consumers.GetConsumerByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrConsumerNotFound) {
			logger.Warn("consumer not found")
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundByID.Wrap(err))
		}
		logger.Error("failed to get consumer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get consumer: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	lines, err := s.repos.Carts.GetActiveCartLinesTx(ctx, tx, consumer.ID)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to get cart lines", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get cart lines: %w", op, err)
	}
	if len(lines) == 0 {
		rollback(logger, tx)
		logger.Warn("cart is empty")
		return nil, fmt.Errorf("%s: %w", op, apperr.EmptyCart)
	}

	// Проверяем остатки до каких-либо изменений
	var total int64
	for _, line := range lines {
		if line.Amount > line.Product.Amount {
			rollback(logger, tx)
			logger.Warn("requested amount exceeds stock",
				slog.Int64("productID", line.ProductID),
				slog.Int64("requested", line.Amount),
				slog.Int64("stock", line.Product.Amount))
			return nil, fmt.Errorf("%s: product %d: %w", op, line.ProductID, apperr.OverAmount)
		}
		total += line.TotalPrice()
	}

	profile, err := s.repos.Profiles.LockProfileByIDTx(ctx, tx, profileID)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrResourceLocked) {
			logger.Warn("profile is locked by another checkout")
			return nil, fmt.Errorf("%s: %w", op, apperr.ResourceLocked.Wrap(err))
		}
		logger.Error("failed to lock profile", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to lock profile: %w", op, err)
	}
	if profile.PayMoney < total {
		rollback(logger, tx)
		logger.Warn("insufficient pay-money", slog.Int64("balance", profile.PayMoney), slog.Int64("total", total))
		return nil, fmt.Errorf("%s: %w", op, apperr.NotEnoughPayMoney)
	}

	orderNumber, err := s.orderNumbers.Generate(ctx, tx)
	if err != nil {
		rollback(logger, tx)
		if errors.Is(err, ErrGenerationExhausted) {
			logger.Error("failed to generate order number", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, apperr.FailToCreate.Wrap(err))
		}
		logger.Error("failed to check order number", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger = logger.With(slog.String("orderNumber", orderNumber))

	paidAt := s.now()
	for _, line := range lines {
		if err := s.repos.Products.DecreaseStock(ctx, tx, line.ProductID, line.Amount); err != nil {
			rollback(logger, tx)
			if errors.Is(err, storage.ErrInsufficientStock) {
				logger.Warn("stock changed during checkout", slog.Int64("productID", line.ProductID))
				return nil, fmt.Errorf("%s: product %d: %w", op, line.ProductID, apperr.OverAmount.Wrap(err))
			}
			logger.Error("failed to decrease stock", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to decrease stock: %w", op, err)
		}

		if err := s.repos.Carts.SoftDeleteCartLine(ctx, tx, line.ID); err != nil {
			rollback(logger, tx)
			logger.Error("failed to delete cart line", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to delete cart line: %w", op, err)
		}

		payment := &models.Payment{
			OrderNumber:  orderNumber,
			ConsumerID:   consumer.ID,
			SellerID:     line.Product.SellerID,
			ProductID:    line.ProductID,
			ProductTitle: line.Product.Title,
			Price:        line.Product.Price,
			Amount:       line.Amount,
			TotalPrice:   line.TotalPrice(),
			PaidAt:       paidAt,
		}
		if _, err := s.repos.Payments.CreatePayment(ctx, tx, payment); err != nil {
			rollback(logger, tx)
			logger.Error("failed to create payment", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to create payment: %w", op, err)
		}
	}

	if err := s.repos.Profiles.DecreasePayMoney(ctx, tx, profileID, total); err != nil {
		rollback(logger, tx)
		if errors.Is(err, storage.ErrNotEnoughPayMoney) {
			logger.Warn("pay-money changed during checkout")
			return nil, fmt.Errorf("%s: %w", op, apperr.NotEnoughPayMoney.Wrap(err))
		}
		logger.Error("failed to decrease pay-money", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to decrease pay-money: %w", op, err)
	}

	payments, err = s.repos.Payments.GetPaymentsByOrderNumber(ctx, tx, orderNumber)
	if err != nil {
		rollback(logger, tx)
		logger.Error("failed to read created payments", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to read created payments: %w", op, err)
	}
	if len(payments) == 0 {
		rollback(logger, tx)
		logger.Error("no payments were created")
		return nil, fmt.Errorf("%s: %w", op, apperr.NoCreatedPayment)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("checkout completed", slog.Int("payments", len(payments)), slog.Int64("total", total))
	return payments, nil
}

func (s *paymentService) GetPurchaseHistory(ctx context.Context, profileID int64) (payments []*models.Payment, err error) {
	const op = "service.PaymentService.GetPurchaseHistory"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))
	defer func(start time.Time) { s.metrics.ObserveUseCase("purchase_history", start, err) }(time.Now())

	consumer, err := s.repos.Consumers.GetConsumerByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrConsumerNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundByID.Wrap(err))
		}
		logger.Error("failed to get consumer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get consumer: %w", op, err)
	}

	payments, err = s.repos.Payments.GetPaymentsByConsumerID(ctx, consumer.ID)
	if err != nil {
		logger.Error("failed to get purchases", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get purchases: %w", op, err)
	}
	return payments, nil
}

func (s *paymentService) GetSaleHistory(ctx context.Context, profileID int64) (payments []*models.Payment, err error) {
	const op = "service.PaymentService.GetSaleHistory"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))
	defer func(start time.Time) { s.metrics.ObserveUseCase("sale_history", start, err) }(time.Now())

	seller, err := s.repos.Sellers.GetSellerByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrSellerNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundSeller.Wrap(err))
		}
		logger.Error("failed to get seller", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get seller: %w", op, err)
	}

	payments, err = s.repos.Payments.GetPaymentsBySellerID(ctx, seller.ID)
	if err != nil {
		logger.Error("failed to get sales", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get sales: %w", op, err)
	}
	return payments, nil
}

func rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}
