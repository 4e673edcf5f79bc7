package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/storage"
)

type ScrapService interface {
	GetAllScrap(ctx context.Context, profileID int64) ([]*models.Scrap, error)
	// AddScrap добавляет товары в список желаний и возвращает весь список
	AddScrap(ctx context.Context, profileID int64, productIDs []string) ([]*models.Scrap, error)
}

type scrapService struct {
	log       *slog.Logger
	db        *sql.DB
	consumers storage.ConsumerStorage
	products  storage.ProductStorage
	scraps    storage.ScrapStorage
}

func NewScrapService(log *slog.Logger, db *sql.DB, consumers storage.ConsumerStorage, products storage.ProductStorage,
	scraps storage.ScrapStorage) ScrapService {
	return &scrapService{
		log:       log,
		db:        db,
		consumers: consumers,
		products:  products,
		scraps:    scraps,
	}
}

func (s *scrapService) GetAllScrap(ctx context.Context, profileID int64) ([]*models.Scrap, error) {
	const op = "service.ScrapService.GetAllScrap"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))

	consumer, err := s.consumers.GetConsumerByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrConsumerNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundByID.Wrap(err))
		}
		logger.Error("failed to get consumer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get consumer: %w", op, err)
	}

	scraps, err := s.scraps.GetScrapsByConsumerID(ctx, consumer.ID)
	if err != nil {
		logger.Error("failed to get scraps", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get scraps: %w", op, err)
	}
	return scraps, nil
}

func (s *scrapService) AddScrap(ctx context.Context, profileID int64, productIDs []string) ([]*models.Scrap, error) {
	const op = "service.ScrapService.AddScrap"
	logger := s.log.With(slog.String("op", op), slog.Int64("profileID", profileID))

	ids, err := parseProductIDs(productIDs)
	if err != nil {
		logger.Warn("invalid product ids", slog.Any("productIDs", productIDs), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	consumer, err := s.consumers.GetConsumerByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrConsumerNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundByID.Wrap(err))
		}
		logger.Error("failed to get consumer", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get consumer: %w", op, err)
	}

	for _, id := range ids {
		if _, err := s.products.GetProductByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				logger.Warn("product not found", slog.Int64("productID", id))
				return nil, fmt.Errorf("%s: product %d: %w", op, id, apperr.NotFoundProduct.Wrap(err))
			}
			logger.Error("failed to get product", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	for _, id := range ids {
		if err := s.scraps.AddScrap(ctx, tx, consumer.ID, id); err != nil {
			rollback(logger, tx)
			logger.Error("failed to add scrap", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to add scrap: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	scraps, err := s.scraps.GetScrapsByConsumerID(ctx, consumer.ID)
	if err != nil {
		logger.Error("failed to get scraps", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get scraps: %w", op, err)
	}

	logger.Info("scraps added", slog.Int("added", len(ids)))
	return scraps, nil
}

// parseProductIDs разбирает id товаров и убирает повторы, сохраняя порядок
func parseProductIDs(raw []string) ([]int64, error) {
	if len(raw) == 0 {
		return nil, apperr.InvalidQueryParameter
	}
	seen := make(map[int64]struct{}, len(raw))
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			return nil, apperr.InvalidQueryParameter.Wrap(err)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
