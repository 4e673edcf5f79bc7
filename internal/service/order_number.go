package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/linemk/shopping-mall/internal/lib/metrics"
	"github.com/linemk/shopping-mall/internal/storage"
)

const (
	orderNumberLayout      = "06010215" // YYMMDDHH
	orderNumberSuffixSpace = 0x1000
	defaultOrderAttempts   = 10
)

var ErrGenerationExhausted = errors.New("order number generation exhausted")

// OrderNumberGenerator выдает номер заказа: час оформления в формате YYMMDDHH и три hex-цифры.
// Уникальность проверяется по таблице payments внутри транзакции оформления.
type OrderNumberGenerator struct {
	log      *slog.Logger
	payments storage.PaymentStorage
	metrics  *metrics.Metrics
	attempts int
	now      func() time.Time
	randN    func(n int) int
}

type GeneratorOption func(*OrderNumberGenerator)

func WithClock(now func() time.Time) GeneratorOption {
	return func(g *OrderNumberGenerator) { g.now = now }
}

func WithRandom(randN func(n int) int) GeneratorOption {
	return func(g *OrderNumberGenerator) { g.randN = randN }
}

func NewOrderNumberGenerator(log *slog.Logger, payments storage.PaymentStorage, m *metrics.Metrics, attempts int,
	opts ...GeneratorOption) *OrderNumberGenerator {
	if attempts <= 0 {
		attempts = defaultOrderAttempts
	}
	g := &OrderNumberGenerator{
		log:      log,
		payments: payments,
		metrics:  m,
		attempts: attempts,
		now:      time.Now,
		randN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *OrderNumberGenerator) Generate(ctx context.Context, tx *sql.Tx) (string, error) {
	const op = "service.OrderNumberGenerator.Generate"
	logger := g.log.With(slog.String("op", op))

	prefix := g.now().Format(orderNumberLayout)
	for attempt := 1; attempt <= g.attempts; attempt++ {
		candidate := fmt.Sprintf("%s%03x", prefix, g.randN(orderNumberSuffixSpace))

		exists, err := g.payments.ExistsByOrderNumber(ctx, tx, candidate)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return candidate, nil
		}

		g.metrics.OrderNumberCollision()
		logger.Info("order number collision", slog.String("orderNumber", candidate), slog.Int("attempt", attempt))
	}

	logger.Warn("order number attempts exhausted", slog.Int("attempts", g.attempts))
	return "", ErrGenerationExhausted
}
