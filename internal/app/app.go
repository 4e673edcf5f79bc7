package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/linemk/shopping-mall/internal/cache"
	"github.com/linemk/shopping-mall/internal/config"
	"github.com/linemk/shopping-mall/internal/lib/metrics"
	"github.com/linemk/shopping-mall/internal/objectstore"
	"github.com/linemk/shopping-mall/internal/service"
	"github.com/linemk/shopping-mall/internal/storage"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *sql.DB
	Redis    *redis.Client
	Metrics  *metrics.Metrics
	Services *Services
}

// Services бизнес-логика, которую используют обработчики
type Services struct {
	Auth    service.AuthServiceInterface
	Payment service.PaymentService
	Review  service.ReviewService
	Scrap   service.ScrapService
	Product service.ProductService
}

// NewApp создаёт новый экземпляр App: подключения к postgres, redis и объектному хранилищу
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	// реализуем подключение к БД через DSN
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	store, err := objectstore.New(cfg.Storage)
	if err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	m := metrics.New()
	app := &App{
		Config:  cfg,
		Logger:  log,
		DB:      db,
		Redis:   rdb,
		Metrics: m,
	}
	app.Services = NewServices(log, cfg, db, cache.NewRedisCache(rdb, cfg.Cache.TTL), store, m)

	return app, nil
}

// NewServices собирает репозитории и сервисы поверх открытого подключения к БД
func NewServices(log *slog.Logger, cfg *config.Config, db *sql.DB, c cache.Cache, uploader objectstore.Uploader,
	m *metrics.Metrics) *Services {
	// реализация слоев по работе с БД по каждому направлению
	profileRepo := storage.NewProfileRepository(db)
	consumerRepo := storage.NewConsumerRepository(db)
	sellerRepo := storage.NewSellerRepository(db)
	productRepo := storage.NewProductRepository(db)
	cartRepo := storage.NewCartRepository(db)
	paymentRepo := storage.NewPaymentRepository(db)
	reviewRepo := storage.NewReviewRepository(db)
	scrapRepo := storage.NewScrapRepository(db)

	orderNumbers := service.NewOrderNumberGenerator(log, paymentRepo, m, cfg.Checkout.OrderNumberAttempts)

	return &Services{
		Auth: service.NewAuthService(log, profileRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute,
			cfg.JWT.Secret, cfg.Checkout.InitialPayMoney),
		Payment: service.NewPaymentService(log, db, service.PaymentRepositories{
			Profiles:  profileRepo,
			Consumers: consumerRepo,
			Sellers:   sellerRepo,
			Products:  productRepo,
			Carts:     cartRepo,
			Payments:  paymentRepo,
		}, orderNumbers, m),
		Review: service.NewReviewService(log, db, service.ReviewRepositories{
			Consumers: consumerRepo,
			Products:  productRepo,
			Reviews:   reviewRepo,
		}, c, uploader, m),
		Scrap:   service.NewScrapService(log, db, consumerRepo, productRepo, scrapRepo),
		Product: service.NewProductService(log, productRepo, sellerRepo, reviewRepo),
	}
}

// Close закрывает подключения
func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Error("failed to close redis", slog.Any("error", err))
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("failed to close database", slog.Any("error", err))
	}
}
