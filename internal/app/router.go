package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/shopping-mall/internal/app/handlers"
	"github.com/linemk/shopping-mall/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/shopping-mall/internal/lib/logger/handlers/urllog"
	"github.com/linemk/shopping-mall/internal/lib/metrics"
)

// NewRouter регистрирует все эндпоинты сервиса
func NewRouter(log *slog.Logger, svc *Services, m *metrics.Metrics, jwtSecret string, maxUploadSize int64) http.Handler {
	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", m.Handler())

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(log, svc.Auth))

	// публичные эндпоинты каталога
	router.Get("/api/products/{productId}", handlers.ProductDetailHandler(log, svc.Product))
	router.Get("/api/reviews/product/{productId}", handlers.ProductReviewsHandler(log, svc.Review))
	router.Get("/api/reviews/product/{productId}/page", handlers.ProductReviewsPageHandler(log, svc.Review))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(log, jwtSecret))

		r.Get("/api/reviews/my", handlers.MyReviewsHandler(log, svc.Review))
		r.Get("/api/reviews/my/page", handlers.MyReviewsPageHandler(log, svc.Review))
		r.Post("/api/reviews", handlers.CreateReviewHandler(log, svc.Review, maxUploadSize))
		r.Put("/api/reviews/{reviewId}", handlers.ModifyReviewHandler(log, svc.Review, maxUploadSize))
		r.Delete("/api/reviews", handlers.DeleteReviewsHandler(log, svc.Review))

		r.Get("/api/scraps", handlers.ScrapListHandler(log, svc.Scrap))
		r.Post("/api/scraps/query", handlers.AddScrapHandler(log, svc.Scrap))

		// оплата корзины и история платежей
		r.Post("/api/payments", handlers.ProcessPaymentHandler(log, svc.Payment))
		r.Get("/api/payments/purchases", handlers.PurchaseHistoryHandler(log, svc.Payment))
		r.Get("/api/payments/sales", handlers.SaleHistoryHandler(log, svc.Payment))
	})

	return router
}
