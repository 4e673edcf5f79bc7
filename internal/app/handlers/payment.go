package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/shopping-mall/internal/lib/api/response"
	"github.com/linemk/shopping-mall/internal/service"
)

// ProcessPaymentHandler обрабатывает POST /api/payments: оплата всей корзины
func ProcessPaymentHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProcessPaymentHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		payments, err := paymentService.ProcessPayment(r.Context(), id)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "payment completed", payments)
	}
}

// PurchaseHistoryHandler обрабатывает GET /api/payments/purchases
func PurchaseHistoryHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PurchaseHistoryHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		payments, err := paymentService.GetPurchaseHistory(r.Context(), id)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "purchase history", payments)
	}
}

// SaleHistoryHandler обрабатывает GET /api/payments/sales
func SaleHistoryHandler(log *slog.Logger, paymentService service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SaleHistoryHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		payments, err := paymentService.GetSaleHistory(r.Context(), id)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "sale history", payments)
	}
}
