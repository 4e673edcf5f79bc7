package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/shopping-mall/internal/lib/api/response"
	"github.com/linemk/shopping-mall/internal/service"
)

// ProductDetailHandler обрабатывает GET /api/products/{productId}
func ProductDetailHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProductDetailHandler"
		logger := log.With(slog.String("op", op))

		productID, err := pathID(r, "productId")
		if err != nil {
			response.Error(w, logger, err)
			return
		}

		detail, err := productService.GetProductDetail(r.Context(), productID)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "product detail", detail)
	}
}
