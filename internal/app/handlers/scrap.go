package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/linemk/shopping-mall/internal/lib/api/response"
	"github.com/linemk/shopping-mall/internal/service"
)

// ScrapResponse элемент списка желаний
type ScrapResponse struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	Title        string    `json:"title"`
	Price        int64     `json:"price"`
	MainImageURL string    `json:"mainImageUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toScrapResponses(scraps []*models.Scrap) []ScrapResponse {
	resp := make([]ScrapResponse, 0, len(scraps))
	for _, s := range scraps {
		item := ScrapResponse{ID: s.ID, ProductID: s.ProductID, CreatedAt: s.CreatedAt}
		if s.Product != nil {
			item.Title = s.Product.Title
			item.Price = s.Product.Price
			item.MainImageURL = s.Product.MainImageURL
		}
		resp = append(resp, item)
	}
	return resp
}

// ScrapListHandler обрабатывает GET /api/scraps
func ScrapListHandler(log *slog.Logger, scrapService service.ScrapService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ScrapListHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		scraps, err := scrapService.GetAllScrap(r.Context(), id)
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "scrap list", toScrapResponses(scraps))
	}
}

// AddScrapHandler обрабатывает POST /api/scraps/query?productId=1&productId=2
func AddScrapHandler(log *slog.Logger, scrapService service.ScrapService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddScrapHandler"
		logger := log.With(slog.String("op", op))

		id, ok := profileID(w, r, logger)
		if !ok {
			return
		}

		scraps, err := scrapService.AddScrap(r.Context(), id, r.URL.Query()["productId"])
		if err != nil {
			response.Error(w, logger, err)
			return
		}
		response.OK(w, logger, "scrap added", toScrapResponses(scraps))
	}
}
