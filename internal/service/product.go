package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/storage"
)

// ProductDetail карточка товара
type ProductDetail struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Price         int64      `json:"price"`
	Amount        int64      `json:"amount"`
	MainImageURL  string     `json:"mainImageUrl"`
	ClosingAt     *time.Time `json:"closingAt"`
	CompanyName   string     `json:"companyName"`
	AverageRating float64    `json:"averageRating"`
	ImageURLs     []string   `json:"imageUrls"`
}

type ProductService interface {
	GetProductDetail(ctx context.Context, productID int64) (*ProductDetail, error)
}

type productService struct {
	log      *slog.Logger
	products storage.ProductStorage
	sellers  storage.SellerStorage
	reviews  storage.ReviewStorage
}

func NewProductService(log *slog.Logger, products storage.ProductStorage, sellers storage.SellerStorage,
	reviews storage.ReviewStorage) ProductService {
	return &productService{
		log:      log,
		products: products,
		sellers:  sellers,
		reviews:  reviews,
	}
}

func (s *productService) GetProductDetail(ctx context.Context, productID int64) (*ProductDetail, error) {
	const op = "service.ProductService.GetProductDetail"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", productID))

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundProduct.Wrap(err))
		}
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	seller, err := s.sellers.GetSellerByID(ctx, product.SellerID)
	if err != nil {
		if errors.Is(err, storage.ErrSellerNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperr.NotFoundSeller.Wrap(err))
		}
		logger.Error("failed to get seller", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get seller: %w", op, err)
	}

	rating, err := s.reviews.GetAverageRating(ctx, productID)
	if err != nil {
		logger.Error("failed to get rating", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get rating: %w", op, err)
	}

	images, err := s.products.GetProductImages(ctx, productID)
	if err != nil {
		logger.Error("failed to get images", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get images: %w", op, err)
	}
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.ImageURL)
	}

	return &ProductDetail{
		ID:            product.ID,
		Title:         product.Title,
		Price:         product.Price,
		Amount:        product.Amount,
		MainImageURL:  product.MainImageURL,
		ClosingAt:     product.ClosingAt,
		CompanyName:   seller.CompanyName,
		AverageRating: rating,
		ImageURLs:     urls,
	}, nil
}
