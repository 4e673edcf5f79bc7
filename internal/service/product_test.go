package service_test

import (
	"context"
	"testing"

	"github.com/linemk/shopping-mall/internal/domain/models"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetProductDetail(t *testing.T) {
	mall := newFakeMall()
	consumer := mall.withConsumer(1, 0)
	mall.withSeller(2, 7, "ACME")
	mall.withProduct(5, 7, 1000, 3)
	mall.images[5] = []*models.ProductImage{{ID: 1, ProductID: 5, ImageURL: "http://img/1.png"}}
	mall.withReview(consumer.ID, 5, 4)
	mall.withReview(consumer.ID, 5, 5)
	deleted := mall.withReview(consumer.ID, 5, 0)
	deleted.IsDeleted = true

	svc := service.NewProductService(discardLogger(), mall, mall, mall)
	detail, err := svc.GetProductDetail(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "ACME", detail.CompanyName)
	assert.Equal(t, 4.5, detail.AverageRating)
	assert.Equal(t, []string{"http://img/1.png"}, detail.ImageURLs)
	assert.Equal(t, int64(1000), detail.Price)

	_, err = svc.GetProductDetail(context.Background(), 404)
	assert.ErrorIs(t, err, apperr.NotFoundProduct)
}

func TestProductService_UnknownSeller(t *testing.T) {
	mall := newFakeMall()
	mall.withProduct(5, 99, 1000, 3)

	_, err := service.NewProductService(discardLogger(), mall, mall, mall).GetProductDetail(context.Background(), 5)
	assert.ErrorIs(t, err, apperr.NotFoundSeller)
}
