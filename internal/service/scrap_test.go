package service_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/linemk/shopping-mall/internal/lib/apperr"
	"github.com/linemk/shopping-mall/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapService_AddScrap_Dedupe(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mall := newFakeMall()
	consumer := mall.withConsumer(1, 0)
	mall.withProduct(1, 7, 100, 1)
	mall.withProduct(2, 7, 200, 1)
	svc := service.NewScrapService(discardLogger(), db, mall, mall, mall)

	mock.ExpectBegin()
	mock.ExpectCommit()

	scraps, err := svc.AddScrap(context.Background(), 1, []string{"1", "2", "2"})
	require.NoError(t, err)
	require.Len(t, scraps, 2)
	assert.Equal(t, consumer.ID, scraps[0].ConsumerID)
	assert.Equal(t, int64(200), scraps[1].Product.Price)

	// Повторное добавление не создает дублей
	mock.ExpectBegin()
	mock.ExpectCommit()
	scraps, err = svc.AddScrap(context.Background(), 1, []string{"1"})
	require.NoError(t, err)
	assert.Len(t, scraps, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapService_AddScrap_InvalidID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mall := newFakeMall()
	mall.withConsumer(1, 0)
	svc := service.NewScrapService(discardLogger(), db, mall, mall, mall)

	_, err = svc.AddScrap(context.Background(), 1, []string{"abc"})
	assert.ErrorIs(t, err, apperr.InvalidQueryParameter)

	_, err = svc.AddScrap(context.Background(), 1, nil)
	assert.ErrorIs(t, err, apperr.InvalidQueryParameter)

	assert.Empty(t, mall.scraps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapService_AddScrap_UnknownProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mall := newFakeMall()
	mall.withConsumer(1, 0)
	mall.withProduct(1, 7, 100, 1)
	svc := service.NewScrapService(discardLogger(), db, mall, mall, mall)

	_, err = svc.AddScrap(context.Background(), 1, []string{"1", "9"})
	assert.ErrorIs(t, err, apperr.NotFoundProduct)
	assert.Empty(t, mall.scraps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapService_GetAllScrap(t *testing.T) {
	mall := newFakeMall()
	svc := service.NewScrapService(discardLogger(), nil, mall, mall, mall)

	_, err := svc.GetAllScrap(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.NotFoundByID)

	mall.withConsumer(1, 0)
	scraps, err := svc.GetAllScrap(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, scraps)
}
