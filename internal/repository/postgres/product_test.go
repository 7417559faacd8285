package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/reviewhub/pkg/database"
	apperrors "github.com/utafrali/reviewhub/pkg/errors"
)

func TestProductGetByID(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(`SELECT id, name, price, category, description, image_url, created_at`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "price", "category", "description", "image_url", "created_at",
		}).AddRow(int64(42), "Widget", 19.99, "gadgets", "A widget.", "", created))

	repo := NewProductRepository(mockPool)

	product, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, 19.99, product.Price)
}

func TestProductGetByIDNotFound(t *testing.T) {
	mockPool, err := database.NewMockPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`FROM products`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewProductRepository(mockPool)

	_, err = repo.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
