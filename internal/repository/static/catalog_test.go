package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/techstore/internal/domain"
)

func TestDefaultProducts(t *testing.T) {
	products := DefaultProducts()
	require.Len(t, products, 6)

	ids := make(map[int]bool)
	for i, p := range products {
		assert.Equal(t, i+1, p.ID)
		assert.False(t, ids[p.ID])
		ids[p.ID] = true
		assert.Positive(t, p.Price)
		assert.NotEmpty(t, p.Image)
		assert.Len(t, p.Specs, 4)
	}

	assert.Equal(t, "Хит продаж", products[0].Badge)
	assert.Equal(t, "Новинка", products[1].Badge)
	assert.Empty(t, products[2].Badge)
}

func TestDefaultProducts_Categories(t *testing.T) {
	assert.Equal(t,
		[]string{domain.AllCategories, "Смартфоны", "Аудио", "Умные часы", "Планшеты", "Камеры"},
		domain.Categories(DefaultProducts()),
	)

	audio := domain.FilterByCategory(DefaultProducts(), "Аудио")
	require.Len(t, audio, 2)
	assert.Equal(t, "AirPods Ultra", audio[0].Name)
	assert.Equal(t, "Speaker Max", audio[1].Name)
}

func TestProductRepository_List(t *testing.T) {
	repo := NewProductRepository(nil)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultProducts(), got)

	got[0].Name = "changed"
	again, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SmartPhone Pro X", again[0].Name)
}

func TestProductRepository_Custom(t *testing.T) {
	repo := NewProductRepository([]domain.Product{})

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
