// Package static serves the compiled-in default catalog.
package static

import (
	"context"
	"slices"

	"github.com/utafrali/techstore/internal/domain"
)

const imageBase = "https://cdn.poehali.dev/projects/1e37b867-6b0b-4b39-9c69-9505f9993726/files/"

const (
	imagePhone = imageBase + "6749fc8a-f58b-4a63-9b18-e853a0a0ba03.jpg"
	imageAudio = imageBase + "6b8eb1b7-0268-4e09-be8e-de3e89d695d8.jpg"
	imageWatch = imageBase + "83b87578-13e6-4760-becd-cb754e6d9bd9.jpg"
)

// DefaultProducts returns the storefront's default catalog in display order.
// Each call returns a fresh slice.
func DefaultProducts() []domain.Product {
	return []domain.Product{
		{
			ID:       1,
			Name:     "SmartPhone Pro X",
			Price:    89990,
			Image:    imagePhone,
			Category: "Смартфоны",
			Specs:    []string{`6.7" OLED`, "256GB", "5G", "48MP"},
			Badge:    "Хит продаж",
		},
		{
			ID:       2,
			Name:     "AirPods Ultra",
			Price:    24990,
			Image:    imageAudio,
			Category: "Аудио",
			Specs:    []string{"ANC", "30ч батарея", "USB-C", "IPX4"},
			Badge:    "Новинка",
		},
		{
			ID:       3,
			Name:     "Watch Series 9",
			Price:    44990,
			Image:    imageWatch,
			Category: "Умные часы",
			Specs:    []string{"AMOLED", "GPS", "NFC", "Титан"},
		},
		{
			ID:       4,
			Name:     "Tablet Air 12",
			Price:    64990,
			Image:    imagePhone,
			Category: "Планшеты",
			Specs:    []string{`12.9" Retina`, "512GB", "M2 чип", "Pencil"},
		},
		{
			ID:       5,
			Name:     "Speaker Max",
			Price:    14990,
			Image:    imageAudio,
			Category: "Аудио",
			Specs:    []string{"360° звук", "Bluetooth 5.3", "20ч", "IP67"},
		},
		{
			ID:       6,
			Name:     "Camera 4K Pro",
			Price:    129990,
			Image:    imageWatch,
			Category: "Камеры",
			Specs:    []string{"4K 60fps", "Стабилизация", "128GB", "WiFi"},
		},
	}
}

// ProductRepository implements repository.ProductRepository over a fixed list.
type ProductRepository struct {
	products []domain.Product
}

// NewProductRepository serves products. A nil slice means DefaultProducts.
func NewProductRepository(products []domain.Product) *ProductRepository {
	if products == nil {
		products = DefaultProducts()
	}
	return &ProductRepository{products: products}
}

// List returns a copy of the catalog.
func (r *ProductRepository) List(_ context.Context) ([]domain.Product, error) {
	return slices.Clone(r.products), nil
}
