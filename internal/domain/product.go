package domain

// AllCategories is the category filter value that selects the whole catalog.
const AllCategories = "Все"

// Product is an immutable catalog entry. Prices are whole roubles.
type Product struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Price    int64    `json:"price"`
	Image    string   `json:"image"`
	Category string   `json:"category"`
	Specs    []string `json:"specs"`
	Badge    string   `json:"badge,omitempty"`
}

// FilterByCategory returns the products whose category equals category, in
// catalog order. AllCategories returns products unchanged.
func FilterByCategory(products []Product, category string) []Product {
	if category == AllCategories {
		return products
	}
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Categories returns AllCategories followed by each distinct product
// category in the order it first appears in the catalog.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := []string{AllCategories}
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}
