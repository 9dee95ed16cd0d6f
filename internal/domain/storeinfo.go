package domain

// FreeDeliveryThreshold is the order total from which courier delivery in
// Moscow is free.
const FreeDeliveryThreshold int64 = 5000

// DeliveryOption describes one way to receive an order.
type DeliveryOption struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Terms       string `json:"terms"`
}

// PaymentMethod describes one way to pay for an order.
type PaymentMethod struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DeliveryInfo is the content of the delivery and payment page.
type DeliveryInfo struct {
	Delivery []DeliveryOption `json:"delivery"`
	Payment  []PaymentMethod  `json:"payment"`
}

// Contacts is the content of the contacts page.
type Contacts struct {
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	WorkingHours string `json:"working_hours"`
}

// DefaultDeliveryInfo returns the storefront's delivery and payment terms.
func DefaultDeliveryInfo() DeliveryInfo {
	return DeliveryInfo{
		Delivery: []DeliveryOption{
			{Name: "Курьерская доставка", Description: "По Москве — бесплатно при заказе от 5000 ₽", Terms: "Доставка 1-2 дня"},
			{Name: "Пункты выдачи", Description: "Более 500 пунктов в России", Terms: "Доставка 3-5 дней"},
		},
		Payment: []PaymentMethod{
			{Name: "Банковская карта", Description: "Visa, MasterCard, МИР"},
			{Name: "Наличными курьеру", Description: "При получении заказа"},
			{Name: "Рассрочка", Description: "0% на 6 месяцев"},
		},
	}
}

// DefaultContacts returns the storefront's contact details.
func DefaultContacts() Contacts {
	return Contacts{
		Address:      "г. Москва, ул. Тверская, д. 1",
		Phone:        "+7 (495) 123-45-67",
		Email:        "info@techstore.ru",
		WorkingHours: "Пн-Вс: 9:00 - 21:00",
	}
}

// CheckoutSummary is what the checkout page shows for a cart. It is a view
// of the cart only; no order is created from it.
type CheckoutSummary struct {
	Lines          []Line `json:"lines"`
	Count          int    `json:"count"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"total_formatted"`
	Currency       string `json:"currency"`
	FreeDelivery   bool   `json:"free_delivery"`
	Empty          bool   `json:"empty"`
}

// Summarize builds the checkout summary of c.
func Summarize(c Cart) CheckoutSummary {
	total := c.Total()
	currency := c.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	return CheckoutSummary{
		Lines:          c.Lines(),
		Count:          c.Count(),
		Total:          total,
		TotalFormatted: FormatPrice(total),
		Currency:       currency,
		FreeDelivery:   total >= FreeDeliveryThreshold,
		Empty:          c.IsEmpty(),
	}
}
