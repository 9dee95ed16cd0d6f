package service

import (
	"context"

	"github.com/utafrali/techstore/internal/domain"
)

// CartReader is the read side of CartService.
type CartReader interface {
	GetCart(ctx context.Context, sessionID string) (domain.Cart, error)
}

// StorefrontService serves the informational pages and the checkout summary.
type StorefrontService struct {
	carts    CartReader
	delivery domain.DeliveryInfo
	contacts domain.Contacts
}

// NewStorefrontService creates a storefront service with the default store content.
func NewStorefrontService(carts CartReader) *StorefrontService {
	return &StorefrontService{
		carts:    carts,
		delivery: domain.DefaultDeliveryInfo(),
		contacts: domain.DefaultContacts(),
	}
}

// DeliveryInfo returns the delivery and payment terms.
func (s *StorefrontService) DeliveryInfo() domain.DeliveryInfo {
	return s.delivery
}

// Contacts returns the store's contact details.
func (s *StorefrontService) Contacts() domain.Contacts {
	return s.contacts
}

// CheckoutSummary summarizes the session's cart for the checkout page.
func (s *StorefrontService) CheckoutSummary(ctx context.Context, sessionID string) (domain.CheckoutSummary, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSummary{}, err
	}
	return domain.Summarize(cart), nil
}
