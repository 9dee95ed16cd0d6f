package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/techstore/internal/domain"
	"github.com/utafrali/techstore/internal/repository"
	apperrors "github.com/utafrali/techstore/pkg/errors"
	"github.com/utafrali/techstore/pkg/logger"
)

// Cart operation labels for the operations counter.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpUpdate = "update_quantity"
	OpClear  = "clear"
)

var cartOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Total number of successful cart mutations",
	},
	[]string{"operation"},
)

func init() {
	prometheus.MustRegister(cartOperations)
}

// EventPublisher publishes cart domain events.
type EventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart domain.Cart) error
	PublishCartCleared(ctx context.Context, sessionID string) error
}

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	Product(id int) (domain.Product, error)
}

// AddItemInput is the body of an add-to-cart request.
type AddItemInput struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// UpdateQuantityInput is the body of a quantity change request. Delta may be
// negative; a resulting quantity of zero or less removes the item.
type UpdateQuantityInput struct {
	Delta int `json:"delta" validate:"gte=-1000,lte=1000"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	repo      repository.CartRepository
	catalog   ProductLookup
	publisher EventPublisher
	logger    *slog.Logger
	cartTTL   time.Duration
	now       func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, catalog ProductLookup, publisher EventPublisher, logger *slog.Logger, cartTTL time.Duration) *CartService {
	return &CartService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		logger:    logger,
		cartTTL:   cartTTL,
		now:       time.Now,
	}
}

// GetCart retrieves the cart for a session. If no cart exists, returns an empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, apperrors.InvalidInput("session id is required")
	}
	return s.load(ctx, sessionID)
}

// AddItem adds one unit of the product to the session's cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, apperrors.InvalidInput("session id is required")
	}

	product, err := s.catalog.Product(productID)
	if err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}

	next, err := s.save(ctx, OpAdd, cart.AddItem(product), cart.Version)
	if err != nil {
		return domain.Cart{}, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "item added to cart",
		slog.Int("product_id", productID),
		slog.Int("item_count", next.Count()),
	)
	return next, nil
}

// RemoveItem removes the product from the session's cart. Removing a product
// that is not in the cart returns the cart unchanged.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	if _, ok := cart.Item(productID); !ok {
		return cart, nil
	}

	next, err := s.save(ctx, OpRemove, cart.RemoveItem(productID), cart.Version)
	if err != nil {
		return domain.Cart{}, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "item removed from cart",
		slog.Int("product_id", productID),
	)
	return next, nil
}

// UpdateQuantity shifts the quantity of a cart item by delta, removing it when
// the result drops to zero or below. Unknown products and a zero delta return
// the cart unchanged.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID, delta int) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	if _, ok := cart.Item(productID); !ok || delta == 0 {
		return cart, nil
	}

	next, err := s.save(ctx, OpUpdate, cart.UpdateQuantity(productID, delta), cart.Version)
	if err != nil {
		return domain.Cart{}, err
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart item quantity updated",
		slog.Int("product_id", productID),
		slog.Int("delta", delta),
	)
	return next, nil
}

// ClearCart removes all items from the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	cartOperations.WithLabelValues(OpClear).Inc()

	log := logger.WithContext(ctx, s.logger)
	if err := s.publisher.PublishCartCleared(ctx, sessionID); err != nil {
		log.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("error", err.Error()),
		)
	}

	log.InfoContext(ctx, "cart cleared")
	return nil
}

// load returns the stored cart, or a fresh empty one if none exists.
func (s *CartService) load(ctx context.Context, sessionID string) (domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(sessionID), nil
		}
		return domain.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) newEmptyCart(sessionID string) domain.Cart {
	now := s.now().UTC()
	cart := domain.NewCart(sessionID)
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)
	return cart
}

// save stores cart with optimistic locking against expectedVersion and
// publishes cart.updated on success.
func (s *CartService) save(ctx context.Context, op string, cart domain.Cart, expectedVersion int) (domain.Cart, error) {
	now := s.now().UTC()
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return domain.Cart{}, apperrors.Conflict("cart was modified concurrently, please retry")
	}
	cart.Version = expectedVersion + 1
	cartOperations.WithLabelValues(op).Inc()

	if err := s.publisher.PublishCartUpdated(ctx, cart); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
	}

	return cart, nil
}
