package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/techstore/internal/domain"
	pkgkafka "github.com/utafrali/techstore/pkg/kafka"
)

// Kafka topic constants for cart domain events.
const (
	TopicCartUpdated = "techstore.cart.updated"
	TopicCartCleared = "techstore.cart.cleared"
)

// AggregateTypeCart is the aggregate type of every cart event.
const AggregateTypeCart = "cart"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// ErrPublisherUnavailable is returned without contacting Kafka while the
// breaker is open.
var ErrPublisherUnavailable = errors.New("event publisher unavailable")

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID   string         `json:"session_id"`
	Items       []CartItemData `json:"items"`
	ItemCount   int            `json:"item_count"`
	TotalAmount int64          `json:"total_amount"`
	Currency    string         `json:"currency"`
	Version     int            `json:"version"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// Publisher is implemented by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// BreakerConfig controls when publishing is short-circuited.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts are reset.
	Interval time.Duration
	// Timeout the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures that trip the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns breaker settings for request-path publishing.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

var breakerState = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "storefront_event_publisher_breaker_state",
	Help: "State of the event publisher circuit breaker (0=closed, 1=half-open, 2=open)",
})

func init() {
	prometheus.MustRegister(breakerState)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Producer publishes cart domain events to Kafka through a circuit breaker.
type Producer struct {
	kafka   Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Publisher, cfg BreakerConfig, logger *slog.Logger) *Producer {
	settings := gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.Set(stateToFloat(to))
		},
	}
	breakerState.Set(0)

	return &Producer{
		kafka:   kafka,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:  logger,
	}
}

// State returns the current breaker state.
func (p *Producer) State() gobreaker.State {
	return p.breaker.State()
}

func (p *Producer) publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.kafka.Publish(ctx, topic, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("publish %s: %w", event.EventType, ErrPublisherUnavailable)
	}
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.EventType, err)
	}
	return nil
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ProductID: item.ID,
			Name:      item.Name,
			Category:  item.Category,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID:   cart.SessionID,
		Items:       items,
		ItemCount:   cart.Count(),
		TotalAmount: cart.Total(),
		Currency:    cart.Currency,
		Version:     cart.Version,
	}

	event, err := pkgkafka.NewEvent(ctx, TopicCartUpdated, cart.SessionID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}
	event.WithMetadata("cart_version", strconv.Itoa(cart.Version))

	if err := p.publish(ctx, TopicCartUpdated, event); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", cart.SessionID),
		slog.Int("item_count", data.ItemCount),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	event, err := pkgkafka.NewEvent(ctx, TopicCartCleared, sessionID, AggregateTypeCart, SourceStorefront, CartClearedData{SessionID: sessionID})
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.publish(ctx, TopicCartCleared, event); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("session_id", sessionID),
	)

	return nil
}

// NopPublisher discards events. It is wired when Kafka is disabled.
type NopPublisher struct{}

// PublishCartUpdated does nothing.
func (NopPublisher) PublishCartUpdated(context.Context, domain.Cart) error { return nil }

// PublishCartCleared does nothing.
func (NopPublisher) PublishCartCleared(context.Context, string) error { return nil }
