package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/techstore/internal/domain"
	"github.com/utafrali/techstore/internal/repository/static"
	apperrors "github.com/utafrali/techstore/pkg/errors"
)

// --- Mock Repository ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID string) (domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *mockCartRepository) SaveIfVersion(ctx context.Context, cart domain.Cart, expectedVersion int) (bool, error) {
	args := m.Called(ctx, cart, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, cart domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockPublisher) PublishCartCleared(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Test Helpers ---

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

const testTTL = 24 * time.Hour

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCatalog(t *testing.T) *CatalogService {
	t.Helper()
	catalog, err := NewCatalogService(context.Background(), static.NewProductRepository(nil), newTestLogger())
	require.NoError(t, err)
	return catalog
}

func newTestService(t *testing.T) (*CartService, *mockCartRepository, *mockPublisher) {
	t.Helper()
	repo := new(mockCartRepository)
	pub := new(mockPublisher)
	svc := NewCartService(repo, newTestCatalog(t), pub, newTestLogger(), testTTL)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, pub
}

func product(t *testing.T, id int) domain.Product {
	t.Helper()
	for _, p := range static.DefaultProducts() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no product %d", id)
	return domain.Product{}
}

func storedCart(t *testing.T, version int, ids ...int) domain.Cart {
	t.Helper()
	c := domain.NewCart("sess-1")
	for _, id := range ids {
		c = c.AddItem(product(t, id))
	}
	c.Version = version
	return c
}

func notFound() error { return apperrors.NotFound("cart", "sess-1") }

// --- GetCart ---

func TestGetCart_Empty(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(domain.Cart{}, notFound())

	cart, err := svc.GetCart(ctx, "sess-1")

	require.NoError(t, err)
	assert.Equal(t, "sess-1", cart.SessionID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, domain.DefaultCurrency, cart.Currency)
	assert.Equal(t, 0, cart.Version)
	assert.Equal(t, fixedNow.Add(testTTL), cart.ExpiresAt)

	repo.AssertExpectations(t)
}

func TestGetCart_Existing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	expected := storedCart(t, 2, 1, 1)
	repo.On("Get", ctx, "sess-1").Return(expected, nil)

	cart, err := svc.GetCart(ctx, "sess-1")

	require.NoError(t, err)
	assert.Equal(t, expected, cart)
	repo.AssertExpectations(t)
}

func TestGetCart_EmptySession(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.GetCart(context.Background(), "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestGetCart_RepoError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(domain.Cart{}, errors.New("redis down"))

	_, err := svc.GetCart(ctx, "sess-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get cart")
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

// --- AddItem ---

func TestAddItem_NewCart(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()
	before := testutil.ToFloat64(cartOperations.WithLabelValues(OpAdd))

	repo.On("Get", ctx, "sess-1").Return(domain.Cart{}, notFound())
	repo.On("SaveIfVersion", ctx, mock.MatchedBy(func(c domain.Cart) bool {
		return len(c.Items) == 1 && c.Items[0].ID == 2 && c.Items[0].Quantity == 1
	}), 0).Return(true, nil)
	pub.On("PublishCartUpdated", ctx, mock.AnythingOfType("domain.Cart")).Return(nil)

	cart, err := svc.AddItem(ctx, "sess-1", 2)

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "AirPods Ultra", cart.Items[0].Name)
	assert.Equal(t, 1, cart.Version)
	assert.Equal(t, fixedNow, cart.UpdatedAt)
	assert.Equal(t, fixedNow.Add(testTTL), cart.ExpiresAt)
	assert.Equal(t, before+1, testutil.ToFloat64(cartOperations.WithLabelValues(OpAdd)))

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestAddItem_AccumulatesExisting(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(storedCart(t, 4, 1, 2), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("domain.Cart"), 4).Return(true, nil)
	pub.On("PublishCartUpdated", ctx, mock.MatchedBy(func(c domain.Cart) bool {
		return c.Version == 5 && c.Count() == 3
	})).Return(nil)

	cart, err := svc.AddItem(ctx, "sess-1", 1)

	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, int64(89990*2+24990), cart.Total())
	pub.AssertExpectations(t)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, repo, pub := newTestService(t)

	_, err := svc.AddItem(context.Background(), "sess-1", 999)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything)
}

func TestAddItem_EmptySession(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "", 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAddItem_VersionConflict(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(storedCart(t, 1, 1), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("domain.Cart"), 1).Return(false, nil)

	_, err := svc.AddItem(ctx, "sess-1", 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything)
}

func TestAddItem_SaveError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(domain.Cart{}, notFound())
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("domain.Cart"), 0).Return(false, errors.New("redis down"))

	_, err := svc.AddItem(ctx, "sess-1", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save cart")
}

func TestAddItem_PublishFailureIsSwallowed(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(domain.Cart{}, notFound())
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("domain.Cart"), 0).Return(true, nil)
	pub.On("PublishCartUpdated", ctx, mock.AnythingOfType("domain.Cart")).Return(errors.New("kafka down"))

	cart, err := svc.AddItem(ctx, "sess-1", 3)

	require.NoError(t, err)
	assert.Equal(t, 1, cart.Count())
}

// --- RemoveItem ---

func TestRemoveItem_Success(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(storedCart(t, 2, 1, 2, 3), nil)
	repo.On("SaveIfVersion", ctx, mock.MatchedBy(func(c domain.Cart) bool {
		_, has := c.Item(2)
		return !has && len(c.Items) == 2
	}), 2).Return(true, nil)
	pub.On("PublishCartUpdated", ctx, mock.AnythingOfType("domain.Cart")).Return(nil)

	cart, err := svc.RemoveItem(ctx, "sess-1", 2)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, []int{cart.Items[0].ID, cart.Items[1].ID})
	assert.Equal(t, 3, cart.Version)
	repo.AssertExpectations(t)
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	stored := storedCart(t, 2, 1)
	repo.On("Get", ctx, "sess-1").Return(stored, nil)

	cart, err := svc.RemoveItem(ctx, "sess-1", 6)

	require.NoError(t, err)
	assert.Equal(t, stored, cart)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything)
}

func TestRemoveItem_FromMissingCart(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(domain.Cart{}, notFound())

	cart, err := svc.RemoveItem(ctx, "sess-1", 1)

	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
}

// --- UpdateQuantity ---

func TestUpdateQuantity_Increase(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()
	before := testutil.ToFloat64(cartOperations.WithLabelValues(OpUpdate))

	repo.On("Get", ctx, "sess-1").Return(storedCart(t, 1, 5), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("domain.Cart"), 1).Return(true, nil)
	pub.On("PublishCartUpdated", ctx, mock.AnythingOfType("domain.Cart")).Return(nil)

	cart, err := svc.UpdateQuantity(ctx, "sess-1", 5, 2)

	require.NoError(t, err)
	item, ok := cart.Item(5)
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, before+1, testutil.ToFloat64(cartOperations.WithLabelValues(OpUpdate)))
}

func TestUpdateQuantity_DecrementToZeroRemoves(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(storedCart(t, 1, 5, 6), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("domain.Cart"), 1).Return(true, nil)
	pub.On("PublishCartUpdated", ctx, mock.AnythingOfType("domain.Cart")).Return(nil)

	cart, err := svc.UpdateQuantity(ctx, "sess-1", 5, -1)

	require.NoError(t, err)
	_, ok := cart.Item(5)
	assert.False(t, ok)
	assert.Len(t, cart.Items, 1)
}

func TestUpdateQuantity_AbsentIsNoOp(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	stored := storedCart(t, 1, 5)
	repo.On("Get", ctx, "sess-1").Return(stored, nil)

	cart, err := svc.UpdateQuantity(ctx, "sess-1", 4, 3)

	require.NoError(t, err)
	assert.Equal(t, stored, cart)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything)
}

func TestUpdateQuantity_ZeroDeltaIsNoOp(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	stored := storedCart(t, 1, 5)
	repo.On("Get", ctx, "sess-1").Return(stored, nil)

	cart, err := svc.UpdateQuantity(ctx, "sess-1", 5, 0)

	require.NoError(t, err)
	assert.Equal(t, stored, cart)
	repo.AssertNotCalled(t, "SaveIfVersion", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateQuantity_Conflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("Get", ctx, "sess-1").Return(storedCart(t, 7, 5), nil)
	repo.On("SaveIfVersion", ctx, mock.AnythingOfType("domain.Cart"), 7).Return(false, nil)

	_, err := svc.UpdateQuantity(ctx, "sess-1", 5, 1)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

// --- ClearCart ---

func TestClearCart(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	repo.On("Delete", ctx, "sess-1").Return(nil)
	pub.On("PublishCartCleared", ctx, "sess-1").Return(nil)

	require.NoError(t, svc.ClearCart(ctx, "sess-1"))

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestClearCart_DeleteError(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	repo.On("Delete", ctx, "sess-1").Return(errors.New("redis down"))

	err := svc.ClearCart(ctx, "sess-1")

	require.Error(t, err)
	pub.AssertNotCalled(t, "PublishCartCleared", mock.Anything, mock.Anything)
}

func TestClearCart_EmptySession(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.ErrorIs(t, svc.ClearCart(context.Background(), ""), apperrors.ErrInvalidInput)
}
