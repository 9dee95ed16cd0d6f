package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/techstore/internal/domain"
	apperrors "github.com/utafrali/techstore/pkg/errors"
)

var tablet = domain.Product{ID: 4, Name: "Tablet Air 12", Price: 64990, Category: "Планшеты"}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRepo(t *testing.T) (*CartRepository, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	repo := NewCartRepository(time.Hour)
	repo.now = clock.Now
	return repo, clock
}

// store writes cart on top of whatever is stored for its session.
func store(t *testing.T, repo *CartRepository, cart domain.Cart) {
	t.Helper()
	ctx := context.Background()

	current := 0
	if stored, err := repo.Get(ctx, cart.SessionID); err == nil {
		current = stored.Version
	}
	ok, err := repo.SaveIfVersion(ctx, cart, current)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCartRepository_SaveAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)

	cart := domain.NewCart("s1").AddItem(tablet)
	store(t, repo, cart)

	got, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	cart.Version = 1
	assert.Equal(t, cart, got)
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_Expired(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	store(t, repo, domain.NewCart("s1").AddItem(tablet))

	clock.Advance(59 * time.Minute)
	_, err := repo.Get(ctx, "s1")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, repo.carts)
}

func TestCartRepository_WriteRefreshesExpiry(t *testing.T) {
	repo, clock := newTestRepo(t)
	ctx := context.Background()

	store(t, repo, domain.NewCart("s1"))
	clock.Advance(50 * time.Minute)
	store(t, repo, domain.NewCart("s1").AddItem(tablet))
	clock.Advance(50 * time.Minute)

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count())
}

func TestCartRepository_StoredCopyIsDetached(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	cart := domain.NewCart("s1").AddItem(tablet)
	store(t, repo, cart)

	cart.Items[0].Quantity = 99

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)

	got.Items[0].Quantity = 42
	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestCartRepository_SaveIfVersion(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	ok, err := repo.SaveIfVersion(ctx, domain.NewCart("s1").AddItem(tablet), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)

	ok, err = repo.SaveIfVersion(ctx, got.AddItem(tablet), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.SaveIfVersion(ctx, got.AddItem(tablet), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, 2, got.Count())
}

func TestCartRepository_SaveIfVersion_MissingCartNeedsZero(t *testing.T) {
	repo, _ := newTestRepo(t)

	ok, err := repo.SaveIfVersion(context.Background(), domain.NewCart("s1"), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, repo.carts)
}

func TestCartRepository_SaveIfVersion_ConcurrentWritersOneWins(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.SaveIfVersion(ctx, domain.NewCart("s1").AddItem(tablet), 0)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestCartRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	store(t, repo, domain.NewCart("s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))

	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
