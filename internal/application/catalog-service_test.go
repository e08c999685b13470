package application

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	mu    sync.Mutex
	store map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.store[key] = string(v)
	case string:
		f.store[key] = v
	}
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key], nil
}

func catalogFixture() []domain.Product {
	return []domain.Product{
		{ID: uuid.New(), Grade: "豐水梨 10A", Price: 900, Quantity: 10, Catalog: domain.CatalogSingle},
		{ID: uuid.New(), Grade: "豐水梨 8A", Price: 700, Quantity: 8, Catalog: domain.CatalogSingle},
		{ID: uuid.New(), Grade: "新興梨 38A-2", Price: 1600, Quantity: 38, Catalog: domain.CatalogDouble},
		{ID: uuid.New(), Grade: "新興梨 30A-2", Price: 1400, Quantity: 30, Catalog: domain.CatalogDouble},
	}
}

func TestListProducts_PartitionsAndSortsByPrice(t *testing.T) {
	svc := NewCatalogService(newFakeProductRepo(catalogFixture()...), nil)

	view, err := svc.ListProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, view.SingleLayer, 2)
	require.Len(t, view.DoubleLayer, 2)
	assert.Equal(t, int64(700), view.SingleLayer[0].Price)
	assert.Equal(t, int64(900), view.SingleLayer[1].Price)
	assert.Equal(t, int64(1400), view.DoubleLayer[0].Price)
	assert.Equal(t, int64(1600), view.DoubleLayer[1].Price)
}

func TestListProducts_EmptyCatalog(t *testing.T) {
	svc := NewCatalogService(newFakeProductRepo(), nil)

	view, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view.SingleLayer)
	assert.Empty(t, view.DoubleLayer)
}

func TestListProducts_PopulatesAndServesCache(t *testing.T) {
	repo := newFakeProductRepo(catalogFixture()...)
	c := newFakeCache()
	svc := NewCatalogService(repo, c)

	first, err := svc.ListProducts(context.Background())
	require.NoError(t, err)

	cached, ok := c.store[catalogCacheKey]
	require.True(t, ok, "catalog view should be cached after a miss")
	var decoded CatalogView
	require.NoError(t, json.Unmarshal([]byte(cached), &decoded))

	// catalog changes are invisible until the TTL expires
	repo.listErr = context.DeadlineExceeded
	second, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGetProduct(t *testing.T) {
	products := catalogFixture()
	svc := NewCatalogService(newFakeProductRepo(products...), nil)

	got, err := svc.GetProduct(context.Background(), products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, products[0].Grade, got.Grade)
	assert.Equal(t, products[0].Price, got.Price)

	_, err = svc.GetProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
