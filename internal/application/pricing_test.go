package application

import (
	"context"
	"testing"

	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() (domain.Product, domain.Product) {
	p1 := domain.Product{ID: uuid.New(), Grade: "豐水梨 8A", Price: 700, Quantity: 8, Catalog: domain.CatalogSingle}
	p2 := domain.Product{ID: uuid.New(), Grade: "新興梨 10A", Price: 800, Quantity: 10, Catalog: domain.CatalogDouble}
	return p1, p2
}

func TestPriceCart_SingleItemPaysShipping(t *testing.T) {
	p1, _ := testProducts()
	pricer := NewPricer(newFakeProductRepo(p1), 100, 2)

	priced, err := pricer.PriceCart(context.Background(), []CartLine{
		{ProductID: p1.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(700), priced.Subtotal)
	assert.Equal(t, int64(100), priced.ShippingFee)
	assert.Equal(t, int64(800), priced.Total)
}

func TestPriceCart_TwoItemsShipFree(t *testing.T) {
	p1, p2 := testProducts()
	pricer := NewPricer(newFakeProductRepo(p1, p2), 100, 2)

	priced, err := pricer.PriceCart(context.Background(), []CartLine{
		{ProductID: p1.ID, Quantity: 1},
		{ProductID: p2.ID, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1500), priced.Subtotal)
	assert.Equal(t, int64(0), priced.ShippingFee)
	assert.Equal(t, int64(1500), priced.Total)
	assert.Equal(t, 2, priced.TotalQuantity)
}

func TestPriceCart_QuantityThresholdWithinOneLine(t *testing.T) {
	p1, _ := testProducts()
	pricer := NewPricer(newFakeProductRepo(p1), 100, 2)

	priced, err := pricer.PriceCart(context.Background(), []CartLine{
		{ProductID: p1.ID, Quantity: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2100), priced.Subtotal)
	assert.Equal(t, int64(0), priced.ShippingFee)
}

func TestPriceCart_SnapshotsAuthoritativePrice(t *testing.T) {
	p1, _ := testProducts()
	repo := newFakeProductRepo(p1)
	pricer := NewPricer(repo, 100, 2)

	priced, err := pricer.PriceCart(context.Background(), []CartLine{
		{ProductID: p1.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, priced.Lines, 1)

	line := priced.Lines[0]
	assert.Equal(t, p1.Grade, line.Name)
	assert.Equal(t, int64(700), line.UnitPrice)
	assert.Equal(t, int64(1400), line.Subtotal)
}

func TestPriceCart_UnknownProduct(t *testing.T) {
	p1, _ := testProducts()
	pricer := NewPricer(newFakeProductRepo(p1), 100, 2)

	missing := uuid.New()
	_, err := pricer.PriceCart(context.Background(), []CartLine{
		{ProductID: missing, Quantity: 1},
	})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Contains(t, err.Error(), missing.String())
}

func TestPriceCart_RejectsNonPositiveQuantity(t *testing.T) {
	p1, _ := testProducts()
	pricer := NewPricer(newFakeProductRepo(p1), 100, 2)

	for _, qty := range []int{0, -1} {
		_, err := pricer.PriceCart(context.Background(), []CartLine{
			{ProductID: p1.ID, Quantity: qty},
		})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
}
