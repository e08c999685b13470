package application

import (
	"context"

	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/JeterChan/miao-fruit-web/internal/repository"
	"github.com/google/uuid"
)

type CartLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type PricedLine struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice int64
	Quantity  int
	Subtotal  int64
}

type PricedCart struct {
	Lines         []PricedLine
	Subtotal      int64
	ShippingFee   int64
	Total         int64
	TotalQuantity int
}

// Pricer recomputes cart totals from authoritative catalog prices; nothing
// the client sends about money is trusted.
type Pricer struct {
	products        repository.ProductRepo
	shippingFee     int64
	freeShippingQty int
}

func NewPricer(products repository.ProductRepo, shippingFee int64, freeShippingQty int) *Pricer {
	return &Pricer{
		products:        products,
		shippingFee:     shippingFee,
		freeShippingQty: freeShippingQty,
	}
}

// PriceCart re-fetches every referenced product, snapshots its name and
// price, and applies the shipping rule: free once the total quantity
// reaches the threshold, flat fee below it.
func (p *Pricer) PriceCart(ctx context.Context, lines []CartLine) (*PricedCart, error) {
	priced := &PricedCart{}

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}

		product, err := p.products.GetProductById(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ProductMissing(line.ProductID.String())
		}

		subtotal := product.Price * int64(line.Quantity)
		priced.Lines = append(priced.Lines, PricedLine{
			ProductID: product.ID,
			Name:      product.Grade,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
		priced.Subtotal += subtotal
		priced.TotalQuantity += line.Quantity
	}

	if priced.TotalQuantity < p.freeShippingQty {
		priced.ShippingFee = p.shippingFee
	}
	priced.Total = priced.Subtotal + priced.ShippingFee
	return priced, nil
}
