package application

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/cache"
	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
	"github.com/JeterChan/miao-fruit-web/internal/repository"
	"github.com/google/uuid"
)

const (
	catalogCacheKey = "catalog:products:all"
	catalogCacheTTL = 5 * time.Minute
)

type ProductView struct {
	ID       uuid.UUID `json:"id"`
	Grade    string    `json:"grade"`
	Quantity int       `json:"quantity"`
	Price    int64     `json:"price"`
	Catalog  string    `json:"catalog"`
}

type CatalogView struct {
	SingleLayer []ProductView `json:"singleLayer"`
	DoubleLayer []ProductView `json:"doubleLayer"`
}

type CatalogService struct {
	products repository.ProductRepo
	cache    cache.Cache
}

// NewCatalogService builds the catalog read path; cache may be nil to read
// straight from the store.
func NewCatalogService(products repository.ProductRepo, c cache.Cache) *CatalogService {
	return &CatalogService{products: products, cache: c}
}

// ListProducts partitions the catalog into single- and double-layer groups,
// each sorted by ascending price. Cache failures fall through to the store.
func (s *CatalogService) ListProducts(ctx context.Context) (*CatalogView, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, catalogCacheKey)
		if err != nil {
			logger.Warn("catalog cache read failed", "err", err)
		} else if raw != "" {
			var view CatalogView
			if err := json.Unmarshal([]byte(raw), &view); err == nil {
				return &view, nil
			}
			logger.Warn("catalog cache payload invalid; refetching")
		}
	}

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	view := &CatalogView{
		SingleLayer: []ProductView{},
		DoubleLayer: []ProductView{},
	}
	for _, p := range products {
		pv := ProductView{
			ID:       p.ID,
			Grade:    p.Grade,
			Quantity: p.Quantity,
			Price:    p.Price,
			Catalog:  p.Catalog,
		}
		if p.Catalog == domain.CatalogDouble {
			view.DoubleLayer = append(view.DoubleLayer, pv)
		} else {
			view.SingleLayer = append(view.SingleLayer, pv)
		}
	}

	byPrice := func(views []ProductView) func(i, j int) bool {
		return func(i, j int) bool { return views[i].Price < views[j].Price }
	}
	sort.Slice(view.SingleLayer, byPrice(view.SingleLayer))
	sort.Slice(view.DoubleLayer, byPrice(view.DoubleLayer))

	if s.cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, payload, catalogCacheTTL); err != nil {
				logger.Warn("catalog cache write failed", "err", err)
			}
		}
	}
	return view, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.products.GetProductById(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ProductMissing(id.String())
	}
	return &ProductView{
		ID:       product.ID,
		Grade:    product.Grade,
		Quantity: product.Quantity,
		Price:    product.Price,
		Catalog:  product.Catalog,
	}, nil
}
