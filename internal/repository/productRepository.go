package repository

import (
	"context"
	"errors"

	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepo interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductById(ctx context.Context, id uuid.UUID) (*domain.Product, error)
}

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(p *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: p}
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, grade, price, quantity, catalog, created_at, updated_at
		 FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Grade, &p.Price, &p.Quantity, &p.Catalog,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetProductById(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, grade, price, quantity, catalog, created_at, updated_at
		 FROM products
		 WHERE id = $1`, id).
		Scan(&p.ID, &p.Grade, &p.Price, &p.Quantity, &p.Catalog, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
