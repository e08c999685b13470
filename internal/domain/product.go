package domain

import (
	"time"

	"github.com/google/uuid"
)

// Catalog partitions the storefront into the two display groups.
const (
	CatalogSingle = "single"
	CatalogDouble = "double"
)

type Product struct {
	ID        uuid.UUID `json:"id"`
	Grade     string    `json:"grade"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	Catalog   string    `json:"catalog"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
