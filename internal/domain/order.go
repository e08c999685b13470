package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusLabels maps canonical statuses to their storefront display text.
var statusLabels = map[Status]string{
	StatusPending:    "處理中",
	StatusProcessing: "處理中",
	StatusShipped:    "已出貨",
	StatusDelivered:  "已送達",
	StatusCancelled:  "已取消",
}

// labelAliases lets the admin UI submit display text instead of the
// canonical value.
var labelAliases = map[string]Status{
	"處理中": StatusProcessing,
	"已出貨": StatusShipped,
	"已送達": StatusDelivered,
	"已取消": StatusCancelled,
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human-readable display text for s, falling back to the
// raw value for anything outside the enumerated set.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStatus resolves a client-supplied status, accepting either the
// canonical English value or its display-label alias.
func ParseStatus(raw string) (Status, error) {
	if s, ok := labelAliases[raw]; ok {
		return s, nil
	}
	s := Status(raw)
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

type Contact struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode,omitempty"`
}

type Order struct {
	OrderNumber string      `json:"orderNumber"`
	Items       []OrderItem `json:"orderItems"`
	Sender      Contact     `json:"sender"`
	SenderEmail string      `json:"senderEmail,omitempty"`
	Receiver    Contact     `json:"receiver"`
	Subtotal    int64       `json:"subtotal"`
	ShippingFee int64       `json:"shippingFee"`
	TotalAmount int64       `json:"totalAmount"`
	Notes       string      `json:"notes"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// OrderItem carries a snapshot of the product's name and price at order
// time; historical orders stay stable when the catalog changes.
type OrderItem struct {
	OrderNumber string    `json:"orderNumber"`
	ProductID   uuid.UUID `json:"product"`
	ProductName string    `json:"productName"`
	Price       int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	Subtotal    int64     `json:"subtotal"`
}
