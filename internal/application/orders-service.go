package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
	"github.com/JeterChan/miao-fruit-web/internal/repository"
	"github.com/sethvargo/go-retry"
)

const (
	maxNotesLength = 500

	// number collisions between concurrent same-day submissions are
	// transient; regenerate and retry a bounded number of times
	submitRetries = 3
	submitBackoff = 25 * time.Millisecond

	publishTimeout = 5 * time.Second
)

type SubmitOrderInput struct {
	Cart        []CartLine
	Sender      domain.Contact
	SenderEmail string
	Receiver    domain.Contact
	Notes       string
	LineUserID  string
}

type OrderConfirmation struct {
	OrderNumber string `json:"orderNumber"`
	Subtotal    int64  `json:"subtotal"`
	ShippingFee int64  `json:"shippingFee"`
	TotalAmount int64  `json:"totalAmount"`
	Status      string `json:"status"`
}

type ConfirmationItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// ConfirmationEvent is published after a successful commit and consumed by
// the notifier worker.
type ConfirmationEvent struct {
	OrderNumber string             `json:"orderNumber"`
	LineUserID  string             `json:"lineUserId"`
	TotalAmount int64              `json:"totalAmount"`
	Status      string             `json:"status"`
	Items       []ConfirmationItem `json:"items"`
}

type ConfirmationPublisher interface {
	PublishConfirmation(ctx context.Context, ev ConfirmationEvent) error
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type OrderStatusView struct {
	OrderNumber     string    `json:"orderNumber"`
	OrderStatus     string    `json:"orderStatus"`
	Subtotal        int64     `json:"subtotal"`
	ShippingFee     int64     `json:"shippingFee"`
	TotalAmount     int64     `json:"totalAmount"`
	OrderDate       time.Time `json:"orderDate"`
	SenderName      string    `json:"senderName"`
	ReceiverName    string    `json:"receiverName"`
	ReceiverAddress string    `json:"receiverAddress"`
}

type OrdersService struct {
	orders    repository.OrderRepo
	pricer    *Pricer
	numbers   *OrderNumberGenerator
	publisher ConfirmationPublisher
	now       func() time.Time
}

// NewOrdersService wires the submit workflow; publisher may be nil when no
// notification channel is configured.
func NewOrdersService(orders repository.OrderRepo, pricer *Pricer, numbers *OrderNumberGenerator, publisher ConfirmationPublisher) *OrdersService {
	return &OrdersService{
		orders:    orders,
		pricer:    pricer,
		numbers:   numbers,
		publisher: publisher,
		now:       time.Now,
	}
}

// SubmitOrder validates the cart and contacts, reprices server-side,
// generates an order number and persists the order with its line items in
// one transaction. A duplicate order number regenerates and retries; every
// other failure aborts the whole unit of work.
func (s *OrdersService) SubmitOrder(ctx context.Context, in SubmitOrderInput) (*OrderConfirmation, error) {
	if len(in.Cart) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := validateContacts(in); err != nil {
		return nil, err
	}
	if len([]rune(in.Notes)) > maxNotesLength {
		return nil, domain.ErrNotesTooLong
	}

	priced, err := s.pricer.PriceCart(ctx, in.Cart)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	backoff := retry.WithMaxRetries(submitRetries, retry.NewConstant(submitBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		number, err := s.numbers.Next(ctx, s.now())
		if err != nil {
			return err
		}

		candidate := buildOrder(number, in, priced)
		if err := s.orders.CreateOrder(ctx, candidate); err != nil {
			if errors.Is(err, domain.ErrOrderNumberTaken) {
				return retry.RetryableError(err)
			}
			return err
		}
		order = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("order created",
		"order_number", order.OrderNumber,
		"total", order.TotalAmount,
		"items", len(order.Items),
	)
	s.publishConfirmation(order, in.LineUserID)

	return &OrderConfirmation{
		OrderNumber: order.OrderNumber,
		Subtotal:    order.Subtotal,
		ShippingFee: order.ShippingFee,
		TotalAmount: order.TotalAmount,
		Status:      order.Status.Label(),
	}, nil
}

func (s *OrdersService) GetOrderStatus(ctx context.Context, orderNumber, email string) (*OrderStatusView, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber, email)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	return &OrderStatusView{
		OrderNumber:     order.OrderNumber,
		OrderStatus:     order.Status.Label(),
		Subtotal:        order.Subtotal,
		ShippingFee:     order.ShippingFee,
		TotalAmount:     order.TotalAmount,
		OrderDate:       order.CreatedAt,
		SenderName:      order.Sender.Name,
		ReceiverName:    order.Receiver.Name,
		ReceiverAddress: order.Receiver.Address,
	}, nil
}

func (s *OrdersService) GetOrderDetails(ctx context.Context, orderNumber, email string) (*domain.Order, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber, email)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrdersService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	orders, total, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}
	return orders, Pagination{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
		Pages: pages,
	}, nil
}

// UpdateStatus accepts either canonical or display-label status values and
// applies the canonical one.
func (s *OrdersService) UpdateStatus(ctx context.Context, orderNumber, rawStatus string) (*domain.Order, error) {
	status, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.UpdateOrderStatus(ctx, orderNumber, status)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// publishConfirmation hands the confirmation to the queue outside the
// request path; a slow or failing broker never touches the submission.
func (s *OrdersService) publishConfirmation(order *domain.Order, lineUserID string) {
	if s.publisher == nil || lineUserID == "" {
		return
	}

	ev := ConfirmationEvent{
		OrderNumber: order.OrderNumber,
		LineUserID:  lineUserID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status.Label(),
	}
	for _, it := range order.Items {
		ev.Items = append(ev.Items, ConfirmationItem{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.PublishConfirmation(ctx, ev); err != nil {
			logger.Warn("confirmation publish failed", "order_number", ev.OrderNumber, "err", err)
		}
	}()
}

func buildOrder(number string, in SubmitOrderInput, priced *PricedCart) *domain.Order {
	order := &domain.Order{
		OrderNumber: number,
		Sender:      in.Sender,
		SenderEmail: in.SenderEmail,
		Receiver:    in.Receiver,
		Subtotal:    priced.Subtotal,
		ShippingFee: priced.ShippingFee,
		TotalAmount: priced.Total,
		Notes:       in.Notes,
		Status:      domain.StatusProcessing,
	}
	for _, line := range priced.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			OrderNumber: number,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Price:       line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal,
		})
	}
	return order
}

func validateContacts(in SubmitOrderInput) error {
	required := []struct {
		field string
		value string
	}{
		{"senderName", in.Sender.Name},
		{"senderPhone", in.Sender.Phone},
		{"senderAddress", in.Sender.Address},
		{"receiverName", in.Receiver.Name},
		{"receiverPhone", in.Receiver.Phone},
		{"receiverAddress", in.Receiver.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return domain.MissingField(r.field)
		}
	}
	return nil
}
