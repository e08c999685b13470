package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/domain"
	"github.com/JeterChan/miao-fruit-web/internal/repository"
	"github.com/google/uuid"
)

type fakeProductRepo struct {
	products map[uuid.UUID]domain.Product
	listErr  error
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[uuid.UUID]domain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) ListProducts(_ context.Context) ([]domain.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) GetProductById(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// fakeOrderRepo keeps committed orders in memory. CreateOrder stores the
// whole order or nothing, mirroring the transactional repository.
type fakeOrderRepo struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	lastNumber string
	createErr  error
	// conflictOnce simulates losing the number race exactly once: the
	// losing insert fails and the winner's number becomes visible to the
	// next day-scope query.
	conflictOnce bool
	createCalls  int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (f *fakeOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	if f.createErr != nil {
		return f.createErr
	}
	if f.conflictOnce {
		f.conflictOnce = false
		f.lastNumber = o.OrderNumber
		return fmt.Errorf("%w: %s", domain.ErrOrderNumberTaken, o.OrderNumber)
	}
	if _, exists := f.orders[o.OrderNumber]; exists {
		return fmt.Errorf("%w: %s", domain.ErrOrderNumberTaken, o.OrderNumber)
	}

	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	f.orders[o.OrderNumber] = &stored
	f.lastNumber = o.OrderNumber
	return nil
}

func (f *fakeOrderRepo) LastOrderNumberOfDay(_ context.Context, _, _ time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastNumber, nil
}

func (f *fakeOrderRepo) GetOrderByNumber(_ context.Context, orderNumber, email string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderNumber]
	if !ok || o.SenderEmail != email {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) ListOrders(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, orderNumber string, status domain.Status) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderNumber]
	if !ok {
		return nil, nil
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	cp := *o
	return &cp, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ConfirmationEvent
	done   chan struct{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{done: make(chan struct{}, 8)}
}

func (f *fakePublisher) PublishConfirmation(_ context.Context, ev ConfirmationEvent) error {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakePublisher) published() []ConfirmationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ConfirmationEvent, len(f.events))
	copy(out, f.events)
	return out
}
