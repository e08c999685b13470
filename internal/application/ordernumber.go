package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/repository"
)

const orderNumberPrefix = "ORD"

// OrderNumberGenerator produces ORD + YYYYMMDD + NNNN numbers where the
// four-digit sequence resets every calendar day. The read-then-increment
// is racy on its own; the UNIQUE constraint on orders.order_number plus
// the submit retry is what makes it safe.
type OrderNumberGenerator struct {
	orders repository.OrderRepo
}

func NewOrderNumberGenerator(orders repository.OrderRepo) *OrderNumberGenerator {
	return &OrderNumberGenerator{orders: orders}
}

func (g *OrderNumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	last, err := g.orders.LastOrderNumberOfDay(ctx, start, end)
	if err != nil {
		return "", err
	}

	sequence := 1
	if len(last) >= 4 {
		if prev, err := strconv.Atoi(last[len(last)-4:]); err == nil {
			sequence = prev + 1
		}
	}

	return fmt.Sprintf("%s%s%04d", orderNumberPrefix, now.Format("20060102"), sequence), nil
}
