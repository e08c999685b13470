package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderNumber_FirstOfDay(t *testing.T) {
	repo := newFakeOrderRepo()
	gen := NewOrderNumberGenerator(repo)

	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	number, err := gen.Next(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "ORD202403150001", number)
}

func TestOrderNumber_IncrementsFromLastOfDay(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.lastNumber = "ORD202403150007"
	gen := NewOrderNumberGenerator(repo)

	now := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	number, err := gen.Next(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "ORD202403150008", number)
}

func TestOrderNumber_SequenceIsZeroPadded(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.lastNumber = "ORD202403150099"
	gen := NewOrderNumberGenerator(repo)

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	number, err := gen.Next(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "ORD202403150100", number)
	assert.Len(t, number, len("ORD")+8+4)
}

func TestOrderNumber_DateChangesWithClock(t *testing.T) {
	repo := newFakeOrderRepo()
	gen := NewOrderNumberGenerator(repo)

	first, err := gen.Next(context.Background(), time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	second, err := gen.Next(context.Background(), time.Date(2025, 1, 1, 0, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "ORD202412310001", first)
	assert.Equal(t, "ORD202501010001", second)
}
