package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "docflow/internal/core/numerator"
)

type mockRow struct {
	val int64
}

func (m *mockRow) Scan(dest ...any) error {
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences per key.
// Strict calls pass one argument, cached calls pass (key, increment).
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	m.calls++

	key := args[0].(string)
	incr := int64(1)
	if len(args) == 2 {
		incr = args[1].(int64)
	}
	m.values[key] += incr
	return &mockRow{val: m.values[key]}
}

var period = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_InvoiceFormat(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()

	first, err := svc.GetNextNumber(ctx, corenumerator.InvoiceConfig(), nil, period)
	require.NoError(t, err)
	second, err := svc.GetNextNumber(ctx, corenumerator.InvoiceConfig(), nil, period)
	require.NoError(t, err)

	assert.Equal(t, "INV-2025-00001", first)
	assert.Equal(t, "INV-2025-00002", second)
}

func TestGetNextNumber_PurchaseOrderFormat(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)

	num, err := svc.GetNextNumber(context.Background(), corenumerator.PurchaseOrderConfig(), nil, period)
	require.NoError(t, err)
	assert.Equal(t, "PO-000001", num)

	// never-reset sequences share one key across years
	num, err = svc.GetNextNumber(context.Background(), corenumerator.PurchaseOrderConfig(), nil, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "PO-000002", num)
	assert.Contains(t, q.values, "PO")
}

func TestGetNextNumber_YearlyResetUsesSeparateKeys(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()

	_, _ = svc.GetNextNumber(ctx, corenumerator.InvoiceConfig(), nil, period)
	next, err := svc.GetNextNumber(ctx, corenumerator.InvoiceConfig(), nil, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", next)
}

func TestGetNextNumber_CachedReservesRanges(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}
	cfg := corenumerator.PurchaseOrderConfig()

	for i := 1; i <= 10; i++ {
		_, err := svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls)

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "PO-000011", num)
	assert.Equal(t, 2, q.calls)
	assert.Equal(t, int64(20), q.values["PO"])
}
