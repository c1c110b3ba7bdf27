package purchase_order_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/types"
	"docflow/internal/domain/documents"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/test"
)

var now = time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)

func TestCreate_NumbersWithoutYear(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	for _, want := range []string{"PO-000001", "PO-000002"} {
		po := purchase_order.NewPurchaseOrder(env.VendorID, now)
		po.Items = []entity.LineItem{{ItemName: "Toner", Quantity: 3, UnitPrice: types.Yen(4500), TaxRate: types.MustMoney("0.10")}}
		require.NoError(t, env.OrderSvc.Create(ctx, po))
		assert.Equal(t, want, po.Number)
		assert.True(t, po.TotalAmount.Equal(types.Yen(14850)))
	}
}

func TestTransition_CorrectionPaths(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	po := purchase_order.NewPurchaseOrder(env.VendorID, now)
	require.NoError(t, env.OrderSvc.Create(ctx, po))

	path := []entity.Status{
		entity.StatusPending, entity.StatusSent, entity.StatusCompleted,
		entity.StatusRejected, entity.StatusPending,
	}
	for _, s := range path {
		_, err := env.OrderSvc.Transition(ctx, lifecycle.Request{DocumentID: po.ID, Target: s, Actor: "u-1"})
		require.NoError(t, err, "to %s", s)
	}

	_, err := env.OrderSvc.Transition(ctx, lifecycle.Request{DocumentID: po.ID, Target: entity.StatusPaid, Actor: "u-1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStatusTransition))

	history, err := env.OrderSvc.History(ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, history, len(path)+1)
}

func TestTransition_WithItemsFromDraft(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	po := purchase_order.NewPurchaseOrder(env.VendorID, now)
	require.NoError(t, env.OrderSvc.Create(ctx, po))

	updated, err := env.OrderSvc.Transition(ctx, lifecycle.Request{
		DocumentID: po.ID,
		Target:     entity.StatusPending,
		Actor:      "u-1",
		Items: []entity.LineItem{
			{ItemName: "Rice", Quantity: 10, UnitPrice: types.Yen(333), TaxRate: types.MustMoney("0.08")},
		},
	})
	require.NoError(t, err)
	// 3330 x 0.08 = 266.4 -> 266
	assert.True(t, updated.TaxAmount.Equal(types.Yen(266)))

	stored, err := env.OrderSvc.GetByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.True(t, stored.TotalAmount.Equal(types.Yen(3596)))
}

func TestList_FiltersByStatus(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	sent := purchase_order.NewPurchaseOrder(env.VendorID, now)
	require.NoError(t, env.OrderSvc.Create(ctx, sent))
	require.NoError(t, env.OrderSvc.Create(ctx, purchase_order.NewPurchaseOrder(env.VendorID, now)))

	for _, s := range []entity.Status{entity.StatusPending, entity.StatusSent} {
		_, err := env.OrderSvc.Transition(ctx, lifecycle.Request{DocumentID: sent.ID, Target: s, Actor: "u-1"})
		require.NoError(t, err)
	}

	res, err := env.OrderSvc.List(ctx, documents.ListFilter{Statuses: []entity.Status{entity.StatusSent}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, sent.ID, res.Items[0].ID)
	assert.Equal(t, int64(1), res.TotalCount)
}
