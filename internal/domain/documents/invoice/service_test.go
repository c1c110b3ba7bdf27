package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/test"
)

var now = time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC) // 10:00 in Tokyo

func newInvoice(env *test.Env) *invoice.Invoice {
	inv := invoice.NewInvoice(env.VendorID, now.AddDate(0, 0, -5), now.AddDate(0, 0, 25))
	inv.Items = []entity.LineItem{
		{ItemName: "Copy paper", Quantity: 2, UnitPrice: types.Yen(1000), TaxRate: types.MustMoney("0.10")},
		{ItemName: "Coffee beans", Quantity: 1, UnitPrice: types.Yen(800), TaxRate: types.MustMoney("0.08")},
	}
	return inv
}

func TestCreate_NumbersAndTotals(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, inv))

	assert.Equal(t, "INV-2025-00001", inv.Number)
	assert.Equal(t, entity.StatusDraft, inv.Status)
	assert.True(t, inv.TotalAmount.Equal(types.Yen(3064)))

	got, err := env.InvoiceSvc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, 1, got.Items[0].LineNo)
	assert.True(t, got.TaxAmount.Equal(types.Yen(264)))

	history, err := env.InvoiceSvc.History(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.StatusDraft, history[0].Status)

	second := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, second))
	assert.Equal(t, "INV-2025-00002", second.Number)
}

func TestCreate_KeepsExplicitNumber(t *testing.T) {
	env := test.NewEnv(now)
	inv := newInvoice(env)
	inv.Number = "A-778"
	require.NoError(t, env.InvoiceSvc.Create(test.UserContext("u-1"), inv))
	assert.Equal(t, "A-778", inv.Number)
}

func TestCreate_Validation(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	badRate := newInvoice(env)
	badRate.Items[1].TaxRate = types.MustMoney("0.05")
	assert.True(t, apperror.HasCode(env.InvoiceSvc.Create(ctx, badRate), apperror.CodeInvalidTaxRate))

	unknownVendor := newInvoice(env)
	unknownVendor.VendorID = id.New()
	assert.True(t, apperror.HasCode(env.InvoiceSvc.Create(ctx, unknownVendor), apperror.CodeValidation))

	noDue := newInvoice(env)
	noDue.DueDate = nil
	assert.True(t, apperror.HasCode(env.InvoiceSvc.Create(ctx, noDue), apperror.CodeValidation))

	orphan := newInvoice(env)
	poID := id.New()
	orphan.PurchaseOrderID = &poID
	assert.True(t, apperror.HasCode(env.InvoiceSvc.Create(ctx, orphan), apperror.CodeValidation))
}

func TestUpdate_RecomputesAndLocks(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, inv))

	edit, err := env.InvoiceSvc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	edit.Items = edit.Items[:1]
	edit.Status = entity.StatusPaid // ignored
	require.NoError(t, env.InvoiceSvc.Update(ctx, edit))

	got, err := env.InvoiceSvc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, got.Status)
	assert.True(t, got.TotalAmount.Equal(types.Yen(2200)))
	assert.Len(t, got.Items, 1)

	stale := *edit
	stale.Version = 1
	assert.True(t, apperror.IsConcurrentModification(env.InvoiceSvc.Update(ctx, &stale)))

	_, err = env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusPending, Actor: "u-1"})
	require.NoError(t, err)
	_, err = env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusSent, Actor: "u-1"})
	require.NoError(t, err)

	sent, err := env.InvoiceSvc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, apperror.HasCode(env.InvoiceSvc.Update(ctx, sent), apperror.CodeDocumentLocked))
}

func TestRegisterPayment(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, inv))
	for _, s := range []entity.Status{entity.StatusPending, entity.StatusSent} {
		_, err := env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: s, Actor: "u-1"})
		require.NoError(t, err)
	}

	paid, err := env.InvoiceSvc.RegisterPayment(ctx, inv.ID, lifecycle.PaymentData{
		PaymentDate: now,
		Amount:      types.Yen(3064),
		Method:      lifecycle.MethodBankTransfer,
	}, "received")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, paid.Status)

	payments, err := env.InvoiceSvc.ListPayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(types.Yen(3064)))

	history, err := env.InvoiceSvc.History(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.Equal(t, entity.StatusPaid, history[3].Status)

	// PAID has no way out.
	_, err = env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusSent, Actor: "u-1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStatusTransition))
}

func TestRegisterPayment_StorageFailureRollsBack(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, inv))
	_, err := env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusPending, Actor: "u-1"})
	require.NoError(t, err)

	env.Invoices.PaymentErr = test.ErrStorage
	_, err = env.InvoiceSvc.RegisterPayment(ctx, inv.ID, lifecycle.PaymentData{PaymentDate: now, Amount: types.Yen(3064)}, "")
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))

	assert.Equal(t, entity.StatusPending, env.Invoices.Get(inv.ID).Status)
	history, err := env.InvoiceSvc.History(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Empty(t, env.Invoices.Payments())
}

func TestTransitionToPaidWithoutPayment(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, inv))
	_, err := env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusPending, Actor: "u-1"})
	require.NoError(t, err)

	_, err = env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusPaid, Actor: "u-1"})
	assert.True(t, apperror.HasCode(err, apperror.CodeMissingPaymentData))
}

func TestDelete(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	draft := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, draft))
	require.NoError(t, env.InvoiceSvc.Delete(ctx, draft.ID))
	_, err := env.InvoiceSvc.GetByID(ctx, draft.ID)
	assert.True(t, apperror.IsNotFound(err))

	po := purchase_order.NewPurchaseOrder(env.VendorID, now)
	require.NoError(t, env.OrderSvc.Create(ctx, po))
	linked := newInvoice(env)
	linked.PurchaseOrderID = &po.ID
	require.NoError(t, env.InvoiceSvc.Create(ctx, linked))
	assert.True(t, apperror.HasCode(env.InvoiceSvc.Delete(ctx, linked.ID), apperror.CodeBusinessRule))
	assert.True(t, apperror.HasCode(env.OrderSvc.Delete(ctx, po.ID), apperror.CodeBusinessRule))

	sent := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, sent))
	for _, s := range []entity.Status{entity.StatusPending, entity.StatusSent} {
		_, err := env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: sent.ID, Target: s, Actor: "u-1"})
		require.NoError(t, err)
	}
	assert.True(t, apperror.HasCode(env.InvoiceSvc.Delete(ctx, sent.ID), apperror.CodeDocumentLocked))
}

func TestSetReminders(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, inv))

	sentAt := now
	saved, err := env.InvoiceSvc.SetReminders(ctx, inv.ID, []invoice.ReminderSetting{
		{Type: invoice.ReminderBeforeDue, DaysBeforeOrAfter: 3, Enabled: true, LastSentAt: &sentAt},
		{Type: invoice.ReminderAfterDue, DaysBeforeOrAfter: 1, Enabled: true},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Nil(t, saved[0].LastSentAt)

	got, err := env.InvoiceSvc.Reminders(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = env.InvoiceSvc.SetReminders(ctx, inv.ID, []invoice.ReminderSetting{{Type: "WEEKLY", DaysBeforeOrAfter: 1}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = env.InvoiceSvc.SetReminders(ctx, inv.ID, []invoice.ReminderSetting{{Type: invoice.ReminderAfterDue, DaysBeforeOrAfter: 366}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = env.InvoiceSvc.SetReminders(ctx, inv.ID, []invoice.ReminderSetting{
		{Type: invoice.ReminderAfterDue, DaysBeforeOrAfter: 1},
		{Type: invoice.ReminderAfterDue, DaysBeforeOrAfter: 1},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = env.InvoiceSvc.SetReminders(ctx, id.New(), nil)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReminderSetting_SentOn(t *testing.T) {
	// 23:30 UTC on June 9 is June 10 in Tokyo.
	sent := time.Date(2025, 6, 9, 23, 30, 0, 0, time.UTC)
	r := invoice.ReminderSetting{LastSentAt: &sent}

	assert.True(t, r.SentOn(now, test.Tokyo))
	assert.False(t, r.SentOn(now, time.UTC))
	assert.False(t, (&invoice.ReminderSetting{}).SentOn(now, test.Tokyo))
}

func TestCreate_HistoryUsesClockAndUser(t *testing.T) {
	env := test.NewEnv(now)
	env.Clock.Advance(90 * time.Minute)

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(test.UserContext("u-5"), inv))

	history, err := env.InvoiceSvc.History(test.UserContext("u-5"), inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].CreatedAt.Equal(now.Add(90*time.Minute)))
	assert.Equal(t, "u-5", history[0].Actor.String())
}

func TestCreate_RequiresUser(t *testing.T) {
	env := test.NewEnv(now)

	err := env.InvoiceSvc.Create(context.Background(), newInvoice(env))
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	assert.Empty(t, env.Trail.Entries())
}

func TestTransition_DeletedInvoiceNotFound(t *testing.T) {
	env := test.NewEnv(now)
	ctx := test.UserContext("u-1")

	inv := newInvoice(env)
	require.NoError(t, env.InvoiceSvc.Create(ctx, inv))
	require.NoError(t, env.InvoiceSvc.Delete(ctx, inv.ID))

	_, err := env.InvoiceSvc.Transition(ctx, lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusPending})
	assert.True(t, apperror.IsNotFound(err))

	assert.Equal(t, entity.StatusDraft, env.Invoices.Get(inv.ID).Status)
	assert.Len(t, env.Trail.Entries(), 1)
	assert.Empty(t, env.Sender.Sent())
}

func TestTransition_SystemUserIDCannotMarkOverdue(t *testing.T) {
	env := test.NewEnv(now)

	inv := invoice.NewInvoice(env.VendorID, now.AddDate(0, 0, -40), now.AddDate(0, 0, -10))
	inv.Items = newInvoice(env).Items
	require.NoError(t, env.InvoiceSvc.Create(test.UserContext("u-1"), inv))
	_, err := env.InvoiceSvc.Transition(test.UserContext("u-1"), lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusPending})
	require.NoError(t, err)

	_, err = env.InvoiceSvc.Transition(test.UserContext("system"), lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusOverdue})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, err = env.InvoiceSvc.Transition(test.UserContext("u-1"), lifecycle.Request{DocumentID: inv.ID, Target: entity.StatusOverdue})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStatusTransition))

	assert.Equal(t, entity.StatusPending, env.Invoices.Get(inv.ID).Status)
}
