package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain/audit"
)

var allStatuses = []entity.Status{
	entity.StatusDraft, entity.StatusPending, entity.StatusSent, entity.StatusApproved,
	entity.StatusCompleted, entity.StatusRejected, entity.StatusOverdue, entity.StatusPaid,
	entity.StatusCancelled,
}

func TestPurchaseOrderMachine_Table(t *testing.T) {
	m := PurchaseOrderMachine()
	want := map[entity.Status][]entity.Status{
		entity.StatusDraft:     {entity.StatusPending},
		entity.StatusPending:   {entity.StatusRejected, entity.StatusSent},
		entity.StatusSent:      {entity.StatusCompleted, entity.StatusDraft, entity.StatusOverdue, entity.StatusPending},
		entity.StatusCompleted: {entity.StatusOverdue, entity.StatusPending, entity.StatusRejected},
		entity.StatusRejected:  {entity.StatusDraft, entity.StatusPending},
		entity.StatusOverdue:   {entity.StatusCompleted, entity.StatusPending},
	}
	for _, from := range allStatuses {
		assert.ElementsMatch(t, want[from], m.Targets(from), "from %s", from)
	}
}

func TestInvoiceMachine_TerminalStatusesHaveNoEdges(t *testing.T) {
	m := InvoiceMachine()
	for _, s := range []entity.Status{entity.StatusPaid, entity.StatusRejected, entity.StatusCancelled} {
		assert.Empty(t, m.Targets(s), "%s", s)
	}
	assert.False(t, m.Allowed(entity.StatusDraft, entity.StatusPaid))
	assert.True(t, m.Allowed(entity.StatusOverdue, entity.StatusPaid))
}

func TestInvoiceMachine_PaidRequiresPayment(t *testing.T) {
	m := InvoiceMachine()
	for _, from := range []entity.Status{entity.StatusPending, entity.StatusSent, entity.StatusApproved, entity.StatusOverdue} {
		assert.True(t, m.RequiresPayment(from, entity.StatusPaid), "%s", from)
	}
	assert.False(t, m.RequiresPayment(entity.StatusPending, entity.StatusSent))
}

func TestMachine_Check(t *testing.T) {
	loc := time.UTC
	now := fixedNow()
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	doc := func(status entity.Status, due *time.Time) *entity.Document {
		d := entity.NewDocument(id.New(), now.AddDate(0, -1, 0))
		d.Status = status
		d.DueDate = due
		return &d
	}

	tests := []struct {
		name    string
		doc     *entity.Document
		to      entity.Status
		actor   audit.Actor
		wantErr bool
	}{
		{"user edge", doc(entity.StatusDraft, nil), entity.StatusPending, "u-1", false},
		{"missing edge", doc(entity.StatusDraft, nil), entity.StatusSent, "u-1", true},
		{"overdue by user", doc(entity.StatusSent, &yesterday), entity.StatusOverdue, "u-1", true},
		{"overdue by system past due", doc(entity.StatusSent, &yesterday), entity.StatusOverdue, audit.SystemActor, false},
		{"overdue by system not due", doc(entity.StatusSent, &tomorrow), entity.StatusOverdue, audit.SystemActor, true},
		{"overdue due today", doc(entity.StatusPending, &now), entity.StatusOverdue, audit.SystemActor, true},
		{"overdue without due date", doc(entity.StatusPending, nil), entity.StatusOverdue, audit.SystemActor, true},
		{"overdue from paid", doc(entity.StatusPaid, &yesterday), entity.StatusOverdue, audit.SystemActor, true},
	}

	m := InvoiceMachine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Check(tt.doc, tt.to, tt.actor, now, loc)
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidStatusTransition), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPaymentData_Validate(t *testing.T) {
	p := PaymentData{PaymentDate: fixedNow(), Amount: mustMoney("1000")}
	assert.NoError(t, p.Validate())
	assert.Equal(t, MethodBankTransfer, p.Method)

	p.Method = "barter"
	assert.True(t, apperror.HasCode(p.Validate(), apperror.CodeValidation))

	zero := PaymentData{PaymentDate: fixedNow(), Amount: mustMoney("0")}
	assert.True(t, apperror.HasCode(zero.Validate(), apperror.CodeValidation))
}
