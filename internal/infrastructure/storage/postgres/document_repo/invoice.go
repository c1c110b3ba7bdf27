package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/infrastructure/storage/postgres"
)

const (
	paymentsTable  = "doc_invoice_payments"
	remindersTable = "doc_invoice_reminders"
)

// Compile-time interface checks
var (
	_ invoice.Repository         = (*InvoiceRepo)(nil)
	_ invoice.PaymentRepository  = (*InvoiceRepo)(nil)
	_ invoice.ReminderRepository = (*InvoiceRepo)(nil)
)

var (
	paymentColumns  = postgres.ExtractDBColumns[invoice.Payment]()
	reminderColumns = postgres.ExtractDBColumns[invoice.ReminderSetting]()
)

// InvoiceRepo implements the invoice, payment and reminder repositories.
type InvoiceRepo struct {
	*BaseDocumentRepo[*invoice.Invoice]
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			"doc_invoices",
			"doc_invoice_items",
			postgres.ExtractDBColumns[invoice.Invoice](),
			func() *invoice.Invoice { return &invoice.Invoice{} },
		),
	}
}

// CountByPurchaseOrder counts live invoices referencing poID.
func (r *InvoiceRepo) CountByPurchaseOrder(ctx context.Context, poID id.ID) (int, error) {
	return r.count(ctx, r.TableName(), squirrel.Eq{"purchase_order_id": poID, "deletion_mark": false})
}

// CreatePayment inserts a payment row.
func (r *InvoiceRepo) CreatePayment(ctx context.Context, p invoice.Payment) error {
	sql, args, err := r.Builder().
		Insert(paymentsTable).
		SetMap(postgres.StructToMap(p)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build payment insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", paymentsTable, err)
	}
	return nil
}

// ListPayments returns payments of an invoice, oldest first.
func (r *InvoiceRepo) ListPayments(ctx context.Context, invoiceID id.ID) ([]invoice.Payment, error) {
	sql, args, err := r.Builder().
		Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("payment_date", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build payments query: %w", err)
	}

	payments := make([]invoice.Payment, 0)
	if err := pgxscan.Select(ctx, r.Querier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", paymentsTable, err)
	}
	return payments, nil
}

// CountPayments counts payments of an invoice.
func (r *InvoiceRepo) CountPayments(ctx context.Context, invoiceID id.ID) (int, error) {
	return r.count(ctx, paymentsTable, squirrel.Eq{"invoice_id": invoiceID})
}

// ReplaceReminders deletes the invoice's settings and inserts the given ones.
func (r *InvoiceRepo) ReplaceReminders(ctx context.Context, invoiceID id.ID, settings []invoice.ReminderSetting) error {
	sql, args, err := r.Builder().
		Delete(remindersTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reminders delete: %w", err)
	}
	querier := r.Querier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s: %w", remindersTable, err)
	}
	if len(settings) == 0 {
		return nil
	}

	insert := r.Builder().Insert(remindersTable).Columns(reminderColumns...)
	for _, s := range settings {
		s.InvoiceID = invoiceID
		data := postgres.StructToMap(s)
		values := make([]any, len(reminderColumns))
		for i, col := range reminderColumns {
			values[i] = data[col]
		}
		insert = insert.Values(values...)
	}
	sql, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build reminders insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", remindersTable, err)
	}
	return nil
}

// ListReminders returns the settings of one invoice.
func (r *InvoiceRepo) ListReminders(ctx context.Context, invoiceID id.ID) ([]invoice.ReminderSetting, error) {
	sql, args, err := r.Builder().
		Select(reminderColumns...).
		From(remindersTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("type", "days_before_or_after").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reminders query: %w", err)
	}

	settings := make([]invoice.ReminderSetting, 0)
	if err := pgxscan.Select(ctx, r.Querier(ctx), &settings, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", remindersTable, err)
	}
	return settings, nil
}

// ListActive returns enabled settings of live invoices not in an excluded
// status, each joined with its invoice header.
func (r *InvoiceRepo) ListActive(ctx context.Context, excluded []entity.Status) ([]invoice.ReminderTarget, error) {
	statuses := make([]string, len(excluded))
	for i, s := range excluded {
		statuses[i] = string(s)
	}

	cols := make([]string, len(reminderColumns))
	for i, c := range reminderColumns {
		cols[i] = "r." + c
	}
	q := r.Builder().
		Select(cols...).
		From(remindersTable + " r").
		Join(r.TableName() + " i ON i.id = r.invoice_id").
		Where(squirrel.Eq{"r.enabled": true, "i.deletion_mark": false}).
		OrderBy("r.invoice_id", "r.id")
	if len(statuses) > 0 {
		q = q.Where(squirrel.NotEq{"i.status": statuses})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active reminders query: %w", err)
	}

	querier := r.Querier(ctx)
	var settings []invoice.ReminderSetting
	if err := pgxscan.Select(ctx, querier, &settings, sql, args...); err != nil {
		return nil, fmt.Errorf("list active reminders: %w", err)
	}
	if len(settings) == 0 {
		return []invoice.ReminderTarget{}, nil
	}

	ids := make([]id.ID, 0, len(settings))
	seen := make(map[id.ID]struct{}, len(settings))
	for _, s := range settings {
		if _, ok := seen[s.InvoiceID]; !ok {
			seen[s.InvoiceID] = struct{}{}
			ids = append(ids, s.InvoiceID)
		}
	}

	sql, args, err = r.baseSelect().Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reminder invoices query: %w", err)
	}
	var headers []*invoice.Invoice
	if err := pgxscan.Select(ctx, querier, &headers, sql, args...); err != nil {
		return nil, fmt.Errorf("load reminder invoices: %w", err)
	}
	byID := make(map[id.ID]*invoice.Invoice, len(headers))
	for _, h := range headers {
		byID[h.ID] = h
	}

	targets := make([]invoice.ReminderTarget, 0, len(settings))
	for _, s := range settings {
		inv, ok := byID[s.InvoiceID]
		if !ok {
			continue
		}
		targets = append(targets, invoice.ReminderTarget{Setting: s, Invoice: *inv})
	}
	return targets, nil
}

// ClaimReminder stamps last_sent_at unless the reminder already fired on
// or after dayStart. Only the caller that gets true may send.
func (r *InvoiceRepo) ClaimReminder(ctx context.Context, reminderID id.ID, at, dayStart time.Time) (bool, error) {
	sql, args, err := r.Builder().
		Update(remindersTable).
		Set("last_sent_at", at.UTC()).
		Where(squirrel.Eq{"id": reminderID}).
		Where(squirrel.Or{
			squirrel.Eq{"last_sent_at": nil},
			squirrel.Lt{"last_sent_at": dayStart.UTC()},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build claim reminder: %w", err)
	}
	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", remindersTable, err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *InvoiceRepo) count(ctx context.Context, table string, where squirrel.Sqlizer) (int, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*)").
		From(table).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
