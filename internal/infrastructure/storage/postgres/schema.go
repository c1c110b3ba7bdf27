package postgres

import (
	"context"
	"fmt"
)

// schemaStatements create the tables the repositories expect. Every
// statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sys_sequences (
		key TEXT PRIMARY KEY,
		current_val BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS cat_vendors (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INT NOT NULL DEFAULT 1,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		registration_number TEXT,
		address TEXT,
		phone TEXT,
		contact_person TEXT,
		notes TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS cat_vendors_code_key ON cat_vendors(code) WHERE NOT deletion_mark`,
	`CREATE UNIQUE INDEX IF NOT EXISTS cat_vendors_registration_key ON cat_vendors(registration_number) WHERE NOT deletion_mark`,
	documentTable("doc_purchase_orders", `
		delivery_address TEXT NOT NULL DEFAULT '',
		payment_terms TEXT NOT NULL DEFAULT ''`),
	itemsTable("doc_purchase_order_items", "doc_purchase_orders"),
	documentTable("doc_invoices", `
		purchase_order_id UUID REFERENCES doc_purchase_orders(id),
		payment_terms TEXT NOT NULL DEFAULT ''`),
	itemsTable("doc_invoice_items", "doc_invoices"),
	`CREATE INDEX IF NOT EXISTS idx_doc_invoices_due ON doc_invoices(status, due_date) WHERE NOT deletion_mark`,
	`CREATE INDEX IF NOT EXISTS idx_doc_purchase_orders_due ON doc_purchase_orders(status, due_date) WHERE NOT deletion_mark`,
	`CREATE TABLE IF NOT EXISTS doc_invoice_payments (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES doc_invoices(id),
		payment_date DATE NOT NULL,
		amount NUMERIC(15,2) NOT NULL CHECK (amount > 0),
		method TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS doc_invoice_reminders (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES doc_invoices(id),
		type TEXT NOT NULL,
		days_before_or_after INT NOT NULL CHECK (days_before_or_after BETWEEN 0 AND 365),
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		last_sent_at TIMESTAMPTZ,
		UNIQUE (invoice_id, type, days_before_or_after)
	)`,
	`CREATE TABLE IF NOT EXISTS sys_status_history (
		id UUID PRIMARY KEY,
		document_id UUID NOT NULL,
		document_kind TEXT NOT NULL,
		status TEXT NOT NULL,
		previous_status TEXT NOT NULL DEFAULT '',
		comment TEXT NOT NULL DEFAULT '',
		actor TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sys_status_history_doc ON sys_status_history(document_kind, document_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS sys_audit (
		id UUID PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id UUID NOT NULL,
		action TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		changes JSONB,
		changes_compressed BYTEA,
		compression_algo TEXT NOT NULL DEFAULT 'none',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sys_audit_entity ON sys_audit(entity_type, entity_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS sys_outbox (
		id UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		status TEXT NOT NULL,
		retry_count INT NOT NULL DEFAULT 0,
		last_error TEXT,
		next_retry_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sys_outbox_pending ON sys_outbox(status, created_at)`,
	`CREATE TABLE IF NOT EXISTS sys_idempotency (
		idempotency_key TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		status TEXT NOT NULL,
		request_hash TEXT NOT NULL,
		response BYTEA,
		response_status INT,
		response_content_type TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

func documentTable(name, extra string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
		version INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		updated_by TEXT NOT NULL DEFAULT '',
		number TEXT NOT NULL UNIQUE,
		vendor_id UUID NOT NULL REFERENCES cat_vendors(id),
		status TEXT NOT NULL,
		date DATE NOT NULL,
		due_date DATE,
		subtotal NUMERIC(15,2) NOT NULL DEFAULT 0,
		tax_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		%s
	)`, name, extra)
}

func itemsTable(name, parent string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		document_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
		line_no INT NOT NULL,
		item_name TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(15,2) NOT NULL CHECK (unit_price >= 0),
		tax_rate NUMERIC(5,4) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		UNIQUE (document_id, line_no)
	)`, name, parent)
}

// InitSchema creates missing tables and indexes.
func InitSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
