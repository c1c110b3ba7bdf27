package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"docflow/internal/core/id"
	"docflow/internal/domain/audit"
	"docflow/internal/infrastructure/storage/postgres"
)

const historyTable = "sys_status_history"

var historyColumns = postgres.ExtractDBColumns[audit.StatusHistoryEntry]()

// Compile-time interface check
var _ audit.Trail = (*HistoryRepo)(nil)

// HistoryRepo is the append-only status history of both document kinds.
// It never issues UPDATE or DELETE.
type HistoryRepo struct {
	txManager *postgres.TxManager
}

// NewHistoryRepo creates a new history repository.
func NewHistoryRepo(txManager *postgres.TxManager) *HistoryRepo {
	return &HistoryRepo{txManager: txManager}
}

func (r *HistoryRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append inserts one entry in the caller's transaction.
func (r *HistoryRepo) Append(ctx context.Context, entry audit.StatusHistoryEntry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	sql, args, err := r.builder().
		Insert(historyTable).
		SetMap(postgres.StructToMap(entry)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build history insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", historyTable, err)
	}
	return nil
}

// List returns a document's entries, oldest first.
func (r *HistoryRepo) List(ctx context.Context, kind audit.DocumentKind, documentID id.ID) ([]audit.StatusHistoryEntry, error) {
	sql, args, err := r.builder().
		Select(historyColumns...).
		From(historyTable).
		Where(squirrel.Eq{"document_kind": kind, "document_id": documentID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	entries := make([]audit.StatusHistoryEntry, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", historyTable, err)
	}
	return entries, nil
}
