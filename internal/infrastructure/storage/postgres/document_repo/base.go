// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"docflow/internal/core/apperror"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/domain"
	"docflow/internal/domain/documents"
	"docflow/internal/infrastructure/storage/postgres"
)

// itemColumns are the table-part columns shared by both document kinds.
var itemColumns = postgres.ExtractDBColumns[entity.LineItem]()

// BaseDocumentRepo provides common CRUD operations for document entities.
type BaseDocumentRepo[T documents.Entity] struct {
	txManager  *postgres.TxManager
	inserter   *postgres.BatchInserter
	tableName  string
	itemsTable string
	selectCols []string
	newFn      func() T
}

// NewBaseDocumentRepo creates a new base document repository.
func NewBaseDocumentRepo[T documents.Entity](
	txManager *postgres.TxManager,
	tableName string,
	itemsTable string,
	selectCols []string,
	newFn func() T,
) *BaseDocumentRepo[T] {
	return &BaseDocumentRepo[T]{
		txManager:  txManager,
		inserter:   postgres.NewBatchInserter(txManager),
		tableName:  tableName,
		itemsTable: itemsTable,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder.
func (r *BaseDocumentRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Querier returns the transaction in ctx or the pool.
func (r *BaseDocumentRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// TableName returns the header table.
func (r *BaseDocumentRepo[T]) TableName() string {
	return r.tableName
}

// Create inserts a new document header. Items are written by ReplaceItems.
func (r *BaseDocumentRepo[T]) Create(ctx context.Context, doc T) error {
	data := postgres.StructToMap(doc)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.Builder().
		Insert(r.tableName).
		SetMap(filtered).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// Update saves the header with optimistic locking. On success the entity's
// version and updated_at are advanced to match the row.
func (r *BaseDocumentRepo[T]) Update(ctx context.Context, doc T) error {
	d := doc.GetDocument()
	data := postgres.StructToMap(doc)

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "created_at", "created_by", "version", "updated_at":
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": d.ID}).
		Where(squirrel.Eq{"version": d.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, d.ID)
	}

	d.Touch()
	return nil
}

// SetDeletionMark sets or clears the soft-delete flag.
func (r *BaseDocumentRepo[T]) SetDeletionMark(ctx context.Context, docID id.ID, marked bool) error {
	sql, args, err := r.Builder().
		Update(r.tableName).
		Set("deletion_mark", marked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, docID.String())
	}
	return nil
}

func (r *BaseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

func (r *BaseDocumentRepo[T]) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	doc := r.newFn()
	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.Querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(r.tableName, key)
		}
		return doc, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return doc, nil
}

// GetByID retrieves a document header by ID.
func (r *BaseDocumentRepo[T]) GetByID(ctx context.Context, docID id.ID) (T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": docID}), docID.String())
}

// GetByNumber retrieves a document header by Number.
func (r *BaseDocumentRepo[T]) GetByNumber(ctx context.Context, number string) (T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"number": number}), number)
}

// GetForUpdate locks the header row and loads the items.
func (r *BaseDocumentRepo[T]) GetForUpdate(ctx context.Context, docID id.ID) (T, error) {
	doc, err := r.getOne(ctx,
		r.baseSelect().Where(squirrel.Eq{"id": docID}).Suffix("FOR UPDATE"),
		docID.String())
	if err != nil {
		return doc, err
	}

	items, err := r.GetItems(ctx, docID)
	if err != nil {
		return doc, err
	}
	doc.GetDocument().Items = items
	return doc, nil
}

// GetItems returns the table part ordered by line number.
func (r *BaseDocumentRepo[T]) GetItems(ctx context.Context, docID id.ID) ([]entity.LineItem, error) {
	sql, args, err := r.Builder().
		Select(itemColumns...).
		From(r.itemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	items := make([]entity.LineItem, 0)
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get %s: %w", r.itemsTable, err)
	}
	return items, nil
}

// ReplaceItems deletes the table part and copies the new rows in.
func (r *BaseDocumentRepo[T]) ReplaceItems(ctx context.Context, docID id.ID, items []entity.LineItem) error {
	sql, args, err := r.Builder().
		Delete(r.itemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build items delete: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete %s: %w", r.itemsTable, err)
	}

	rows := make([][]any, 0, len(items))
	for i := range items {
		item := items[i]
		if id.IsNil(item.ID) {
			item.ID = id.New()
		}
		item.DocumentID = docID
		if item.LineNo == 0 {
			item.LineNo = i + 1
		}
		data := postgres.StructToMap(item)
		row := make([]any, len(itemColumns))
		for j, col := range itemColumns {
			row[j] = data[col]
		}
		rows = append(rows, row)
	}

	if _, err := r.inserter.CopyFromSlice(ctx, r.itemsTable, itemColumns, rows); err != nil {
		return fmt.Errorf("insert %s: %w", r.itemsTable, err)
	}
	return nil
}

// List retrieves document headers matching filter.
func (r *BaseDocumentRepo[T]) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{
		Items:  make([]T, 0),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.applyFilter(r.baseSelect(), filter)

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}

func (r *BaseDocumentRepo[T]) applyFilter(q squirrel.SelectBuilder, f documents.ListFilter) squirrel.SelectBuilder {
	if !f.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}
	if len(f.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": f.IDs})
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where(squirrel.Eq{"status": statuses})
	}
	if f.VendorID != nil {
		q = q.Where(squirrel.Eq{"vendor_id": *f.VendorID})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *f.DateTo})
	}
	if f.DueBefore != nil {
		q = q.Where(squirrel.Lt{"due_date": *f.DueBefore})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where(squirrel.ILike{"number": "%" + s + "%"})
	}
	return q
}

func (r *BaseDocumentRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if strings.TrimSpace(orderBy) == "" {
		return "date DESC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}
	field = strings.TrimSpace(field)

	if field == "" || !slices.Contains(r.selectCols, field) {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy).
			WithDetail("field", field)
	}
	return field + " " + direction, nil
}
