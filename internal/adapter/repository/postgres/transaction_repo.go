package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/infrastructure/postgres/generated"
	"github.com/iho/finledger/internal/usecase"
)

type pgxDB interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db      pgxDB
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepository(pool)
}

func newTransactionRepository(db pgxDB) *TransactionRepository {
	return &TransactionRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Exists reports whether an identical row is stored.
func (r *TransactionRepository) Exists(ctx context.Context, t domain.Transaction) (bool, error) {
	return exists(ctx, r.queries, t)
}

// ExistsTx is Exists inside tx, so rows inserted earlier in tx are seen.
func (r *TransactionRepository) ExistsTx(ctx context.Context, tx usecase.Transaction, t domain.Transaction) (bool, error) {
	return exists(ctx, generated.New(tx.(*Tx).PgxTx()), t)
}

// InsertAll inserts the rows not yet stored inside one database transaction.
func (r *TransactionRepository) InsertAll(ctx context.Context, ts []domain.Transaction) ([]domain.Transaction, error) {
	if len(ts) == 0 {
		return []domain.Transaction{}, nil
	}

	pgxTx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin", err)
	}
	defer pgxTx.Rollback(ctx)

	inserted, err := insertAll(ctx, generated.New(pgxTx), ts)
	if err != nil {
		return nil, err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return nil, storeErr("commit", err)
	}

	return inserted, nil
}

// InsertAllTx inserts the rows not yet stored inside tx.
func (r *TransactionRepository) InsertAllTx(ctx context.Context, tx usecase.Transaction, ts []domain.Transaction) ([]domain.Transaction, error) {
	if len(ts) == 0 {
		return []domain.Transaction{}, nil
	}
	return insertAll(ctx, generated.New(tx.(*Tx).PgxTx()), ts)
}

// ReplaceAll deletes and re-inserts every row in one database transaction.
func (r *TransactionRepository) ReplaceAll(ctx context.Context, ts []domain.Transaction) error {
	if len(ts) == 0 {
		return nil
	}

	pgxTx, err := r.db.Begin(ctx)
	if err != nil {
		return storeErr("begin", err)
	}
	defer pgxTx.Rollback(ctx)

	queries := generated.New(pgxTx)
	for _, t := range ts {
		if _, err := queries.DeleteTransaction(ctx, generated.DeleteTransactionParams(toParams(t))); err != nil {
			return storeErr("delete", err)
		}
		if _, err := queries.InsertTransaction(ctx, toParams(t)); err != nil {
			return storeErr("insert", err)
		}
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return storeErr("commit", err)
	}

	return nil
}

// Clear deletes every row.
func (r *TransactionRepository) Clear(ctx context.Context) error {
	if _, err := r.queries.DeleteAllTransactions(ctx); err != nil {
		return storeErr("clear", err)
	}
	return nil
}

// Query returns the rows matching filter.
func (r *TransactionRepository) Query(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	params := generated.ListTransactionsParams{
		FlowKinds:       nonNil(filter.FlowKinds),
		RecurrenceKinds: nonNil(filter.RecurrenceKinds),
	}
	if filter.From != nil {
		params.FromDate = dateToPgDate(*filter.From)
	}
	if filter.To != nil {
		params.ToDate = dateToPgDate(*filter.To)
	}

	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, storeErr("query", err)
	}

	out := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTransaction(row))
	}
	return out, nil
}

// Count returns the number of stored rows.
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountTransactions(ctx)
	if err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (r *TransactionRepository) Ping(ctx context.Context) error {
	if p, ok := r.db.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return storeErr("ping", err)
		}
	}
	return nil
}

func exists(ctx context.Context, q *generated.Queries, t domain.Transaction) (bool, error) {
	ok, err := q.TransactionExists(ctx, generated.TransactionExistsParams(toParams(t)))
	if err != nil {
		return false, storeErr("exists", err)
	}
	return ok, nil
}

func insertAll(ctx context.Context, q *generated.Queries, ts []domain.Transaction) ([]domain.Transaction, error) {
	inserted := []domain.Transaction{}
	for _, t := range ts {
		n, err := q.InsertTransaction(ctx, toParams(t))
		if err != nil {
			return nil, storeErr("insert", err)
		}
		if n > 0 {
			inserted = append(inserted, t)
		}
	}
	return inserted, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

func toParams(t domain.Transaction) generated.InsertTransactionParams {
	return generated.InsertTransactionParams{
		FlowKind:       t.FlowKind,
		Amount:         decimalToNumeric(t.Amount),
		RecurrenceKind: t.RecurrenceKind,
		Description:    t.Description,
		OccurredOn:     dateToPgDate(t.OccurredOn),
		Title:          t.Title,
	}
}

func rowToTransaction(row generated.Transaction) domain.Transaction {
	return domain.Transaction{
		FlowKind:       row.FlowKind,
		Amount:         numericToDecimal(row.Amount),
		RecurrenceKind: row.RecurrenceKind,
		Description:    row.Description,
		OccurredOn:     pgDateToDate(row.OccurredOn),
		Title:          row.Title,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:   d.Coefficient(),
		Exp:   d.Exponent(),
		Valid: true,
	}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func dateToPgDate(d domain.Date) pgtype.Date {
	return pgtype.Date{Time: d.Time(), Valid: true}
}

func pgDateToDate(d pgtype.Date) domain.Date {
	if !d.Valid {
		return domain.Date{}
	}
	return domain.DateOf(d.Time)
}
