package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

const (
	existsSQL = `SELECT EXISTS (
    SELECT 1 FROM transactions
    WHERE flow_kind = ? AND amount = ? AND recurrence_kind = ?
      AND description = ? AND occurred_on = ? AND title = ?
)`

	insertSQL = `INSERT INTO transactions (flow_kind, amount, recurrence_kind, description, occurred_on, title)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`

	deleteSQL = `DELETE FROM transactions
WHERE flow_kind = ? AND amount = ? AND recurrence_kind = ?
  AND description = ? AND occurred_on = ? AND title = ?`

	selectSQL = `SELECT flow_kind, amount, recurrence_kind, description, occurred_on, title FROM transactions`
)

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TransactionRepository implements usecase.TransactionRepository on SQLite.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Exists reports whether an identical row is stored.
func (r *TransactionRepository) Exists(ctx context.Context, t domain.Transaction) (bool, error) {
	return exists(ctx, r.db, t)
}

// ExistsTx is Exists inside tx.
func (r *TransactionRepository) ExistsTx(ctx context.Context, tx usecase.Transaction, t domain.Transaction) (bool, error) {
	return exists(ctx, tx.(*Tx).SQLTx(), t)
}

// InsertAll inserts the rows not yet stored inside one database transaction.
func (r *TransactionRepository) InsertAll(ctx context.Context, ts []domain.Transaction) ([]domain.Transaction, error) {
	if len(ts) == 0 {
		return []domain.Transaction{}, nil
	}

	var inserted []domain.Transaction
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		inserted, err = insertAll(ctx, tx, ts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// InsertAllTx inserts the rows not yet stored inside tx.
func (r *TransactionRepository) InsertAllTx(ctx context.Context, tx usecase.Transaction, ts []domain.Transaction) ([]domain.Transaction, error) {
	if len(ts) == 0 {
		return []domain.Transaction{}, nil
	}
	return insertAll(ctx, tx.(*Tx).SQLTx(), ts)
}

// ReplaceAll deletes and re-inserts every row in one database transaction.
func (r *TransactionRepository) ReplaceAll(ctx context.Context, ts []domain.Transaction) error {
	if len(ts) == 0 {
		return nil
	}

	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range ts {
			if _, err := tx.ExecContext(ctx, deleteSQL, args(t)...); err != nil {
				return storeErr("delete", err)
			}
			if _, err := tx.ExecContext(ctx, insertSQL, args(t)...); err != nil {
				return storeErr("insert", err)
			}
		}
		return nil
	})
}

// Clear deletes every row.
func (r *TransactionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return storeErr("clear", err)
	}
	return nil
}

// Query returns the rows matching filter.
func (r *TransactionRepository) Query(ctx context.Context, filter domain.Filter) ([]domain.Transaction, error) {
	query, params := buildQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, storeErr("query", err)
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		var (
			t              domain.Transaction
			amount, onDate string
		)
		if err := rows.Scan(&t.FlowKind, &amount, &t.RecurrenceKind, &t.Description, &onDate, &t.Title); err != nil {
			return nil, storeErr("scan", err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, storeErr("scan amount", err)
		}
		if t.OccurredOn, err = domain.ParseDate(onDate); err != nil {
			return nil, storeErr("scan date", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query", err)
	}

	return out, nil
}

// Count returns the number of stored rows.
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (r *TransactionRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (r *TransactionRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

func buildQuery(filter domain.Filter) (string, []any) {
	var (
		where  []string
		params []any
	)

	if filter.From != nil {
		where = append(where, "occurred_on >= ?")
		params = append(params, filter.From.String())
	}
	if filter.To != nil {
		where = append(where, "occurred_on <= ?")
		params = append(params, filter.To.String())
	}
	if len(filter.FlowKinds) > 0 {
		where = append(where, "flow_kind IN ("+placeholders(len(filter.FlowKinds))+")")
		for _, k := range filter.FlowKinds {
			params = append(params, k)
		}
	}
	if len(filter.RecurrenceKinds) > 0 {
		where = append(where, "recurrence_kind IN ("+placeholders(len(filter.RecurrenceKinds))+")")
		for _, k := range filter.RecurrenceKinds {
			params = append(params, k)
		}
	}

	query := selectSQL
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_on, flow_kind, recurrence_kind, title, description"

	return query, params
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func exists(ctx context.Context, q execQuerier, t domain.Transaction) (bool, error) {
	var ok bool
	if err := q.QueryRowContext(ctx, existsSQL, args(t)...).Scan(&ok); err != nil {
		return false, storeErr("exists", err)
	}
	return ok, nil
}

func insertAll(ctx context.Context, q execQuerier, ts []domain.Transaction) ([]domain.Transaction, error) {
	inserted := []domain.Transaction{}
	for _, t := range ts {
		res, err := q.ExecContext(ctx, insertSQL, args(t)...)
		if err != nil {
			return nil, storeErr("insert", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, storeErr("insert", err)
		}
		if n > 0 {
			inserted = append(inserted, t)
		}
	}
	return inserted, nil
}

// args encodes t in column order. Amounts use the canonical decimal string so
// equal values compare equal in the UNIQUE constraint.
func args(t domain.Transaction) []any {
	return []any{
		t.FlowKind,
		t.Amount.String(),
		t.RecurrenceKind,
		t.Description,
		t.OccurredOn.String(),
		t.Title,
	}
}

func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
