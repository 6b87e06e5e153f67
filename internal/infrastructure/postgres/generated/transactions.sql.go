package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countTransactions = `-- name: CountTransactions :one
SELECT COUNT(*) FROM transactions
`

func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countTransactions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllTransactions = `-- name: DeleteAllTransactions :execrows
DELETE FROM transactions
`

func (q *Queries) DeleteAllTransactions(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAllTransactions)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions
WHERE flow_kind = $1 AND amount = $2 AND recurrence_kind = $3
  AND description = $4 AND occurred_on = $5 AND title = $6
`

type DeleteTransactionParams struct {
	FlowKind       string         `json:"flow_kind"`
	Amount         pgtype.Numeric `json:"amount"`
	RecurrenceKind string         `json:"recurrence_kind"`
	Description    string         `json:"description"`
	OccurredOn     pgtype.Date    `json:"occurred_on"`
	Title          string         `json:"title"`
}

func (q *Queries) DeleteTransaction(ctx context.Context, arg DeleteTransactionParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteTransaction,
		arg.FlowKind,
		arg.Amount,
		arg.RecurrenceKind,
		arg.Description,
		arg.OccurredOn,
		arg.Title,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const insertTransaction = `-- name: InsertTransaction :execrows
INSERT INTO transactions (flow_kind, amount, recurrence_kind, description, occurred_on, title)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT ON CONSTRAINT transactions_identity DO NOTHING
`

type InsertTransactionParams struct {
	FlowKind       string         `json:"flow_kind"`
	Amount         pgtype.Numeric `json:"amount"`
	RecurrenceKind string         `json:"recurrence_kind"`
	Description    string         `json:"description"`
	OccurredOn     pgtype.Date    `json:"occurred_on"`
	Title          string         `json:"title"`
}

func (q *Queries) InsertTransaction(ctx context.Context, arg InsertTransactionParams) (int64, error) {
	result, err := q.db.Exec(ctx, insertTransaction,
		arg.FlowKind,
		arg.Amount,
		arg.RecurrenceKind,
		arg.Description,
		arg.OccurredOn,
		arg.Title,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listTransactions = `-- name: ListTransactions :many
SELECT flow_kind, amount, recurrence_kind, description, occurred_on, title, created_at
FROM transactions
WHERE ($1::date IS NULL OR occurred_on >= $1::date)
  AND ($2::date IS NULL OR occurred_on <= $2::date)
  AND (cardinality($3::text[]) = 0 OR flow_kind = ANY($3::text[]))
  AND (cardinality($4::text[]) = 0 OR recurrence_kind = ANY($4::text[]))
ORDER BY occurred_on, flow_kind, recurrence_kind, title, description, amount
`

type ListTransactionsParams struct {
	FromDate        pgtype.Date `json:"from_date"`
	ToDate          pgtype.Date `json:"to_date"`
	FlowKinds       []string    `json:"flow_kinds"`
	RecurrenceKinds []string    `json:"recurrence_kinds"`
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactions,
		arg.FromDate,
		arg.ToDate,
		arg.FlowKinds,
		arg.RecurrenceKinds,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Transaction{}
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.FlowKind,
			&i.Amount,
			&i.RecurrenceKind,
			&i.Description,
			&i.OccurredOn,
			&i.Title,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const transactionExists = `-- name: TransactionExists :one
SELECT EXISTS (
    SELECT 1 FROM transactions
    WHERE flow_kind = $1 AND amount = $2 AND recurrence_kind = $3
      AND description = $4 AND occurred_on = $5 AND title = $6
)
`

type TransactionExistsParams struct {
	FlowKind       string         `json:"flow_kind"`
	Amount         pgtype.Numeric `json:"amount"`
	RecurrenceKind string         `json:"recurrence_kind"`
	Description    string         `json:"description"`
	OccurredOn     pgtype.Date    `json:"occurred_on"`
	Title          string         `json:"title"`
}

func (q *Queries) TransactionExists(ctx context.Context, arg TransactionExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, transactionExists,
		arg.FlowKind,
		arg.Amount,
		arg.RecurrenceKind,
		arg.Description,
		arg.OccurredOn,
		arg.Title,
	)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
