package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Transaction struct {
	FlowKind       string             `json:"flow_kind"`
	Amount         pgtype.Numeric     `json:"amount"`
	RecurrenceKind string             `json:"recurrence_kind"`
	Description    string             `json:"description"`
	OccurredOn     pgtype.Date        `json:"occurred_on"`
	Title          string             `json:"title"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}
