package dto

import (
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// IngestRequest carries rows keyed by column header.
type IngestRequest struct {
	Rows []map[string]any `json:"rows"`
}

// ToRawRecords converts the request rows for ingestion.
func (r *IngestRequest) ToRawRecords() []domain.RawRecord {
	out := make([]domain.RawRecord, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = domain.RawRecord(row)
	}
	return out
}

// ResolveRequest carries the operator's decision for a parked batch.
type ResolveRequest struct {
	Decision string `json:"decision"`
}

// ToDecision converts the request decision. Unknown values are passed on
// so the use case can reject them.
func (r *ResolveRequest) ToDecision() usecase.Decision {
	return usecase.Decision(r.Decision)
}

// ResetRequest confirms a destructive reset.
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}
