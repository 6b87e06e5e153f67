package domain

import (
	"fmt"
	"slices"
)

// Filter restricts a ledger query. Nil bounds and empty sets do not restrict.
type Filter struct {
	From            *Date
	To              *Date
	FlowKinds       []string
	RecurrenceKinds []string
}

// Validate checks that the date range is not inverted.
func (f Filter) Validate() error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidFilter, f.From, f.To)
	}
	return nil
}

// Matches reports whether t satisfies the filter. Bounds are inclusive.
func (f Filter) Matches(t Transaction) bool {
	if f.From != nil && t.OccurredOn.Before(*f.From) {
		return false
	}
	if f.To != nil && t.OccurredOn.After(*f.To) {
		return false
	}
	if len(f.FlowKinds) > 0 && !slices.Contains(f.FlowKinds, t.FlowKind) {
		return false
	}
	if len(f.RecurrenceKinds) > 0 && !slices.Contains(f.RecurrenceKinds, t.RecurrenceKind) {
		return false
	}
	return true
}
