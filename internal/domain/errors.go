package domain

import "errors"

var (
	// Ingestion errors
	ErrSchemaMismatch  = errors.New("batch does not match the transaction schema")
	ErrBatchNotFound   = errors.New("pending batch not found")
	ErrInvalidDecision = errors.New("invalid conflict decision")
	ErrUnsupportedFile = errors.New("unsupported spreadsheet format")

	// Storage errors
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// Query errors
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrInvalidDimension   = errors.New("invalid breakdown dimension")
)
