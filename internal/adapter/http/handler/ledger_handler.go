package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/adapter/spreadsheet"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Reset(ctx context.Context) error
	ExportTemplate() []string
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Template downloads a blank upload file. format is xlsx (default), csv or
// json, which returns the column list.
func (h *LedgerHandler) Template(w http.ResponseWriter, r *http.Request) {
	columns := h.ledgerUC.ExportTemplate()

	format := r.URL.Query().Get("format")
	switch format {
	case "":
		format = spreadsheet.FormatXLSX
	case "json":
		writeJSON(w, http.StatusOK, dto.TemplateResponse{Columns: columns})
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteTemplate(&buf, format, columns); err != nil {
		writeDomainError(w, "failed to build template", err)
		return
	}

	w.Header().Set("Content-Type", spreadsheet.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="template.%s"`, format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Reset deletes every ledger row. The body must confirm the reset.
func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "reset not confirmed", `send {"confirm":true} to delete every transaction`)
		return
	}

	if err := h.ledgerUC.Reset(r.Context()); err != nil {
		writeDomainError(w, "failed to reset ledger", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
