package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/adapter/spreadsheet"
	"github.com/iho/finledger/internal/domain"
	"github.com/iho/finledger/internal/usecase"
)

// DefaultMaxUploadBytes bounds an uploaded spreadsheet or JSON batch.
const DefaultMaxUploadBytes = 10 << 20

// IngestionService defines the behavior needed by IngestHandler.
type IngestionService interface {
	Ingest(ctx context.Context, rows []domain.RawRecord) (*usecase.IngestResult, error)
	ResolvePending(ctx context.Context, batchID string, decision usecase.Decision) error
}

// IngestHandler handles uploads and conflict decisions.
type IngestHandler struct {
	ingestionUC    IngestionService
	maxUploadBytes int64
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestionUC IngestionService, maxUploadBytes int64) *IngestHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &IngestHandler{ingestionUC: ingestionUC, maxUploadBytes: maxUploadBytes}
}

// Ingest ingests rows sent as JSON.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req dto.IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBodyError(w, "invalid request body", err)
		return
	}

	h.ingest(w, r, req.ToRawRecords())
}

// Upload ingests an .xlsx or .csv file sent as the multipart field "file".
func (h *IngestHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBodyError(w, "missing upload", err)
		return
	}
	defer file.Close()

	rows, err := spreadsheet.Parse(header.Filename, file)
	if err != nil {
		writeDomainError(w, "failed to read upload", err)
		return
	}

	h.ingest(w, r, rows)
}

// writeBodyError reports an unreadable body, answering 413 when it ran past
// the upload limit.
func writeBodyError(w http.ResponseWriter, message string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large",
			fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, message, err.Error())
}

func (h *IngestHandler) ingest(w http.ResponseWriter, r *http.Request, rows []domain.RawRecord) {
	result, err := h.ingestionUC.Ingest(r.Context(), rows)
	if err != nil {
		writeDomainError(w, "failed to ingest batch", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IngestFromResult(result))
}

// Resolve applies a decision to a parked batch.
func (h *IngestHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing batch ID", "")
		return
	}

	var req dto.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.ingestionUC.ResolvePending(r.Context(), id, req.ToDecision()); err != nil {
		writeDomainError(w, fmt.Sprintf("failed to resolve batch %s", id), err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ResolveResponse{BatchID: id, Decision: req.Decision})
}
