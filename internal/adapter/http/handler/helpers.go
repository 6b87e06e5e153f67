package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iho/finledger/internal/adapter/http/dto"
	"github.com/iho/finledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with the status its kind maps to.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, domain.ErrInvalidGranularity),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidDimension),
		errors.Is(err, domain.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body keeping numbers exact.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidFilter, key)
	}
	return i, nil
}

// parseFilter reads from, to, flow_kind and recurrence_kind. The kind
// parameters may repeat or hold comma separated values.
func parseFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()

	var f domain.Filter
	for _, b := range []struct {
		key string
		dst **domain.Date
	}{
		{"from", &f.From},
		{"to", &f.To},
	} {
		val := q.Get(b.key)
		if val == "" {
			continue
		}
		d, err := domain.ParseDate(val)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidFilter, b.key, err)
		}
		*b.dst = &d
	}

	f.FlowKinds = listQuery(q, "flow_kind")
	f.RecurrenceKinds = listQuery(q, "recurrence_kind")

	return f, f.Validate()
}

func listQuery(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
