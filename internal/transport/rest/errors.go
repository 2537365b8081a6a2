package rest

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"classroom-ledger/internal/aggregate"
	"classroom-ledger/internal/repository"
	"classroom-ledger/internal/service"
)

// writeError maps service and engine errors onto the response envelope.
func writeError(w http.ResponseWriter, op string, err error) {
	var (
		ve     *aggregate.ValidationError
		fields validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ve):
		ErrorValidation(w, ve.Error(), map[string]string{ve.Field: ve.Message})
	case errors.As(err, &fields):
		out := make(map[string]string, len(fields))
		for _, fe := range fields {
			out[fe.Field()] = fe.Tag()
		}
		ErrorValidation(w, "validation failed", out)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrExportNotFound):
		ErrorNotFound(w, "not found")
	case errors.Is(err, repository.ErrConflict):
		ErrorConflict(w, "record was modified concurrently, reload and retry")
	default:
		log.Printf("[HTTP] %s error: %v", op, err)
		ErrorInternal(w, "internal error")
	}
}
