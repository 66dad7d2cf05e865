package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tracknest/tracknest/pkg/domain/types"
	"github.com/tracknest/tracknest/pkg/usecase"
	"github.com/tracknest/tracknest/pkg/utils/errutil"
	"github.com/tracknest/tracknest/pkg/utils/safe"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		errutil.Handle(ctx, err, "failed to encode response")
	}
}

// respondError maps domain errors to status codes: missing records are
// 404, quota and validation failures 400, permanent aborts 422 so the
// platform stops retrying, everything else 500.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, usecase.ErrActionNotFound),
		errors.Is(err, usecase.ErrScheduleNotFound):
		errutil.HandleHTTP(ctx, w, err, http.StatusNotFound)

	case errors.Is(err, usecase.ErrQuotaExceeded),
		errors.Is(err, usecase.ErrInvalidRequest):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)

	case errors.Is(err, types.ErrAbort):
		errutil.HandleHTTP(ctx, w, err, http.StatusUnprocessableEntity)

	default:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
	}
}

func decodeBody(r *http.Request, out any) error {
	defer safe.Close(r.Context(), r.Body)
	return json.NewDecoder(r.Body).Decode(out)
}
