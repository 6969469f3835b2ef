package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteCreated writes a 201 envelope.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusCreated, data)
}

// WriteError maps err onto the public error envelope. Client errors are logged at warn level.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	payload := ErrorEnvelope{
		Error: APIError{
			Code:    string(typed.Code()),
			Message: publicMessage(typed, meta),
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	logFailure(ctx, logg, err, typed, meta.HTTPStatus)
	writeJSON(w, meta.HTTPStatus, payload)
}

// Codes whose message was written for the caller and can be shown as-is.
var passthroughCodes = map[pkgerrors.Code]struct{}{
	pkgerrors.CodeValidation:           {},
	pkgerrors.CodeForbidden:            {},
	pkgerrors.CodeUnauthorized:         {},
	pkgerrors.CodeNotFound:             {},
	pkgerrors.CodeConflict:             {},
	pkgerrors.CodeStateConflict:        {},
	pkgerrors.CodeIdempotency:          {},
	pkgerrors.CodeRateLimit:            {},
	pkgerrors.CodeInsufficientStock:    {},
	pkgerrors.CodeEmptyCart:            {},
	pkgerrors.CodeInvalidTransition:    {},
	pkgerrors.CodeStaleOrderState:      {},
	pkgerrors.CodeInvalidDepositAmount: {},
}

func publicMessage(typed *pkgerrors.Error, meta pkgerrors.Metadata) string {
	if _, ok := passthroughCodes[typed.Code()]; ok && typed.Message() != "" {
		return typed.Message()
	}
	return meta.PublicMessage
}

func logFailure(ctx context.Context, logg *logger.Logger, err error, typed *pkgerrors.Error, status int) {
	if logg == nil {
		return
	}
	dump := pkgerrors.Dump(err)
	fields := map[string]any{
		"error":       dump.TopMessage,
		"error_code":  dump.Code,
		"error_chain": dump.Chain,
		"http_status": status,
	}
	if dump.PG != nil {
		fields["pg"] = dump.PG
	}
	if details := typed.Details(); details != nil {
		fields["error_details"] = details
	}

	ctx = logg.WithFields(ctx, fields)
	if status >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
		return
	}
	logg.Warn(ctx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
