package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
		{code: CodeInsufficientStock, status: http.StatusConflict, publicMsg: "insufficient stock", detailsOK: true},
		{code: CodeEmptyCart, status: http.StatusUnprocessableEntity, publicMsg: "cart is empty"},
		{code: CodeInvalidTransition, status: http.StatusConflict, publicMsg: "order status transition not allowed", detailsOK: true},
		{code: CodeStaleOrderState, status: http.StatusConflict, publicMsg: "order was modified concurrently", retryable: true, detailsOK: true},
		{code: CodeInvalidDepositAmount, status: http.StatusUnprocessableEntity, publicMsg: "invalid deposit amount", detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detailed := base.WithDetails(map[string]any{"field": "foo"})
	if detailed.Details() == nil || detailed.Code() != CodeValidation {
		t.Fatalf("details should be attached to the copy")
	}
	if base.Details() != nil {
		t.Fatalf("WithDetails must not mutate a shared error")
	}
	if formatted := Newf(CodeNotFound, "product %d", 7); formatted.Message() != "product 7" {
		t.Fatalf("unexpected formatted message %q", formatted.Message())
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeForbidden, "no entry")
	if got := As(err); got == nil || got.Code() != CodeForbidden {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsMatchesWrappedCode(t *testing.T) {
	inner := New(CodeInsufficientStock, "only 1 left")
	outer := fmt.Errorf("checkout: %w", inner)
	if !Is(outer, CodeInsufficientStock) {
		t.Fatalf("expected Is to find code through fmt wrapping")
	}
	if Is(outer, CodeNotFound) {
		t.Fatalf("unexpected match for different code")
	}
	if Is(stdErrors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}

	layered := Wrap(CodeDependency, inner, "reserve stock")
	if !Is(layered, CodeInsufficientStock) || !Is(layered, CodeDependency) {
		t.Fatalf("expected Is to see every coded layer")
	}
	if As(layered).Code() != CodeDependency {
		t.Fatalf("As should return the outermost coded error")
	}
}

func TestDumpCapturesChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("disk full"), "persist order")
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %v", dump.Chain)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatalf("expected empty dump for nil")
	}
}

func TestDumpReadsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "40001",
		ConstraintName: "products_stock_nonnegative",
		TableName:      "products",
		Message:        "could not serialize access",
	}
	dump := Dump(Wrap(CodeInternal, pgErr, "reserve stock"))
	if dump.PG == nil {
		t.Fatalf("expected postgres details")
	}
	if dump.PG.Table != "products" || dump.PG.Constraint != "products_stock_nonnegative" {
		t.Fatalf("unexpected details %+v", dump.PG)
	}
	if !dump.PG.Retryable {
		t.Fatalf("serialization failures should be flagged retryable")
	}

	plain := Dump(Wrap(CodeInternal, &pq.Error{Code: "23505", Table: "users"}, "insert user"))
	if plain.PG == nil || plain.PG.Retryable {
		t.Fatalf("unique violation is not retryable: %+v", plain.PG)
	}
	if Dump(stdErrors.New("plain")).PG != nil {
		t.Fatalf("plain errors carry no postgres details")
	}
}
