package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", Unauthenticated("no token"), fiber.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), fiber.StatusForbidden},
		{"not found", NotFound("missing"), fiber.StatusNotFound},
		{"invalid argument", InvalidArgument("%s is required", "email"), fiber.StatusBadRequest},
		{"conflict", Conflict("already paid"), fiber.StatusConflict},
		{"processor", PaymentProcessor("card declined", errors.New("boom")), fiber.StatusBadGateway},
		{"store", Store("insert failed", errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("unexpected"), fiber.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", Conflict("inner")), fiber.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("record payment: %w", Conflict("parcel not found or already paid"))
	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected errors.Is to match ErrConflict")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("conflict must not match ErrNotFound")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Store("failed to insert payment", errors.New("disk full"))
	if got, want := err.Error(), "failed to insert payment: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrStoreError) {
		t.Error("expected ErrStoreError match")
	}
}
