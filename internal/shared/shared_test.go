package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("save: %w", &ValidationError{Fields: map[string]string{"quantity": "min", "description": "required"}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation match")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError")
	}
	if got := verr.Error(); got != "validation failed: description: required; quantity: min" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUserSafeMessageHidesInternals(t *testing.T) {
	err := fmt.Errorf("insert items: %w: %v", ErrPersistence, errors.New("pq: connection reset"))
	msg := UserSafeMessage(err)
	if msg == "" || msg == err.Error() {
		t.Fatalf("expected safe message, got %q", msg)
	}
	if UserSafeMessage(errors.New("boom")) != "An unexpected error occurred." {
		t.Fatalf("unexpected default message")
	}
	if UserSafeMessage(nil) != "" {
		t.Fatalf("nil error should produce empty message")
	}
}

func TestNewPricingContextTruncatesToDate(t *testing.T) {
	loc := time.FixedZone("SAST", 2*60*60)
	pc := NewPricingContext(1, 2, time.Date(2024, 3, 15, 18, 30, 0, 0, loc))
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !pc.Date().Equal(want) {
		t.Fatalf("expected %s, got %s", want, pc.Date())
	}
	if (PricingContext{}).Date().IsZero() {
		t.Fatalf("unset date should default to today")
	}
}

func TestPagination(t *testing.T) {
	p := NewPagination(3, 25, 51)
	if p.TotalPages != 3 || p.Offset() != 50 {
		t.Fatalf("unexpected pagination %+v offset %d", p, p.Offset())
	}
	p = NewPagination(0, 0, 0)
	if p.Page != 1 || p.PerPage != 20 || p.Offset() != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestIdempotencyStoreNilSafe(t *testing.T) {
	var store *IdempotencyStore
	if err := store.Cleanup(context.Background(), time.Hour); err != nil {
		t.Fatalf("nil cleanup: %v", err)
	}
	if err := store.CheckAndInsert(context.Background(), "k", "m"); err == nil {
		t.Fatalf("expected error from nil store")
	}
}
