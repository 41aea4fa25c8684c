package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type recordingSink struct {
	adds []int
	err  error
}

func (r *recordingSink) AddCredits(ctx context.Context, amount int) error {
	if r.err != nil {
		return r.err
	}
	r.adds = append(r.adds, amount)
	return nil
}

func wizardAtQRIS(t *testing.T, amount int) *Wizard {
	t.Helper()
	w := NewWizard()
	w.SelectPackage(mustFind(t, amount))
	if !w.Continue() {
		t.Fatal("Continue refused")
	}
	return w
}

func TestConfirmSuccessCreditsOnce(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	c := NewCoordinator(sink, zerolog.Nop())
	w := wizardAtQRIS(t, 10)

	if err := c.Confirm(ctx, w, "attempt-1", true); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if w.State() != StateSuccess {
		t.Fatalf("state = %q, want success", w.State())
	}
	if len(sink.adds) != 1 || sink.adds[0] != 10 {
		t.Fatalf("ledger adds = %v, want [10]", sink.adds)
	}
}

func TestConfirmIsIdempotentPerAttempt(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	c := NewCoordinator(sink, zerolog.Nop())
	w := wizardAtQRIS(t, 5)

	if err := c.Confirm(ctx, w, "attempt-1", true); err != nil {
		t.Fatalf("first Confirm returned error: %v", err)
	}
	// A re-delivered confirmation for the same attempt: the wizard already
	// left qris, so the coordinator refuses, and even if it raced past that
	// check the attempt id is spent.
	err := c.Confirm(ctx, w, "attempt-1", true)
	if !errors.Is(err, ErrNotAwaitingPayment) {
		t.Fatalf("duplicate Confirm error = %v, want ErrNotAwaitingPayment", err)
	}
	if len(sink.adds) != 1 {
		t.Fatalf("ledger adds = %v, want exactly one", sink.adds)
	}
}

func TestConfirmFailureAddsNothing(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	c := NewCoordinator(sink, zerolog.Nop())
	w := wizardAtQRIS(t, 20)

	if err := c.Confirm(ctx, w, "attempt-1", false); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if w.State() != StateFailure {
		t.Fatalf("state = %q, want failure", w.State())
	}
	if len(sink.adds) != 0 {
		t.Fatalf("ledger adds = %v, want none", sink.adds)
	}
}

func TestRetryWithNewAttemptCreditsAgain(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	c := NewCoordinator(sink, zerolog.Nop())
	w := wizardAtQRIS(t, 5)

	if err := c.Confirm(ctx, w, "attempt-1", false); err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if !w.Retry() {
		t.Fatal("Retry refused")
	}
	if err := c.Confirm(ctx, w, "attempt-2", true); err != nil {
		t.Fatalf("Confirm after retry returned error: %v", err)
	}
	if len(sink.adds) != 1 || sink.adds[0] != 5 {
		t.Fatalf("ledger adds = %v, want [5]", sink.adds)
	}
}

func TestConfirmOutsideQRISIsRefused(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	c := NewCoordinator(sink, zerolog.Nop())
	w := NewWizard()

	err := c.Confirm(ctx, w, "attempt-1", true)
	if !errors.Is(err, ErrNotAwaitingPayment) {
		t.Fatalf("Confirm error = %v, want ErrNotAwaitingPayment", err)
	}
	if len(sink.adds) != 0 {
		t.Fatalf("ledger adds = %v, want none", sink.adds)
	}
}

func TestConfirmRequiresAttemptID(t *testing.T) {
	ctx := context.Background()
	c := NewCoordinator(&recordingSink{}, zerolog.Nop())
	w := wizardAtQRIS(t, 5)

	if err := c.Confirm(ctx, w, "", true); !errors.Is(err, ErrMissingAttemptID) {
		t.Fatalf("Confirm error = %v, want ErrMissingAttemptID", err)
	}
}

func TestLedgerFailureKeepsWizardOnQRIS(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{err: errors.New("persist failed")}
	c := NewCoordinator(sink, zerolog.Nop())
	w := wizardAtQRIS(t, 10)

	if err := c.Confirm(ctx, w, "attempt-1", true); err == nil {
		t.Fatal("expected Confirm to surface the ledger failure")
	}
	if w.State() != StateQRIS {
		t.Fatalf("state = %q, want qris so the confirmation can be retried", w.State())
	}

	// The attempt id must be reusable after the failed write.
	sink.err = nil
	if err := c.Confirm(ctx, w, "attempt-1", true); err != nil {
		t.Fatalf("retried Confirm returned error: %v", err)
	}
	if len(sink.adds) != 1 || sink.adds[0] != 10 {
		t.Fatalf("ledger adds = %v, want [10]", sink.adds)
	}
}
