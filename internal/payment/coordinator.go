package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Coordinator errors. ErrNotAwaitingPayment means the wizard was not on the
// QRIS step when a confirmation arrived.
var (
	ErrNotAwaitingPayment = errors.New("wizard is not awaiting payment")
	ErrMissingAttemptID   = errors.New("payment attempt id is required")
)

// CreditSink is the slice of the credit ledger the coordinator needs.
type CreditSink interface {
	AddCredits(ctx context.Context, amount int) error
}

// Coordinator translates a wizard's payment confirmation into exactly one
// ledger credit. The wizard itself never touches the ledger; routing every
// confirmation through here is what keeps wizard state and balance from
// desynchronizing. Each visit to the QRIS step carries a fresh attempt id,
// and the coordinator credits at most once per attempt id, so a re-delivered
// success confirmation cannot double-credit.
type Coordinator struct {
	mu       sync.Mutex
	ledger   CreditSink
	credited map[string]struct{}
	logger   zerolog.Logger
}

// NewCoordinator wires a Coordinator over the ledger.
func NewCoordinator(ledger CreditSink, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		ledger:   ledger,
		credited: make(map[string]struct{}),
		logger:   logger,
	}
}

// Confirm applies the outcome of the external payment confirmation to the
// wizard, crediting the ledger first on success. The credit is written
// before the wizard leaves the QRIS step: if the ledger write fails the
// wizard stays on QRIS and the confirmation can be retried safely.
func (c *Coordinator) Confirm(ctx context.Context, wizard *Wizard, attemptID string, success bool) error {
	if attemptID == "" {
		return ErrMissingAttemptID
	}
	if wizard.State() != StateQRIS {
		return ErrNotAwaitingPayment
	}

	if !success {
		wizard.PaymentFailed()
		c.logger.Info().Str("attempt_id", attemptID).Msg("payment failed")
		return nil
	}

	pkg, ok := wizard.SelectedPackage()
	if !ok {
		// Unreachable through the wizard's own transitions: CONTINUE is
		// guarded on a selection.
		return ErrNotAwaitingPayment
	}

	c.mu.Lock()
	_, alreadyCredited := c.credited[attemptID]
	if !alreadyCredited {
		c.credited[attemptID] = struct{}{}
	}
	c.mu.Unlock()

	if !alreadyCredited {
		if err := c.ledger.AddCredits(ctx, pkg.Amount); err != nil {
			c.mu.Lock()
			delete(c.credited, attemptID)
			c.mu.Unlock()
			return err
		}
		c.logger.Info().
			Str("attempt_id", attemptID).
			Int("amount", pkg.Amount).
			Str("label", pkg.Label).
			Msg("payment confirmed, credits added")
	}

	wizard.PaymentSucceeded()
	return nil
}
