package credit

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Ledger holds the credit balance for the running session. It is the only
// writer of the persisted balance: every successful mutation is written to
// the Store before the method returns. The balance never goes below zero;
// ConsumeCredit at zero is a guarded refusal, not a clamp.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	balance int
	logger  zerolog.Logger
}

// NewLedger loads the persisted balance and returns a ready ledger. A stored
// value that is missing, non-numeric, or negative loads as zero.
func NewLedger(ctx context.Context, store Store, logger zerolog.Logger) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("credit store is required")
	}
	raw, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credit balance: %w", err)
	}
	ledger := &Ledger{
		store:   store,
		balance: parseStoredBalance(raw),
		logger:  logger,
	}
	logger.Debug().Int("credits", ledger.balance).Msg("credit ledger loaded")
	return ledger, nil
}

// Balance returns the current credit balance. No side effects.
func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// AddCredits increases the balance by amount and persists the new balance
// before returning. Amount must be positive.
func (l *Ledger) AddCredits(ctx context.Context, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.balance + amount
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.balance = next
	l.logger.Info().Int("added", amount).Int("credits", l.balance).Msg("credits added")
	return nil
}

// ConsumeCredit decreases the balance by one and persists. At zero balance
// the operation is refused with ErrInsufficientCredits and nothing is
// written.
func (l *Ledger) ConsumeCredit(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balance <= 0 {
		return ErrInsufficientCredits
	}
	next := l.balance - 1
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.balance = next
	l.logger.Info().Int("credits", l.balance).Msg("credit consumed")
	return nil
}

func (l *Ledger) persist(ctx context.Context, balance int) error {
	if err := l.store.Save(ctx, strconv.Itoa(balance)); err != nil {
		return fmt.Errorf("persist credit balance: %w", err)
	}
	return nil
}

func parseStoredBalance(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
