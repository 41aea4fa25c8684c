package credit

import "context"

// StorageKey is the fixed identifier the balance is persisted under.
const StorageKey = "pixforge_credits"

// Store persists the credit balance as a single key-value pair. The value is
// the decimal string form of the balance; how that string is interpreted is
// the ledger's business, not the store's.
type Store interface {
	// Load returns the stored value, or "" when nothing has been persisted yet.
	Load(ctx context.Context) (string, error)
	// Save overwrites the stored value. It must complete (or fail) before
	// returning; the ledger relies on synchronous persistence.
	Save(ctx context.Context, value string) error
}
