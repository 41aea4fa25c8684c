package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/generation"
	"server/internal/payment"
)

// CreditLedger is the slice of the credit ledger the HTTP surface reads.
type CreditLedger interface {
	Balance() int
}

// Generator runs one generation end to end.
type Generator interface {
	Generate(ctx context.Context, imageA, imageB generation.SourceImage, prompt string) (*generation.Result, error)
}

// App is the handler container: the ledger, the payment coordinator, the
// generation orchestrator, and the in-memory wizard sessions.
type App struct {
	Ledger      CreditLedger
	Coordinator *payment.Coordinator
	Generator   Generator
	Logger      zerolog.Logger

	sessions *sessionRegistry
}

// NewApp wires the handler container.
func NewApp(ledger CreditLedger, coordinator *payment.Coordinator, generator Generator, logger zerolog.Logger) *App {
	return &App{
		Ledger:      ledger,
		Coordinator: coordinator,
		Generator:   generator,
		Logger:      logger,
		sessions:    newSessionRegistry(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
