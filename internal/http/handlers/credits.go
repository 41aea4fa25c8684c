package handlers

import "net/http"

// CreditsGet reports the current credit balance.
func (a *App) CreditsGet(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]int{"credits": a.Ledger.Balance()})
}
