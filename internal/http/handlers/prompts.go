package handlers

import (
	"net/http"

	"server/internal/generation"
)

// PromptRandom returns one of the built-in scene ideas.
func (a *App) PromptRandom(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"prompt": generation.RandomPrompt()})
}
