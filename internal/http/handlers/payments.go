package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/payment"
)

// paymentSession is one open top-up dialog: a wizard plus the attempt id of
// the current QRIS visit. A fresh attempt id is minted every time the wizard
// enters the QRIS step, so the coordinator can credit exactly once per visit.
// The wizard itself is not concurrency-safe; mu serializes every wizard and
// attempt-id access across concurrent requests for the same session.
type paymentSession struct {
	ID string

	mu        sync.Mutex
	Wizard    *payment.Wizard
	AttemptID string
}

type sessionRegistry struct {
	mu   sync.Mutex
	byID map[string]*paymentSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{byID: make(map[string]*paymentSession)}
}

func (r *sessionRegistry) create() *paymentSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess := &paymentSession{ID: uuid.NewString(), Wizard: payment.NewWizard()}
	r.byID[sess.ID] = sess
	return sess
}

func (r *sessionRegistry) get(id string) (*paymentSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.byID[id]
	return sess, ok
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

type selectPackageRequest struct {
	Amount int `json:"amount"`
}

type confirmRequest struct {
	Outcome string `json:"outcome"`
}

// PaymentsCreate opens a new top-up wizard session.
func (a *App) PaymentsCreate(w http.ResponseWriter, r *http.Request) {
	sess := a.sessions.create()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	a.json(w, http.StatusCreated, a.paymentState(sess))
}

// PaymentsGet reports the wizard state for one session.
func (a *App) PaymentsGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.paymentSessionFrom(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	a.json(w, http.StatusOK, a.paymentState(sess))
}

// PaymentsSelect records the chosen package.
func (a *App) PaymentsSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.paymentSessionFrom(w, r)
	if !ok {
		return
	}
	var req selectPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	pkg, ok := payment.FindPackage(req.Amount)
	if !ok {
		a.error(w, http.StatusBadRequest, "unknown_package", "no package with that credit amount")
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.Wizard.SelectPackage(pkg) {
		a.error(w, http.StatusConflict, "invalid_state", "packages can only be selected before continuing to pay")
		return
	}
	a.json(w, http.StatusOK, a.paymentState(sess))
}

// PaymentsContinue moves the wizard to the QRIS step and mints the attempt
// id for this visit.
func (a *App) PaymentsContinue(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.paymentSessionFrom(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.Wizard.Continue() {
		a.error(w, http.StatusConflict, "no_package_selected", "select a package before continuing")
		return
	}
	sess.AttemptID = uuid.NewString()
	a.json(w, http.StatusOK, a.paymentState(sess))
}

// PaymentsConfirm applies the simulated payment confirmation.
func (a *App) PaymentsConfirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.paymentSessionFrom(w, r)
	if !ok {
		return
	}
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	var success bool
	switch req.Outcome {
	case "success":
		success = true
	case "failure":
		success = false
	default:
		a.error(w, http.StatusBadRequest, "bad_request", `outcome must be "success" or "failure"`)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := a.Coordinator.Confirm(r.Context(), sess.Wizard, sess.AttemptID, success); err != nil {
		a.error(w, http.StatusConflict, "invalid_state", err.Error())
		return
	}
	a.json(w, http.StatusOK, a.paymentState(sess))
}

// PaymentsRetry returns a failed payment to the QRIS step with a fresh
// attempt id.
func (a *App) PaymentsRetry(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.paymentSessionFrom(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.Wizard.Retry() {
		a.error(w, http.StatusConflict, "invalid_state", "retry is only available after a failed payment")
		return
	}
	sess.AttemptID = uuid.NewString()
	a.json(w, http.StatusOK, a.paymentState(sess))
}

// PaymentsDismiss resets and discards the session, so the next opening
// starts clean.
func (a *App) PaymentsDismiss(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.paymentSessionFrom(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	sess.Wizard.Reset()
	sess.mu.Unlock()
	a.sessions.remove(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) paymentSessionFrom(w http.ResponseWriter, r *http.Request) (*paymentSession, bool) {
	id := chi.URLParam(r, "payment_id")
	if id == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "payment_id required")
		return nil, false
	}
	sess, ok := a.sessions.get(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "payment session not found")
		return nil, false
	}
	return sess, true
}

// paymentState renders one session; the caller holds sess.mu.
func (a *App) paymentState(sess *paymentSession) map[string]any {
	state := map[string]any{
		"id":       sess.ID,
		"state":    sess.Wizard.State(),
		"packages": payment.Catalog(),
		"credits":  a.Ledger.Balance(),
	}
	if pkg, ok := sess.Wizard.SelectedPackage(); ok {
		state["selected_package"] = pkg
		if sess.Wizard.State() == payment.StateQRIS {
			state["qr_url"] = payment.QRCodeURL(pkg)
		}
	}
	return state
}
