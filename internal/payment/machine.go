package payment

// State names a step of the top-up wizard.
type State string

const (
	StateSelecting State = "selecting"
	StateQRIS      State = "qris"
	StateSuccess   State = "success"
	StateFailure   State = "failure"
)

// Wizard walks a user through package selection, the mock QRIS payment, and
// the success/failure outcome. Every method is a guarded transition: when the
// guard fails the event is ignored and the method reports false, it never
// errors. The wizard holds no credits and never touches the ledger; bridging
// a successful payment to the ledger is the Coordinator's job.
//
// Wizard is not safe for concurrent use; the owning session serializes
// access.
type Wizard struct {
	state    State
	selected *Package
}

// NewWizard returns a wizard in the selecting state with no package chosen.
func NewWizard() *Wizard {
	return &Wizard{state: StateSelecting}
}

// State returns the current wizard state.
func (w *Wizard) State() State {
	return w.state
}

// SelectedPackage returns the chosen package, if any.
func (w *Wizard) SelectedPackage() (Package, bool) {
	if w.selected == nil {
		return Package{}, false
	}
	return *w.selected, true
}

// SelectPackage records the selection. Any catalog entry is acceptable;
// selecting again replaces the previous choice. Only valid while selecting.
func (w *Wizard) SelectPackage(pkg Package) bool {
	if w.state != StateSelecting {
		return false
	}
	w.selected = &pkg
	return true
}

// Continue moves to the QRIS step. Guarded on a package being selected.
func (w *Wizard) Continue() bool {
	if w.state != StateSelecting || w.selected == nil {
		return false
	}
	w.state = StateQRIS
	return true
}

// PaymentSucceeded records the external payment confirmation.
func (w *Wizard) PaymentSucceeded() bool {
	if w.state != StateQRIS {
		return false
	}
	w.state = StateSuccess
	return true
}

// PaymentFailed records a failed payment confirmation.
func (w *Wizard) PaymentFailed() bool {
	if w.state != StateQRIS {
		return false
	}
	w.state = StateFailure
	return true
}

// Retry returns from failure to the QRIS step, keeping the selection.
func (w *Wizard) Retry() bool {
	if w.state != StateFailure {
		return false
	}
	w.state = StateQRIS
	return true
}

// Reset returns from a success or failure outcome to a clean selecting
// state, clearing the selection.
func (w *Wizard) Reset() bool {
	if w.state != StateSuccess && w.state != StateFailure {
		return false
	}
	w.state = StateSelecting
	w.selected = nil
	return true
}
