package browser

import (
	"context"
	"time"

	"github.com/go-rod/rod"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/capture"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

// sendButtonStateScript reports the submission button's state: "absent",
// "enabled" or "disabled".
const sendButtonStateScript = `
(sel) => {
	const btn = document.querySelector(sel);
	if (!btn) return 'absent';
	const disabled = btn.disabled || btn.getAttribute('aria-disabled') === 'true';
	return disabled ? 'disabled' : 'enabled';
}`

const sidebarPresentScript = `
(sel) => document.querySelector(sel) !== null`

const setSendEnabledScript = `
(sel, enabled) => {
	const btn = document.querySelector(sel);
	if (!btn) return false;
	if (enabled) {
		btn.removeAttribute('disabled');
		btn.style.opacity = '';
	} else {
		btn.setAttribute('disabled', '');
		btn.style.opacity = '0.5';
	}
	return true;
}`

// SetSendEnabled toggles the submission button's cosmetic disabled state.
// This is the one write the pipeline ever performs on the page: the button
// is held disabled while the observers come up so a submission cannot slip
// past before anything is listening.
func SetSendEnabled(page *rod.Page, enabled bool) {
	_, _ = page.Evaluate(&rod.EvalOptions{
		JS:      setSendEnabledScript,
		JSArgs:  []interface{}{capture.SelSendButton, enabled},
		ByValue: true,
	})
}

// submitSink is the slice of the state machine the reconciler drives.
type submitSink interface {
	Pending() bool
	OnSubmitClick()
}

// Reconciler is the backstop for submissions the in-page listeners miss.
// The button flipping enabled to disabled means a prompt went out; when no
// attempt is in flight at that moment, one is started. Event listeners stay
// the primary signal; this loop only catches stragglers.
type Reconciler struct {
	machine  submitSink
	interval time.Duration
	log      *logging.Logger

	buttonState    func() string
	sidebarPresent func() bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReconciler builds the loop over a live page; it does not start it.
func NewReconciler(page *rod.Page, machine *capture.Machine, interval time.Duration) *Reconciler {
	return newReconciler(machine, interval,
		func() string {
			res, err := page.Evaluate(&rod.EvalOptions{
				JS:      sendButtonStateScript,
				JSArgs:  []interface{}{capture.SelSendButton},
				ByValue: true,
			})
			if err != nil {
				return ""
			}
			return res.Value.Str()
		},
		func() bool {
			res, err := page.Evaluate(&rod.EvalOptions{
				JS:      sidebarPresentScript,
				JSArgs:  []interface{}{capture.SelSidebar},
				ByValue: true,
			})
			return err == nil && res.Value.Bool()
		},
	)
}

func newReconciler(machine submitSink, interval time.Duration, buttonState func() string, sidebarPresent func() bool) *Reconciler {
	return &Reconciler{
		machine:        machine,
		interval:       interval,
		log:            logging.Get(logging.CategoryBrowser),
		buttonState:    buttonState,
		sidebarPresent: sidebarPresent,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start waits for the sidebar to exist, then begins polling. When the
// sidebar never shows up within sidebarWait the loop does not run: without
// a conversation list there is nothing a capture could observe anyway.
func (r *Reconciler) Start(ctx context.Context, sidebarWait time.Duration) {
	go func() {
		defer close(r.doneCh)

		if !r.awaitSidebar(ctx, sidebarWait) {
			r.log.Warn("sidebar not found within %s, reconciliation disabled", sidebarWait)
			return
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		prev := ""
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopCh:
				return
			case <-ticker.C:
				state := r.buttonState()
				if prev == "enabled" && state == "disabled" && !r.machine.Pending() {
					r.log.Info("submission caught by reconciliation")
					r.machine.OnSubmitClick()
				}
				prev = state
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit.
func (r *Reconciler) Stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
	<-r.doneCh
}

func (r *Reconciler) awaitSidebar(ctx context.Context, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if r.sidebarPresent() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-r.stopCh:
			return false
		case <-time.After(r.interval):
		}
	}
	return false
}
