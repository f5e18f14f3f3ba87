package capture

import (
	"strings"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

// crashMarkers are the toast substrings that mean the app rejected or lost
// the submission. Matching is case-insensitive substring matching; the exact
// wording around them shifts between releases.
var crashMarkers = []string{
	"went wrong",
	"try again",
}

// CrashDetector watches the transient-notification overlay and aborts the
// in-flight attempt when an error toast appears. It runs for the whole
// daemon lifetime, independent of any single attempt.
type CrashDetector struct {
	machine *Machine
	token   Token
	log     *logging.Logger
}

// NewCrashDetector builds a detector bound to the machine it aborts.
func NewCrashDetector(m *Machine) *CrashDetector {
	return &CrashDetector{
		machine: m,
		log:     logging.Get(logging.CategoryCapture),
	}
}

// Start installs the overlay watch. Safe to call once.
func (d *CrashDetector) Start(w Watcher) error {
	tok, err := w.Watch(SelSnackbar, d.onToast)
	if err != nil {
		return err
	}
	d.token = tok
	return nil
}

// Stop removes the overlay watch.
func (d *CrashDetector) Stop() {
	if d.token != nil {
		d.token.Cancel()
		d.token = nil
	}
}

func (d *CrashDetector) onToast(ev Event) {
	if !IsCrashToast(ev.Text) {
		return
	}
	if !d.machine.Pending() && d.machine.State() == Idle {
		d.log.Debug("error toast with no attempt in flight: %q", ev.Text)
		return
	}
	d.log.Warn("error toast during capture: %q", ev.Text)
	d.machine.AbortAttempt("Gemini reported an error; conversation not saved")
}

// IsCrashToast reports whether toast text matches a known failure marker.
func IsCrashToast(text string) bool {
	t := strings.ToLower(text)
	for _, marker := range crashMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
