package browser

import (
	"github.com/go-rod/rod"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/status"
)

// overlayScript renders the status pill in the page corner. Success and info
// messages fade on their own; loading, warning and error stay until replaced
// or cleared.
const overlayScript = `
(level, msg, sticky) => {
	const id = 'gemhist-status';
	let el = document.getElementById(id);
	if (!el) {
		el = document.createElement('div');
		el.id = id;
		el.style.cssText = 'position:fixed;bottom:16px;right:16px;z-index:2147483647;' +
			'padding:8px 14px;border-radius:8px;font:13px system-ui,sans-serif;' +
			'color:#fff;box-shadow:0 2px 8px rgba(0,0,0,.35);transition:opacity .3s;pointer-events:none;';
		document.body.appendChild(el);
	}
	const colors = {
		loading: '#1a73e8',
		success: '#188038',
		info:    '#5f6368',
		warning: '#e37400',
		error:   '#d93025',
	};
	el.style.background = colors[level] || colors.info;
	el.style.opacity = '1';
	el.textContent = msg;
	if (el.__gemhistTimer) clearTimeout(el.__gemhistTimer);
	if (!sticky) {
		el.__gemhistTimer = setTimeout(() => { el.style.opacity = '0'; }, 4000);
	}
}`

const overlayClearScript = `
() => {
	const el = document.getElementById('gemhist-status');
	if (el) el.style.opacity = '0';
}`

// Overlay is a status reporter rendered inside the observed page.
type Overlay struct {
	page *rod.Page
	log  *logging.Logger
}

// NewOverlay builds an on-page reporter. It satisfies status.Reporter.
func NewOverlay(page *rod.Page) *Overlay {
	return &Overlay{page: page, log: logging.Get(logging.CategoryStatus)}
}

func (o *Overlay) Show(level status.Level, msg string) {
	sticky := level == status.Loading || level == status.Warning || level == status.Error
	_, err := o.page.Evaluate(&rod.EvalOptions{
		JS:      overlayScript,
		JSArgs:  []interface{}{level.String(), msg, sticky},
		ByValue: true,
	})
	if err != nil {
		o.log.Warn("status overlay: %v", err)
	}
}

func (o *Overlay) Clear() {
	_, _ = o.page.Evaluate(&rod.EvalOptions{
		JS:      overlayClearScript,
		ByValue: true,
	})
}
