// Package extract reads conversation context out of a page snapshot: active
// model, plan, prompt, attachments, account, and Gem persona. Every reader
// degrades to a defined fallback instead of failing; absent UI is an expected
// steady state, not an error.
package extract

import "github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"

// Result is the uniform outcome of a single probe.
type Result struct {
	OK    bool
	Value string
}

// Found wraps a hit.
func Found(v string) Result { return Result{OK: true, Value: v} }

// NotFound is the miss result.
var NotFound = Result{}

// Probe inspects a snapshot and reports whether it found its value. Probes
// are independent and side-effect free so each can be tested against a
// synthetic fixture on its own.
type Probe func(s *dom.Snapshot) Result

// RunProbes evaluates probes in order and short-circuits on the first hit.
func RunProbes(s *dom.Snapshot, probes []Probe) Result {
	for _, p := range probes {
		if r := p(s); r.OK {
			return r
		}
	}
	return NotFound
}
