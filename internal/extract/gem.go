package extract

import (
	"sync"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

// Gem identifies the persona a conversation runs under, if any.
type Gem struct {
	ID   string
	Name string
	URL  string
}

// GemDetector caches the last persona name seen on the page. The name node
// renders asynchronously and may lag behind navigation, so the id always
// derives from the URL while the name comes from whichever snapshot last
// showed it.
type GemDetector struct {
	mu          sync.Mutex
	currentName string
}

// NewGemDetector returns an empty detector.
func NewGemDetector() *GemDetector {
	return &GemDetector{}
}

// gemNameProbes locate the persona name anywhere under the chat surface.
var gemNameProbes = []Probe{
	func(s *dom.Snapshot) Result { return textProbe(s, ".bot-name") },
	func(s *dom.Snapshot) Result { return textProbe(s, "[data-test-id=bot-name]") },
	func(s *dom.Snapshot) Result { return textProbe(s, ".gem-header .title") },
}

// Observe updates the cached persona name from a snapshot. Absence of the
// name node leaves the cache untouched; presence replaces it.
func (d *GemDetector) Observe(s *dom.Snapshot) {
	r := RunProbes(s, gemNameProbes)
	if !r.OK {
		return
	}
	d.mu.Lock()
	if d.currentName != r.Value {
		logging.ExtractDebug("gem: name node now %q", r.Value)
	}
	d.currentName = r.Value
	d.mu.Unlock()
}

// Reset clears the cache. Called whenever navigation leaves persona-scoped
// pages.
func (d *GemDetector) Reset() {
	d.mu.Lock()
	d.currentName = ""
	d.mu.Unlock()
}

// Track maintains the cache across a navigation: persona-scoped pages
// refresh the name from the snapshot, any other destination clears it so a
// stale name cannot attach to the next Gem visited. snap may be nil when the
// destination is not persona-scoped.
func (d *GemDetector) Track(pageURL string, snap *dom.Snapshot) {
	if _, ok := GemIDFromURL(pageURL); !ok {
		d.Reset()
		return
	}
	if snap != nil {
		d.Observe(snap)
	}
}

// Current derives the active Gem from the page URL plus the cached name.
// Off persona-scoped pages it returns the zero Gem.
func (d *GemDetector) Current(pageURL string) Gem {
	id, ok := GemIDFromURL(pageURL)
	if !ok {
		return Gem{}
	}
	d.mu.Lock()
	name := d.currentName
	d.mu.Unlock()
	return Gem{ID: id, Name: name, URL: GemURL(id)}
}
