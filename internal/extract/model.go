package extract

import (
	"strings"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

// UnknownModel is the fallback when no indicator matches.
const UnknownModel = "Unknown"

// knownModels maps raw indicator text (normalized to lower case) to the
// display name a record should carry. Unmatched text passes through verbatim.
var knownModels = map[string]string{
	"2.5 flash":       "2.5 Flash",
	"2.5 pro":         "2.5 Pro",
	"flash":           "2.5 Flash",
	"pro":             "2.5 Pro",
	"3 pro":           "3 Pro",
	"fast":            "Fast",
	"thinking":        "Thinking",
	"gemini":          "Gemini",
	"personalization": "Personalization",
}

// activatedTools maps the label of a selected toolbox entry to the model
// value that overrides the base model name for the record.
var activatedTools = map[string]string{
	"deep research":   "Deep Research",
	"video":           "Veo",
	"create videos":   "Veo",
	"canvas":          "Canvas",
	"guided learning": "Guided Learning",
}

// toolOverrideProbe finds a selected toolbox chip. Gemini renders activated
// tools as pressed buttons inside the toolbox drawer.
func toolOverrideProbe(s *dom.Snapshot) Result {
	selectors := []string{
		"button[aria-pressed=true] .toolbox-drawer-item-label",
		".toolbox-drawer-item-button.is-selected .label",
		".toolbox-drawer-button-label.is-selected",
	}
	for _, sel := range selectors {
		for _, n := range s.All(sel) {
			label := strings.ToLower(n.Text())
			for key, name := range activatedTools {
				if strings.Contains(label, key) {
					return Found(name)
				}
			}
		}
	}
	return NotFound
}

// modelProbes is the ordered selector strategy list for the plain model
// indicator, first match wins.
var modelProbes = []Probe{
	func(s *dom.Snapshot) Result {
		return textProbe(s, "[data-test-id=bard-mode-menu-button] .mode-title span")
	},
	func(s *dom.Snapshot) Result {
		return textProbe(s, "[data-test-id=bard-mode-menu-button]")
	},
	func(s *dom.Snapshot) Result {
		return textProbe(s, ".current-mode-title span")
	},
	func(s *dom.Snapshot) Result {
		return textProbe(s, ".logo-pill-label-container span")
	},
}

func textProbe(s *dom.Snapshot, selector string) Result {
	n := s.First(selector)
	if n == nil {
		return NotFound
	}
	if t := n.Text(); t != "" {
		return Found(t)
	}
	return NotFound
}

// DetectModel resolves the model value for a record. An activated tool (deep
// research, video generation) takes precedence over the plain model name;
// otherwise the indicator text is canonicalized through knownModels and
// passed through verbatim when unmatched.
func DetectModel(s *dom.Snapshot) string {
	if r := toolOverrideProbe(s); r.OK {
		logging.ExtractDebug("model: activated tool override %q", r.Value)
		return r.Value
	}
	r := RunProbes(s, modelProbes)
	if !r.OK {
		logging.ExtractDebug("model: no indicator matched, falling back to %q", UnknownModel)
		return UnknownModel
	}
	raw := strings.TrimSpace(r.Value)
	if name, ok := knownModels[strings.ToLower(raw)]; ok {
		return name
	}
	return raw
}

// planProbes detect the account tier, independent of the model indicator.
var planProbes = []Probe{
	// Paid tiers show their name in the OneGoogle pill next to the logo.
	func(s *dom.Snapshot) Result {
		n := s.First(".gb_Cd .gb_Jd")
		if n == nil {
			n = s.First("[aria-label*='Google AI'] span")
		}
		if n == nil {
			return NotFound
		}
		t := strings.ToLower(n.Text())
		switch {
		case strings.Contains(t, "ultra"):
			return Found("Google AI Ultra")
		case strings.Contains(t, "pro"):
			return Found("Google AI Pro")
		}
		return NotFound
	},
	// An upgrade CTA in the sidebar means the free tier.
	func(s *dom.Snapshot) Result {
		if s.First("[data-test-id=bard-upsell-menu-button]") != nil ||
			s.First("button.upgrade-button") != nil {
			return Found("Free")
		}
		return NotFound
	},
}

// DetectPlan resolves the subscription tier, or "" when nothing matches.
func DetectPlan(s *dom.Snapshot) string {
	if r := RunProbes(s, planProbes); r.OK {
		return r.Value
	}
	return ""
}
