package dom

import (
	"testing"
)

const fixture = `
<html><body>
  <div id="app" class="outer shell">
    <nav class="sidebar collapsed">
      <div class="conversation" data-test-id="conversation" jslog="c1">
        <div class="conversation-title gds-body-m"> Quicksort Algorithm Overview <span class="badge">new</span></div>
      </div>
      <div class="conversation" data-test-id="conversation" jslog="c2">
        <div class="conversation-title"></div>
      </div>
    </nav>
    <button aria-label="Google Account: Ada Lovelace (ada@example.com)" class="gb_account"></button>
    <div data-test-id="attachment-chip" data-file-name="paper-draft-final.pdf">paper.pdf</div>
  </div>
</body></html>`

func TestFirstAndAll(t *testing.T) {
	snap, err := Parse(fixture)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		name     string
		selector string
		count    int
	}{
		{"by class", ".conversation", 2},
		{"by attr equals", `[data-test-id=conversation]`, 2},
		{"by attr quoted", `[data-test-id="conversation"]`, 2},
		{"by attr present", "[jslog]", 2},
		{"by attr contains", `[aria-label*="ada@example.com"]`, 1},
		{"by attr prefix", `[data-file-name^=paper]`, 1},
		{"attr value with space", `[aria-label*='Google Account'] `, 1},
		{"descendant chain", "nav.sidebar .conversation-title", 2},
		{"compound", `div.conversation[jslog=c1]`, 1},
		{"by id", "#app", 1},
		{"no match", ".missing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := snap.All(tt.selector)
			if len(got) != tt.count {
				t.Errorf("All(%q) = %d nodes, want %d", tt.selector, len(got), tt.count)
			}
			f := snap.First(tt.selector)
			if tt.count == 0 && f != nil {
				t.Errorf("First(%q) = %v, want nil", tt.selector, f)
			}
			if tt.count > 0 && f == nil {
				t.Errorf("First(%q) = nil, want a node", tt.selector)
			}
		})
	}
}

func TestTextExtraction(t *testing.T) {
	snap, err := Parse(fixture)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	title := snap.First(".conversation-title")
	if title == nil {
		t.Fatal("title node not found")
	}
	// DirectText skips the nested badge span.
	if got := title.DirectText(); got != "Quicksort Algorithm Overview" {
		t.Errorf("DirectText() = %q", got)
	}
	if got := title.Text(); got != "Quicksort Algorithm Overview new" {
		t.Errorf("Text() = %q", got)
	}

	empty := snap.First(`[jslog=c2] .conversation-title`)
	if empty == nil {
		t.Fatal("second title node not found")
	}
	if got := empty.DirectText(); got != "" {
		t.Errorf("DirectText() of empty title = %q, want empty", got)
	}
}

func TestNodeHelpers(t *testing.T) {
	snap, err := Parse(fixture)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	nav := snap.First("nav")
	if !nav.HasClass("collapsed") {
		t.Error("expected sidebar to have class collapsed")
	}
	if nav.HasClass("collaps") {
		t.Error("HasClass must match whole tokens only")
	}
	conv := snap.First(".conversation")
	if got := conv.Attr("jslog"); got != "c1" {
		t.Errorf("Attr(jslog) = %q", got)
	}
	if p := conv.Parent(); p == nil || p.Tag() != "nav" {
		t.Errorf("Parent() = %v", p)
	}

	// Scoped queries stay inside the node.
	if got := len(conv.All(".conversation-title")); got != 1 {
		t.Errorf("scoped All = %d, want 1", got)
	}
}

func TestParseToleratesBrokenMarkup(t *testing.T) {
	snap, err := Parse("<div class=a><span>unclosed")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if snap.First(".a") == nil {
		t.Error("expected to find .a in repaired tree")
	}
	if snap.First(".b") != nil {
		t.Error("unexpected match in repaired tree")
	}
}
