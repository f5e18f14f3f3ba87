package browser

import (
	"github.com/go-rod/rod"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
)

// LivePage adapts a rod page to the snapshot-based read interface the
// capture pipeline works against.
type LivePage struct {
	page *rod.Page
}

// NewLivePage wraps the Gemini tab.
func NewLivePage(page *rod.Page) *LivePage {
	return &LivePage{page: page}
}

// URL returns the current page URL, or "" when the page is unreachable.
func (p *LivePage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Snapshot parses the current document into a queryable tree.
func (p *LivePage) Snapshot() (*dom.Snapshot, error) {
	html, err := p.page.HTML()
	if err != nil {
		return nil, err
	}
	return dom.Parse(html)
}
