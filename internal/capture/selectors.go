// Package capture coordinates the asynchronous page notifications of one
// conversation capture attempt: from submission click, through the
// conversation appearing in the sidebar, to a stable title, to a persisted
// record. The host page is a moving target; selectors here are ordered
// strategies, not guarantees.
package capture

import "github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"

// Selector strategies for the sidebar conversation list, first match wins.
var conversationListSelectors = []string{
	"[data-test-id=all-conversations]",
	".conversations-container",
	".chat-history-list",
}

const (
	// SelConversation matches one sidebar conversation item.
	SelConversation = "[data-test-id=conversation]"
	// SelConversationTitle matches the title slot inside a conversation item.
	SelConversationTitle = ".conversation-title"
	// SelSidebar matches the sidebar shell carrying the layout state.
	SelSidebar = "bard-sidenav"
	// SelSnackbar matches the overlay region transient notifications land in.
	SelSnackbar = ".cdk-overlay-container"
	// SelSendButton matches the prompt submission button.
	SelSendButton = "button.send-button"

	// collapsedClass marks the collapsed sidebar layout variant.
	collapsedClass = "collapsed"
)

// findConversationList resolves the conversation-list container, or nil when
// the markup no longer matches any known selector.
func findConversationList(s *dom.Snapshot) *dom.Node {
	for _, sel := range conversationListSelectors {
		if n := s.First(sel); n != nil {
			return n
		}
	}
	return nil
}

// sidebarCollapsed reports whether the sidebar is in its collapsed layout.
func sidebarCollapsed(s *dom.Snapshot) bool {
	n := s.First(SelSidebar)
	if n == nil {
		n = s.First("nav.sidebar")
	}
	return n != nil && n.HasClass(collapsedClass)
}
