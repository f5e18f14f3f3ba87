package capture

import (
	"strings"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/extract"
)

// titleOf applies the title acceptance policy to a conversation item's title
// slot. ok is false while no stable, non-placeholder title exists yet:
// empty-after-trim text means "not yet available", and text that merely
// echoes the submitted prompt (whitespace-normalized, code truncation
// accounted for) is the transient placeholder, not a title.
func titleOf(item *dom.Node, prompt, originalPrompt string) (title string, ok bool) {
	slot := item.First(SelConversationTitle)
	if slot == nil {
		// Some layout variants put the text straight on the item.
		slot = item
	}
	// Prefer the first direct text so nested decoration is not swallowed.
	text := slot.DirectText()
	if text == "" {
		text = slot.Text()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if isPromptEcho(text, prompt) || isPromptEcho(text, originalPrompt) {
		return "", false
	}
	return text, true
}

// isPromptEcho compares whitespace-normalized text against the submitted
// prompt. The echo may carry the code-block truncation placeholder or the
// raw code, so the caller checks both prompt forms.
func isPromptEcho(text, prompt string) bool {
	if prompt == "" {
		return false
	}
	return normalize(text) == normalize(prompt) ||
		normalize(text) == normalize(strings.ReplaceAll(prompt, extract.CodeBlockPlaceholder, ""))
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
