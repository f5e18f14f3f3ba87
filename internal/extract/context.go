package extract

import (
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
)

// Context is everything the extractors can say about the page at one instant.
type Context struct {
	Model   string
	Plan    string
	Input   PromptInput
	Account Account
	Gem     Gem
}

// ReadContext runs every extractor against one snapshot. It is the
// synchronous read the capture machine performs at submission-click time.
func ReadContext(s *dom.Snapshot, gems *GemDetector, pageURL string) Context {
	if gems != nil {
		gems.Observe(s)
	}
	ctx := Context{
		Model:   DetectModel(s),
		Plan:    DetectPlan(s),
		Input:   ExtractInput(s),
		Account: ExtractAccount(s),
	}
	if gems != nil {
		ctx.Gem = gems.Current(pageURL)
	}
	return ctx
}
