package extract

import (
	"regexp"
	"strings"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
)

// CodeBlockPlaceholder marks a truncated embedded code block in a captured
// prompt.
const CodeBlockPlaceholder = "[code block]"

var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// PromptInput is the not-yet-submitted input state read at click time.
type PromptInput struct {
	// Prompt has embedded code blocks replaced by CodeBlockPlaceholder.
	Prompt string
	// OriginalPrompt is the full text without truncation.
	OriginalPrompt string
	// AttachedFiles lists attachment names, long form preferred.
	AttachedFiles []string
}

// ExtractInput reads the prompt editor and attachment chips.
func ExtractInput(s *dom.Snapshot) PromptInput {
	var in PromptInput
	editor := s.First(".ql-editor")
	if editor == nil {
		editor = s.First("[contenteditable=true]")
	}
	if editor != nil {
		var truncated, original []string
		for _, child := range editor.Children() {
			t := child.Text()
			if t == "" {
				continue
			}
			// Quill renders pasted code as a dedicated block container; the
			// capture keeps a fixed placeholder instead of the full listing.
			if child.HasClass("ql-code-block-container") || child.HasClass("ql-code-block") {
				truncated = append(truncated, CodeBlockPlaceholder)
			} else {
				truncated = append(truncated, t)
			}
			original = append(original, t)
		}
		in.Prompt = strings.TrimSpace(strings.Join(truncated, "\n"))
		in.OriginalPrompt = strings.TrimSpace(strings.Join(original, "\n"))
	}
	in.AttachedFiles = extractAttachments(s)
	return in
}

// extractAttachments prefers the descriptive long-form name the chip carries
// in a data attribute or title over the (possibly ellipsized) visible text.
func extractAttachments(s *dom.Snapshot) []string {
	var files []string
	seen := map[string]bool{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name != "" && !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}
	for _, chip := range s.All("[data-test-id=file-name]") {
		if long := chip.Attr("title"); long != "" {
			add(long)
			continue
		}
		add(chip.Text())
	}
	for _, chip := range s.All(".attachment-chip") {
		if long := chip.Attr("data-file-name"); long != "" {
			add(long)
			continue
		}
		add(chip.Text())
	}
	return files
}

// Account is the signed-in account identity, parsed from accessibility labels.
type Account struct {
	Name  string
	Email string
}

// accountProbes is the ordered fallback chain for the combined account label.
// The last probe is the generic "any label containing an email address" scan.
var accountProbes = []Probe{
	func(s *dom.Snapshot) Result {
		return labelProbe(s, `a.gb_B[aria-label]`)
	},
	func(s *dom.Snapshot) Result {
		return labelProbe(s, `[aria-label^="Google Account"]`)
	},
	func(s *dom.Snapshot) Result {
		for _, n := range s.All("[aria-label]") {
			if label := n.Attr("aria-label"); emailRe.MatchString(label) {
				return Found(label)
			}
		}
		return NotFound
	},
}

func labelProbe(s *dom.Snapshot, selector string) Result {
	n := s.First(selector)
	if n == nil {
		return NotFound
	}
	label := n.Attr("aria-label")
	if !emailRe.MatchString(label) {
		return NotFound
	}
	return Found(label)
}

// ExtractAccount parses name and email out of the combined account label,
// e.g. "Google Account: Ada Lovelace (ada@example.com)". Missing affordances
// yield zero values, never errors.
func ExtractAccount(s *dom.Snapshot) Account {
	r := RunProbes(s, accountProbes)
	if !r.OK {
		return Account{}
	}
	return parseAccountLabel(r.Value)
}

func parseAccountLabel(label string) Account {
	var acc Account
	acc.Email = emailRe.FindString(label)
	if acc.Email == "" {
		return acc
	}
	// The name is only trustworthy in the combined "Name (email)" form; a
	// bare email inside prose stays nameless.
	i := strings.Index(label, "("+acc.Email)
	if i < 0 {
		return acc
	}
	rest := label[:i]
	if j := strings.Index(rest, ":"); j >= 0 {
		rest = rest[j+1:]
	}
	acc.Name = strings.TrimSpace(rest)
	return acc
}
