package capture

import (
	"time"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/extract"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/history"
)

// Session is the single in-flight capture attempt: the metadata read at
// submission time plus the observation handles the attempt owns. The machine
// constructs it, passes it into watch callbacks, and tears it down; it is
// never ambient global state. At most one session is pending at a time.
type Session struct {
	ID string

	// Pending is true from submission click until the conversation appears
	// (or the attempt dies).
	Pending bool

	// Context read synchronously at click time.
	Model          string
	Plan           string
	Prompt         string
	OriginalPrompt string
	AttachedFiles  []string
	AccountName    string
	AccountEmail   string
	Gem            extract.Gem

	// Snapshot taken the instant the conversation appeared. Capture fields
	// above are cleared at that point; the draft retains them.
	Draft      *history.Entry
	CapturedAt time.Time

	// Observation handles, canceled as a set on every transition.
	phaseTokens   []Token
	attemptTokens []Token
	titleTimer    *time.Timer

	// secondaryTitleWatch marks the collapsed-layout refinement as installed.
	secondaryTitleWatch bool
}

// snapshotDraft freezes the attempt context into a draft record and clears
// the pending capture fields, per the conversation-appeared transition.
func (s *Session) snapshotDraft(url string, now time.Time) {
	s.Draft = &history.Entry{
		Timestamp:     now.UTC(),
		URL:           url,
		Model:         s.Model,
		Prompt:        s.Prompt,
		AttachedFiles: s.AttachedFiles,
		AccountName:   s.AccountName,
		AccountEmail:  s.AccountEmail,
		GeminiPlan:    s.Plan,
		GemID:         s.Gem.ID,
		GemName:       s.Gem.Name,
		GemURL:        s.Gem.URL,
	}
	s.CapturedAt = now
	s.Pending = false
	s.Model = ""
	s.Plan = ""
	s.AttachedFiles = nil
	s.AccountName = ""
	s.AccountEmail = ""
	s.Gem = extract.Gem{}
	// Prompt and OriginalPrompt stay: the title phase needs them to tell a
	// placeholder echo from a real title.
}

// addPhaseToken registers a phase-scoped observation handle.
func (s *Session) addPhaseToken(t Token) {
	if t != nil {
		s.phaseTokens = append(s.phaseTokens, t)
	}
}

// addAttemptToken registers an attempt-scoped observation handle.
func (s *Session) addAttemptToken(t Token) {
	if t != nil {
		s.attemptTokens = append(s.attemptTokens, t)
	}
}

// cancelPhase atomically cancels the phase token set.
func (s *Session) cancelPhase() {
	for _, t := range s.phaseTokens {
		t.Cancel()
	}
	s.phaseTokens = nil
	if s.titleTimer != nil {
		s.titleTimer.Stop()
		s.titleTimer = nil
	}
}

// teardown cancels every handle the attempt owns.
func (s *Session) teardown() {
	s.cancelPhase()
	for _, t := range s.attemptTokens {
		t.Cancel()
	}
	s.attemptTokens = nil
	s.Pending = false
}
