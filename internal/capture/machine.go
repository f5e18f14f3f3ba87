package capture

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/extract"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/history"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/status"
)

// State is the capture phase.
type State int

const (
	// Idle means no attempt is in flight.
	Idle State = iota
	// AwaitingConversation means the submission was observed and the machine
	// is watching the conversation list for the new item.
	AwaitingConversation
	// AwaitingTitle means the conversation appeared and the machine is
	// watching its title slot.
	AwaitingTitle
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConversation:
		return "awaiting-conversation"
	case AwaitingTitle:
		return "awaiting-title"
	}
	return "unknown"
}

// Event is one page change notification delivered to a watch callback.
type Event struct {
	// Selector is the watch that fired.
	Selector string
	// Text is the text content of the inserted or changed node, when the
	// notification carries one (toast inserts do).
	Text string
}

// Token cancels one subscription. Canceling an already-canceled token is a
// no-op; after Cancel the subscription is inert and firing it mutates
// nothing.
type Token interface {
	Cancel()
}

// Watcher hands out page change subscriptions. Callbacks are delivered
// asynchronously with respect to Watch.
type Watcher interface {
	// Watch subscribes to change notifications under the selector.
	Watch(selector string, fn func(Event)) (Token, error)
	// WatchNavigation subscribes to page URL changes.
	WatchNavigation(fn func(url string)) (Token, error)
}

// Page is the read side of the live page.
type Page interface {
	URL() string
	Snapshot() (*dom.Snapshot, error)
}

// Recorder persists finished records. *history.Store satisfies it.
type Recorder interface {
	AddEntry(history.Entry) (bool, error)
}

// Config tunes a Machine.
type Config struct {
	// TitleTimeout bounds the AwaitingTitle phase. Zero disables the bound.
	TitleTimeout time.Duration
}

// Machine is the capture state machine. All transitions run under one mutex;
// independent watches firing for the same underlying page update serialize
// here.
type Machine struct {
	mu      sync.Mutex
	state   State
	session *Session

	page    Page
	watcher Watcher
	store   Recorder
	gems    *extract.GemDetector
	status  status.Reporter
	cfg     Config

	log *logging.Logger
}

// NewMachine wires a machine to its collaborators. A nil status reporter is
// replaced by a no-op.
func NewMachine(page Page, watcher Watcher, store Recorder, gems *extract.GemDetector, rep status.Reporter, cfg Config) *Machine {
	if rep == nil {
		rep = status.Nop{}
	}
	return &Machine{
		state:   Idle,
		page:    page,
		watcher: watcher,
		store:   store,
		gems:    gems,
		status:  rep,
		cfg:     cfg,
		log:     logging.Get(logging.CategoryCapture),
	}
}

// State returns the current phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pending reports whether a capture attempt is in flight.
func (m *Machine) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// OnSubmitClick starts a capture attempt. It is called when a submission
// click is observed; clicks on pages a conversation cannot start from are
// ignored. Starting a new attempt is the only way a previous one is
// superseded: its watches are canceled before any new ones are installed.
func (m *Machine) OnSubmitClick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	url := m.page.URL()
	if !extract.IsEligibleStartPage(url) {
		m.log.Debug("submit click on %s ignored: not a start page", url)
		return
	}

	if m.session != nil {
		m.log.Info("superseding attempt %s", m.session.ID)
		m.session.teardown()
		m.session = nil
		m.state = Idle
	}

	snap, err := m.page.Snapshot()
	if err != nil {
		m.abortLocked(status.Warning, fmt.Sprintf("could not read page: %v", err))
		return
	}

	pc := extract.ReadContext(snap, m.gems, url)
	sess := &Session{
		ID:             uuid.NewString(),
		Pending:        true,
		Model:          pc.Model,
		Plan:           pc.Plan,
		Prompt:         pc.Input.Prompt,
		OriginalPrompt: pc.Input.OriginalPrompt,
		AttachedFiles:  pc.Input.AttachedFiles,
		AccountName:    pc.Account.Name,
		AccountEmail:   pc.Account.Email,
		Gem:            pc.Gem,
	}
	m.session = sess

	if findConversationList(snap) == nil {
		// Selector mismatch: report and reset without scheduling any watch.
		m.abortLocked(status.Warning, "conversation list not found; page layout may have changed")
		return
	}

	nav, err := m.watcher.WatchNavigation(func(u string) { m.onNavigate(sess, u) })
	if err != nil {
		m.abortLocked(status.Warning, fmt.Sprintf("navigation watch failed: %v", err))
		return
	}
	sess.addAttemptToken(nav)

	for _, sel := range conversationListSelectors {
		tok, err := m.watcher.Watch(sel, func(Event) { m.onConversationListChange(sess) })
		if err != nil {
			m.abortLocked(status.Warning, fmt.Sprintf("conversation list watch failed: %v", err))
			return
		}
		sess.addPhaseToken(tok)
	}

	m.state = AwaitingConversation
	m.status.Show(status.Loading, "Watching for new conversation")
	m.log.Info("attempt %s started: model=%q gem=%q", sess.ID, pc.Model, pc.Gem.Name)
}

// onConversationListChange advances AwaitingConversation when the new item
// has appeared and the page URL already addresses a conversation.
func (m *Machine) onConversationListChange(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != sess || m.state != AwaitingConversation || !sess.Pending {
		return
	}

	url := m.page.URL()
	if !extract.IsConversationURL(url) {
		return // conversation item rendered before the address settled
	}
	snap, err := m.page.Snapshot()
	if err != nil {
		m.log.Warn("snapshot during conversation wait failed: %v", err)
		return
	}
	item := snap.First(SelConversation)
	if item == nil {
		return
	}

	// Conversation found: freeze the context, release the list watch, move
	// to the title phase.
	sess.cancelPhase()
	sess.snapshotDraft(url, time.Now())
	m.state = AwaitingTitle
	m.log.Info("attempt %s: conversation appeared at %s", sess.ID, url)

	tok, err := m.watcher.Watch(SelConversationTitle, func(Event) { m.onTitleChange(sess) })
	if err != nil {
		m.abortLocked(status.Warning, fmt.Sprintf("title watch failed: %v", err))
		return
	}
	sess.addPhaseToken(tok)

	if m.cfg.TitleTimeout > 0 {
		sess.titleTimer = time.AfterFunc(m.cfg.TitleTimeout, func() { m.onTitleTimeout(sess) })
	}

	// The title may already be present in this snapshot.
	m.tryFinishLocked(sess, snap)
}

// onTitleChange re-evaluates the title slot on every notification.
func (m *Machine) onTitleChange(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != sess || m.state != AwaitingTitle {
		return
	}
	if url := m.page.URL(); sess.Draft != nil && url != sess.Draft.URL {
		m.abortLocked(status.Warning, "navigated away before a title was assigned")
		return
	}
	snap, err := m.page.Snapshot()
	if err != nil {
		m.log.Warn("snapshot during title wait failed: %v", err)
		return
	}
	m.tryFinishLocked(sess, snap)
}

// tryFinishLocked extracts the title and, once stable, persists the record.
// Caller holds the lock.
func (m *Machine) tryFinishLocked(sess *Session, snap *dom.Snapshot) {
	item := snap.First(SelConversation)
	if item == nil {
		return
	}
	title, ok := titleOf(item, sess.Prompt, sess.OriginalPrompt)
	if !ok {
		// In the collapsed layout the slot may echo the prompt verbatim
		// before the real title lands; install the narrower watch on the
		// title node once and keep waiting.
		if !sess.secondaryTitleWatch && sidebarCollapsed(snap) {
			sess.secondaryTitleWatch = true
			if tok, err := m.watcher.Watch(SelConversation+" "+SelConversationTitle,
				func(Event) { m.onTitleChange(sess) }); err == nil {
				sess.addPhaseToken(tok)
				m.log.Debug("attempt %s: secondary title watch installed", sess.ID)
			}
		}
		return
	}

	sess.cancelPhase()
	entry := *sess.Draft
	entry.Title = title

	added, err := m.store.AddEntry(entry)
	switch {
	case err != nil:
		// The store already surfaced the failure; reset so no attempt
		// stays stuck behind a storage error.
		m.log.Error("attempt %s: save failed: %v", sess.ID, err)
	case added:
		m.status.Show(status.Success, fmt.Sprintf("Saved %q", title))
		m.log.Info("attempt %s: recorded %s", sess.ID, entry.URL)
	default:
		m.log.Info("attempt %s: record rejected by store", sess.ID)
	}

	sess.teardown()
	m.session = nil
	m.state = Idle
}

// onNavigate enforces the URL expectation of the current phase and resets
// the gem cache when navigation leaves persona-scoped pages.
func (m *Machine) onNavigate(sess *Session, url string) {
	if m.gems != nil {
		if _, ok := extract.GemIDFromURL(url); !ok {
			m.gems.Reset()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != sess {
		return
	}
	switch m.state {
	case AwaitingConversation:
		// Home -> conversation is the expected move; anything that is
		// neither a start page nor a conversation page kills the attempt.
		if !extract.IsEligibleStartPage(url) && !extract.IsConversationURL(url) {
			m.abortLocked(status.Warning, "navigated away before the conversation appeared")
		}
	case AwaitingTitle:
		if sess.Draft != nil && url != sess.Draft.URL {
			m.abortLocked(status.Warning, "navigated away before a title was assigned")
		}
	}
}

// onTitleTimeout aborts an attempt stuck waiting for a title.
func (m *Machine) onTitleTimeout(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != sess || m.state != AwaitingTitle {
		return
	}
	m.abortLocked(status.Warning, "no title assigned in time; conversation not saved")
}

// AbortAttempt forces the current attempt to Aborted with a visible error.
// The crash detector drives this.
func (m *Machine) AbortAttempt(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return
	}
	m.abortLocked(status.Error, reason)
}

// abortLocked disconnects every active observer and timer, resets the
// session and returns to Idle, leaving the status surface showing the abort
// reason. Caller holds the lock.
func (m *Machine) abortLocked(level status.Level, reason string) {
	if m.session != nil {
		m.log.Warn("attempt %s aborted in %s: %s", m.session.ID, m.state, reason)
		m.session.teardown()
		m.session = nil
	}
	m.status.Show(level, reason)
	m.state = Idle
}
