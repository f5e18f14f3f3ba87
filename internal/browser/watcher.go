package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/capture"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

// editorSelector is the prompt input surface the Enter-key listener scopes to.
const editorSelector = ".ql-editor"

// observerScript installs one MutationObserver plus the submission listeners
// and routes everything through the exposed push binding. Installation is
// guarded so re-running it after a reload is safe.
const observerScript = `
(sendSel, editorSel) => {
	if (window.__gemhistObserver) return true;
	window.__gemhistWatches = new Map();

	const notify = (payload) => {
		try { window.gemhistNotify(payload); } catch (e) {}
	};

	const matchesWatch = (node, sel) => {
		if (!(node instanceof Element)) node = node.parentElement;
		if (!node) return null;
		try {
			if (node.matches(sel)) return node;
			const up = node.closest(sel);
			if (up) return up;
			return node.querySelector(sel);
		} catch (e) {
			return null;
		}
	};

	const obs = new MutationObserver((mutations) => {
		for (const [id, sel] of window.__gemhistWatches) {
			let hit = null;
			for (const m of mutations) {
				const nodes = m.type === 'childList'
					? [...m.addedNodes, m.target]
					: [m.target];
				for (const n of nodes) {
					hit = matchesWatch(n, sel);
					if (hit) break;
				}
				if (hit) break;
			}
			if (hit) {
				notify({ kind: 'mutation', id: Number(id), text: (hit.textContent || '').slice(0, 512) });
			}
		}
	});
	obs.observe(document.documentElement, {
		childList: true,
		subtree: true,
		characterData: true,
		attributes: true,
	});
	window.__gemhistObserver = obs;

	document.addEventListener('click', (ev) => {
		const t = ev.target instanceof Element ? ev.target : null;
		if (t && t.closest(sendSel)) notify({ kind: 'submit', id: 0, text: 'click' });
	}, true);
	document.addEventListener('keydown', (ev) => {
		if (ev.key !== 'Enter' || ev.shiftKey) return;
		const t = ev.target instanceof Element ? ev.target : null;
		if (t && t.closest(editorSel)) notify({ kind: 'submit', id: 0, text: 'enter' });
	}, true);
	return true;
}`

type pushEvent struct {
	kind string // mutation, submit, nav
	id   int
	text string
	url  string
}

type mutationSub struct {
	selector string
	fn       func(capture.Event)
}

// Watcher streams page changes from the Gemini tab. Mutations are pushed
// from an in-page MutationObserver over a DevTools binding; nothing polls
// the DOM for changes.
type Watcher struct {
	page *rod.Page
	log  *logging.Logger

	mu         sync.Mutex
	nextID     int
	subs       map[int]*mutationSub
	navSubs    map[int]func(string)
	submitSubs map[int]func()

	events     chan pushEvent
	stopExpose func() error
	done       chan struct{}
}

// NewWatcher wraps the Gemini page.
func NewWatcher(page *rod.Page) *Watcher {
	return &Watcher{
		page:       page,
		log:        logging.Get(logging.CategoryBrowser),
		subs:       make(map[int]*mutationSub),
		navSubs:    make(map[int]func(string)),
		submitSubs: make(map[int]func()),
		events:     make(chan pushEvent, 64),
		done:       make(chan struct{}),
	}
}

// Start exposes the push binding, installs the in-page observer and begins
// dispatching. Callbacks are delivered from a single dispatcher goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	stop, err := w.page.Expose("gemhistNotify", w.onPush)
	if err != nil {
		return fmt.Errorf("expose push binding: %w", err)
	}
	w.stopExpose = stop

	if err := w.install(); err != nil {
		w.Stop()
		return err
	}

	waitNav := w.page.EachEvent(func(ev *proto.PageFrameNavigated) {
		if ev.Frame.ParentID != "" {
			return // subframe
		}
		w.enqueue(pushEvent{kind: "nav", url: ev.Frame.URL})
	})
	go waitNav()
	go w.dispatch(ctx)
	return nil
}

// install runs the observer script and replays the live watch registry. It
// is called at start and again after a full page load wipes the page world.
func (w *Watcher) install() error {
	_, err := w.page.Evaluate(&rod.EvalOptions{
		JS:           observerScript,
		JSArgs:       []interface{}{capture.SelSendButton, editorSelector},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("install observer: %w", err)
	}

	w.mu.Lock()
	live := make(map[int]string, len(w.subs))
	for id, sub := range w.subs {
		live[id] = sub.selector
	}
	w.mu.Unlock()
	for id, sel := range live {
		w.registerRemote(id, sel)
	}
	return nil
}

func (w *Watcher) registerRemote(id int, selector string) {
	_, err := w.page.Evaluate(&rod.EvalOptions{
		JS:      `(id, sel) => { if (window.__gemhistWatches) window.__gemhistWatches.set(String(id), sel); }`,
		JSArgs:  []interface{}{id, selector},
		ByValue: true,
	})
	if err != nil {
		w.log.Warn("register watch %d %q: %v", id, selector, err)
	}
}

func (w *Watcher) unregisterRemote(id int) {
	_, _ = w.page.Evaluate(&rod.EvalOptions{
		JS:      `(id) => { if (window.__gemhistWatches) window.__gemhistWatches.delete(String(id)); }`,
		JSArgs:  []interface{}{id},
		ByValue: true,
	})
}

// onPush runs on the DevTools event loop; it only enqueues.
func (w *Watcher) onPush(g gson.JSON) (interface{}, error) {
	w.enqueue(pushEvent{
		kind: g.Get("kind").Str(),
		id:   g.Get("id").Int(),
		text: g.Get("text").Str(),
	})
	return nil, nil
}

func (w *Watcher) enqueue(ev pushEvent) {
	select {
	case w.events <- ev:
	default:
		w.log.Warn("event queue full, dropping %s event", ev.kind)
	}
}

// dispatch delivers queued events to subscribers, serialized.
func (w *Watcher) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev := <-w.events:
			switch ev.kind {
			case "mutation":
				w.mu.Lock()
				sub := w.subs[ev.id]
				w.mu.Unlock()
				if sub != nil {
					sub.fn(capture.Event{Selector: sub.selector, Text: ev.text})
				}
			case "submit":
				w.log.Debug("submission observed (%s)", ev.text)
				for _, fn := range w.snapshotSubmitSubs() {
					fn()
				}
			case "nav":
				w.log.Debug("navigated to %s", ev.url)
				// A full load wipes the in-page observer; reinstate it.
				if err := w.install(); err != nil {
					w.log.Warn("reinstall after navigation: %v", err)
				}
				for _, fn := range w.snapshotNavSubs() {
					fn(ev.url)
				}
			}
		}
	}
}

func (w *Watcher) snapshotSubmitSubs() []func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]func(), 0, len(w.submitSubs))
	for _, fn := range w.submitSubs {
		out = append(out, fn)
	}
	return out
}

func (w *Watcher) snapshotNavSubs() []func(string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]func(string), 0, len(w.navSubs))
	for _, fn := range w.navSubs {
		out = append(out, fn)
	}
	return out
}

// Watch subscribes to mutations under the selector.
func (w *Watcher) Watch(selector string, fn func(capture.Event)) (capture.Token, error) {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.subs[id] = &mutationSub{selector: selector, fn: fn}
	w.mu.Unlock()

	w.registerRemote(id, selector)
	return &watchToken{w: w, id: id, kind: "mutation"}, nil
}

// WatchNavigation subscribes to main-frame URL changes.
func (w *Watcher) WatchNavigation(fn func(string)) (capture.Token, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.navSubs[id] = fn
	return &watchToken{w: w, id: id, kind: "nav"}, nil
}

// WatchSubmit subscribes to submission clicks and Enter presses.
func (w *Watcher) WatchSubmit(fn func()) capture.Token {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	id := w.nextID
	w.submitSubs[id] = fn
	return &watchToken{w: w, id: id, kind: "submit"}
}

// Stop tears the binding down and stops dispatching.
func (w *Watcher) Stop() {
	select {
	case <-w.done:
		return
	default:
		close(w.done)
	}
	if w.stopExpose != nil {
		_ = w.stopExpose()
	}
}

type watchToken struct {
	w    *Watcher
	id   int
	kind string
	once sync.Once
}

func (t *watchToken) Cancel() {
	t.once.Do(func() {
		t.w.mu.Lock()
		switch t.kind {
		case "mutation":
			delete(t.w.subs, t.id)
		case "nav":
			delete(t.w.navSubs, t.id)
		case "submit":
			delete(t.w.submitSubs, t.id)
		}
		t.w.mu.Unlock()
		if t.kind == "mutation" {
			t.w.unregisterRemote(t.id)
		}
	})
}
