// Package status is the visible, non-blocking feedback surface of the
// capture pipeline. Reporters are a pure side channel: nothing reads them
// back and no control flow depends on them.
package status

import "github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"

// Level classifies a status message.
type Level int

const (
	Loading Level = iota
	Success
	Info
	Warning
	Error
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Reporter shows transient status to the user.
type Reporter interface {
	Show(level Level, msg string)
	Clear()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Show(Level, string) {}
func (Nop) Clear()             {}

// Log writes status to the status log category.
type Log struct{}

func (Log) Show(level Level, msg string) {
	logging.Status("[%s] %s", level, msg)
}

func (Log) Clear() {}

// Multi fans a status out to several reporters.
type Multi []Reporter

func (m Multi) Show(level Level, msg string) {
	for _, r := range m {
		r.Show(level, msg)
	}
}

func (m Multi) Clear() {
	for _, r := range m {
		r.Clear()
	}
}

// Recorder remembers what was shown; used in tests.
type Recorder struct {
	Events []Event
}

// Event is one recorded Show call.
type Event struct {
	Level   Level
	Message string
}

func (r *Recorder) Show(level Level, msg string) {
	r.Events = append(r.Events, Event{Level: level, Message: msg})
}

func (r *Recorder) Clear() {}

// Last returns the most recent event, if any.
func (r *Recorder) Last() (Event, bool) {
	if len(r.Events) == 0 {
		return Event{}, false
	}
	return r.Events[len(r.Events)-1], true
}
