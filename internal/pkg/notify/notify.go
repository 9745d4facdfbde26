// Package notify is the fire-and-forget channel domain code uses to tell the
// shopper what happened. Producers never read from it.
package notify

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Severity of a notification
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Notification is a single message for the shopper
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Sink accepts notifications
type Sink interface {
	Notify(n Notification)
}

// Success emits a success notification
func Success(s Sink, message string) {
	s.Notify(Notification{Severity: SeveritySuccess, Message: message})
}

// Info emits an info notification
func Info(s Sink, message string) {
	s.Notify(Notification{Severity: SeverityInfo, Message: message})
}

// Error emits an error notification
func Error(s Sink, message string) {
	s.Notify(Notification{Severity: SeverityError, Message: message})
}

// Recorder collects notifications so a request can return them to the client
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{items: []Notification{}}
}

// Notify implements Sink
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// LogSink writes notifications to the application log
type LogSink struct {
	entry *logrus.Entry
}

// NewLogSink creates a sink that logs every notification at debug level
func NewLogSink(entry *logrus.Entry) *LogSink {
	return &LogSink{entry: entry}
}

// Notify implements Sink
func (l *LogSink) Notify(n Notification) {
	l.entry.WithField("severity", n.Severity).Debug(n.Message)
}

// Multi fans a notification out to several sinks
type Multi []Sink

// Notify implements Sink
func (m Multi) Notify(n Notification) {
	for _, s := range m {
		s.Notify(n)
	}
}

// Discard drops every notification
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(Notification) {}
