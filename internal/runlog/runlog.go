package runlog

import (
	"strings"
	"sync"
	"time"
)

// Event is one human-readable progress line of a run.
type Event struct {
	Time    time.Time `json:"time"`
	Phase   string    `json:"phase"`
	Message string    `json:"message"`
}

// Log is a per-process registry of append-only run logs. Handlers subscribe
// to a run id to stream events; the orchestrator appends as phases progress.
type Log struct {
	mu   sync.RWMutex
	runs map[string][]Event
	subs map[string][]chan Event
}

func New() *Log {
	return &Log{
		runs: make(map[string][]Event),
		subs: make(map[string][]chan Event),
	}
}

// Append records one line and fans it out to subscribers. A slow subscriber
// loses events rather than blocking the run.
func (l *Log) Append(runID, phase, message string) {
	evt := Event{Time: time.Now(), Phase: phase, Message: message}
	l.mu.Lock()
	l.runs[runID] = append(l.runs[runID], evt)
	subs := l.subs[runID]
	l.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Events returns a snapshot of all events appended so far for the run.
func (l *Log) Events(runID string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.runs[runID]))
	copy(out, l.runs[runID])
	return out
}

// Lines returns the raw messages, which the confidence heuristic counts over.
func (l *Log) Lines(runID string) []string {
	events := l.Events(runID)
	lines := make([]string, len(events))
	for i, evt := range events {
		lines[i] = evt.Message
	}
	return lines
}

// Subscribe registers a buffered channel for the run's future events and
// returns an unsubscribe func.
func (l *Log) Subscribe(runID string) (<-chan Event, func()) {
	ch := make(chan Event, 64)
	l.mu.Lock()
	l.subs[runID] = append(l.subs[runID], ch)
	l.mu.Unlock()

	unsubscribe := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		subs := l.subs[runID]
		for i, c := range subs {
			if c == ch {
				l.subs[runID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, unsubscribe
}

// Confidence is an explicit presentation heuristic, not a statistical
// measure: it counts log lines mentioning research, validation, or
// enhancement and normalizes to 0-1 against a fixed ceiling.
func Confidence(lines []string) float64 {
	const ceiling = 20.0
	count := 0
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "research") ||
			strings.Contains(lower, "validation") ||
			strings.Contains(lower, "enhancement") {
			count++
		}
	}
	score := float64(count) / ceiling
	if score > 1 {
		score = 1
	}
	return score
}
