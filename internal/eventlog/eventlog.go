// Package eventlog renders controller state transitions as timestamped log lines
// and keeps a short history of them.
package eventlog

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/logic"
)

// TimestampLayout renders wall-clock times like "Monday 7/1/2026 2:05:09 pm".
const TimestampLayout = "Monday 1/2/2006 3:04:05 pm"

// DefaultHistory is the number of transitions kept by New.
const DefaultHistory = 32

// Entry is one logged transition.
type Entry struct {
	At         time.Time
	Transition logic.Transition
}

// Log is a logging collaborator for the control loop.
type Log struct {
	now     func() time.Time
	history *ringBuffer
}

// New creates a Log that stamps entries with now (the RTC on boards that have one).
func New(now func() time.Time, history int) *Log {
	return &Log{now: now, history: newRingBuffer(history)}
}

// OnTransition logs tr. A wall-clock failure never reaches the caller.
func (l *Log) OnTransition(tr logic.Transition) {
	at := l.now()
	l.history.push(Entry{At: at, Transition: tr})

	entry := log.WithFields(log.Fields{
		"from":    tr.From.String(),
		"to":      tr.To.String(),
		"trigger": tr.Trigger.String(),
		"temp_c":  tr.Env.Temperature,
		"water":   tr.Env.WaterLevel,
	})
	entry.Infof("state %s -> %s", tr.From, tr.To)

	if tr.MotorStarted() {
		log.Infof("Motor turned on: %s", Timestamp(at))
	}
	if tr.MotorStopped() {
		log.Infof("Motor turned off: %s", Timestamp(at))
	}
}

// History returns the retained transitions, oldest first.
func (l *Log) History() []Entry {
	return l.history.items()
}

// Dropped returns how many transitions fell out of the history.
func (l *Log) Dropped() int {
	return l.history.dropped
}

// Timestamp formats t for the event log; the zero time renders as "unknown time".
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Format(TimestampLayout)
}
