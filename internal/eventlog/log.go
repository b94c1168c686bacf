package eventlog

import (
	"sync"
	"time"

	"wifilayer/internal/model"
)

// Log is an append-only, session-scoped list of notices.
// Identifiers come from a counter owned by the Log, starting at 1.
type Log struct {
	mu      sync.Mutex
	nextID  uint64
	entries []model.LogNotice
	subs    map[int]chan model.LogNotice
	nextSub int
	now     func() time.Time
}

// New returns an empty log.
func New() *Log {
	return &Log{now: time.Now}
}

// Append records a notice and returns it. Appends are serialized, so the order of
// entries is the order in which callers reached the log.
func (l *Log) Append(sev model.Severity, msg string) model.LogNotice {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	n := model.LogNotice{
		ID:        l.nextID,
		Timestamp: l.now().UTC(),
		Severity:  sev,
		Message:   msg,
	}
	l.entries = append(l.entries, n)
	for _, ch := range l.subs {
		// Slow subscribers miss notices rather than block appenders.
		select {
		case ch <- n:
		default:
		}
	}
	return n
}

func (l *Log) Info(msg string) model.LogNotice    { return l.Append(model.SeverityInfo, msg) }
func (l *Log) Warn(msg string) model.LogNotice    { return l.Append(model.SeverityWarning, msg) }
func (l *Log) Error(msg string) model.LogNotice   { return l.Append(model.SeverityError, msg) }
func (l *Log) Success(msg string) model.LogNotice { return l.Append(model.SeveritySuccess, msg) }

// Entries returns a copy of all notices in append order.
func (l *Log) Entries() []model.LogNotice {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.LogNotice, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns notices with an ID greater than id.
func (l *Log) Since(id uint64) []model.LogNotice {
	l.mu.Lock()
	defer l.mu.Unlock()

	// IDs are dense and start at 1, so entry i has ID i+1.
	if id >= uint64(len(l.entries)) {
		return nil
	}
	out := make([]model.LogNotice, len(l.entries)-int(id))
	copy(out, l.entries[id:])
	return out
}

// Len returns the number of notices.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Subscribe returns a channel receiving every notice appended after the call,
// and a function that unsubscribes and closes the channel.
func (l *Log) Subscribe(buffer int) (<-chan model.LogNotice, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan model.LogNotice, buffer)

	l.mu.Lock()
	if l.subs == nil {
		l.subs = make(map[int]chan model.LogNotice)
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}
