package retry

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// DefaultLogCapacity is the number of entries a RingLog keeps when created
// with a non-positive capacity.
const DefaultLogCapacity = 1000

// Status is the lifecycle point an Entry records.
type Status string

const (
	StatusStarted Status = "started"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusRetry   Status = "retry"
)

// Entry is one diagnostic record of an operation attempt.
type Entry struct {
	Operation   string    `json:"operation"`
	Timestamp   time.Time `json:"timestamp"`
	Status      Status    `json:"status"`
	Attempt     int       `json:"attempt"`
	ElapsedMs   int64     `json:"elapsedMs"`
	Error       string    `json:"error,omitempty"`
	Kind        Kind      `json:"kind,omitempty"`
	NextDelayMs int64     `json:"nextDelayMs,omitempty"`
}

// Filter narrows Query results. Operation matches any entry whose operation
// name contains it. Empty fields match everything; Limit <= 0 means no limit.
type Filter struct {
	Operation string `json:"operation"`
	Status    Status `json:"status" validate:"omitempty,oneof=started success error retry"`
	Limit     int    `json:"limit" validate:"gte=0,lte=1000"`
}

// Log is the sink a Runner writes its entries to.
type Log interface {
	Append(e Entry)
	// Query returns matching entries, newest first.
	Query(f Filter) []Entry
	// Export returns every entry, oldest first, as indented JSON.
	Export() ([]byte, error)
	Clear()
}

// RingLog is a bounded in-memory Log. When full, the oldest entry is evicted.
// It is safe for concurrent use.
type RingLog struct {
	mu    sync.Mutex
	buf   []Entry
	next  int
	count int
}

var _ Log = (*RingLog)(nil)

// NewRingLog creates a RingLog holding at most capacity entries.
func NewRingLog(capacity int) *RingLog {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &RingLog{buf: make([]Entry, capacity)}
}

func (l *RingLog) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf[l.next] = e
	l.next = (l.next + 1) % len(l.buf)
	if l.count < len(l.buf) {
		l.count++
	}
}

func (l *RingLog) Query(f Filter) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []Entry{}
	for i := 0; i < l.count; i++ {
		// walk backwards from the most recent entry
		e := l.buf[(l.next-1-i+len(l.buf))%len(l.buf)]
		if f.Operation != "" && !strings.Contains(e.Operation, f.Operation) {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

func (l *RingLog) Export() ([]byte, error) {
	l.mu.Lock()
	entries := l.ordered()
	l.mu.Unlock()
	return json.MarshalIndent(entries, "", "  ")
}

func (l *RingLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.buf)
	l.next, l.count = 0, 0
}

// Len reports how many entries are held.
func (l *RingLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// ordered must be called with mu held.
func (l *RingLog) ordered() []Entry {
	out := make([]Entry, 0, l.count)
	start := (l.next - l.count + len(l.buf)) % len(l.buf)
	for i := 0; i < l.count; i++ {
		out = append(out, l.buf[(start+i)%len(l.buf)])
	}
	return out
}

// NopLog discards everything.
type NopLog struct{}

var _ Log = NopLog{}

func (NopLog) Append(Entry)            {}
func (NopLog) Query(Filter) []Entry    { return []Entry{} }
func (NopLog) Export() ([]byte, error) { return []byte("[]"), nil }
func (NopLog) Clear()                  {}
