package display

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time
	Level     zerolog.Level
	Message   string
	Error     string
	Source    string
}

// String renders the entry as a single footer line
func (e LogEntry) String() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(e.Level.String()))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Source != "" {
		b.WriteString(" [")
		b.WriteString(e.Source)
		b.WriteString("]")
	}
	if e.Error != "" {
		b.WriteString(": ")
		b.WriteString(e.Error)
	}
	return b.String()
}

// LogBuffer is a thread-safe ring buffer of zerolog entries. The screen is
// cleared on every refresh, so recent warnings are replayed from here below
// the table.
type LogBuffer struct {
	entries []LogEntry
	size    int
	head    int
	count   int
	now     func() time.Time
	mu      sync.RWMutex
}

// NewLogBuffer creates a new log buffer with the specified capacity
func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{
		entries: make([]LogEntry, size),
		size:    size,
		now:     time.Now,
	}
}

// Write implements io.Writer for capturing zerolog JSON output
func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	entry := parseEntry(p)
	entry.Timestamp = lb.now()

	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries[lb.head] = entry
	lb.head = (lb.head + 1) % lb.size
	if lb.count < lb.size {
		lb.count++
	}

	return len(p), nil
}

// GetEntries returns all log entries in chronological order
func (lb *LogBuffer) GetEntries() []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	result := make([]LogEntry, lb.count)
	if lb.count == 0 {
		return result
	}

	start := 0
	if lb.count == lb.size {
		start = lb.head
	}

	for i := 0; i < lb.count; i++ {
		idx := (start + i) % lb.size
		result[i] = lb.entries[idx]
	}

	return result
}

// Since returns entries at or above minLevel logged at or after t, oldest
// first, keeping at most the last n.
func (lb *LogBuffer) Since(t time.Time, minLevel zerolog.Level, n int) []LogEntry {
	var out []LogEntry
	for _, e := range lb.GetEntries() {
		if e.Level < minLevel || e.Timestamp.Before(t) {
			continue
		}
		out = append(out, e)
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// Clear clears all log entries
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.head = 0
	lb.count = 0
}

// parseEntry extracts level, message, error and source from a zerolog JSON line
func parseEntry(p []byte) LogEntry {
	var fields struct {
		Level   string `json:"level"`
		Message string `json:"message"`
		Error   string `json:"error"`
		Source  string `json:"source"`
	}
	if err := json.Unmarshal(p, &fields); err != nil {
		return LogEntry{Level: zerolog.InfoLevel, Message: strings.TrimSpace(string(p))}
	}
	level, err := zerolog.ParseLevel(fields.Level)
	if err != nil || fields.Level == "" {
		level = zerolog.InfoLevel
	}
	return LogEntry{
		Level:   level,
		Message: fields.Message,
		Error:   fields.Error,
		Source:  fields.Source,
	}
}
