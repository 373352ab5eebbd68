package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a captured log record flattened for assertions.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// LogRecorder is a slog.Handler that keeps every record it receives.
// It is safe for concurrent use so cleanup goroutines may log into it.
type LogRecorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	attrs   []slog.Attr
}

func NewLogRecorder() *LogRecorder {
	return &LogRecorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

// Logger returns a logger writing into the recorder.
func (r *LogRecorder) Logger() *slog.Logger {
	return slog.New(r)
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool {
	return true
}

func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	entry := Entry{Level: record.Level, Message: record.Message, Attrs: map[string]string{}}
	for _, a := range r.attrs {
		entry.Attrs[a.Key] = a.Value.String()
	}
	record.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value.String()
		return true
	})
	r.mu.Lock()
	*r.entries = append(*r.entries, entry)
	r.mu.Unlock()
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(r.attrs)+len(attrs))
	merged = append(merged, r.attrs...)
	merged = append(merged, attrs...)
	return &LogRecorder{mu: r.mu, entries: r.entries, attrs: merged}
}

func (r *LogRecorder) WithGroup(string) slog.Handler {
	return r
}

// Entries returns a copy of everything logged so far.
func (r *LogRecorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// AtLevel returns the entries logged at exactly level.
func (r *LogRecorder) AtLevel(level slog.Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
