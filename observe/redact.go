package observe

import (
	"sort"
	"strings"
	"sync"
)

// Mask replaces redacted values in log output.
const Mask = "***"

// Redactor is a registry of sensitive values that must never reach a log sink.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Register must be called before the value can be logged.
type Redactor interface {
	// Register marks value as sensitive.
	Register(value string)

	// Redact replaces every registered value in s with Mask.
	Redact(s string) string
}

// ValueRedactor is an in-memory Redactor.
type ValueRedactor struct {
	mu     sync.RWMutex
	values map[string]struct{}
	sorted []string // longest first, rebuilt on Register
}

// NewRedactor creates an empty ValueRedactor.
func NewRedactor() *ValueRedactor {
	return &ValueRedactor{values: make(map[string]struct{})}
}

// Register marks value as sensitive. Multi-line values are also registered
// line by line, since sinks may split them.
func (r *ValueRedactor) Register(value string) {
	if r == nil || strings.TrimSpace(value) == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.add(value)
	if strings.Contains(value, "\n") {
		for _, line := range strings.Split(value, "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) != "" {
				r.add(line)
			}
		}
	}
}

func (r *ValueRedactor) add(value string) {
	if _, ok := r.values[value]; ok {
		return
	}
	r.values[value] = struct{}{}
	r.sorted = append(r.sorted, value)
	sort.SliceStable(r.sorted, func(i, j int) bool {
		return len(r.sorted[i]) > len(r.sorted[j])
	})
}

// Redact replaces every registered value in s with Mask.
func (r *ValueRedactor) Redact(s string) string {
	if r == nil || s == "" {
		return s
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.sorted {
		s = strings.ReplaceAll(s, v, Mask)
	}
	return s
}

// Len returns the number of registered values.
func (r *ValueRedactor) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.values)
}

var _ Redactor = (*ValueRedactor)(nil)
