// Package diagnostics accumulates per-template render errors for the CLI's
// multi-template invocation (component K). It is adapted from the teacher
// repo's internal/debugcontext: a passive, thread-safe, append-only entry
// list consumed by a separate renderer — trimmed to the severity lattice
// actually has. Lattice runs one synchronous pass per template, not a
// multi-phase pipeline, so there is no SetPhase/Warning/Info/Trace: every
// entry here is an error, by construction.
package diagnostics

import (
	"fmt"
	"sync"

	"github.com/keurnel/lattice/pkg/lerr"
)

// Entry pairs a render/parse error with the template file it came from.
type Entry struct {
	template string
	err      *lerr.Error
}

// Template returns the path of the template this entry was produced for.
func (e *Entry) Template() string { return e.template }

// Err returns the underlying structured error.
func (e *Entry) Err() *lerr.Error { return e.err }

// String renders a single-line "template: error" representation.
func (e *Entry) String() string {
	return fmt.Sprintf("%s: %s", e.template, e.err.Error())
}

// Diagnostics is a thread-safe, append-only collection of Entry values.
type Diagnostics struct {
	mu      sync.Mutex
	entries []*Entry
}

// New returns an empty Diagnostics collector.
func New() *Diagnostics {
	return &Diagnostics{}
}

// Record appends one error for the given template path.
func (d *Diagnostics) Record(template string, err *lerr.Error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, &Entry{template: template, err: err})
}

// Entries returns all recorded entries in insertion order.
func (d *Diagnostics) Entries() []*Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]*Entry, len(d.entries))
	copy(result, d.entries)
	return result
}

// HasErrors reports whether at least one entry has been recorded.
func (d *Diagnostics) HasErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries) > 0
}

// Count returns the total number of recorded entries.
func (d *Diagnostics) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
