package diagnostics

import (
	"sync"
	"testing"

	"github.com/keurnel/lattice/pkg/lerr"
)

func TestRecordAndEntries(t *testing.T) {
	d := New()
	if d.HasErrors() {
		t.Fatal("a fresh Diagnostics should have no errors")
	}
	d.Record("a.tmpl", lerr.SyntaxErrorf(3, "boom"))
	d.Record("b.tmpl", lerr.NameErrorf(7, "missing x"))

	if !d.HasErrors() || d.Count() != 2 {
		t.Fatalf("HasErrors=%v Count=%d, want true/2", d.HasErrors(), d.Count())
	}
	entries := d.Entries()
	if entries[0].Template() != "a.tmpl" || entries[1].Template() != "b.tmpl" {
		t.Fatalf("unexpected entry order: %+v", entries)
	}
	if entries[0].String() == "" {
		t.Error("String() should not be empty")
	}
}

func TestRecordIsConcurrencySafe(t *testing.T) {
	d := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Record("t.tmpl", lerr.SyntaxErrorf(i, "err"))
		}(i)
	}
	wg.Wait()
	if d.Count() != 50 {
		t.Fatalf("Count() = %d, want 50", d.Count())
	}
}
