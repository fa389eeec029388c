package region

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperifyio/goreport/internal/document"
)

// ErrDuplicateName is returned when creating a region under a name that is
// already registered. The underlying host primitive would silently
// overwrite; the registry refuses instead.
var ErrDuplicateName = errors.New("region: duplicate name")

// ErrNotFound is returned when resolving a name with no registered region.
// During tolerant fan-out this is expected and non-fatal.
var ErrNotFound = errors.New("region: not found")

// Span is a half-open offset range [Start, End) in the document buffer.
type Span struct {
	Start int
	End   int
}

// Region is a named addressable span.
type Region struct {
	Name string
	Span
}

// Registry creates and looks up named regions over a document buffer. It
// observes every buffer splice and shifts registered spans the way the
// host shifts bookmarks around edits, so spans stay valid across
// mutations that do not touch them. A span the edit does overlap is
// clamped; callers replacing region content must go through Replace,
// which deletes and recreates the region over the new text.
type Registry struct {
	buf   *document.Buffer
	spans map[string]*Span
}

// NewRegistry returns a registry bound to buf.
func NewRegistry(buf *document.Buffer) *Registry {
	r := &Registry{buf: buf, spans: make(map[string]*Span)}
	buf.Observe(r.onSplice)
	return r
}

// Create registers a region over the given span. It fails with
// ErrDuplicateName when the name is already registered.
func (r *Registry) Create(name string, sp Span) (Region, error) {
	if _, ok := r.spans[name]; ok {
		return Region{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if sp.End < sp.Start {
		sp.End = sp.Start
	}
	copied := sp
	r.spans[name] = &copied
	return Region{Name: name, Span: sp}, nil
}

// Resolve returns the current span of the named region.
func (r *Registry) Resolve(name string) (Span, error) {
	sp, ok := r.spans[name]
	if !ok {
		return Span{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return *sp, nil
}

// Exists reports whether the name is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.spans[name]
	return ok
}

// Text returns the current content of the named region.
func (r *Registry) Text(name string) (string, error) {
	sp, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	return r.buf.Text(sp.Start, sp.End), nil
}

// Replace swaps the region's content for text and re-registers the region
// over the new span. The old region is deleted before the buffer splice
// so no observer ever sees the name resolving to a stale span; the new
// text inherits the style that governed the old content.
func (r *Registry) Replace(name, text string) (Region, error) {
	sp, err := r.Resolve(name)
	if err != nil {
		return Region{}, err
	}
	st := r.buf.StyleAt(sp.Start)
	r.Delete(name)
	r.buf.Delete(sp.Start, sp.End)
	n := r.buf.InsertText(sp.Start, text, st)
	newSpan := Span{Start: sp.Start, End: sp.Start + n}
	reg, err := r.Create(name, newSpan)
	if err != nil {
		// Delete-before-create makes this unreachable unless an observer
		// re-registered the name mid-splice; surface it, the registry
		// invariant is at stake.
		return Region{}, fmt.Errorf("region: re-register %s: %w", name, err)
	}
	return reg, nil
}

// Delete removes the named region. Deleting a nonexistent region is a
// no-op; regeneration depends on that.
func (r *Registry) Delete(name string) {
	delete(r.spans, name)
}

// DropFrom removes every region whose span starts at or beyond off and
// returns the removed names, sorted. Tail regeneration uses it to discard
// all tail regions en masse before deleting the tail content.
func (r *Registry) DropFrom(off int) []string {
	var dropped []string
	for name, sp := range r.spans {
		if sp.Start >= off {
			dropped = append(dropped, name)
			delete(r.spans, name)
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.spans))
	for name := range r.spans {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// onSplice shifts registered spans across a buffer mutation. Spans fully
// before the edit are untouched, spans after it shift by the length
// delta, and spans overlapping it collapse their overlapped part onto the
// edit point.
func (r *Registry) onSplice(sp document.Splice) {
	removedEnd := sp.At + sp.Removed
	delta := sp.Inserted - sp.Removed
	for _, s := range r.spans {
		switch {
		case s.End <= sp.At:
			// before the edit
		case s.Start >= removedEnd:
			s.Start += delta
			s.End += delta
		default:
			s.Start = adjustOverlap(s.Start, sp.At, removedEnd, delta, false)
			s.End = adjustOverlap(s.End, sp.At, removedEnd, delta, true)
			if s.End < s.Start {
				s.End = s.Start
			}
		}
	}
}

// adjustOverlap maps one offset across a splice when its span overlaps
// the edit. An end offset past the removal shifts; offsets inside the
// removed range land on the edit point. Text inserted strictly inside a
// span extends it, matching host bookmark behavior.
func adjustOverlap(off, at, removedEnd, delta int, isEnd bool) int {
	switch {
	case off < at || (!isEnd && off == at):
		return off
	case off >= removedEnd:
		return off + delta
	default:
		return at
	}
}
