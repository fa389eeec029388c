package document

import (
	"fmt"
)

// BreakKind identifies a structural break atom in the buffer.
type BreakKind int

const (
	// PageBreak forces the following content onto a new page within the
	// same section.
	PageBreak BreakKind = iota
	// SectionBreak starts a new page and a new section. The break atom
	// carries the properties of the section it terminates.
	SectionBreak
)

type atomKind uint8

const (
	atomRune atomKind = iota
	atomImage
	atomPageBreak
	atomSectionBreak
)

// Image is an inline picture placed in the flowing text. Width and Height
// are the target render size in points.
type Image struct {
	Path         string
	Width        float64
	Height       float64
	Center       bool
	KeepWithNext bool
}

// atom is the unit of buffer content. Every atom occupies exactly one
// offset, so offsets and Text rune indices stay in lockstep.
type atom struct {
	kind  atomKind
	r     rune
	style *Style
	img   *Image
	sect  *Section
}

// Splice describes one mutation of the buffer: Removed atoms were replaced
// by Inserted atoms starting at At.
type Splice struct {
	At       int
	Removed  int
	Inserted int
}

// SpliceFunc observes buffer mutations. Observers are invoked after the
// mutation has been applied, in registration order.
type SpliceFunc func(Splice)

// Buffer is an ordered sequence of content atoms with a monotonically
// increasing offset addressing scheme. It owns section properties and the
// layout engine; callers hold only transient offset ranges into it.
type Buffer struct {
	atoms     []atom
	geo       Geometry
	last      *Section
	observers []SpliceFunc

	layoutDirty bool
	pos         []position
	pages       []pageInfo
}

// New returns an empty buffer with the given page geometry and a single
// default section.
func New(geo Geometry) *Buffer {
	return &Buffer{
		geo:         geo,
		last:        &Section{},
		layoutDirty: true,
	}
}

// Geometry reports the page geometry the buffer lays out against.
func (b *Buffer) Geometry() Geometry { return b.geo }

// End returns the offset one past the last atom.
func (b *Buffer) End() int { return len(b.atoms) }

// Observe registers fn to be called after every splice.
func (b *Buffer) Observe(fn SpliceFunc) {
	b.observers = append(b.observers, fn)
}

// InsertText inserts s at the given offset with the given style and
// returns the number of atoms inserted (the rune length of s).
func (b *Buffer) InsertText(at int, s string, st Style) int {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	shared := &st
	ins := make([]atom, len(runes))
	for i, r := range runes {
		ins[i] = atom{kind: atomRune, r: r, style: shared}
	}
	b.splice(at, 0, ins)
	return len(runes)
}

// InsertImage inserts an inline image at the given offset and returns the
// number of atoms inserted (always 1).
func (b *Buffer) InsertImage(at int, img Image) int {
	copied := img
	b.splice(at, 0, []atom{{kind: atomImage, img: &copied}})
	return 1
}

// InsertBreak inserts a page or section break at the given offset and
// returns the number of atoms inserted (always 1). For a section break the
// new break takes over the properties of the section it now terminates;
// use SectionBefore to configure them.
func (b *Buffer) InsertBreak(at int, kind BreakKind) int {
	a := atom{kind: atomPageBreak}
	if kind == SectionBreak {
		a = atom{kind: atomSectionBreak, sect: b.takeSection(at)}
	}
	b.splice(at, 0, []atom{a})
	return 1
}

// takeSection computes the properties a new section break at off should
// carry: the properties currently governing off. Appending at the end
// hands over the trailing section's properties and leaves a fresh default
// trailing section, so the content written after the break starts clean.
func (b *Buffer) takeSection(off int) *Section {
	for i := off; i < len(b.atoms); i++ {
		if b.atoms[i].kind == atomSectionBreak {
			copied := *b.atoms[i].sect
			return &copied
		}
	}
	taken := b.last
	b.last = &Section{}
	return taken
}

// SectionBefore returns the properties of the section terminated by the
// section break at offset off. It returns an error when off does not
// address a section break.
func (b *Buffer) SectionBefore(off int) (*Section, error) {
	if off < 0 || off >= len(b.atoms) || b.atoms[off].kind != atomSectionBreak {
		return nil, fmt.Errorf("document: no section break at offset %d", off)
	}
	return b.atoms[off].sect, nil
}

// Delete removes the atoms in [start, end). Section breaks inside the
// range take their section properties with them; the surviving content
// joins the following section.
func (b *Buffer) Delete(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(b.atoms) {
		end = len(b.atoms)
	}
	if start >= end {
		return
	}
	b.splice(start, end-start, nil)
}

// Text returns the buffer content in [start, end) as a string, one rune
// per atom. Images render as U+FFFC and breaks as newlines so substring
// scans line up with offsets.
func (b *Buffer) Text(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(b.atoms) {
		end = len(b.atoms)
	}
	if start >= end {
		return ""
	}
	runes := make([]rune, 0, end-start)
	for _, a := range b.atoms[start:end] {
		switch a.kind {
		case atomRune:
			runes = append(runes, a.r)
		case atomImage:
			runes = append(runes, '￼')
		default:
			runes = append(runes, '\n')
		}
	}
	return string(runes)
}

// StyleAt returns the style of the text atom at off, or the default style
// when off does not address text. Used to carry surrounding formatting
// into replacement text.
func (b *Buffer) StyleAt(off int) Style {
	if off >= 0 && off < len(b.atoms) && b.atoms[off].kind == atomRune && b.atoms[off].style != nil {
		return *b.atoms[off].style
	}
	return Style{}
}

// Sections returns the section properties in document order: one entry per
// section break plus the trailing section.
func (b *Buffer) Sections() []*Section {
	out := make([]*Section, 0, 4)
	for i := range b.atoms {
		if b.atoms[i].kind == atomSectionBreak {
			out = append(out, b.atoms[i].sect)
		}
	}
	return append(out, b.last)
}

// SectionIndexOf returns the zero-based index of the section containing
// the given offset.
func (b *Buffer) SectionIndexOf(off int) int {
	n := 0
	if off > len(b.atoms) {
		off = len(b.atoms)
	}
	for i := 0; i < off; i++ {
		if b.atoms[i].kind == atomSectionBreak {
			n++
		}
	}
	return n
}

func (b *Buffer) splice(at, remove int, ins []atom) {
	if at < 0 {
		at = 0
	}
	if at > len(b.atoms) {
		at = len(b.atoms)
	}
	if remove > len(b.atoms)-at {
		remove = len(b.atoms) - at
	}
	next := make([]atom, 0, len(b.atoms)-remove+len(ins))
	next = append(next, b.atoms[:at]...)
	next = append(next, ins...)
	next = append(next, b.atoms[at+remove:]...)
	b.atoms = next
	b.layoutDirty = true
	sp := Splice{At: at, Removed: remove, Inserted: len(ins)}
	for _, fn := range b.observers {
		fn(sp)
	}
}
