package document

// AtomKind identifies the kind of an atom seen through EachAtom.
type AtomKind uint8

const (
	AtomText AtomKind = iota
	AtomImage
	AtomPageBreak
	AtomSectionBreak
)

// AtomView is a read-only view of one buffer atom, handed to renderers.
type AtomView struct {
	Kind    AtomKind
	Rune    rune
	Style   Style
	Image   *Image
	Section *Section
}

// EachAtom walks the buffer in document order. Renderers combine it with
// PageNumber and VerticalPosition to reproduce the host pagination.
func (b *Buffer) EachAtom(fn func(off int, a AtomView)) {
	for i := range b.atoms {
		a := &b.atoms[i]
		v := AtomView{}
		switch a.kind {
		case atomRune:
			v.Kind = AtomText
			v.Rune = a.r
			if a.style != nil {
				v.Style = *a.style
			}
		case atomImage:
			v.Kind = AtomImage
			v.Image = a.img
		case atomPageBreak:
			v.Kind = AtomPageBreak
		case atomSectionBreak:
			v.Kind = AtomSectionBreak
			v.Section = a.sect
		}
		fn(i, v)
	}
}
