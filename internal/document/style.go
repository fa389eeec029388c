package document

// Alignment is a paragraph alignment hint carried on text runs.
type Alignment int

const (
	AlignJustify Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Style captures the character and paragraph formatting of a text run.
// The zero value is the body default: 12pt regular, justified, 1.5 line
// spacing. The layout engine uses fixed line metrics regardless of style;
// styles only affect rendering.
type Style struct {
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Align     Alignment
}

// EffectiveSize returns the font size, defaulting the zero value to 12pt.
func (s Style) EffectiveSize() float64 {
	if s.Size <= 0 {
		return 12
	}
	return s.Size
}
