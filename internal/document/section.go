package document

import (
	"strconv"
	"strings"
)

// NumberStyle selects how a section's printed page numbers are formatted.
type NumberStyle int

const (
	// NumberNone suppresses printed page numbers for the section.
	NumberNone NumberStyle = iota
	// NumberRoman prints lowercase Roman numerals (i, ii, iii, ...).
	NumberRoman
	// NumberArabic prints Arabic numerals (1, 2, 3, ...).
	NumberArabic
)

// Section holds the per-section page-numbering and header/footer
// configuration. Front matter leaves the zero value (no printed numbers,
// empty header and footer).
type Section struct {
	Style NumberStyle
	// Restart begins a fresh printed sequence at Start on the section's
	// first page; otherwise the sequence continues from the previous page.
	Restart bool
	Start   int
	// HideFirstPage suppresses the printed number on the section's first
	// page while later pages show it.
	HideFirstPage bool

	Header string
	// Three-cell footer. The right cell carries a live page-number field
	// when PageField is set.
	FooterLeft   string
	FooterCenter string
	PageField    bool
}

// FormatNumber renders a printed page number in the section's style.
// Sections without a visible style return the empty string.
func (s *Section) FormatNumber(n int) string {
	switch s.Style {
	case NumberRoman:
		return romanLower(n)
	case NumberArabic:
		return strconv.Itoa(n)
	default:
		return ""
	}
}

var romanUnits = []struct {
	value int
	text  string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// romanLower formats n as a lowercase Roman numeral. Values below one
// return the empty string.
func romanLower(n int) string {
	if n < 1 {
		return ""
	}
	var b strings.Builder
	for _, u := range romanUnits {
		for n >= u.value {
			b.WriteString(u.text)
			n -= u.value
		}
	}
	return b.String()
}
