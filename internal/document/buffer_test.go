package document

import (
	"testing"
)

func TestInsertTextAndText(t *testing.T) {
	b := New(A4())
	n := b.InsertText(0, "hello", Style{Size: 12})
	if n != 5 {
		t.Fatalf("expected 5 atoms inserted, got %d", n)
	}
	b.InsertText(5, " world", Style{Size: 12})
	if got := b.Text(0, b.End()); got != "hello world" {
		t.Fatalf("unexpected text %q", got)
	}
	// Mid-buffer insertion shifts the tail.
	b.InsertText(5, ",", Style{Size: 12})
	if got := b.Text(0, b.End()); got != "hello, world" {
		t.Fatalf("unexpected text after mid insert %q", got)
	}
}

func TestImageAndBreakRenderAsSentinels(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "a", Style{})
	b.InsertImage(1, Image{Path: "x.png", Width: 10, Height: 10})
	b.InsertBreak(2, PageBreak)
	b.InsertText(3, "b", Style{})
	if got := b.Text(0, b.End()); got != "a￼\nb" {
		t.Fatalf("unexpected text %q", got)
	}
	if b.End() != 4 {
		t.Fatalf("every atom must occupy one offset, End=%d", b.End())
	}
}

func TestObserverSeesSplices(t *testing.T) {
	b := New(A4())
	var got []Splice
	b.Observe(func(sp Splice) { got = append(got, sp) })
	b.InsertText(0, "abc", Style{})
	b.Delete(1, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 splices, got %d", len(got))
	}
	if got[0] != (Splice{At: 0, Removed: 0, Inserted: 3}) {
		t.Fatalf("unexpected insert splice %+v", got[0])
	}
	if got[1] != (Splice{At: 1, Removed: 1, Inserted: 0}) {
		t.Fatalf("unexpected delete splice %+v", got[1])
	}
}

func TestStyleAtCarriesFormatting(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "x", Style{Size: 15, Bold: true})
	st := b.StyleAt(0)
	if st.Size != 15 || !st.Bold {
		t.Fatalf("unexpected style %+v", st)
	}
	if st := b.StyleAt(99); st != (Style{}) {
		t.Fatalf("out-of-range style must be the default, got %+v", st)
	}
}

func TestSectionBreakTakesTrailingProperties(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "front", Style{})

	// Configure the trailing section, then append a break: the break must
	// carry those properties and the trailing section must reset.
	sects := b.Sections()
	sects[len(sects)-1].Style = NumberRoman
	sects[len(sects)-1].Restart = true
	sects[len(sects)-1].Start = 1

	at := b.End()
	b.InsertBreak(at, SectionBreak)
	sect, err := b.SectionBefore(at)
	if err != nil {
		t.Fatalf("SectionBefore: %v", err)
	}
	if sect.Style != NumberRoman || !sect.Restart {
		t.Fatalf("break did not take over the trailing section: %+v", sect)
	}
	sects = b.Sections()
	if last := sects[len(sects)-1]; *last != (Section{}) {
		t.Fatalf("trailing section must reset after handover, got %+v", last)
	}
}

func TestSectionBeforeRejectsNonBreak(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "a", Style{})
	if _, err := b.SectionBefore(0); err == nil {
		t.Fatalf("expected error for non-break offset")
	}
}

func TestSectionIndexOf(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "a", Style{})
	b.InsertBreak(1, SectionBreak)
	b.InsertText(2, "b", Style{})
	b.InsertBreak(3, SectionBreak)
	b.InsertText(4, "c", Style{})

	if got := b.SectionIndexOf(0); got != 0 {
		t.Fatalf("expected section 0, got %d", got)
	}
	if got := b.SectionIndexOf(2); got != 1 {
		t.Fatalf("expected section 1, got %d", got)
	}
	if got := b.SectionIndexOf(4); got != 2 {
		t.Fatalf("expected section 2, got %d", got)
	}
	if n := len(b.Sections()); n != 3 {
		t.Fatalf("expected 3 sections, got %d", n)
	}
}

func TestPageBreakAdvancesPage(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "a", Style{})
	b.InsertBreak(1, PageBreak)
	b.InsertText(2, "b", Style{})

	if got := b.PageNumber(0); got != 1 {
		t.Fatalf("expected page 1, got %d", got)
	}
	if got := b.PageNumber(2); got != 2 {
		t.Fatalf("expected page 2 after break, got %d", got)
	}
	if b.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", b.PageCount())
	}
}

func TestVerticalPositionAdvancesByLine(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "first\nsecond", Style{})
	y0, err := b.VerticalPosition(0)
	if err != nil {
		t.Fatalf("VerticalPosition: %v", err)
	}
	ySecond, err := b.VerticalPosition(6)
	if err != nil {
		t.Fatalf("VerticalPosition: %v", err)
	}
	if ySecond != y0+b.Geometry().LineHeight {
		t.Fatalf("expected one line height apart, got %v and %v", y0, ySecond)
	}
}

func TestTallImageMovesToNextPage(t *testing.T) {
	b := New(A4())
	geo := b.Geometry()
	b.InsertText(0, "intro\n", Style{})
	// Taller than the remaining space on page 1 but fits a fresh page.
	h := geo.PageHeight - geo.TopMargin - geo.BottomMargin - geo.LineHeight + 1
	at := b.End()
	b.InsertImage(at, Image{Path: "big.png", Width: 100, Height: h})

	if got := b.PageNumber(at); got != 2 {
		t.Fatalf("expected image pushed to page 2, got page %d", got)
	}
	y, err := b.VerticalPosition(at)
	if err != nil {
		t.Fatalf("VerticalPosition: %v", err)
	}
	if y != geo.TopMargin {
		t.Fatalf("moved image must start at the top margin, got %v", y)
	}
}

func TestAdjustedPageNumberHonorsRestart(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "toc", Style{})

	// Close the first section as Roman restarting at i.
	at := b.End()
	b.InsertBreak(at, SectionBreak)
	sect, err := b.SectionBefore(at)
	if err != nil {
		t.Fatalf("SectionBefore: %v", err)
	}
	*sect = Section{Style: NumberRoman, Restart: true, Start: 1}

	bodyAt := b.End()
	b.InsertText(bodyAt, "body", Style{})
	sects := b.Sections()
	*sects[len(sects)-1] = Section{Style: NumberArabic, Restart: true, Start: 1}

	n, err := b.AdjustedPageNumber(0)
	if err != nil {
		t.Fatalf("AdjustedPageNumber: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected roman section to print 1, got %d", n)
	}
	n, err = b.AdjustedPageNumber(bodyAt)
	if err != nil {
		t.Fatalf("AdjustedPageNumber: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected restarted body section to print 1, got %d", n)
	}
}

func TestContinuedSectionKeepsCounting(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "one", Style{})
	at := b.End()
	b.InsertBreak(at, SectionBreak)
	sect, _ := b.SectionBefore(at)
	*sect = Section{Style: NumberArabic, Restart: true, Start: 1}

	b.InsertText(b.End(), "two", Style{})
	sects := b.Sections()
	// No restart: the trailing section continues the sequence.
	*sects[len(sects)-1] = Section{Style: NumberArabic}

	n, err := b.AdjustedPageNumber(b.End())
	if err != nil {
		t.Fatalf("AdjustedPageNumber: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected continued numbering 2, got %d", n)
	}
}

func TestNumberingHidesFirstSectionPage(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "title page", Style{})
	b.InsertBreak(b.End(), PageBreak)
	b.InsertText(b.End(), "content", Style{})
	sects := b.Sections()
	*sects[0] = Section{Style: NumberArabic, Restart: true, Start: 1, HideFirstPage: true}

	first := b.Numbering(1)
	if first.Text != "" {
		t.Fatalf("first page number must be hidden, got %q", first.Text)
	}
	second := b.Numbering(2)
	if second.Text != "2" {
		t.Fatalf("expected printed 2 on page 2, got %q", second.Text)
	}
}

func TestFormatNumberStyles(t *testing.T) {
	roman := &Section{Style: NumberRoman}
	cases := map[int]string{1: "i", 4: "iv", 9: "ix", 14: "xiv", 40: "xl"}
	for n, want := range cases {
		if got := roman.FormatNumber(n); got != want {
			t.Fatalf("roman %d: expected %q, got %q", n, want, got)
		}
	}
	arabic := &Section{Style: NumberArabic}
	if got := arabic.FormatNumber(7); got != "7" {
		t.Fatalf("arabic: expected 7, got %q", got)
	}
	none := &Section{}
	if got := none.FormatNumber(3); got != "" {
		t.Fatalf("hidden style must format empty, got %q", got)
	}
}

func TestDeleteRemovesSectionBreakProperties(t *testing.T) {
	b := New(A4())
	b.InsertText(0, "keep", Style{})
	brk := b.End()
	b.InsertBreak(brk, SectionBreak)
	sect, _ := b.SectionBefore(brk)
	*sect = Section{Style: NumberRoman}
	b.InsertText(b.End(), "tail", Style{})

	b.Delete(brk, b.End())
	if n := len(b.Sections()); n != 1 {
		t.Fatalf("expected only the trailing section to survive, got %d", n)
	}
	if got := b.Text(0, b.End()); got != "keep" {
		t.Fatalf("unexpected text %q", got)
	}
}
