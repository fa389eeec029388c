package document

// Geometry describes the page the layout engine paginates against, in
// points. Line metrics are fixed: pagination is an estimate the placement
// heuristics react to, not a typesetting result.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	TopMargin    float64
	BottomMargin float64
	LeftMargin   float64
	RightMargin  float64
	LineHeight   float64
	CharWidth    float64
}

// CmToPt converts centimeters to points.
func CmToPt(cm float64) float64 { return cm * 28.35 }

// A4 returns A4 geometry with the report's default margins (1.7cm top,
// bottom and right, 2.1cm left) and 12pt body metrics at 1.5 spacing.
func A4() Geometry {
	return Geometry{
		PageWidth:    595.28,
		PageHeight:   841.89,
		TopMargin:    CmToPt(1.7),
		BottomMargin: CmToPt(1.7),
		LeftMargin:   CmToPt(2.1),
		RightMargin:  CmToPt(1.7),
		LineHeight:   18,
		CharWidth:    6,
	}
}

// position is the layout cursor state just before an atom is placed.
type position struct {
	page int
	y    float64
}

// pageInfo records, per physical page, the governing section and the
// printed (restart-aware) page number.
type pageInfo struct {
	section *Section
	// sectionPage is the 1-based page index within the section; used to
	// apply HideFirstPage.
	sectionPage int
	printed     int
}

func (g Geometry) usableLimit() float64  { return g.PageHeight - g.BottomMargin }
func (g Geometry) charsPerLine() int {
	n := int((g.PageWidth - g.LeftMargin - g.RightMargin) / g.CharWidth)
	if n < 1 {
		n = 1
	}
	return n
}

// layout recomputes per-atom positions and per-page numbering after a
// mutation. Positions are pre-placement: pos[i] is where atom i begins,
// and pos[len(atoms)] is the cursor state at End.
func (b *Buffer) layout() {
	if !b.layoutDirty {
		return
	}
	limit := b.geo.usableLimit()
	perLine := b.geo.charsPerLine()

	sections := b.Sections()
	sectIdx := 0

	b.pos = make([]position, len(b.atoms)+1)
	b.pages = b.pages[:0]

	page := 1
	y := b.geo.TopMargin
	col := 0
	sectPage := 1
	b.pages = append(b.pages, pageInfo{section: sections[0], sectionPage: 1})

	newPage := func(newSection bool) {
		page++
		y = b.geo.TopMargin
		col = 0
		if newSection {
			sectPage = 1
		} else {
			sectPage++
		}
		b.pages = append(b.pages, pageInfo{section: sections[sectIdx], sectionPage: sectPage})
	}
	endLine := func() {
		y += b.geo.LineHeight
		col = 0
		if y+b.geo.LineHeight > limit {
			newPage(false)
		}
	}

	for i := range b.atoms {
		b.pos[i] = position{page: page, y: y}
		a := &b.atoms[i]
		switch a.kind {
		case atomRune:
			if a.r == '\n' {
				endLine()
				continue
			}
			col++
			if col >= perLine {
				endLine()
			}
		case atomImage:
			if col > 0 {
				endLine()
			}
			if y+a.img.Height > limit && y > b.geo.TopMargin {
				newPage(false)
			}
			// Record the post-move position: the image renders where it
			// landed, not where the cursor stood before the host moved it.
			b.pos[i] = position{page: page, y: y}
			y += a.img.Height
			if y+b.geo.LineHeight > limit {
				newPage(false)
			}
		case atomPageBreak:
			newPage(false)
		case atomSectionBreak:
			sectIdx++
			newPage(true)
		}
	}
	b.pos[len(b.atoms)] = position{page: page, y: y}

	// Printed numbers honor per-section restarts; a section without a
	// restart continues the running sequence regardless of style changes.
	counter := 0
	for i := range b.pages {
		p := &b.pages[i]
		if p.sectionPage == 1 && p.section.Restart {
			start := p.section.Start
			if start < 1 {
				start = 1
			}
			counter = start
		} else {
			counter++
		}
		p.printed = counter
	}
	b.layoutDirty = false
}

// VerticalPosition reports the vertical position, in points from the top
// of the page, at which content inserted at off would begin.
func (b *Buffer) VerticalPosition(off int) (float64, error) {
	b.layout()
	off = b.clampOffset(off)
	return b.pos[off].y, nil
}

// PageExtent reports the page height and bottom margin in points.
func (b *Buffer) PageExtent() (height, bottom float64, err error) {
	return b.geo.PageHeight, b.geo.BottomMargin, nil
}

// PageNumber reports the absolute 1-based physical page containing off.
func (b *Buffer) PageNumber(off int) int {
	b.layout()
	return b.pos[b.clampOffset(off)].page
}

// AdjustedPageNumber reports the page number at off as it would print,
// honoring section numbering restarts. This is the restart-aware query
// the pagination resolver depends on.
func (b *Buffer) AdjustedPageNumber(off int) (int, error) {
	b.layout()
	return b.pages[b.pos[b.clampOffset(off)].page-1].printed, nil
}

// PageCount reports the number of laid-out pages.
func (b *Buffer) PageCount() int {
	b.layout()
	return len(b.pages)
}

// PageNumbering describes how one physical page prints its number.
type PageNumbering struct {
	Section *Section
	// Printed is the restart-aware number; Text is it rendered in the
	// section's style, empty when the page shows no number.
	Printed int
	Text    string
}

// Numbering reports the printed-number state of the 1-based physical page.
func (b *Buffer) Numbering(page int) PageNumbering {
	b.layout()
	if page < 1 || page > len(b.pages) {
		return PageNumbering{Section: b.last}
	}
	p := b.pages[page-1]
	out := PageNumbering{Section: p.section, Printed: p.printed}
	if p.section.Style == NumberNone {
		return out
	}
	if p.section.HideFirstPage && p.sectionPage == 1 {
		return out
	}
	out.Text = p.section.FormatNumber(p.printed)
	return out
}

func (b *Buffer) clampOffset(off int) int {
	if off < 0 {
		return 0
	}
	if off > len(b.atoms) {
		return len(b.atoms)
	}
	return off
}
