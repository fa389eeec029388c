// Package structure builds and rebuilds the variable tail of the report
// document — table of contents, chapters, references — and resolves the
// table-of-contents page numbers once pagination has stabilized.
package structure

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreport/internal/document"
	"github.com/hyperifyio/goreport/internal/region"
	"github.com/hyperifyio/goreport/internal/scaffold"
)

// titlePadding vertically centers the chapter label on its half-page.
const titlePadding = 9

// Builder regenerates the tail after the front-matter marker.
type Builder struct {
	buf    *document.Buffer
	reg    *region.Registry
	fields region.FieldMap

	chapters int
}

// NewBuilder returns a tail builder over the given host buffer and
// registry.
func NewBuilder(buf *document.Buffer, reg *region.Registry, fields region.FieldMap) *Builder {
	return &Builder{buf: buf, reg: reg, fields: fields}
}

// Chapters reports the chapter count of the last built tail.
func (b *Builder) Chapters() int { return b.chapters }

// RebuildTail deletes any previously built tail and constructs a fresh
// one for the given chapter count: TOC, chapter sections, references,
// and the per-section page numbering. Safe to repeat for any count; a
// previous tail's regions and sections never survive.
func (b *Builder) RebuildTail(chapters int) error {
	if chapters < 1 {
		return fmt.Errorf("structure: chapter count %d out of range", chapters)
	}
	marker, err := b.reg.Resolve(scaffold.MarkerName)
	if err != nil {
		return fmt.Errorf("structure: front matter not scaffolded: %w", err)
	}

	// Drop tail regions first so the deletion splice does not clamp them
	// into nonsense spans, then delete the content. Section properties of
	// orphaned tail sections travel with their break atoms.
	if marker.End < b.buf.End() {
		dropped := b.reg.DropFrom(marker.End)
		b.fields.Drop(dropped)
		b.buf.Delete(marker.End, b.buf.End())
	}

	at := b.buf.End()
	at = b.toc(at, chapters)
	for i := 1; i <= chapters; i++ {
		at = b.chapter(at, i, chapters)
	}
	b.references(at)

	b.chapters = chapters
	return nil
}

// toc writes the table-of-contents section: a heading and one row per
// chapter plus a references row, the title and page cells of each row
// registered as regions.
func (b *Builder) toc(at int, chapters int) int {
	heading := document.Style{Size: 14, Bold: true, Align: document.AlignCenter}
	row := document.Style{Size: 12, Align: document.AlignLeft}
	rowBold := document.Style{Size: 12, Bold: true, Align: document.AlignLeft}

	at += b.buf.InsertText(at, "Table of Contents\n", heading)
	at += b.buf.InsertText(at, "S.No\tTitle\tPage No\n", rowBold)
	for i := 1; i <= chapters; i++ {
		at += b.buf.InsertText(at, strconv.Itoa(i)+"\t", row)
		at = b.cell(at, fmt.Sprintf("Chapter%dTitle", i), row)
		at += b.buf.InsertText(at, "\t", row)
		at = b.cell(at, fmt.Sprintf("Chapter%dPage", i), row)
		at += b.buf.InsertText(at, "\n", row)
	}
	at += b.buf.InsertText(at, strconv.Itoa(chapters+1)+"\tReferences\t", row)
	at = b.cell(at, "RefPage", row)
	at += b.buf.InsertText(at, "\n", row)

	// The break ends the TOC section: lowercase Roman numerals
	// restarting at i.
	brk := at
	at += b.buf.InsertBreak(at, document.SectionBreak)
	b.configureSection(brk, &document.Section{
		Style:     document.NumberRoman,
		Restart:   true,
		Start:     1,
		PageField: true,
	})
	return at
}

// chapter writes one chapter: a vertically padded title half-page, a page
// break, the repeated heading, and the body content region, then closes
// the chapter's section.
func (b *Builder) chapter(at int, i, chapters int) int {
	title := document.Style{Size: 16, Bold: true, Align: document.AlignCenter}
	body := document.Style{Size: 12}

	for p := 0; p < titlePadding; p++ {
		at += b.buf.InsertText(at, "\n", body)
	}
	at += b.buf.InsertText(at, fmt.Sprintf("Chapter %d\n", i), title)
	at = b.cell(at, fmt.Sprintf("Chapter%dTitle_2", i), title)
	at += b.buf.InsertText(at, "\n", title)

	at += b.buf.InsertBreak(at, document.PageBreak)

	at = b.cell(at, fmt.Sprintf("Chapter%dTitle_3", i), title)
	at += b.buf.InsertText(at, "\n", title)
	at = b.cell(at, fmt.Sprintf("Chapter%dContent", i), body)
	at += b.buf.InsertText(at, "\n", body)

	// Arabic numbering: chapter 1 restarts at 1, later chapters continue
	// the sequence. Every chapter hides the number on its title half-page.
	sect := &document.Section{
		Style:         document.NumberArabic,
		HideFirstPage: true,
		PageField:     true,
	}
	if i == 1 {
		sect.Restart = true
		sect.Start = 1
	}
	brk := at
	at += b.buf.InsertBreak(at, document.SectionBreak)
	b.configureSection(brk, sect)
	return at
}

// references writes the trailing references section, which continues the
// Arabic sequence uninterrupted.
func (b *Builder) references(at int) {
	at += b.buf.InsertText(at, "REFERENCES\n",
		document.Style{Size: 16, Bold: true, Align: document.AlignCenter})
	at = b.cell(at, "References", document.Style{Size: 12})
	b.buf.InsertText(at, "\n", document.Style{Size: 12})

	sects := b.buf.Sections()
	last := sects[len(sects)-1]
	*last = document.Section{
		Style:     document.NumberArabic,
		PageField: true,
	}
}

// cell inserts a placeholder, registers it as a region and declares it in
// the field map.
func (b *Builder) cell(at int, name string, st document.Style) int {
	start := at
	at += b.buf.InsertText(at, scaffold.Placeholder, st)
	if _, err := b.reg.Create(name, region.Span{Start: start, End: at}); err != nil {
		log.Warn().Err(err).Str("region", name).Msg("tail region not registered")
		return at
	}
	b.fields.Register(name)
	return at
}

// configureSection overwrites the properties of the section terminated by
// the break at off.
func (b *Builder) configureSection(off int, sect *document.Section) {
	got, err := b.buf.SectionBefore(off)
	if err != nil {
		log.Warn().Err(err).Msg("section configuration skipped")
		return
	}
	*got = *sect
}

// ResolvePageNumbers writes each chapter's restart-aware page number into
// its table-of-contents page cell, and the references page number into
// the references row. Runs strictly after regeneration and content
// substitution; re-running is safe because the page cells are replaced
// and re-registered.
func (b *Builder) ResolvePageNumbers() error {
	for i := 1; ; i++ {
		titleName := fmt.Sprintf("Chapter%dTitle_2", i)
		sp, err := b.reg.Resolve(titleName)
		if err != nil {
			break
		}
		page, err := b.buf.AdjustedPageNumber(sp.Start)
		if err != nil {
			return fmt.Errorf("structure: page of %s: %w", titleName, err)
		}
		if _, err := b.reg.Replace(fmt.Sprintf("Chapter%dPage", i), strconv.Itoa(page)); err != nil {
			log.Warn().Err(err).Int("chapter", i).Msg("TOC page cell not updated")
		}
	}

	sp, err := b.reg.Resolve("References")
	if err != nil {
		return nil
	}
	page, err := b.buf.AdjustedPageNumber(sp.Start)
	if err != nil {
		return fmt.Errorf("structure: references page: %w", err)
	}
	if _, err := b.reg.Replace("RefPage", strconv.Itoa(page)); err != nil {
		log.Warn().Err(err).Msg("references page cell not updated")
	}
	return nil
}
