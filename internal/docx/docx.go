// Package docx persists a document buffer as a minimal OOXML .docx
// package: the main document part with per-section page-numbering
// properties, header and footer parts, and embedded media.
package docx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/hidez8891/zip"

	"github.com/hyperifyio/goreport/internal/document"
)

const (
	nsW  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA  = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsP  = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relTypeDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeHeader = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	relTypeFooter = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"

	emuPerPt   = 12700
	twipsPerPt = 20
)

// Write saves the buffer to path as a .docx file.
func Write(buf *document.Buffer, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	defer f.Close()

	w := &writer{buf: buf, imageRel: make(map[string]string)}
	zw := zip.NewWriter(f)
	if err := w.writeParts(zw); err != nil {
		zw.Close()
		return fmt.Errorf("docx: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("docx: %w", err)
	}
	return f.Close()
}

type sectionRefs struct {
	section  *document.Section
	headerID string
	footerID string
	firstID  string
}

type writer struct {
	buf      *document.Buffer
	imageRel map[string]string
	images   []string
	sections []sectionRefs
	relSeq   int
}

func (w *writer) writeParts(zw *zip.Writer) error {
	w.assignSectionRels()
	doc := w.buildDocument()

	if err := writeXML(zw, "word/document.xml", doc); err != nil {
		return err
	}
	if err := writeXML(zw, "[Content_Types].xml", w.contentTypes()); err != nil {
		return err
	}
	if err := writeXML(zw, "_rels/.rels", packageRels()); err != nil {
		return err
	}
	if err := writeXML(zw, "word/_rels/document.xml.rels", w.documentRels()); err != nil {
		return err
	}
	if err := writeXML(zw, "word/styles.xml", stylesPart()); err != nil {
		return err
	}
	for _, s := range w.sections {
		if s.headerID != "" {
			if err := writeXML(zw, "word/"+partName(s.headerID, "header"), headerPart(s.section.Header)); err != nil {
				return err
			}
		}
		if s.footerID != "" {
			if err := writeXML(zw, "word/"+partName(s.footerID, "footer"), footerPart(s.section, false)); err != nil {
				return err
			}
		}
		if s.firstID != "" {
			if err := writeXML(zw, "word/"+partName(s.firstID, "footer"), footerPart(s.section, true)); err != nil {
				return err
			}
		}
	}
	for _, path := range w.images {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("embed %s: %w", path, err)
		}
		part, err := zw.Create("word/media/" + mediaName(w.imageRel[path], path))
		if err != nil {
			return err
		}
		if _, err := part.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// assignSectionRels allocates relationship ids for each section's header
// and footer parts. Sections with no header or footer content get none.
func (w *writer) assignSectionRels() {
	for _, sect := range w.buf.Sections() {
		refs := sectionRefs{section: sect}
		if sect.Header != "" {
			refs.headerID = w.nextRel()
		}
		if sect.FooterLeft != "" || sect.FooterCenter != "" || (sect.PageField && sect.Style != document.NumberNone) {
			refs.footerID = w.nextRel()
			if sect.HideFirstPage {
				refs.firstID = w.nextRel()
			}
		}
		w.sections = append(w.sections, refs)
	}
}

func (w *writer) nextRel() string {
	w.relSeq++
	return fmt.Sprintf("rId%d", 100+w.relSeq)
}

// buildDocument walks the buffer and emits the body: a run of paragraphs,
// each section break closing its section with an inline sectPr, and the
// trailing section's sectPr at body level.
func (w *writer) buildDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsP)
	body := root.CreateElement("w:body")

	sectIdx := 0
	p := newParagraph(body)
	var run *strings.Builder
	var runStyle document.Style
	flushRun := func() {
		if run != nil && run.Len() > 0 {
			appendRun(p.el, run.String(), runStyle)
		}
		run = nil
	}

	w.buf.EachAtom(func(off int, a document.AtomView) {
		switch a.Kind {
		case document.AtomText:
			if a.Rune == '\n' {
				flushRun()
				p.close(nil)
				p = newParagraph(body)
				return
			}
			if run == nil || runStyle != a.Style {
				flushRun()
				run = &strings.Builder{}
				runStyle = a.Style
				p.style = a.Style
			}
			run.WriteRune(a.Rune)
		case document.AtomImage:
			flushRun()
			w.appendImage(p.el, a.Image)
		case document.AtomPageBreak:
			flushRun()
			br := p.el.CreateElement("w:r").CreateElement("w:br")
			br.CreateAttr("w:type", "page")
		case document.AtomSectionBreak:
			flushRun()
			p.close(w.sectPr(sectIdx, w.buf.Geometry()))
			sectIdx++
			p = newParagraph(body)
		}
	})
	flushRun()
	p.close(nil)
	body.AddChild(w.sectPr(sectIdx, w.buf.Geometry()))
	return doc
}

type paragraph struct {
	el    *etree.Element
	style document.Style
}

func newParagraph(body *etree.Element) *paragraph {
	return &paragraph{el: body.CreateElement("w:p")}
}

// close prepends the paragraph properties, including an inline sectPr for
// a section-closing paragraph.
func (p *paragraph) close(sectPr *etree.Element) {
	pPr := etree.NewElement("w:pPr")
	if sectPr != nil {
		pPr.AddChild(sectPr)
	}
	jc := pPr.CreateElement("w:jc")
	jc.CreateAttr("w:val", alignValue(p.style.Align))
	p.el.InsertChildAt(0, pPr)
}

func alignValue(a document.Alignment) string {
	switch a {
	case document.AlignLeft:
		return "left"
	case document.AlignCenter:
		return "center"
	case document.AlignRight:
		return "right"
	default:
		return "both"
	}
}

func appendRun(p *etree.Element, text string, st document.Style) {
	r := p.CreateElement("w:r")
	rPr := r.CreateElement("w:rPr")
	sz := rPr.CreateElement("w:sz")
	sz.CreateAttr("w:val", fmt.Sprintf("%d", int(st.EffectiveSize()*2)))
	if st.Bold {
		rPr.CreateElement("w:b")
	}
	if st.Italic {
		rPr.CreateElement("w:i")
	}
	if st.Underline {
		rPr.CreateElement("w:u").CreateAttr("w:val", "single")
	}
	// Tabs split the text into tab-separated w:t elements.
	parts := strings.Split(text, "\t")
	for i, part := range parts {
		if i > 0 {
			r.CreateElement("w:tab")
		}
		if part == "" {
			continue
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(part)
	}
}

func (w *writer) appendImage(p *etree.Element, img *document.Image) {
	relID, ok := w.imageRel[img.Path]
	if !ok {
		relID = w.nextRel()
		w.imageRel[img.Path] = relID
		w.images = append(w.images, img.Path)
	}
	cx := int64(img.Width * emuPerPt)
	cy := int64(img.Height * emuPerPt)

	r := p.CreateElement("w:r")
	inline := r.CreateElement("w:drawing").CreateElement("wp:inline")
	extent := inline.CreateElement("wp:extent")
	extent.CreateAttr("cx", fmt.Sprintf("%d", cx))
	extent.CreateAttr("cy", fmt.Sprintf("%d", cy))
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", relID[3:])
	docPr.CreateAttr("name", filepath.Base(img.Path))

	graphic := inline.CreateElement("a:graphic")
	gd := graphic.CreateElement("a:graphicData")
	gd.CreateAttr("uri", nsP)
	pic := gd.CreateElement("pic:pic")
	nv := pic.CreateElement("pic:nvPicPr")
	cNv := nv.CreateElement("pic:cNvPr")
	cNv.CreateAttr("id", relID[3:])
	cNv.CreateAttr("name", filepath.Base(img.Path))
	nv.CreateElement("pic:cNvPicPr")
	blipFill := pic.CreateElement("pic:blipFill")
	blip := blipFill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", relID)
	blipFill.CreateElement("a:stretch").CreateElement("a:fillRect")
	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	xfrm.CreateElement("a:off").CreateAttr("x", "0")
	ext := xfrm.CreateElement("a:ext")
	ext.CreateAttr("cx", fmt.Sprintf("%d", cx))
	ext.CreateAttr("cy", fmt.Sprintf("%d", cy))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
}

// sectPr emits the properties of section idx: page size and margins,
// header/footer references, page-number format and restart, and the
// distinct-first-page marker.
func (w *writer) sectPr(idx int, geo document.Geometry) *etree.Element {
	refs := w.sections[idx]
	sect := refs.section

	el := etree.NewElement("w:sectPr")
	if refs.headerID != "" {
		h := el.CreateElement("w:headerReference")
		h.CreateAttr("w:type", "default")
		h.CreateAttr("r:id", refs.headerID)
	}
	if refs.footerID != "" {
		f := el.CreateElement("w:footerReference")
		f.CreateAttr("w:type", "default")
		f.CreateAttr("r:id", refs.footerID)
	}
	if refs.firstID != "" {
		f := el.CreateElement("w:footerReference")
		f.CreateAttr("w:type", "first")
		f.CreateAttr("r:id", refs.firstID)
	}

	pgSz := el.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", fmt.Sprintf("%d", int(geo.PageWidth*twipsPerPt)))
	pgSz.CreateAttr("w:h", fmt.Sprintf("%d", int(geo.PageHeight*twipsPerPt)))
	pgMar := el.CreateElement("w:pgMar")
	pgMar.CreateAttr("w:top", fmt.Sprintf("%d", int(geo.TopMargin*twipsPerPt)))
	pgMar.CreateAttr("w:bottom", fmt.Sprintf("%d", int(geo.BottomMargin*twipsPerPt)))
	pgMar.CreateAttr("w:left", fmt.Sprintf("%d", int(geo.LeftMargin*twipsPerPt)))
	pgMar.CreateAttr("w:right", fmt.Sprintf("%d", int(geo.RightMargin*twipsPerPt)))

	if sect.Style != document.NumberNone {
		pgNum := el.CreateElement("w:pgNumType")
		if sect.Style == document.NumberRoman {
			pgNum.CreateAttr("w:fmt", "lowerRoman")
		} else {
			pgNum.CreateAttr("w:fmt", "decimal")
		}
		if sect.Restart {
			start := sect.Start
			if start < 1 {
				start = 1
			}
			pgNum.CreateAttr("w:start", fmt.Sprintf("%d", start))
		}
	}
	if sect.HideFirstPage {
		el.CreateElement("w:titlePg")
	}
	return el
}

func (w *writer) contentTypes() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")
	addDefault := func(ext, mime string) {
		d := types.CreateElement("Default")
		d.CreateAttr("Extension", ext)
		d.CreateAttr("ContentType", mime)
	}
	addDefault("rels", "application/vnd.openxmlformats-package.relationships+xml")
	addDefault("xml", "application/xml")
	addDefault("png", "image/png")
	addDefault("jpg", "image/jpeg")
	addDefault("jpeg", "image/jpeg")
	addDefault("gif", "image/gif")
	addDefault("bmp", "image/bmp")
	addDefault("webp", "image/webp")
	addDefault("tif", "image/tiff")
	addDefault("tiff", "image/tiff")

	addOverride := func(part, mime string) {
		o := types.CreateElement("Override")
		o.CreateAttr("PartName", part)
		o.CreateAttr("ContentType", mime)
	}
	addOverride("/word/document.xml",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml")
	addOverride("/word/styles.xml",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml")
	for _, s := range w.sections {
		if s.headerID != "" {
			addOverride("/word/"+partName(s.headerID, "header"),
				"application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml")
		}
		if s.footerID != "" {
			addOverride("/word/"+partName(s.footerID, "footer"),
				"application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml")
		}
		if s.firstID != "" {
			addOverride("/word/"+partName(s.firstID, "footer"),
				"application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml")
		}
	}
	return doc
}

func packageRels() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	rel := rels.CreateElement("Relationship")
	rel.CreateAttr("Id", "rId1")
	rel.CreateAttr("Type", relTypeDoc)
	rel.CreateAttr("Target", "word/document.xml")
	return doc
}

func (w *writer) documentRels() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
	add := func(id, typ, target string) {
		rel := rels.CreateElement("Relationship")
		rel.CreateAttr("Id", id)
		rel.CreateAttr("Type", typ)
		rel.CreateAttr("Target", target)
	}
	add("rId1", relTypeStyles, "styles.xml")
	for _, path := range w.images {
		id := w.imageRel[path]
		add(id, relTypeImage, "media/"+mediaName(id, path))
	}
	for _, s := range w.sections {
		if s.headerID != "" {
			add(s.headerID, relTypeHeader, partName(s.headerID, "header"))
		}
		if s.footerID != "" {
			add(s.footerID, relTypeFooter, partName(s.footerID, "footer"))
		}
		if s.firstID != "" {
			add(s.firstID, relTypeFooter, partName(s.firstID, "footer"))
		}
	}
	return doc
}

func stylesPart() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	styles := doc.CreateElement("w:styles")
	styles.CreateAttr("xmlns:w", nsW)
	rPr := styles.CreateElement("w:docDefaults").
		CreateElement("w:rPrDefault").
		CreateElement("w:rPr")
	fonts := rPr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", "Times New Roman")
	fonts.CreateAttr("w:hAnsi", "Times New Roman")
	rPr.CreateElement("w:sz").CreateAttr("w:val", "24")
	return doc
}

func headerPart(title string) *etree.Document {
	doc := newHFDocument("w:hdr")
	p := doc.Root().CreateElement("w:p")
	p.CreateElement("w:pPr").CreateElement("w:jc").CreateAttr("w:val", "left")
	t := p.CreateElement("w:r").CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(title)
	return doc
}

// footerPart builds the three-cell footer: the fixed label on the left, a
// centered year, and a live page-number field on the right, laid out with
// tab stops. The first-page variant is empty when the section hides its
// first printed number.
func footerPart(sect *document.Section, firstPage bool) *etree.Document {
	doc := newHFDocument("w:ftr")
	p := doc.Root().CreateElement("w:p")
	if firstPage {
		return doc
	}
	pPr := p.CreateElement("w:pPr")
	tabs := pPr.CreateElement("w:tabs")
	center := tabs.CreateElement("w:tab")
	center.CreateAttr("w:val", "center")
	center.CreateAttr("w:pos", "4680")
	right := tabs.CreateElement("w:tab")
	right.CreateAttr("w:val", "right")
	right.CreateAttr("w:pos", "9360")

	r := p.CreateElement("w:r")
	if sect.FooterLeft != "" {
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(sect.FooterLeft)
	}
	r.CreateElement("w:tab")
	if sect.FooterCenter != "" {
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(sect.FooterCenter)
	}
	r.CreateElement("w:tab")
	if sect.PageField && sect.Style != document.NumberNone {
		fld := p.CreateElement("w:fldSimple")
		fld.CreateAttr("w:instr", " PAGE ")
	}
	return doc
}

func newHFDocument(rootName string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement(rootName)
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	return doc
}

func partName(relID, kind string) string {
	return kind + relID[3:] + ".xml"
}

func mediaName(relID, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = ".png"
	}
	return "image" + relID[3:] + ext
}

func writeXML(zw *zip.Writer, name string, doc *etree.Document) error {
	part, err := zw.Create(name)
	if err != nil {
		return err
	}
	doc.Indent(1)
	if _, err := doc.WriteTo(part); err != nil {
		return err
	}
	return nil
}
