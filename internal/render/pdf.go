// Package render writes a PDF preview of a document buffer with
// jung-kurt/gofpdf, reproducing the host's pagination: pages, vertical
// positions and printed page numbers come from the buffer's layout
// engine, not from the PDF library's own flow.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreport/internal/document"
)

type segment struct {
	text  string
	style document.Style
}

type line struct {
	page     int
	y        float64
	segments []segment
}

// WritePDF renders the buffer to a PDF file at path.
func WritePDF(buf *document.Buffer, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	geo := buf.Geometry()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(geo.LeftMargin, geo.TopMargin, geo.RightMargin)
	pdf.SetAutoPageBreak(false, geo.BottomMargin)
	pdf.SetFont("Times", "", 12)

	pdf.SetHeaderFunc(func() {
		n := buf.Numbering(pdf.PageNo())
		if n.Section == nil || n.Section.Header == "" {
			return
		}
		pdf.SetFont("Times", "", 10)
		pdf.Text(geo.LeftMargin, geo.TopMargin-8, n.Section.Header)
	})
	pdf.SetFooterFunc(func() {
		n := buf.Numbering(pdf.PageNo())
		if n.Section == nil {
			return
		}
		pdf.SetFont("Times", "", 10)
		y := geo.PageHeight - geo.BottomMargin + 14
		if n.Section.FooterLeft != "" {
			pdf.Text(geo.LeftMargin, y, n.Section.FooterLeft)
		}
		if n.Section.FooterCenter != "" {
			w := pdf.GetStringWidth(n.Section.FooterCenter)
			pdf.Text((geo.PageWidth-w)/2, y, n.Section.FooterCenter)
		}
		if n.Text != "" {
			w := pdf.GetStringWidth(n.Text)
			pdf.Text(geo.PageWidth-geo.RightMargin-w, y, n.Text)
		}
	})

	r := &renderer{buf: buf, geo: geo, pdf: pdf}
	r.render()

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

type renderer struct {
	buf  *document.Buffer
	geo  document.Geometry
	pdf  *gofpdf.Fpdf
	page int
	cur  *line
}

func (r *renderer) render() {
	r.buf.EachAtom(func(off int, a document.AtomView) {
		switch a.Kind {
		case document.AtomText:
			if a.Rune == '\n' {
				r.flush()
				return
			}
			page := r.buf.PageNumber(off)
			y, _ := r.buf.VerticalPosition(off)
			if r.cur != nil && (r.cur.page != page || r.cur.y != y) {
				r.flush()
			}
			if r.cur == nil {
				r.cur = &line{page: page, y: y}
			}
			n := len(r.cur.segments)
			if n > 0 && r.cur.segments[n-1].style == a.Style {
				r.cur.segments[n-1].text += string(a.Rune)
			} else {
				r.cur.segments = append(r.cur.segments, segment{text: string(a.Rune), style: a.Style})
			}
		case document.AtomImage:
			r.flush()
			r.drawImage(off, a.Image)
		case document.AtomPageBreak, document.AtomSectionBreak:
			r.flush()
		}
	})
	r.flush()
	// A trailing empty document still gets its first page.
	if r.page == 0 {
		r.pdf.AddPage()
	}
}

func (r *renderer) ensurePage(page int) {
	for r.page < page {
		r.pdf.AddPage()
		r.page++
	}
}

func (r *renderer) flush() {
	if r.cur == nil {
		return
	}
	l := r.cur
	r.cur = nil
	r.ensurePage(l.page)

	total := 0.0
	for _, s := range l.segments {
		r.setFont(s.style)
		total += r.pdf.GetStringWidth(s.text)
	}
	x := r.geo.LeftMargin
	if len(l.segments) > 0 && l.segments[0].style.Align == document.AlignCenter {
		x = (r.geo.PageWidth - total) / 2
	}
	baseline := l.y + r.geo.LineHeight - 4
	for _, s := range l.segments {
		r.setFont(s.style)
		r.pdf.Text(x, baseline, strings.ReplaceAll(s.text, "\t", "    "))
		x += r.pdf.GetStringWidth(s.text)
	}
}

func (r *renderer) drawImage(off int, img *document.Image) {
	page := r.buf.PageNumber(off)
	y, _ := r.buf.VerticalPosition(off)
	r.ensurePage(page)

	switch strings.ToLower(filepath.Ext(img.Path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		// gofpdf cannot embed this format; keep the reserved space empty.
		log.Warn().Str("image", img.Path).Msg("format not embeddable in PDF preview")
		return
	}
	x := r.geo.LeftMargin
	if img.Center {
		x = (r.geo.PageWidth - img.Width) / 2
	}
	r.pdf.ImageOptions(img.Path, x, y, img.Width, img.Height, false,
		gofpdf.ImageOptions{ReadDpi: false}, 0, "")
}

func (r *renderer) setFont(st document.Style) {
	flags := ""
	if st.Bold {
		flags += "B"
	}
	if st.Italic {
		flags += "I"
	}
	if st.Underline {
		flags += "U"
	}
	r.pdf.SetFont("Times", flags, st.EffectiveSize())
}
