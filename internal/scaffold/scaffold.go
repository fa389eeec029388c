// Package scaffold builds the fixed front matter of the report document:
// title page, certificate, acknowledgement and abstract, each placeholder
// registered as a named region and declared in the field map. The
// variable tail (table of contents, chapters, references) is built and
// rebuilt separately by the structure package.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreport/internal/document"
	"github.com/hyperifyio/goreport/internal/figures"
	"github.com/hyperifyio/goreport/internal/region"
)

// MarkerName is the region denoting the end of the fixed front matter.
// Tail regeneration deletes everything after it.
const MarkerName = "Part1End"

// Placeholder is the visible text of an unfilled region.
const Placeholder = "___"

// Boilerplate carries the institution-specific fixed strings. Defaults
// match the report template this generator produces.
type Boilerplate struct {
	University        string `yaml:"university"`
	UniversityAddress string `yaml:"universityAddress"`
	Institute         string `yaml:"institute"`
	InstituteCity     string `yaml:"instituteCity"`
	Dean              string `yaml:"dean"`
	Principal         string `yaml:"principal"`
	FooterLabel       string `yaml:"footerLabel"`
	ProjectKind       string `yaml:"projectKind"`
}

// DefaultBoilerplate returns the stock institution strings.
func DefaultBoilerplate() Boilerplate {
	return Boilerplate{
		University:        "VISVESVARAYA TECHNOLOGICAL UNIVERSITY",
		UniversityAddress: "“Jnana Sangama”, Belagavi – 590 018",
		Institute:         "BNMIT",
		InstituteCity:     "Bengaluru",
		Dean:              "Prof. Eishwar N Maanay",
		Principal:         "Dr. S Y Kulkarni",
		FooterLabel:       "Dept. of CSE, BNMIT",
		ProjectKind:       "A MINI PROJECT",
	}
}

// Scaffolder writes the front matter into a fresh document buffer.
type Scaffolder struct {
	buf    *document.Buffer
	reg    *region.Registry
	fields region.FieldMap
	assets string
	bp     Boilerplate
}

// New returns a scaffolder over the given host buffer and registry.
// assets is the directory holding the institution logos; missing logos
// are skipped.
func New(buf *document.Buffer, reg *region.Registry, fields region.FieldMap, assets string, bp Boilerplate) *Scaffolder {
	return &Scaffolder{buf: buf, reg: reg, fields: fields, assets: assets, bp: bp}
}

// Build writes the front matter. It is idempotent: a document that
// already carries the front-matter marker is left untouched.
func (s *Scaffolder) Build() error {
	if s.reg.Exists(MarkerName) {
		return nil
	}
	c := &cursor{s: s, at: s.buf.End()}

	s.titlePage(c)
	s.certificate(c)
	s.acknowledgement(c)
	s.abstract(c)

	// Front matter ends with a section break; the marker region spans the
	// break atom so tail regeneration can delete from just past it while
	// the marker itself survives.
	breakAt := c.at
	c.sectionBreak()
	if _, err := s.reg.Create(MarkerName, region.Span{Start: breakAt, End: breakAt + 1}); err != nil {
		return fmt.Errorf("scaffold: marker: %w", err)
	}
	return c.err
}

// cursor appends content at the end of the buffer, carrying the first
// region-creation error without aborting the remaining static text.
type cursor struct {
	s   *Scaffolder
	at  int
	err error
}

func (c *cursor) text(t string, st document.Style) {
	c.at += c.s.buf.InsertText(c.at, t, st)
}

// placeholder inserts the placeholder text and registers the region over
// it. Newline regions own their trailing newline, matching how the
// substitution engine re-appends it on replacement.
func (c *cursor) placeholder(name string, newline bool, st document.Style) {
	content := Placeholder
	if newline {
		content += "\n"
	}
	start := c.at
	c.at += c.s.buf.InsertText(c.at, content, st)
	if _, err := c.s.reg.Create(name, region.Span{Start: start, End: c.at}); err != nil {
		if c.err == nil {
			c.err = fmt.Errorf("scaffold: %w", err)
		}
		return
	}
	c.s.fields.Register(name)
}

// logo inserts an institution image scaled to widthPt, skipping silently
// when the asset is not installed.
func (c *cursor) logo(name string, widthPt float64) {
	path := filepath.Join(c.s.assets, name)
	if _, err := os.Stat(path); err != nil {
		return
	}
	w, h, err := figures.NaturalSize(path)
	if err != nil {
		log.Warn().Err(err).Str("asset", name).Msg("logo unreadable; skipped")
		return
	}
	h = h * widthPt / w
	c.at += c.s.buf.InsertImage(c.at, document.Image{Path: path, Width: widthPt, Height: h, Center: true})
}

func (c *cursor) pageBreak() {
	c.at += c.s.buf.InsertBreak(c.at, document.PageBreak)
}

func (c *cursor) sectionBreak() {
	c.at += c.s.buf.InsertBreak(c.at, document.SectionBreak)
}

func (s *Scaffolder) titlePage(c *cursor) {
	heading := document.Style{Size: 15, Bold: true, Align: document.AlignCenter}
	small := document.Style{Size: 11, Align: document.AlignCenter}
	smallBold := document.Style{Size: 11, Bold: true, Align: document.AlignCenter}

	c.text(s.bp.University+"\n"+s.bp.UniversityAddress+"\n", heading)
	c.logo("VTU_Logo.png", document.CmToPt(4))
	c.text(s.bp.ProjectKind+"\nOn\n", small)
	c.placeholder("ProjectTitle", true, heading)
	c.text("Submitted in partial fulfilment of the requirements for the award of degree\n",
		document.Style{Size: 11, Italic: true, Align: document.AlignCenter})
	c.text("Bachelor of Engineering\nIn\n", small)
	c.placeholder("Department", false, smallBold)
	c.text("\nSubmitted by\n", small)
	c.placeholder("NameAndUSN", true, smallBold)
	c.text("Under the guidance of\n", small)
	c.placeholder("GuideName", false, smallBold)
	c.text("\n", small)
	c.placeholder("Designation", false, small)
	c.text("\n", small)
	c.logo("BNMIT_Logo.png", document.CmToPt(5))
	c.placeholder("Department_2", true, smallBold)
	c.logo("BNMIT_Text.png", document.CmToPt(15))
	c.pageBreak()
}

func (s *Scaffolder) certificate(c *cursor) {
	body := document.Style{Size: 12}
	bold := document.Style{Size: 12, Bold: true}
	center := document.Style{Size: 12, Align: document.AlignCenter}
	centerBold := document.Style{Size: 12, Bold: true, Align: document.AlignCenter}

	c.logo("BNMIT_Text.png", document.CmToPt(15))
	c.placeholder("Department_3", true, centerBold)
	c.logo("BNMIT_Logo.png", document.CmToPt(5))
	c.text("CERTIFICATE\n", document.Style{Size: 15, Bold: true, Underline: true, Align: document.AlignCenter})

	c.text("This is to certify that the Mini project work entitled ", body)
	c.placeholder("ProjectTitle_2", false, bold)
	c.text(" is a bonafide work carried out by ", body)
	c.placeholder("NameAndUSN_2", true, bold)
	c.text(" in partial fulfilment for the award of degree of ", body)
	c.text("Bachelor of Engineering", bold)
	c.text(" in ", body)
	c.placeholder("Department_4", false, bold)
	c.text(" of the ", body)
	c.text("Visvesvaraya Technological University, Belagavi", bold)
	c.text(" during the year ", body)
	c.placeholder("Year", false, bold)
	c.text(". It is certified that all corrections/suggestions indicated for Internal Assessment "+
		"have been incorporated in the report deposited in the departmental library. The project "+
		"report has been approved as it satisfies the academic requirements in respect of Project "+
		"work prescribed for the said Degree.\n", body)

	// Signature block. The host carries no table primitive; the three
	// signatory columns are stacked.
	c.placeholder("GuideName_2", false, centerBold)
	c.text("\n", center)
	c.placeholder("Designation_2", false, center)
	c.text(",\n", center)
	c.placeholder("Department_6", false, center)
	c.text(",\n"+s.bp.Institute+", "+s.bp.InstituteCity+"\n", center)

	c.placeholder("Department_5", false, centerBold)
	c.text("\nProfessor and HOD,\n", center)
	c.placeholder("Department_7", false, center)
	c.text(",\n"+s.bp.Institute+", "+s.bp.InstituteCity+"\n", center)

	c.text(s.bp.Principal+"\nAdditional Director\nand Principal,\n"+s.bp.Institute+", "+s.bp.InstituteCity+"\n", centerBold)

	c.text("Name\tSignature with Date\n", bold)
	c.text("Examiner 1:\nExaminer 2:\n", body)
	c.pageBreak()
}

func (s *Scaffolder) acknowledgement(c *cursor) {
	body := document.Style{Size: 12}
	bold := document.Style{Size: 12, Bold: true}

	c.text("ACKNOWLEDGEMENT\n", document.Style{Size: 14, Bold: true, Align: document.AlignCenter})

	c.text("I take this opportunity to express my heartfelt gratitude to all those who supported "+
		"and guided me throughout the development of this project, ", body)
	c.placeholder("ProjectTitle_Ack", false, bold)
	c.text(". Their contributions and encouragement were invaluable to the successful completion "+
		"of this endeavour.\n\n", body)

	c.text("First and foremost, I would like to extend my sincere thanks to the Dean of our "+
		"institution, "+s.bp.Dean+", for providing the resources and a conducive environment to "+
		"undertake this project. Their constant support and emphasis on innovation inspired me to "+
		"push my boundaries.\n\n", body)

	c.text("I am immensely grateful to our Head of the Department, ", body)
	c.placeholder("HODName_Ack", false, bold)
	c.text(", ", body)
	c.placeholder("Department_9", false, body)
	c.text(" for their unwavering support and guidance. Their insights and suggestions played a "+
		"crucial role in shaping the direction of this project.\n\n", body)

	c.text("A special note of appreciation goes to my Guide, ", body)
	c.placeholder("GuideName_Ack", false, bold)
	c.text(", ", body)
	c.placeholder("Designation_Ack", false, body)
	c.text(" for their technical expertise and constructive feedback. Their patient guidance, "+
		"timely advice, and constant encouragement helped me overcome challenges and refine the "+
		"project to its current form.\n\n", body)

	c.text("I also wish to express my deepest gratitude to my parents for their unconditional "+
		"love, support, and encouragement throughout this journey.\n\n", body)

	c.text("Lastly, I would like to thank my peers, friends, and everyone who contributed "+
		"directly or indirectly to the successful completion of this project.\n", body)
	c.pageBreak()
}

func (s *Scaffolder) abstract(c *cursor) {
	c.text("ABSTRACT\n", document.Style{Size: 14, Bold: true, Align: document.AlignCenter})
	c.placeholder("Abstract", false, document.Style{Size: 12})
	c.text("\n", document.Style{Size: 12})
}
