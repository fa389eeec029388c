package substitute

import (
	"testing"

	"github.com/hyperifyio/goreport/internal/document"
	"github.com/hyperifyio/goreport/internal/region"
)

type fixture struct {
	buf    *document.Buffer
	reg    *region.Registry
	fields region.FieldMap
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	buf := document.New(document.A4())
	return &fixture{buf: buf, reg: region.NewRegistry(buf), fields: region.NewFieldMap()}
}

// place appends a placeholder region the way the scaffolder does.
func (f *fixture) place(t *testing.T, name string, newline bool) {
	t.Helper()
	content := "___"
	if newline {
		content += "\n"
	}
	start := f.buf.End()
	n := f.buf.InsertText(start, content, document.Style{Size: 12})
	if _, err := f.reg.Create(name, region.Span{Start: start, End: start + n}); err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	f.fields.Register(name)
}

func (f *fixture) engine(placer FigurePlacer) *Engine {
	return NewEngine(f.buf, f.reg, f.fields, DefaultTransforms(), placer, "Dept. of CSE, BNMIT")
}

func (f *fixture) regionText(t *testing.T, name string) string {
	t.Helper()
	got, err := f.reg.Text(name)
	if err != nil {
		t.Fatalf("text %s: %v", name, err)
	}
	return got
}

func TestApplyFansOutFamily(t *testing.T) {
	f := newFixture(t)
	f.place(t, "ProjectTitle", true)
	f.place(t, "Department", false)
	f.place(t, "Department_2", true)
	f.place(t, "NameAndUSN", true)
	f.place(t, "NameAndUSN_2", false)

	e := f.engine(nil)
	err := e.Apply(map[string]string{
		"ProjectTitle": "Traffic Sign Recognition",
		"Department":   "mechanical engineering",
		"NameAndUSN":   "Asha 1BG20CS001\nBharat 1BG20CS002",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got := f.regionText(t, "ProjectTitle"); got != "Traffic Sign Recognition\n" {
		t.Fatalf("ProjectTitle = %q", got)
	}
	if got := f.regionText(t, "Department"); got != "mechanical engineering" {
		t.Fatalf("Department = %q", got)
	}
	// Department_2 uppercases regardless of input casing and owns its
	// trailing newline.
	if got := f.regionText(t, "Department_2"); got != "MECHANICAL ENGINEERING\n" {
		t.Fatalf("Department_2 = %q", got)
	}
	if got := f.regionText(t, "NameAndUSN"); got != "Asha 1BG20CS001\nBharat 1BG20CS002\n" {
		t.Fatalf("NameAndUSN = %q", got)
	}
	if got := f.regionText(t, "NameAndUSN_2"); got != "Asha 1BG20CS001, Bharat 1BG20CS002" {
		t.Fatalf("NameAndUSN_2 = %q", got)
	}
}

func TestApplyExplicitKeyOwnsItsRegion(t *testing.T) {
	f := newFixture(t)
	f.place(t, "NameAndUSN", true)
	f.place(t, "NameAndUSN_2", false)

	e := f.engine(nil)
	err := e.Apply(map[string]string{
		"NameAndUSN":   "Asha 1BG20CS001\nBharat 1BG20CS002",
		"NameAndUSN_2": "custom inline list",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := f.regionText(t, "NameAndUSN_2"); got != "custom inline list" {
		t.Fatalf("explicit key must own the region, got %q", got)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.place(t, "ProjectTitle", true)
	f.place(t, "Abstract", false)

	e := f.engine(nil)
	input := map[string]string{"ProjectTitle": "Title", "Abstract": "Short abstract."}
	if err := e.Apply(input); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	first := f.buf.Text(0, f.buf.End())
	if err := e.Apply(input); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if got := f.buf.Text(0, f.buf.End()); got != first {
		t.Fatalf("second apply changed the document:\n%q\n%q", first, got)
	}
}

func TestApplyToleratesUnknownAndMissing(t *testing.T) {
	f := newFixture(t)
	f.place(t, "ProjectTitle", true)
	// A declared field whose region has since disappeared.
	f.place(t, "Abstract", false)
	f.reg.Delete("Abstract")

	e := f.engine(nil)
	err := e.Apply(map[string]string{
		"ProjectTitle": "Title",
		"Abstract":     "Ghost",
		"NoSuchField":  "ignored",
	})
	if err != nil {
		t.Fatalf("apply must tolerate unknown and missing fields: %v", err)
	}
	if got := f.regionText(t, "ProjectTitle"); got != "Title\n" {
		t.Fatalf("surviving field must still substitute, got %q", got)
	}
}

type recordingPlacer struct {
	chapter int
	start   int
	calls   int
}

func (p *recordingPlacer) PlaceFigures(chapter, start int) error {
	p.chapter, p.start, p.calls = chapter, start, p.calls+1
	return nil
}

func TestChapterContentTriggersFigurePlacement(t *testing.T) {
	f := newFixture(t)
	f.place(t, "Chapter2Content", true)

	placer := &recordingPlacer{}
	e := f.engine(placer)
	if err := e.Apply(map[string]string{"Chapter2Content": "Body text."}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if placer.calls != 1 || placer.chapter != 2 {
		t.Fatalf("unexpected placement calls=%d chapter=%d", placer.calls, placer.chapter)
	}
	sp, err := f.reg.Resolve("Chapter2Content")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if placer.start != sp.End {
		t.Fatalf("placement must start at the content end %d, got %d", sp.End, placer.start)
	}
}

func TestBroadcastReachesStructuralSections(t *testing.T) {
	f := newFixture(t)
	f.buf.InsertText(f.buf.End(), "front", document.Style{})
	f.buf.InsertBreak(f.buf.End(), document.SectionBreak)
	f.buf.InsertText(f.buf.End(), "toc", document.Style{})
	f.buf.InsertBreak(f.buf.End(), document.SectionBreak)
	f.buf.InsertText(f.buf.End(), "chapter", document.Style{})

	e := f.engine(nil)
	if err := e.Apply(map[string]string{"ProjectTitle": "Title", "Year": "2025-26"}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	sects := f.buf.Sections()
	if sects[0].Header != "" || sects[1].Header != "" {
		t.Fatalf("front matter and TOC must keep empty headers")
	}
	ch := sects[2]
	if ch.Header != "Title" {
		t.Fatalf("chapter header = %q", ch.Header)
	}
	if ch.FooterLeft != "Dept. of CSE, BNMIT" || ch.FooterCenter != "2025-26" || !ch.PageField {
		t.Fatalf("unexpected footer %+v", ch)
	}
}
