package scaffold

import (
	"strings"
	"testing"

	"github.com/hyperifyio/goreport/internal/document"
	"github.com/hyperifyio/goreport/internal/region"
)

func build(t *testing.T) (*document.Buffer, *region.Registry, region.FieldMap) {
	t.Helper()
	buf := document.New(document.A4())
	reg := region.NewRegistry(buf)
	fields := region.NewFieldMap()
	s := New(buf, reg, fields, t.TempDir(), DefaultBoilerplate())
	if err := s.Build(); err != nil {
		t.Fatalf("build: %v", err)
	}
	return buf, reg, fields
}

func TestBuildRegistersFrontMatterRegions(t *testing.T) {
	_, reg, _ := build(t)
	for _, name := range []string{
		"ProjectTitle", "ProjectTitle_2", "ProjectTitle_Ack",
		"Department", "Department_2", "Department_3", "Department_4",
		"Department_5", "Department_6", "Department_7", "Department_9",
		"NameAndUSN", "NameAndUSN_2",
		"GuideName", "GuideName_2", "GuideName_Ack",
		"Designation", "Designation_2", "Designation_Ack",
		"HODName_Ack", "Year", "Abstract",
		MarkerName,
	} {
		if !reg.Exists(name) {
			t.Fatalf("missing region %s; have %v", name, reg.Names())
		}
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	buf := document.New(document.A4())
	reg := region.NewRegistry(buf)
	fields := region.NewFieldMap()
	s := New(buf, reg, fields, t.TempDir(), DefaultBoilerplate())
	if err := s.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	end := buf.End()
	if err := s.Build(); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if buf.End() != end {
		t.Fatalf("second build extended the document from %d to %d", end, buf.End())
	}
}

func TestMarkerSpansTheClosingSectionBreak(t *testing.T) {
	buf, reg, _ := build(t)
	sp, err := reg.Resolve(MarkerName)
	if err != nil {
		t.Fatalf("resolve marker: %v", err)
	}
	if sp.End != sp.Start+1 || sp.End != buf.End() {
		t.Fatalf("marker must span the final break atom, got %+v end=%d", sp, buf.End())
	}
	if _, err := buf.SectionBefore(sp.Start); err != nil {
		t.Fatalf("marker must sit on a section break: %v", err)
	}
	if got := buf.Text(sp.Start, sp.End); got != "\n" {
		t.Fatalf("unexpected marker content %q", got)
	}
}

func TestBuildWritesStaticBoilerplate(t *testing.T) {
	buf, _, _ := build(t)
	text := buf.Text(0, buf.End())
	for _, want := range []string{
		"VISVESVARAYA TECHNOLOGICAL UNIVERSITY",
		"CERTIFICATE",
		"ACKNOWLEDGEMENT",
		"ABSTRACT",
		"Bachelor of Engineering",
		"Prof. Eishwar N Maanay",
		"Dr. S Y Kulkarni",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("front matter missing %q", want)
		}
	}
	if !strings.Contains(text, Placeholder) {
		t.Fatalf("placeholders missing")
	}
}

func TestBuildDeclaresFieldFamilies(t *testing.T) {
	_, _, fields := build(t)
	dept := fields.Regions("Department")
	if len(dept) < 5 {
		t.Fatalf("Department family too small: %v", dept)
	}
	for _, name := range dept {
		if region.FamilyBase(name) != "Department" {
			t.Fatalf("foreign region %s in Department family", name)
		}
	}
	if got := fields.Regions("Year"); len(got) != 1 || got[0] != "Year" {
		t.Fatalf("Year must bind only itself, got %v", got)
	}
	// The marker is structural, not a field.
	if got := fields.Regions(MarkerName); got != nil {
		t.Fatalf("marker must not be declared as a field, got %v", got)
	}
}

func TestMissingLogosAreSkipped(t *testing.T) {
	buf, _, _ := build(t)
	if strings.Contains(buf.Text(0, buf.End()), "￼") {
		t.Fatalf("no logo assets installed, no image atoms expected")
	}
}
