package session

import (
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/goreport/internal/config"
	"github.com/hyperifyio/goreport/internal/manifest"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.AssetDir = filepath.Join(dir, "assets")
	cfg.OutputPath = filepath.Join(dir, "report.docx")
	cfg.PDFPath = filepath.Join(dir, "report.pdf")
	cfg.ManifestPath = filepath.Join(dir, "report.manifest.json")
	if err := os.MkdirAll(cfg.AssetDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	return cfg
}

func sampleFields() map[string]string {
	return map[string]string{
		"ProjectTitle":    "Traffic Sign Recognition",
		"Department":      "COMPUTER SCIENCE AND ENGINEERING",
		"NameAndUSN":      "Asha 1BG20CS001\nBharat 1BG20CS002",
		"GuideName":       "Dr. Guide",
		"Designation":     "Assistant Professor",
		"Year":            "2025-26",
		"Abstract":        "A short abstract.",
		"Chapter1Title":   "INTRODUCTION",
		"Chapter1Content": "Introductory text.",
		"Chapter2Title":   "IMPLEMENTATION",
		"Chapter2Content": "Implementation text.",
		"References":      "[1] A paper.",
	}
}

func TestOperationsRequireInitialize(t *testing.T) {
	s := New(testConfig(t))
	if s.Ready() {
		t.Fatalf("fresh session must not be ready")
	}
	if err := s.RebuildTail(2); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if err := s.Apply(sampleFields()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if err := s.Save(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	s := New(testConfig(t))
	if err := s.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !s.Ready() {
		t.Fatalf("session must be ready after initialize")
	}
	end := s.Buffer().End()
	if err := s.Initialize(); err != nil {
		t.Fatalf("second initialize: %v", err)
	}
	if s.Buffer().End() != end {
		t.Fatalf("second initialize modified the document")
	}
}

func TestFullRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.EnablePDF = true

	// One figure for chapter 1.
	figPath := filepath.Join(cfg.AssetDir, "Fig 1.1.png")
	f, err := os.Create(figPath)
	if err != nil {
		t.Fatalf("create figure: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 80, 60))); err != nil {
		t.Fatalf("encode figure: %v", err)
	}
	f.Close()

	s := New(cfg)
	if err := s.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := s.RebuildTail(2); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if err := s.Apply(sampleFields()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	text := s.Buffer().Text(0, s.Buffer().End())
	for _, want := range []string{
		"Traffic Sign Recognition",
		"INTRODUCTION",
		"Implementation text.",
		"Fig 1.1",
		"[1] A paper.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("document missing %q", want)
		}
	}

	if _, err := os.Stat(cfg.OutputPath); err != nil {
		t.Fatalf("document not written: %v", err)
	}
	if _, err := os.Stat(cfg.PDFPath); err != nil {
		t.Fatalf("pdf not written: %v", err)
	}

	data, err := os.ReadFile(cfg.ManifestPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var run manifest.Run
	if err := json.Unmarshal(data, &run); err != nil {
		t.Fatalf("manifest unreadable: %v", err)
	}
	if run.Chapters != 2 {
		t.Fatalf("manifest chapters = %d", run.Chapters)
	}
	if len(run.Figures) != 1 || run.Figures[0].Chapter != 1 || run.Figures[0].SHA256 == "" {
		t.Fatalf("manifest figures = %+v", run.Figures)
	}
	if run.Output != cfg.OutputPath || run.PDF != cfg.PDFPath {
		t.Fatalf("manifest paths = %q, %q", run.Output, run.PDF)
	}
}

func TestRerunWithFewerChapters(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg)
	if err := s.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := s.RebuildTail(3); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	if err := s.RebuildTail(2); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	if s.Chapters() != 2 {
		t.Fatalf("chapters = %d", s.Chapters())
	}
	if err := s.Apply(sampleFields()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if strings.Contains(s.Buffer().Text(0, s.Buffer().End()), "Chapter 3") {
		t.Fatalf("stale chapter survived the shrink")
	}
}

func TestFiguresSurviveTailRebuild(t *testing.T) {
	cfg := testConfig(t)
	figPath := filepath.Join(cfg.AssetDir, "Fig 1.1.png")
	f, err := os.Create(figPath)
	if err != nil {
		t.Fatalf("create figure: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 80, 60))); err != nil {
		t.Fatalf("encode figure: %v", err)
	}
	f.Close()

	s := New(cfg)
	if err := s.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := s.RebuildTail(2); err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	if err := s.Apply(sampleFields()); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	// Regenerating the tail deletes the chapters and their figures; the
	// following apply must insert the figure into the fresh chapter.
	if err := s.RebuildTail(2); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	if err := s.Apply(sampleFields()); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	text := s.Buffer().Text(0, s.Buffer().End())
	if got := strings.Count(text, "Fig 1.1\n"); got != 1 {
		t.Fatalf("figure caption count after rebuild and re-apply = %d, want 1", got)
	}
}

func TestDeriveChapters(t *testing.T) {
	if got := DeriveChapters(sampleFields()); got != 2 {
		t.Fatalf("expected 2 chapters, got %d", got)
	}
	if got := DeriveChapters(map[string]string{"ProjectTitle": "x"}); got != 0 {
		t.Fatalf("expected 0 chapters, got %d", got)
	}
	if got := DeriveChapters(map[string]string{"Chapter7Content": "x"}); got != 7 {
		t.Fatalf("expected 7 chapters, got %d", got)
	}
}
