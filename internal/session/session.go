// Package session owns one live document and the machinery around it.
// A Session is the unit callers program against: initialize the
// scaffold, rebuild the structural tail, apply field values, save.
// Nothing here is global; two sessions never share state.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreport/internal/config"
	"github.com/hyperifyio/goreport/internal/document"
	"github.com/hyperifyio/goreport/internal/docx"
	"github.com/hyperifyio/goreport/internal/figures"
	"github.com/hyperifyio/goreport/internal/manifest"
	"github.com/hyperifyio/goreport/internal/region"
	"github.com/hyperifyio/goreport/internal/render"
	"github.com/hyperifyio/goreport/internal/scaffold"
	"github.com/hyperifyio/goreport/internal/structure"
	"github.com/hyperifyio/goreport/internal/substitute"
)

// ErrNotReady is returned by operations that need an initialized
// document before Initialize has run.
var ErrNotReady = errors.New("session: document not initialized")

var chapterKey = regexp.MustCompile(`^Chapter(\d+)(Title|Content)$`)

// Session is a single report-generation session over one in-memory
// document.
type Session struct {
	cfg config.Config

	buf    *document.Buffer
	reg    *region.Registry
	fields region.FieldMap

	scaffolder *scaffold.Scaffolder
	placer     *figures.Placer
	engine     *substitute.Engine
	builder    *structure.Builder

	applied map[string]string
}

// New builds a session from the configuration. The document starts
// empty; call Initialize before applying fields.
func New(cfg config.Config) *Session {
	buf := document.New(document.A4())
	reg := region.NewRegistry(buf)
	fields := region.NewFieldMap()
	placer := figures.NewPlacer(buf, reg, cfg.AssetDir)
	return &Session{
		cfg:        cfg,
		buf:        buf,
		reg:        reg,
		fields:     fields,
		scaffolder: scaffold.New(buf, reg, fields, cfg.AssetDir, cfg.Boilerplate),
		placer:     placer,
		engine:     substitute.NewEngine(buf, reg, fields, cfg.Transforms, placer, cfg.Boilerplate.FooterLabel),
		builder:    structure.NewBuilder(buf, reg, fields),
		applied:    make(map[string]string),
	}
}

// Ready reports whether the scaffold has been built.
func (s *Session) Ready() bool {
	return s.reg.Exists(scaffold.MarkerName)
}

// Initialize builds the fixed front matter. Calling it on an already
// initialized session is a no-op.
func (s *Session) Initialize() error {
	if s.Ready() {
		return nil
	}
	if err := s.scaffolder.Build(); err != nil {
		return fmt.Errorf("session: scaffold: %w", err)
	}
	log.Debug().Int("regions", len(s.reg.Names())).Msg("scaffold built")
	return nil
}

// RebuildTail drops everything after the front matter and regenerates
// the contents page, chapter skeletons and references for the given
// chapter count.
func (s *Session) RebuildTail(chapters int) error {
	if !s.Ready() {
		return ErrNotReady
	}
	if err := s.builder.RebuildTail(chapters); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	// The rebuild destroyed the chapters and every figure in them; the
	// next apply must be free to reinsert.
	s.placer.Reset()
	return nil
}

// Apply substitutes the given field values into the document. Values
// accumulate across calls for the run manifest.
func (s *Session) Apply(input map[string]string) error {
	if !s.Ready() {
		return ErrNotReady
	}
	if err := s.engine.Apply(input); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	for k, v := range input {
		s.applied[k] = v
	}
	return nil
}

// Save resolves the contents-page numbers and writes the document, the
// optional PDF preview and the run manifest.
func (s *Session) Save() error {
	if !s.Ready() {
		return ErrNotReady
	}
	if err := s.builder.ResolvePageNumbers(); err != nil {
		return fmt.Errorf("session: page numbers: %w", err)
	}
	if err := docx.Write(s.buf, s.cfg.OutputPath); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	pdfPath := ""
	if s.cfg.EnablePDF {
		pdfPath = s.cfg.PDFPath
		if err := render.WritePDF(s.buf, pdfPath); err != nil {
			return fmt.Errorf("session: pdf: %w", err)
		}
	}
	if s.cfg.ManifestPath != "" {
		run := manifest.New(s.cfg.OutputPath, pdfPath, s.builder.Chapters(), s.applied, s.figureEntries())
		if err := manifest.Write(run, s.cfg.ManifestPath); err != nil {
			// The document is already on disk; a missing sidecar is
			// not worth failing the run for.
			log.Warn().Err(err).Str("path", s.cfg.ManifestPath).Msg("manifest not written")
		}
	}
	return nil
}

// Buffer exposes the underlying document for renderers and tests.
func (s *Session) Buffer() *document.Buffer { return s.buf }

// Chapters returns the chapter count of the last rebuilt tail.
func (s *Session) Chapters() int { return s.builder.Chapters() }

func (s *Session) figureEntries() []manifest.FigureEntry {
	placed := s.placer.Placed()
	entries := make([]manifest.FigureEntry, 0, len(placed))
	for _, f := range placed {
		entries = append(entries, manifest.FigureEntry{
			Chapter: f.Chapter,
			Index:   f.Index,
			Path:    filepath.ToSlash(f.Path),
		})
	}
	return entries
}

// DeriveChapters infers the chapter count from the highest ChapterN
// field key present. Zero means no chapter fields were given.
func DeriveChapters(fields map[string]string) int {
	max := 0
	for k := range fields {
		m := chapterKey.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		if n > max {
			max = n
		}
	}
	return max
}
