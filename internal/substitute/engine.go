// Package substitute maps the flat user-input dictionary onto the named
// regions of the document: derives dependent values, fans each logical
// key out to the physical regions it feeds, replaces region content
// through the registry, triggers figure placement for chapter content,
// and broadcasts the project title and year into section headers and
// footers.
package substitute

import (
	"errors"
	"regexp"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hyperifyio/goreport/internal/document"
	"github.com/hyperifyio/goreport/internal/region"
)

// FigurePlacer inserts a chapter's figures after its content region.
type FigurePlacer interface {
	PlaceFigures(chapter int, start int) error
}

// newlineRegions own a trailing line break so the static text after them
// does not run on. Tail regions are excluded: the structure builder lays
// their separators outside the region.
var newlineRegions = map[string]bool{
	"ProjectTitle": true,
	"NameAndUSN":   true,
	"Department_2": true,
	"Department_3": true,
}

// upperRegions render their value in upper case regardless of how the
// input was typed.
var upperRegions = map[string]bool{
	"Department_2": true,
	"Department_3": true,
}

var contentRegion = regexp.MustCompile(`^Chapter(\d+)Content$`)

func wantsNewline(name string) bool {
	return newlineRegions[name]
}

// Engine is the placeholder substitution engine.
type Engine struct {
	buf    *document.Buffer
	reg    *region.Registry
	fields region.FieldMap
	tr     Transforms
	placer FigurePlacer

	footerLabel string
	upper       cases.Caser
}

// NewEngine returns an engine over the given host buffer and registry.
// footerLabel is the fixed left cell of the broadcast footer; placer may
// be nil when figure placement is not wanted.
func NewEngine(buf *document.Buffer, reg *region.Registry, fields region.FieldMap, tr Transforms, placer FigurePlacer, footerLabel string) *Engine {
	return &Engine{
		buf:         buf,
		reg:         reg,
		fields:      fields,
		tr:          tr,
		placer:      placer,
		footerLabel: footerLabel,
		upper:       cases.Upper(language.English),
	}
}

// Apply substitutes the input dictionary into the document. Failures
// local to one field or one region are logged and skipped; the pass never
// aborts on a missing region.
func (e *Engine) Apply(input map[string]string) error {
	expanded := e.tr.Expand(input)

	keys := make([]string, 0, len(expanded))
	for k := range expanded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := expanded[key]
		for _, name := range e.fields.Regions(key) {
			// A region with its own explicit entry in the effective set is
			// owned by that entry; the family base key must not overwrite it.
			if name != key {
				if _, owned := expanded[name]; owned {
					continue
				}
			}
			e.replaceOne(name, value)
		}
	}

	e.broadcast(input)
	return nil
}

// replaceOne rewrites a single region and, for chapter content, places
// the chapter's figures after the fresh content.
func (e *Engine) replaceOne(name, value string) {
	if upperRegions[name] {
		value = e.upper.String(value)
	}
	if name == "References" {
		value = normalizeReferences(value)
	}
	if wantsNewline(name) {
		value += "\n"
	}

	reg, err := e.reg.Replace(name, value)
	switch {
	case errors.Is(err, region.ErrNotFound):
		log.Debug().Str("region", name).Msg("region missing; field skipped")
		return
	case errors.Is(err, region.ErrDuplicateName):
		log.Warn().Str("region", name).Msg("region re-registration refused; field dropped")
		return
	case err != nil:
		log.Warn().Err(err).Str("region", name).Msg("region replace failed; field dropped")
		return
	}

	if m := contentRegion.FindStringSubmatch(name); m != nil && e.placer != nil {
		chapter, _ := strconv.Atoi(m[1])
		if err := e.placer.PlaceFigures(chapter, reg.End); err != nil {
			log.Warn().Err(err).Int("chapter", chapter).Msg("figure placement failed")
		}
	}
}

// broadcast writes the project title into every structural section header
// beyond the fixed front matter and rebuilds the three-cell footer (fixed
// label, year, live page-number field). It fully overwrites the footer
// content, so repeated calls are safe.
func (e *Engine) broadcast(input map[string]string) {
	title, year := input["ProjectTitle"], input["Year"]
	if title == "" && year == "" {
		return
	}
	for idx, sect := range e.buf.Sections() {
		if idx < 2 {
			continue
		}
		if title != "" {
			sect.Header = title
		}
		sect.FooterLeft = e.footerLabel
		sect.FooterCenter = year
		sect.PageField = true
	}
}
