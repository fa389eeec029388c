package figures

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/maruel/natural"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goreport/internal/document"
	"github.com/hyperifyio/goreport/internal/region"
)

// captionReservePt is the vertical space reserved under a figure for its
// caption and spacing when deciding whether the figure fits on the page.
const captionReservePt = 60

// Host is the slice of the document host the placement engine needs: a
// cursor it can insert through and a layout oracle it can query. The
// buffer implements it; tests substitute a scripted oracle.
type Host interface {
	InsertText(at int, s string, st document.Style) int
	InsertImage(at int, img document.Image) int
	InsertBreak(at int, kind document.BreakKind) int
	Text(start, end int) string
	End() int
	VerticalPosition(off int) (float64, error)
	PageExtent() (height, bottom float64, err error)
}

// Figure is one discovered candidate image for a chapter.
type Figure struct {
	Chapter int
	Index   int
	Path    string
}

// Label returns the caption label, e.g. "Fig 2.3".
func (f Figure) Label() string {
	return fmt.Sprintf("Fig %d.%d", f.Chapter, f.Index)
}

// caption is the exact caption text inserted for the figure. Matching on
// the trailing newline keeps "Fig 1.1" from matching inside "Fig 1.10".
func (f Figure) caption() string {
	return f.Label() + "\n"
}

var figurePattern = regexp.MustCompile(`^Fig (\d+)\.(\d+)\.(?i:png|jpe?g|gif|bmp|webp|tiff?)$`)

// Placer inserts a chapter's figures into the document after the chapter
// content, forcing page breaks when a figure would overflow the page.
// Insertion is idempotent per figure: a caption already present in the
// chapter's scan range, or an index recorded as placed this session, is
// skipped.
type Placer struct {
	host   Host
	reg    *region.Registry
	dir    string
	placed map[int]map[int]string
}

// NewPlacer returns a placer reading candidate images from dir.
func NewPlacer(host Host, reg *region.Registry, dir string) *Placer {
	return &Placer{host: host, reg: reg, dir: dir, placed: make(map[int]map[int]string)}
}

// Reset forgets every figure recorded as placed. Callers must invoke it
// whenever the chapters are destroyed, e.g. on a tail rebuild, so the
// next placement pass reinserts figures into the fresh chapters.
func (p *Placer) Reset() {
	p.placed = make(map[int]map[int]string)
}

// Discover lists the chapter's candidate images in ascending numeric
// index order, so Fig 1.10 follows Fig 1.9.
func (p *Placer) Discover(chapter int) ([]Figure, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	byName := make(map[string]Figure)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := figurePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ch, _ := strconv.Atoi(m[1])
		if ch != chapter {
			continue
		}
		idx, _ := strconv.Atoi(m[2])
		names = append(names, e.Name())
		byName[e.Name()] = Figure{Chapter: ch, Index: idx, Path: filepath.Join(p.dir, e.Name())}
	}
	sort.Sort(natural.StringSlice(names))
	out := make([]Figure, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out, nil
}

// PlaceFigures inserts the not-yet-present figures of the chapter,
// starting at the given insertion offset (the end of the chapter's
// content region). Failures local to one figure are logged and skipped.
func (p *Placer) PlaceFigures(chapter int, start int) error {
	figs, err := p.Discover(chapter)
	if err != nil {
		return fmt.Errorf("figures: scan %s: %w", p.dir, err)
	}
	if len(figs) == 0 {
		return nil
	}

	limit := p.chapterLimit(chapter)
	scanStart, scanEnd := start, limit
	if scanStart > scanEnd {
		scanStart, scanEnd = scanEnd, scanStart
	}
	if scanEnd > p.host.End() {
		scanEnd = p.host.End()
	}
	existing := p.host.Text(scanStart, scanEnd)

	cursor := p.resumePoint(figs, existing, scanStart, start)

	for _, fig := range figs {
		if strings.Contains(existing, fig.caption()) {
			continue
		}
		if _, done := p.placed[chapter][fig.Index]; done {
			continue
		}
		cursor = p.insertOne(fig, cursor)
		if p.placed[chapter] == nil {
			p.placed[chapter] = make(map[int]string)
		}
		p.placed[chapter][fig.Index] = fig.Path
	}
	return nil
}

// Placed reports the figures inserted by this placer during the session,
// sorted by chapter then index.
func (p *Placer) Placed() []Figure {
	var out []Figure
	for ch, indices := range p.placed {
		for idx, path := range indices {
			out = append(out, Figure{Chapter: ch, Index: idx, Path: path})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chapter != out[j].Chapter {
			return out[i].Chapter < out[j].Chapter
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// chapterLimit is the upper bound of the chapter: the start of the next
// chapter's title region when it exists, else the end of the document.
func (p *Placer) chapterLimit(chapter int) int {
	next := fmt.Sprintf("Chapter%dTitle_2", chapter+1)
	if sp, err := p.reg.Resolve(next); err == nil {
		return sp.Start
	}
	return p.host.End()
}

// resumePoint moves the insertion cursor past the highest-indexed caption
// already present in the scan range, so re-runs append after existing
// figures instead of before them.
func (p *Placer) resumePoint(figs []Figure, existing string, scanStart, start int) int {
	cursor := start
	for _, fig := range figs {
		byteIdx := strings.Index(existing, fig.caption())
		if byteIdx < 0 {
			continue
		}
		// Offsets and Text runes are in lockstep; convert the byte index
		// and step past the caption and its terminating newline.
		off := scanStart + utf8.RuneCountInString(existing[:byteIdx]) + utf8.RuneCountInString(fig.caption())
		if off > cursor {
			cursor = off
		}
	}
	if cursor > p.host.End() {
		cursor = p.host.End()
	}
	return cursor
}

// insertOne places a single figure and its caption at the cursor and
// returns the advanced cursor.
func (p *Placer) insertOne(fig Figure, cursor int) int {
	w, h, err := NaturalSize(fig.Path)
	if err != nil {
		log.Warn().Err(err).Str("figure", fig.Label()).Msg("image unreadable; using default size estimate")
		w, h = MaxWidthPt, defaultHeightPt
	}

	if brk, ok := p.needsPageBreak(cursor, h); ok && brk {
		cursor += p.host.InsertBreak(cursor, document.PageBreak)
	}

	cursor += p.host.InsertImage(cursor, document.Image{
		Path:         fig.Path,
		Width:        w,
		Height:       h,
		Center:       true,
		KeepWithNext: true,
	})
	caption := document.Style{Size: 12, Align: document.AlignCenter}
	cursor += p.host.InsertText(cursor, fig.Label()+"\n", caption)
	return cursor
}

// needsPageBreak asks the layout oracle whether the figure plus its
// caption reserve still fits above the page's usable limit. When the
// oracle is unavailable the decision is left to the host: no explicit
// break.
func (p *Placer) needsPageBreak(cursor int, imgHeight float64) (brk, ok bool) {
	y, err := p.host.VerticalPosition(cursor)
	if err != nil {
		log.Warn().Err(err).Msg("layout query failed; letting host decide placement")
		return false, false
	}
	pageH, bottom, err := p.host.PageExtent()
	if err != nil {
		log.Warn().Err(err).Msg("layout query failed; letting host decide placement")
		return false, false
	}
	return y+imgHeight+captionReservePt > pageH-bottom, true
}
