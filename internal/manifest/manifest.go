// Package manifest writes a machine-readable sidecar describing one
// generation run: which fields were applied, which figures were embedded
// (with content digests), and where the outputs went.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// FigureEntry records one embedded figure and the digest of its source
// file at embed time.
type FigureEntry struct {
	Chapter int    `json:"chapter"`
	Index   int    `json:"index"`
	Path    string `json:"path"`
	SHA256  string `json:"sha256"`
}

// Run is the sidecar schema.
type Run struct {
	ID          string        `json:"id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Output      string        `json:"output"`
	PDF         string        `json:"pdf,omitempty"`
	Chapters    int           `json:"chapters"`
	Fields      []string      `json:"fields"`
	Figures     []FigureEntry `json:"figures"`
}

// New assembles a run record. Field names are sorted; values are not
// recorded, the document carries them.
func New(output, pdf string, chapters int, fields map[string]string, figures []FigureEntry) Run {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for i := range figures {
		figures[i].SHA256 = fileSHA256(figures[i].Path)
	}
	return Run{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Output:      output,
		PDF:         pdf,
		Chapters:    chapters,
		Fields:      names,
		Figures:     figures,
	}
}

// Write saves the run record as indented JSON at path.
func Write(r Run, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}

// fileSHA256 returns the lowercase hex SHA-256 of the file, or the empty
// string when it cannot be read.
func fileSHA256(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
