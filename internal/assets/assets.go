// Package assets copies user-selected figure images into the asset
// directory under the naming convention the placement engine scans for:
// "Fig {chapter}.{index}.{ext}".
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var figureName = regexp.MustCompile(`^Fig (\d+)\.(\d+)\.`)

// Import copies src into dir under the next free figure name for the
// chapter and returns the destination path. The source extension is
// preserved in lower case.
func Import(dir string, chapter int, src string) (string, error) {
	if chapter < 1 {
		return "", fmt.Errorf("assets: chapter %d out of range", chapter)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	next, err := nextIndex(dir, chapter)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(src))
	if ext == "" {
		ext = ".png"
	}
	dst := filepath.Join(dir, fmt.Sprintf("Fig %d.%d%s", chapter, next, ext))

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("assets: copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	return dst, nil
}

// nextIndex returns one past the highest figure index already present
// for the chapter.
func nextIndex(dir string, chapter int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("assets: %w", err)
	}
	max := 0
	for _, e := range entries {
		m := figureName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		ch, _ := strconv.Atoi(m[1])
		if ch != chapter {
			continue
		}
		idx, _ := strconv.Atoi(m[2])
		if idx > max {
			max = idx
		}
	}
	return max + 1, nil
}
