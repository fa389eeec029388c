package substitute

import (
	"regexp"
	"strings"
)

var (
	refURL = regexp.MustCompile(`https?://[^\s)]+`)
	doiRef = regexp.MustCompile(`(?i)(?:doi\s*:?\s*|https?://(?:dx\.)?doi\.org/)(10\.[0-9]{4,9}/[-._;()/:A-Za-z0-9]+)`)
)

// normalizeReferences rewrites each reference line to carry stable URL
// forms: arXiv PDF links become abstract links, IETF datatracker RFC
// links become RFC Editor links, and a detectable DOI gains its canonical
// doi.org URL. Lines without a URL pass through unchanged; the pass needs
// no network access.
func normalizeReferences(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if loc := refURL.FindStringIndex(line); loc != nil {
			stable := stableURL(line[loc[0]:loc[1]])
			line = line[:loc[0]] + stable + line[loc[1]:]
		}
		if m := doiRef.FindStringSubmatch(line); m != nil {
			doiURL := "https://doi.org/" + m[1]
			if !strings.Contains(strings.ToLower(line), strings.ToLower(doiURL)) {
				line = strings.TrimSuffix(line, ".") + " DOI: " + doiURL
			}
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// stableURL converts known volatile URLs to their stable forms.
func stableURL(u string) string {
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "https://arxiv.org/pdf/") && strings.HasSuffix(lower, ".pdf") {
		core := strings.TrimSuffix(u[len("https://arxiv.org/pdf/"):], ".pdf")
		return "https://arxiv.org/abs/" + core
	}
	if strings.HasPrefix(lower, "https://datatracker.ietf.org/doc/html/rfc") {
		if idx := strings.LastIndex(lower, "/rfc"); idx >= 0 {
			return "https://www.rfc-editor.org/rfc/" + u[idx+1:]
		}
	}
	return u
}
