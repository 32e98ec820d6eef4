package segment

import (
	"strings"
	"unicode"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// Category is a canonical section key with the keywords that introduce it.
type Category struct {
	Key      string
	Keywords []string
}

// Vocabulary is evaluated in order; the first category with a matching
// keyword wins.
var Vocabulary = []Category{
	{Key: "profile", Keywords: []string{"profile", "summary", "objective", "about me"}},
	{Key: "experience", Keywords: []string{"experience", "professional experience", "work experience", "employment history", "work history"}},
	{Key: "education", Keywords: []string{"education", "academic background", "qualifications"}},
	{Key: "skills", Keywords: []string{"skills", "skill set", "technical skills", "competencies"}},
	{Key: "projects", Keywords: []string{"projects", "personal projects", "key projects"}},
	{Key: "certifications", Keywords: []string{"certifications", "licenses", "credentials"}},
	{Key: "achievements", Keywords: []string{"achievements", "awards", "honors"}},
	{Key: "volunteer_experience", Keywords: []string{"volunteer", "activities", "extracurricular"}},
	{Key: "references", Keywords: []string{"references", "referees"}},
}

// IsVocabularyKey reports whether key is one of the canonical section keys.
func IsVocabularyKey(key string) bool {
	for _, c := range Vocabulary {
		if c.Key == key {
			return true
		}
	}
	return false
}

// Lines splits text into trimmed, non-empty lines. Positions everywhere
// downstream are indices into this slice.
func Lines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		// Form feeds separate PDF pages.
		for _, part := range strings.Split(ln, "\f") {
			if t := strings.TrimSpace(part); t != "" {
				lines = append(lines, t)
			}
		}
	}
	return lines
}

// Headings detects heading lines in order of position.
func Headings(lines []string) []resume.Heading {
	var hs []resume.Heading
	for i, ln := range lines {
		if key, ok := classify(ln); ok {
			hs = append(hs, resume.Heading{Position: i, Text: ln, Key: key})
		}
	}
	return hs
}

// Segment splits text into lines and detects headings.
func Segment(text string) ([]string, []resume.Heading) {
	lines := Lines(text)
	return lines, Headings(lines)
}

func classify(line string) (string, bool) {
	low := strings.ToLower(line)
	for _, c := range Vocabulary {
		for _, kw := range c.Keywords {
			if strings.HasPrefix(low, kw) {
				return c.Key, true
			}
		}
	}

	if strings.HasSuffix(line, ":") || (isUpper(line) && len(strings.Fields(line)) < 6) {
		key := DerivedKey(line)
		if key == "" {
			return "", false
		}
		return key, true
	}
	return "", false
}

// DerivedKey builds the key of an ad-hoc heading: trailing colon
// stripped, lower-cased, words joined with underscores.
func DerivedKey(line string) string {
	line = strings.TrimSuffix(strings.TrimSpace(line), ":")
	return strings.Join(strings.Fields(strings.ToLower(line)), "_")
}

// isUpper reports whether s has at least one letter and no lower-case letters.
func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
