package segment

import (
	"strings"

	"github.com/dgallion1/resumeforge/internal/resume"
)

// EndOfDocument is the end bound of the last heading's section.
const EndOfDocument = -1

// Bounds locates the first heading with key. The body starts on the line
// after the heading and ends before the next heading's line, or at
// EndOfDocument. Later headings with the same key are ignored.
func Bounds(headings []resume.Heading, key string) (start, end int, ok bool) {
	for i, h := range headings {
		if h.Key != key {
			continue
		}
		start = h.Position + 1
		end = EndOfDocument
		if i+1 < len(headings) {
			end = headings[i+1].Position
		}
		return start, end, true
	}
	return 0, 0, false
}

// Body joins lines[start:end] with newlines. It never returns a nil-like
// value: out-of-range or empty spans yield "".
func Body(lines []string, start, end int) string {
	if start < 0 || start >= len(lines) {
		return ""
	}
	if end == EndOfDocument || end > len(lines) {
		end = len(lines)
	}
	if end <= start {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

// Section resolves the body of key, or "" when the key has no heading.
func Section(lines []string, headings []resume.Heading, key string) string {
	start, end, ok := Bounds(headings, key)
	if !ok {
		return ""
	}
	return Body(lines, start, end)
}

// Sections resolves every distinct heading key to its body.
func Sections(lines []string, headings []resume.Heading) map[string]string {
	out := make(map[string]string, len(headings))
	for _, h := range headings {
		if _, seen := out[h.Key]; seen {
			continue
		}
		out[h.Key] = Section(lines, headings, h.Key)
	}
	return out
}

// Other collects the bodies of ad-hoc headings, each prefixed by its
// heading text, for the free-form slot of the enrichment prompt.
func Other(lines []string, headings []resume.Heading) string {
	var sb strings.Builder
	seen := map[string]bool{}
	for _, h := range headings {
		if IsVocabularyKey(h.Key) || seen[h.Key] {
			continue
		}
		seen[h.Key] = true
		body := Section(lines, headings, h.Key)
		if body == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSuffix(h.Text, ":"))
		sb.WriteString(":\n")
		sb.WriteString(body)
	}
	return sb.String()
}
