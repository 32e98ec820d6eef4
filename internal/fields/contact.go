package fields

import (
	"regexp"
	"strings"

	"github.com/dgallion1/resumeforge/internal/resume"
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]*)?(?:\(?\d{2,4}\)?[-.\s]*)?\d{3,4}[-.\s]?\d{3,4}`)

	linkedinText = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|pub|company)/[A-Za-z0-9_%-]+/?`)
	linkedinLink = regexp.MustCompile(`(?i)^(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|pub|company)/[A-Za-z0-9_%-]+/?`)
	githubText   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_-]+/?`)
	githubLink   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_-]+/?$`)
)

// minPhoneDigits rejects short numeric runs such as years and room numbers.
const minPhoneDigits = 10

// Email returns the first address in text, or "".
func Email(text string) string {
	return emailPattern.FindString(text)
}

// Phone returns the first digit grouping in text, trimmed, provided it
// carries at least ten digits. A shorter first grouping means no phone.
func Phone(text string) string {
	m := phonePattern.FindString(text)
	if countDigits(m) < minPhoneDigits {
		return ""
	}
	return strings.TrimSpace(m)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// LinkedIn prefers a profile URL from the document's hyperlinks over one
// written in the text.
func LinkedIn(text string, links []string) string {
	return social(text, links, linkedinLink, linkedinText)
}

// GitHub prefers a profile URL from the document's hyperlinks over one
// written in the text.
func GitHub(text string, links []string) string {
	return social(text, links, githubLink, githubText)
}

func social(text string, links []string, link, inText *regexp.Regexp) string {
	for _, uri := range links {
		if m := link.FindString(uri); m != "" {
			return strings.TrimSuffix(m, "/")
		}
	}
	return strings.TrimSuffix(inText.FindString(text), "/")
}

// ContactOf runs every contact recognizer over a document.
func ContactOf(doc resume.RawDocument) resume.Contact {
	return resume.Contact{
		Email:    Email(doc.Text),
		Phone:    Phone(doc.Text),
		LinkedIn: LinkedIn(doc.Text, doc.Links),
		GitHub:   GitHub(doc.Text, doc.Links),
	}
}
