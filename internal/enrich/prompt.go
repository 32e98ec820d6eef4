package enrich

import (
	"strings"

	"github.com/dgallion1/resumeforge/internal/resume"
)

const systemPrompt = "You are an expert resume parser. You reply with a single JSON object and nothing else."

// promptSections lists the section slots of the prompt in order. The
// heading text carries the per-entry field hints for list sections.
var promptSections = []struct {
	key, heading string
}{
	{"profile", "PROFILE"},
	{"experience", "EXPERIENCE (include company, position, location, start_date, end_date, details)"},
	{"education", "EDUCATION (include degree, institution, location, start_date, end_date, details)"},
	{"skills", "SKILLS (group related skills under short headings)"},
	{"projects", "PROJECTS"},
	{"certifications", "CERTIFICATIONS"},
	{"achievements", "ACHIEVEMENTS"},
	{"volunteer_experience", "VOLUNTEER EXPERIENCE"},
	{"references", "REFERENCES"},
}

// MaxSectionTokens bounds each section body in the prompt.
const MaxSectionTokens = 3000

// BuildPrompt renders the enrichment prompt from resolved section bodies
// and the ad-hoc "other" block. Missing sections render as empty slots.
func BuildPrompt(sections map[string]string, other string) string {
	var sb strings.Builder
	sb.WriteString("Given the following raw resume sections, extract all details into JSON that adheres strictly to the schema below.\n")
	sb.WriteString("Use empty strings for unknown text fields. Put certifications, achievements, volunteer experience, projects and any extra information into \"misc\" as lists of strings keyed by a short snake_case name.\n\n")
	sb.WriteString("SCHEMA:\n")
	sb.Write(resume.Schema)
	sb.WriteString("\n\nExtract and structure the data from the resume sections below:\n")

	for _, s := range promptSections {
		sb.WriteString("\n")
		sb.WriteString(s.heading)
		sb.WriteString(":\n")
		sb.WriteString(TruncateTokens(sections[s.key], MaxSectionTokens))
		sb.WriteString("\n")
	}
	sb.WriteString("\nANY EXTRA INFO:\n")
	sb.WriteString(TruncateTokens(other, MaxSectionTokens))
	sb.WriteString("\n\nOutput ONLY valid JSON conforming exactly to the schema.\n")
	return sb.String()
}

// EstimateTokens gives a rough token count using a words-based heuristic.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per word for English text.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// TruncateTokens cuts text after the word that reaches maxTokens,
// keeping line structure for the part that is kept.
func TruncateTokens(text string, maxTokens int) string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return text
	}
	maxWords := int(float64(maxTokens) / 1.33)

	var sb strings.Builder
	words := 0
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if words+len(fields) > maxWords {
			fields = fields[:maxWords-words]
			sb.WriteString(strings.Join(fields, " "))
			break
		}
		words += len(fields)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
