// Package assemble builds the canonical resume record from locally
// recognized fields and the enrichment payload.
package assemble

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/resumeforge/internal/fields"
	"github.com/dgallion1/resumeforge/internal/resume"
)

// miscSections are copied verbatim into misc by the local pass.
var miscSections = []string{"certifications", "achievements", "volunteer_experience", "projects"}

// Local builds a record from the document and its resolved sections
// without any enrichment.
func Local(doc resume.RawDocument, lines []string, sections map[string]string, ner fields.Recognizer) resume.Record {
	rec := resume.NewRecord()
	rec.FullName = fields.Name(lines, ner)
	rec.Contact = fields.ContactOf(doc)
	rec.Image = doc.Image
	rec.Sections.AboutMe = sections["profile"]
	rec.Sections.References = sections["references"]
	rec.Sections.Skills = fields.GroupedSkills(sections["skills"])

	for _, key := range miscSections {
		if items := nonEmptyLines(sections[key]); len(items) > 0 {
			rec.Sections.Misc[key] = items
		}
	}
	return rec
}

// Merge overlays the enrichment payload on the local record. Scalar fields
// are taken from the payload only when the local value is empty; the list
// and map sections are replaced whenever the payload carries them.
func Merge(local resume.Record, payload map[string]any) resume.Record {
	rec := local
	fillString(&rec.FullName, payload["full_name"])
	fillString(&rec.CurrentJob, payload["current_job"])

	if contact, ok := payload["contact"].(map[string]any); ok {
		fillString(&rec.Contact.Email, contact["email"])
		fillString(&rec.Contact.Phone, contact["phone"])
		fillString(&rec.Contact.LinkedIn, contact["linkedin"])
		fillString(&rec.Contact.GitHub, contact["github"])
	}

	sec, ok := payload["sections"].(map[string]any)
	if !ok {
		return rec
	}
	fillString(&rec.Sections.AboutMe, sec["about_me"])
	fillString(&rec.Sections.References, sec["references"])

	if v, ok := sec["education"].([]any); ok {
		rec.Sections.Education = entries(v, resume.EducationFields)
	}
	if v, ok := sec["experience"].([]any); ok {
		rec.Sections.Experience = entries(v, resume.ExperienceFields)
	}
	if v, ok := sec["skills"]; ok && v != nil {
		rec.Sections.Skills = skillGroups(v)
	}
	if v, ok := sec["misc"].(map[string]any); ok {
		rec.Sections.Misc = stringLists(v)
	}
	return rec
}

// Normalize guarantees the record's structural invariants: every
// collection is non-nil, every entry carries exactly its declared fields,
// and empty groups are dropped.
func Normalize(rec resume.Record) resume.Record {
	rec.Sections.Education = normalizeEntries(rec.Sections.Education, resume.EducationFields)
	rec.Sections.Experience = normalizeEntries(rec.Sections.Experience, resume.ExperienceFields)
	rec.Sections.Skills = normalizeGroups(rec.Sections.Skills)
	rec.Sections.Misc = normalizeGroups(rec.Sections.Misc)
	rec.FullName = strings.TrimSpace(rec.FullName)
	rec.CurrentJob = strings.TrimSpace(rec.CurrentJob)
	return rec
}

func fillString(dst *string, v any) {
	if strings.TrimSpace(*dst) != "" {
		return
	}
	if s := scalarString(v); s != "" {
		*dst = s
	}
}

// scalarString renders a JSON value as text: null becomes "", numbers
// lose trailing zeros, and lists are joined by newlines.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func entries(list []any, declared []string) []map[string]string {
	out := make([]map[string]string, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := make(map[string]string, len(declared))
		for _, f := range declared {
			entry[f] = scalarString(m[f])
		}
		out = append(out, entry)
	}
	return out
}

// skillGroups accepts either a map of group to items or a flat list.
func skillGroups(v any) map[string][]string {
	switch t := v.(type) {
	case map[string]any:
		return stringLists(t)
	case []any:
		items := fields.Skills(scalarString(t))
		if len(items) == 0 {
			return map[string][]string{}
		}
		return map[string][]string{fields.DefaultSkillGroup: items}
	case string:
		return fields.GroupedSkills(t)
	}
	return map[string][]string{}
}

// stringLists converts a JSON object of lists into string lists. Null
// values are dropped and single strings become one-item lists.
func stringLists(m map[string]any) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			continue
		case []any:
			var items []string
			for _, item := range t {
				if s := scalarString(item); s != "" {
					items = append(items, s)
				}
			}
			out[k] = items
		default:
			if s := scalarString(t); s != "" {
				out[k] = []string{s}
			}
		}
	}
	return out
}

func normalizeEntries(list []map[string]string, declared []string) []map[string]string {
	out := make([]map[string]string, 0, len(list))
	for _, e := range list {
		entry := make(map[string]string, len(declared))
		for _, f := range declared {
			entry[f] = strings.TrimSpace(e[f])
		}
		out = append(out, entry)
	}
	return out
}

func normalizeGroups(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, items := range m {
		k = strings.TrimSpace(k)
		var kept []string
		for _, it := range items {
			if it = strings.TrimSpace(it); it != "" {
				kept = append(kept, it)
			}
		}
		if k == "" || len(kept) == 0 {
			continue
		}
		out[k] = kept
	}
	return out
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
