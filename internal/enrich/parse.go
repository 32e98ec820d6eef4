package enrich

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dgallion1/resumeforge/internal/resume"
)

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json|JSON)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// Parse decodes a model reply into a JSON object. Code fences around the
// object are removed first. Anything that is not a JSON object fails with
// an enrichment_malformed error carrying the raw reply.
func Parse(raw string) (map[string]any, error) {
	text := stripCodeBlock(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, &resume.Error{
			Kind:    resume.KindEnrichmentMalformed,
			Detail:  "reply is not a JSON object",
			Payload: raw,
			Err:     err,
		}
	}
	if payload == nil {
		return nil, &resume.Error{
			Kind:    resume.KindEnrichmentMalformed,
			Detail:  "reply is null",
			Payload: raw,
		}
	}
	return payload, nil
}
