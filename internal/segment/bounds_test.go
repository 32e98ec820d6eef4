package segment

import (
	"strings"
	"testing"

	"github.com/dgallion1/resumeforge/internal/resume"
)

func TestBounds_NeverIncludesHeadingLine(t *testing.T) {
	headingSets := [][]resume.Heading{
		{{Position: 0, Key: "a"}},
		{{Position: 0, Key: "a"}, {Position: 1, Key: "b"}},
		{{Position: 2, Key: "a"}, {Position: 5, Key: "b"}, {Position: 6, Key: "c"}},
		{{Position: 3, Key: "a"}, {Position: 9, Key: "a"}, {Position: 12, Key: "b"}},
	}
	for _, hs := range headingSets {
		for _, h := range hs {
			start, end, ok := Bounds(hs, h.Key)
			if !ok {
				t.Fatalf("expected key %q to resolve", h.Key)
			}
			if end != EndOfDocument && start > end {
				t.Errorf("key %q: start %d > end %d", h.Key, start, end)
			}
			if start != firstPosition(hs, h.Key)+1 {
				t.Errorf("key %q: start %d does not follow its first heading", h.Key, start)
			}
		}
	}
}

func firstPosition(hs []resume.Heading, key string) int {
	for _, h := range hs {
		if h.Key == key {
			return h.Position
		}
	}
	return -1
}

func TestBounds_LastHeadingRunsToEnd(t *testing.T) {
	hs := []resume.Heading{{Position: 1, Key: "experience"}, {Position: 4, Key: "skills"}}
	start, end, ok := Bounds(hs, "skills")
	if !ok || start != 5 || end != EndOfDocument {
		t.Errorf("expected (5, EndOfDocument, true), got (%d, %d, %v)", start, end, ok)
	}
}

func TestBounds_MissingKey(t *testing.T) {
	_, _, ok := Bounds([]resume.Heading{{Position: 0, Key: "skills"}}, "experience")
	if ok {
		t.Error("expected missing key to report ok=false")
	}
}

func TestBounds_FirstOccurrenceOnly(t *testing.T) {
	lines := Lines("EXPERIENCE\nFirst job\nSKILLS\nGo\nExperience\nSecond job")
	hs := Headings(lines)
	body := Section(lines, hs, "experience")
	if body != "First job" {
		t.Errorf("expected only the first experience section, got %q", body)
	}
}

func TestBody_Edges(t *testing.T) {
	lines := []string{"a", "b", "c"}
	tests := []struct {
		name       string
		start, end int
		want       string
	}{
		{"middle", 1, 2, "b"},
		{"to end", 1, EndOfDocument, "b\nc"},
		{"start past end", 3, EndOfDocument, ""},
		{"empty span", 2, 2, ""},
		{"end beyond slice", 0, 10, "a\nb\nc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Body(lines, tc.start, tc.end); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSection_MissingExperienceIsEmptyString(t *testing.T) {
	lines, hs := Segment("Jane Doe\nEDUCATION\nState University\nSKILLS\nGo")
	if got := Section(lines, hs, "experience"); got != "" {
		t.Errorf("expected empty experience body, got %q", got)
	}
	sections := Sections(lines, hs)
	if _, ok := sections["experience"]; ok {
		t.Error("expected no experience entry in sections map")
	}
}

func TestSection_HeadingWithoutContent(t *testing.T) {
	lines, hs := Segment("SKILLS\nEXPERIENCE")
	if got := Section(lines, hs, "skills"); got != "" {
		t.Errorf("expected empty skills body, got %q", got)
	}
	if got := Section(lines, hs, "experience"); got != "" {
		t.Errorf("expected empty experience body, got %q", got)
	}
}

func TestSections_SampleDocument(t *testing.T) {
	lines, hs := Segment(sample)
	sections := Sections(lines, hs)
	if !strings.Contains(sections["experience"], "Acme Corp - Engineer") {
		t.Errorf("unexpected experience body %q", sections["experience"])
	}
	if !strings.Contains(sections["education"], "State University") {
		t.Errorf("unexpected education body %q", sections["education"])
	}
}

func TestOther_CollectsAdHocSections(t *testing.T) {
	lines, hs := Segment("SKILLS\nGo\nLANGUAGES:\nEnglish\nFrench\nHobbies:\nChess")
	got := Other(lines, hs)
	want := "LANGUAGES:\nEnglish\nFrench\n\nHobbies:\nChess"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
