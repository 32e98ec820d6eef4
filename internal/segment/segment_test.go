package segment

import (
	"strings"
	"testing"
)

const sample = "John Smith\njohn@x.com\nEXPERIENCE:\nAcme Corp - Engineer\nEDUCATION:\nState University"

func TestLines_TrimsAndDropsBlank(t *testing.T) {
	input := "  First line  \n\n   \n\tSecond\r\nThird\fFourth\n"
	got := Lines(input)
	want := []string{"First line", "Second", "Third", "Fourth"}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("line[%d]: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestLines_EmptyInput(t *testing.T) {
	if got := Lines(""); len(got) != 0 {
		t.Errorf("expected no lines, got %q", got)
	}
}

func TestHeadings_VocabularyAndHeuristic(t *testing.T) {
	lines := []string{
		"Jane Doe",
		"Summary",
		"Engineer with ten years of experience.",
		"Work Experience",
		"Acme Corp",
		"LANGUAGES:",
		"English, French",
		"Hobbies:",
		"Chess",
		"CONTACT DETAILS",
		"2019 - 2021",
	}
	hs := Headings(lines)

	want := []struct {
		pos int
		key string
	}{
		{1, "profile"},
		{3, "experience"},
		{5, "languages"},
		{7, "hobbies"},
		{9, "contact_details"},
	}
	if len(hs) != len(want) {
		t.Fatalf("expected %d headings, got %d: %+v", len(want), len(hs), hs)
	}
	for i, w := range want {
		if hs[i].Position != w.pos || hs[i].Key != w.key {
			t.Errorf("heading[%d]: expected (%d, %q), got (%d, %q)", i, w.pos, w.key, hs[i].Position, hs[i].Key)
		}
	}
}

func TestHeadings_VocabularyWinsOverHeuristic(t *testing.T) {
	hs := Headings([]string{"SKILLS & TOOLS:"})
	if len(hs) != 1 || hs[0].Key != "skills" {
		t.Fatalf("expected skills heading, got %+v", hs)
	}
}

func TestHeadings_KeywordPrefix(t *testing.T) {
	tests := []struct {
		line, key string
	}{
		{"About Me", "profile"},
		{"Work History", "experience"},
		{"Volunteer Experience", "volunteer_experience"},
		{"Awards & Honors", "achievements"},
		{"Licenses and Certifications", "certifications"},
		{"Referees", "references"},
		{"Technical Skills", "skills"},
	}
	for _, tc := range tests {
		hs := Headings([]string{tc.line})
		if len(hs) != 1 || hs[0].Key != tc.key {
			t.Errorf("%q: expected key %q, got %+v", tc.line, tc.key, hs)
		}
	}
}

func TestHeadings_LongUpperCaseLineIsNotHeading(t *testing.T) {
	hs := Headings([]string{"LED A TEAM OF SIX ENGINEERS ACROSS REGIONS"})
	if len(hs) != 0 {
		t.Errorf("expected no headings, got %+v", hs)
	}
}

func TestHeadings_PositionsStrictlyIncreasing(t *testing.T) {
	_, hs := Segment(sample + "\nSKILLS\nGo, SQL\nREFERENCES:\nOn request")
	for i := 1; i < len(hs); i++ {
		if hs[i].Position <= hs[i-1].Position {
			t.Fatalf("positions not strictly increasing: %+v", hs)
		}
	}
}

func TestDerivedKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"LANGUAGES:", "languages"},
		{"Open Source  Work:", "open_source_work"},
		{"  Side Projects ", "side_projects"},
		{":", ""},
	}
	for _, tc := range tests {
		if got := DerivedKey(tc.in); got != tc.want {
			t.Errorf("DerivedKey(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSegment_SampleDocument(t *testing.T) {
	lines, hs := Segment(sample)
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}
	if len(hs) != 2 {
		t.Fatalf("expected 2 headings, got %+v", hs)
	}
	if hs[0].Key != "experience" || hs[1].Key != "education" {
		t.Errorf("unexpected heading keys: %+v", hs)
	}
	if !strings.HasPrefix(hs[0].Text, "EXPERIENCE") {
		t.Errorf("expected heading text to be preserved, got %q", hs[0].Text)
	}
}
