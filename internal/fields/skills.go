package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	itemSplit    = regexp.MustCompile(`[,\n]`)
	subItemSplit = regexp.MustCompile(`[;/]`)
)

// DefaultSkillGroup holds items that appear before any group heading.
const DefaultSkillGroup = "Skills"

const bulletCutset = " \t•·▪-*"

// Skills tokenizes a skills section into a deduplicated list. Tokens are
// split on commas and newlines, then on semicolons and slashes. Duplicates
// are detected case-insensitively; the first spelling and position win.
// Applying Skills to its own joined output returns the same list.
func Skills(section string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, item := range itemSplit.Split(section, -1) {
		out = appendTokens(out, seen, item)
	}
	return out
}

func appendTokens(out []string, seen map[string]bool, item string) []string {
	for _, tok := range subItemSplit.Split(item, -1) {
		tok = strings.Trim(tok, bulletCutset)
		if utf8.RuneCountInString(tok) < 2 {
			continue
		}
		k := strings.ToLower(tok)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, tok)
	}
	return out
}

// GroupedSkills splits a skills section into named groups. A Title-Case
// line without commas that is followed by an item line starts a new
// group; every other line is tokenized into the current group.
func GroupedSkills(section string) map[string][]string {
	var lines []string
	for _, ln := range strings.Split(section, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}

	caser := cases.Title(language.English)
	isCandidate := func(ln string) bool {
		return !strings.Contains(ln, ",") && ln == caser.String(ln)
	}

	groups := map[string][]string{}
	seen := map[string]map[string]bool{}
	current := DefaultSkillGroup
	for i, ln := range lines {
		if isCandidate(ln) && i+1 < len(lines) && !isCandidate(lines[i+1]) {
			current = strings.TrimSpace(strings.TrimSuffix(ln, ":"))
			if _, ok := groups[current]; !ok {
				groups[current] = []string{}
				seen[current] = map[string]bool{}
			}
			continue
		}
		if seen[current] == nil {
			seen[current] = map[string]bool{}
		}
		for _, item := range itemSplit.Split(ln, -1) {
			groups[current] = appendTokens(groups[current], seen[current], item)
		}
	}

	for name, items := range groups {
		if len(items) == 0 {
			delete(groups, name)
		}
	}
	return groups
}
