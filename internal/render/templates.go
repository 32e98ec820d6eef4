package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/resumeforge/internal/resume"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	firstPageTemplate    = "first_page.html"
	continuationTemplate = "continuation.html"
)

// firstPage is the view model of the sidebar layout.
type firstPage struct {
	FullName   string
	CurrentJob string
	Contact    resume.Contact
	Photo      string // path relative to the HTML file
	AboutMe    template.HTML
	References []string
	Education  []map[string]string
	Experience []map[string]string
}

// continuation is the view model of the full-width overflow layout.
type continuation struct {
	Experience []map[string]string
	Skills     map[string][]string
	Misc       map[string][]string
}

func (c continuation) empty() bool {
	return len(c.Experience) == 0 && len(c.Skills) == 0 && len(c.Misc) == 0
}

type templates struct {
	set *template.Template
	md  goldmark.Markdown
}

func loadTemplates() (*templates, error) {
	t := &templates{md: goldmark.New()}
	caser := cases.Title(language.English)
	funcs := template.FuncMap{
		"markdown": t.markdown,
		"label": func(key string) string {
			return caser.String(strings.ReplaceAll(key, "_", " "))
		},
	}
	set, err := template.New("resume").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	t.set = set
	return t, nil
}

// markdown converts free text to HTML. Raw HTML in the source is not
// passed through.
func (t *templates) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := t.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func (t *templates) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.String(), nil
}
