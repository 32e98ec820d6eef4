package acquire

import (
	"bytes"
	"encoding/base64"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/resumeforge/internal/resume"
)

func acquireHTML(data []byte) (resume.RawDocument, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return resume.RawDocument{}, resume.Errorf(resume.KindUnsupportedFormat, err, "unreadable html")
	}

	var (
		lines []string
		links []string
		image []byte
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				lines = append(lines, t)
			}
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "head", "script", "style", "noscript", "template":
				return
			case "a":
				if href := attr(n, "href"); strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
					links = append(links, href)
				}
			case "img":
				if image == nil {
					image = dataURI(attr(n, "src"))
				}
			case "h1", "h2", "h3", "h4", "h5", "h6", "p", "li", "td", "th", "dt", "dd", "blockquote", "pre":
				if t := textContent(n); t != "" {
					lines = append(lines, t)
				}
				// Links and images can still sit inside the block.
				collect(n, &links, &image)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return resume.RawDocument{
		Text:  strings.Join(lines, "\n"),
		Links: links,
		Image: image,
	}, nil
}

// collect gathers hrefs and the first data: image below n without
// emitting text.
func collect(n *html.Node, links *[]string, image *[]byte) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "a":
				if href := attr(c, "href"); strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
					*links = append(*links, href)
				}
			case "img":
				if *image == nil {
					*image = dataURI(attr(c, "src"))
				}
			}
		}
		collect(c, links, image)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// dataURI decodes a base64 "data:image/..." URI, returning nil for any
// other source.
func dataURI(src string) []byte {
	if !strings.HasPrefix(src, "data:image/") {
		return nil
	}
	meta, payload, ok := strings.Cut(src, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(b) == 0 {
		return nil
	}
	return b
}

// textContent joins the text nodes below n, collapsing whitespace runs.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)

	var out []string
	for _, ln := range strings.Split(buf.String(), "\n") {
		if ln = strings.Join(strings.Fields(ln), " "); ln != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}
