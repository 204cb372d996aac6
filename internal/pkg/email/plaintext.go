package email

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// lineBreaking are the elements that start a new line in the text rendering.
var lineBreaking = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Tr: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// TextFromHTML renders an HTML body as plain text for the text/plain
// alternative. Style and script contents are dropped and each block element
// starts a new line.
func TextFromHTML(body string) string {
	z := html.NewTokenizer(strings.NewReader(body))
	var lines []string
	var cur strings.Builder
	skip := 0

	flush := func() {
		if line := strings.Join(strings.Fields(cur.String()), " "); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			flush()
			return strings.Join(lines, "\n")
		case html.TextToken:
			if skip == 0 {
				cur.Write(z.Text())
				cur.WriteByte(' ')
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Style || a == atom.Script {
				skip++
			}
			if lineBreaking[a] {
				flush()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if (a == atom.Style || a == atom.Script) && skip > 0 {
				skip--
			}
			if lineBreaking[a] {
				flush()
			}
		}
	}
}
