package fragment

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("data-target").Matching(regexp.MustCompile(`^[a-z0-9-]+$`)).Globally()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	return p
}

// Sanitize strips scripts, handlers and unknown attributes from a fragment
// before it is injected into a surface that is not a browser. Navigation
// targets survive.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}

// Link is an in-fragment navigation control.
type Link struct {
	Target string
	Text   string
}

// Links returns the data-target controls of a fragment in document order.
func Links(markup string) ([]Link, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "data-target" && a.Val != "" {
					links = append(links, Link{Target: a.Val, Text: textContent(n)})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
