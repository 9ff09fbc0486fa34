package platform

import (
	"bytes"
	"fmt"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"io"
	"sort"
)

// InjectAttributes parses an HTML document and sets attrs on its root <html>
// element, replacing attributes of the same name.
func InjectAttributes(r io.Reader, attrs map[string]string) ([]byte, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	root := findRoot(doc)
	if root == nil {
		return nil, fmt.Errorf("document has no html element")
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		setAttr(root, name, attrs[name])
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

func findRoot(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
