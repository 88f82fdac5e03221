// Package dom parses page markup into a read-only element tree with attribute,
// text and computed-style access. A Document is never mutated after Parse
// returns, so rules may read it concurrently.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ErrEmptyMarkup is returned for markup that contains no document at all.
var ErrEmptyMarkup = errors.New("empty markup")

// StylesheetLoader fetches the text of a linked stylesheet.
type StylesheetLoader interface {
	Load(href string) (string, error)
}

// Option configures Parse.
type Option func(*parseConfig)

type parseConfig struct {
	loader StylesheetLoader
}

// WithStylesheetLoader lets Parse resolve <link rel="stylesheet"> elements.
// Without a loader, linked sheets are recorded as unresolved.
func WithStylesheetLoader(l StylesheetLoader) Option {
	return func(c *parseConfig) { c.loader = l }
}

// Diagnostic records a non-fatal resolution problem found while parsing.
type Diagnostic struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Document is a parsed page.
type Document struct {
	root        *html.Node
	nodes       []*Node
	byNode      map[*html.Node]*Node
	ids         map[string][]*Node
	sheets      []*Stylesheet
	diagnostics []Diagnostic
}

// Node is an element of a Document.
type Node struct {
	n     *html.Node
	doc   *Document
	index int
	style Style
}

// Parse builds a Document from markup. Only input that cannot be read as a
// document at all is an error; malformed fragments are repaired the way
// browsers repair them, and stylesheet problems become diagnostics.
func Parse(markup string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrEmptyMarkup
	}
	cfg := parseConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	doc := &Document{
		root:   root,
		byNode: make(map[*html.Node]*Node),
		ids:    make(map[string][]*Node),
	}
	doc.index(root)
	doc.collectStylesheets(cfg.loader)
	doc.computeStyles()
	return doc, nil
}

func (d *Document) index(n *html.Node) {
	if n.Type == html.ElementNode {
		node := &Node{n: n, doc: d, index: len(d.nodes)}
		d.nodes = append(d.nodes, node)
		d.byNode[n] = node
		if id, ok := node.Attr("id"); ok && id != "" {
			d.ids[id] = append(d.ids[id], node)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.index(c)
	}
}

// Elements returns every element in document order.
func (d *Document) Elements() []*Node {
	return append([]*Node(nil), d.nodes...)
}

// ByID returns all elements whose id equals id, in document order.
func (d *Document) ByID(id string) []*Node {
	return append([]*Node(nil), d.ids[id]...)
}

// IDs returns every non-empty id value that occurs in the document.
func (d *Document) IDs() map[string]int {
	counts := make(map[string]int, len(d.ids))
	for id, nodes := range d.ids {
		counts[id] = len(nodes)
	}
	return counts
}

// Root returns the <html> element.
func (d *Document) Root() *Node { return d.First("html") }

// Head returns the <head> element, which the parser always creates.
func (d *Document) Head() *Node { return d.First("head") }

// Body returns the <body> element, or nil for frameset documents.
func (d *Document) Body() *Node { return d.First("body") }

// First returns the first element with the given tag name.
func (d *Document) First(tag string) *Node {
	for _, n := range d.nodes {
		if n.n.Data == tag {
			return n
		}
	}
	return nil
}

// ByTag returns the elements with any of the given tag names in document order.
func (d *Document) ByTag(tags ...string) []*Node {
	var out []*Node
	for _, n := range d.nodes {
		for _, t := range tags {
			if n.n.Data == t {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Stylesheets returns the resolved stylesheets in document order.
func (d *Document) Stylesheets() []*Stylesheet {
	return append([]*Stylesheet(nil), d.sheets...)
}

// Diagnostics returns the non-fatal problems recorded while parsing.
func (d *Document) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), d.diagnostics...)
}

func (d *Document) diagnose(source, format string, args ...any) {
	d.diagnostics = append(d.diagnostics, Diagnostic{Source: source, Message: fmt.Sprintf(format, args...)})
}

// Render serializes the whole document in normalized form.
func (d *Document) Render() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

// Tag returns the lowercase tag name.
func (n *Node) Tag() string { return n.n.Data }

// Index is the element's position in document order.
func (n *Node) Index() int { return n.index }

// Attr returns an attribute value and whether it is present at all, so that
// an empty value can be told apart from an absent attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports attribute presence regardless of value.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// AttrOr returns the attribute value or def when absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Text returns the concatenated text of all descendant text nodes.
func (n *Node) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(h *html.Node) {
		if h.Type == html.TextNode {
			b.WriteString(h.Data)
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.n)
	return b.String()
}

// OwnText returns the text of direct text-node children only.
func (n *Node) OwnText() string {
	var b strings.Builder
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// OuterHTML serializes the element and its subtree.
func (n *Node) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n.n)
	return buf.String()
}

// WithAttr renders the element as if attribute key were set to val. The
// document is left untouched.
func (n *Node) WithAttr(key, val string) string {
	clone := *n.n
	clone.Parent, clone.PrevSibling, clone.NextSibling = nil, nil, nil
	clone.Attr = make([]html.Attribute, 0, len(n.n.Attr)+1)
	replaced := false
	for _, a := range n.n.Attr {
		if a.Namespace == "" && a.Key == key {
			a.Val = val
			replaced = true
		}
		clone.Attr = append(clone.Attr, a)
	}
	if !replaced {
		clone.Attr = append(clone.Attr, html.Attribute{Key: key, Val: val})
	}
	var buf bytes.Buffer
	_ = html.Render(&buf, &clone)
	return buf.String()
}

// Parent returns the parent element, or nil at the root.
func (n *Node) Parent() *Node {
	for p := n.n.Parent; p != nil; p = p.Parent {
		if node, ok := n.doc.byNode[p]; ok {
			return node
		}
	}
	return nil
}

// Children returns the direct child elements.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if node, ok := n.doc.byNode[c]; ok {
			out = append(out, node)
		}
	}
	return out
}

// NextElementSibling returns the next sibling element, skipping text.
func (n *Node) NextElementSibling() *Node {
	for s := n.n.NextSibling; s != nil; s = s.NextSibling {
		if node, ok := n.doc.byNode[s]; ok {
			return node
		}
	}
	return nil
}

// Closest returns the nearest ancestor (excluding n) satisfying pred.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if pred(p) {
			return p
		}
	}
	return nil
}

// Descendants returns all descendant elements in document order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var walk func(*html.Node)
	walk = func(h *html.Node) {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if node, ok := n.doc.byNode[c]; ok {
				out = append(out, node)
			}
			walk(c)
		}
	}
	walk(n.n)
	return out
}

// ClassList returns the whitespace-separated class names.
func (n *Node) ClassList() []string {
	return strings.Fields(n.AttrOr("class", ""))
}

// HasClass reports whether the element carries the class name.
func (n *Node) HasClass(name string) bool {
	for _, c := range n.ClassList() {
		if c == name {
			return true
		}
	}
	return false
}

// Style returns the element's computed style.
func (n *Node) Style() Style { return n.style }

// Document returns the owning document.
func (n *Node) Document() *Document { return n.doc }
