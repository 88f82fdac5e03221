package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Query is a compiled CSS selector group.
type Query struct {
	text  string
	group cascadia.SelectorGroup
}

// CompileQuery compiles a selector group such as "video, audio".
func CompileQuery(sel string) (Query, error) {
	g, err := cascadia.ParseGroup(sel)
	if err != nil {
		return Query{}, fmt.Errorf("compiling selector %q: %w", sel, err)
	}
	return Query{text: sel, group: g}, nil
}

// MustQuery is CompileQuery for selectors known at compile time.
func MustQuery(sel string) Query {
	q, err := CompileQuery(sel)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Query) String() string { return q.text }

func (q Query) match(n *html.Node) bool {
	return q.group != nil && q.group.Match(n)
}

// QueryAll returns the elements matching q in document order.
func (d *Document) QueryAll(q Query) []*Node {
	return d.wrap(cascadia.QueryAll(d.root, q.group))
}

// QueryFirst returns the first matching element or nil.
func (d *Document) QueryFirst(q Query) *Node {
	if m := cascadia.Query(d.root, q.group); m != nil {
		return d.byNode[m]
	}
	return nil
}

// QueryAll returns the descendants of n matching q in document order.
func (n *Node) QueryAll(q Query) []*Node {
	return n.doc.wrap(cascadia.QueryAll(n.n, q.group))
}

// Has reports whether any descendant of n matches q.
func (n *Node) Has(q Query) bool {
	return cascadia.Query(n.n, q.group) != nil
}

// Matches reports whether n itself matches q.
func (n *Node) Matches(q Query) bool { return q.match(n.n) }

func (d *Document) wrap(hs []*html.Node) []*Node {
	out := make([]*Node, 0, len(hs))
	for _, h := range hs {
		if node, ok := d.byNode[h]; ok {
			out = append(out, node)
		}
	}
	return out
}
