package dom

import "strings"

// SelectorFor derives a human-readable locator for n: "#id" when the element
// has a non-empty id, otherwise "." plus its dot-joined classes, otherwise the
// tag name. The result is descriptive only and need not be unique.
func SelectorFor(n *Node) string {
	if id, ok := n.Attr("id"); ok && id != "" {
		return "#" + id
	}
	if classes := n.ClassList(); len(classes) > 0 {
		return "." + strings.Join(classes, ".")
	}
	return strings.ToLower(n.Tag())
}
