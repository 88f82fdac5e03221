package rules

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

// normalizeSpace collapses whitespace runs and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// words splits text into lowercase alphanumeric words.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsWord reports whether text contains any of the given whole words.
func containsWord(text string, vocabulary ...string) bool {
	for _, w := range words(text) {
		for _, v := range vocabulary {
			if w == v {
				return true
			}
		}
	}
	return false
}

// tabIndex returns the parsed tabindex and whether the attribute is present.
// An unparseable value counts as 0.
func tabIndex(n *dom.Node) (int, bool) {
	raw, ok := n.Attr("tabindex")
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, true
	}
	return v, true
}

func inputType(n *dom.Node) string {
	return strings.ToLower(strings.TrimSpace(n.AttrOr("type", "text")))
}

// nativelyFocusable reports whether the browser puts n in the tab order
// without help.
func nativelyFocusable(n *dom.Node) bool {
	if n.HasAttr("disabled") {
		return false
	}
	switch n.Tag() {
	case "a":
		return n.HasAttr("href")
	case "button", "select", "textarea":
		return true
	case "input":
		return inputType(n) != "hidden"
	}
	return false
}

// accessibleName approximates the name assistive technology would announce.
// aria-labelledby references are resolved against the document.
func accessibleName(n *dom.Node) string {
	if ids, ok := n.Attr("aria-labelledby"); ok {
		var parts []string
		for _, id := range strings.Fields(ids) {
			for _, ref := range n.Document().ByID(id) {
				if t := normalizeSpace(ref.Text()); t != "" {
					parts = append(parts, t)
				}
				break
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	if v := normalizeSpace(n.AttrOr("aria-label", "")); v != "" {
		return v
	}
	if t := normalizeSpace(n.Text()); t != "" {
		return t
	}
	if n.Tag() == "input" {
		if v := normalizeSpace(n.AttrOr("value", "")); v != "" {
			return v
		}
	}
	if v := normalizeSpace(n.AttrOr("alt", "")); v != "" {
		return v
	}
	return normalizeSpace(n.AttrOr("title", ""))
}

// referencesContent reports whether any id in the space-separated list names
// an element with visible text.
func referencesContent(doc *dom.Document, idList string) bool {
	for _, id := range strings.Fields(idList) {
		for _, ref := range doc.ByID(id) {
			if strings.TrimSpace(ref.Text()) != "" {
				return true
			}
		}
	}
	return false
}

// rendersText reports whether n carries text of its own that is painted.
func rendersText(n *dom.Node) bool {
	switch n.Tag() {
	case "script", "style", "noscript", "template", "title", "head":
		return false
	}
	return strings.TrimSpace(n.OwnText()) != ""
}

// bodyElements returns <body> and its descendants, or nil when there is no body.
func bodyElements(doc *dom.Document) []*dom.Node {
	body := doc.Body()
	if body == nil {
		return nil
	}
	return append([]*dom.Node{body}, body.Descendants()...)
}
