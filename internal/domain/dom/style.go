package dom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
)

// Stylesheet is one parsed <style> element or linked sheet.
type Stylesheet struct {
	Index int
	Href  string
	Rules []*StyleRule
}

// Declaration is a single property: value pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// StyleRule is a qualified rule. Rules nested in @media are flattened with
// Media set to the condition; they are reported but never cascade.
type StyleRule struct {
	Selector     string
	Declarations []Declaration
	Media        string

	sels  []cascadia.Sel
	order int
}

// Value returns the winning declared value of prop inside this rule.
func (r *StyleRule) Value(prop string) (string, bool) {
	var val string
	found, important := false, false
	for _, d := range r.Declarations {
		if d.Property != prop {
			continue
		}
		if important && !d.Important {
			continue
		}
		val, found, important = d.Value, true, d.Important
	}
	return val, found
}

// CSSText renders the rule back to CSS.
func (r *StyleRule) CSSText() string {
	var b strings.Builder
	b.WriteString(r.Selector)
	b.WriteString(" { ")
	for _, d := range r.Declarations {
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		if d.Important {
			b.WriteString(" !important")
		}
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

// Style is the computed style of an element: declared values after the
// cascade plus inherited values. A property that resolves to nothing is
// absent, not empty.
type Style struct {
	props map[string]string
}

// Get returns the computed value of prop.
func (s Style) Get(prop string) (string, bool) {
	v, ok := s.props[prop]
	return v, ok
}

func (s Style) Color() (string, bool)     { return s.Get("color") }
func (s Style) FontSize() (string, bool)  { return s.Get("font-size") }
func (s Style) Outline() (string, bool)   { return s.Get("outline") }
func (s Style) BoxShadow() (string, bool) { return s.Get("box-shadow") }

// Animation returns the animation shorthand, or the animation name when only
// the longhand is declared.
func (s Style) Animation() (string, bool) {
	if v, ok := s.Get("animation"); ok {
		return v, true
	}
	return s.Get("animation-name")
}

// Len is the number of resolved properties.
func (s Style) Len() int { return len(s.props) }

var inherited = map[string]bool{
	"color":          true,
	"font-size":      true,
	"font-family":    true,
	"font-weight":    true,
	"font-style":     true,
	"line-height":    true,
	"letter-spacing": true,
	"text-align":     true,
	"visibility":     true,
}

// BackgroundColor returns the nearest painted background colour declared on n
// or its ancestors. Transparent layers are skipped. When the nearest painted
// layer is an image or gradient the colour underneath text is unknown and ok
// is false; BackgroundImage tells that case apart from an undeclared one.
func (n *Node) BackgroundColor() (string, bool) {
	p := n.paintedBackground()
	if p == nil {
		return "", false
	}
	if _, img := p.backgroundImage(); img {
		return "", false
	}
	return p.style.Get("background-color")
}

// BackgroundImage returns the image layer of the nearest painted background,
// if that background is an image or gradient.
func (n *Node) BackgroundImage() (string, bool) {
	if p := n.paintedBackground(); p != nil {
		return p.backgroundImage()
	}
	return "", false
}

func (n *Node) paintedBackground() *Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if _, img := cur.backgroundImage(); img {
			return cur
		}
		v, ok := cur.style.Get("background-color")
		if ok && !strings.EqualFold(strings.TrimSpace(v), "transparent") {
			return cur
		}
	}
	return nil
}

func (n *Node) backgroundImage() (string, bool) {
	v, ok := n.style.Get("background-image")
	if !ok || strings.EqualFold(strings.TrimSpace(v), "none") {
		return "", false
	}
	return v, true
}

func (d *Document) collectStylesheets(loader StylesheetLoader) {
	order := 0
	for _, n := range d.nodes {
		var text, href string
		switch n.Tag() {
		case "style":
			text = n.Text()
		case "link":
			if !isStylesheetLink(n) {
				continue
			}
			href = strings.TrimSpace(n.AttrOr("href", ""))
			if href == "" {
				continue
			}
			if loader == nil {
				d.diagnose(href, "linked stylesheet not resolved")
				continue
			}
			loaded, err := loader.Load(href)
			if err != nil {
				d.diagnose(href, "loading stylesheet: %v", err)
				continue
			}
			text = loaded
		default:
			continue
		}

		source := href
		if source == "" {
			source = fmt.Sprintf("<style>#%d", len(d.sheets))
		}
		sheet := &Stylesheet{Index: len(d.sheets), Href: href}
		for _, r := range d.parseSheet(source, text) {
			d.flatten(sheet, source, r, "", &order)
		}
		d.sheets = append(d.sheets, sheet)
	}
}

// parseSheet parses a whole stylesheet. When douceur rejects it, the sheet is
// split into top-level blocks which are parsed one by one, so a malformed
// rule only loses itself.
func (d *Document) parseSheet(source, text string) []*css.Rule {
	parsed, err := parser.Parse(text)
	if err == nil {
		return parsed.Rules
	}
	d.diagnose(source, "parsing stylesheet: %v", err)

	var out []*css.Rule
	for _, block := range splitBlocks(text) {
		parsed, err := parser.Parse(block)
		if err != nil {
			d.diagnose(source, "rule %q not evaluated: %v", firstLine(block), err)
			continue
		}
		out = append(out, parsed.Rules...)
	}
	return out
}

// splitBlocks cuts CSS text after every top-level "}" or ";".
func splitBlocks(text string) []string {
	var (
		blocks []string
		cur    strings.Builder
		depth  int
	)
	flush := func() {
		if strings.TrimSpace(cur.String()) != "" {
			blocks = append(blocks, cur.String())
		}
		cur.Reset()
	}

	s := scanner.New(text)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		cur.WriteString(tok.Value)
		if tok.Type != scanner.TokenChar {
			continue
		}
		switch tok.Value {
		case "{":
			depth++
		case "}":
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				flush()
			}
		case ";":
			if depth == 0 {
				flush()
			}
		}
	}
	flush()
	return blocks
}

func firstLine(block string) string {
	block = strings.TrimSpace(block)
	if i := strings.IndexAny(block, "{\n"); i >= 0 {
		block = block[:i]
	}
	return strings.TrimSpace(block)
}

func isStylesheetLink(n *Node) bool {
	for _, rel := range strings.Fields(strings.ToLower(n.AttrOr("rel", ""))) {
		if rel == "stylesheet" {
			return true
		}
	}
	return false
}

func (d *Document) flatten(sheet *Stylesheet, source string, r *css.Rule, media string, order *int) {
	switch r.Kind {
	case css.AtRule:
		if strings.EqualFold(strings.TrimPrefix(r.Name, "@"), "media") {
			for _, child := range r.Rules {
				d.flatten(sheet, source, child, strings.TrimSpace(r.Prelude), order)
			}
		}
	case css.QualifiedRule:
		rule := &StyleRule{
			Selector:     strings.TrimSpace(r.Prelude),
			Declarations: convertDeclarations(r.Declarations),
			Media:        media,
			order:        *order,
		}
		*order++
		for _, s := range r.Selectors {
			sel, err := cascadia.Parse(s)
			if err != nil {
				d.diagnose(source, "selector %q not evaluated: %v", s, err)
				continue
			}
			rule.sels = append(rule.sels, sel)
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
}

func convertDeclarations(decls []*css.Declaration) []Declaration {
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		decl := Declaration{
			Property:  strings.ToLower(strings.TrimSpace(d.Property)),
			Value:     strings.TrimSpace(d.Value),
			Important: d.Important,
		}
		if decl.Property == "" || decl.Value == "" {
			continue
		}
		out = append(out, decl)
	}
	return out
}

// candidate is a declaration competing in the cascade for one element.
type candidate struct {
	Declaration
	inline      bool
	specificity cascadia.Specificity
	order       int
}

// wins reports whether c takes precedence over other.
func (c candidate) wins(other candidate) bool {
	if c.Important != other.Important {
		return c.Important
	}
	if c.inline != other.inline {
		return c.inline
	}
	if c.specificity != other.specificity {
		return other.specificity.Less(c.specificity)
	}
	return c.order >= other.order
}

// computeStyles runs the cascade for every element. d.nodes is in document
// order, so parents are always resolved before their children.
func (d *Document) computeStyles() {
	var rules []*StyleRule
	for _, s := range d.sheets {
		for _, r := range s.Rules {
			if r.Media == "" && len(r.sels) > 0 {
				rules = append(rules, r)
			}
		}
	}

	for _, n := range d.nodes {
		winners := make(map[string]candidate)
		consider := func(c candidate) {
			if prev, ok := winners[c.Property]; !ok || c.wins(prev) {
				winners[c.Property] = c
			}
		}

		for _, r := range rules {
			spec, matched := matchRule(r, n)
			if !matched {
				continue
			}
			for _, decl := range r.Declarations {
				consider(candidate{Declaration: decl, specificity: spec, order: r.order})
			}
		}
		if inline, ok := n.Attr("style"); ok && strings.TrimSpace(inline) != "" {
			for _, decl := range d.parseInline(n, inline) {
				consider(candidate{Declaration: decl, inline: true})
			}
		}

		n.style = resolve(winners, n.Parent())
	}
}

// parseInline parses a style attribute. A malformed declaration is dropped
// on its own.
func (d *Document) parseInline(n *Node, inline string) []Declaration {
	// douceur loses the value of a final declaration without ";".
	decls, err := parser.ParseDeclarations(strings.TrimRight(inline, "; \t\n") + ";")
	if err == nil {
		return convertDeclarations(decls)
	}

	var out []Declaration
	for _, part := range strings.Split(inline, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		decls, err := parser.ParseDeclarations(part + ";")
		if err != nil {
			d.diagnose(SelectorFor(n), "inline declaration %q not evaluated: %v", strings.TrimSpace(part), err)
			continue
		}
		out = append(out, convertDeclarations(decls)...)
	}
	return out
}

func matchRule(r *StyleRule, n *Node) (cascadia.Specificity, bool) {
	var best cascadia.Specificity
	matched := false
	for _, sel := range r.sels {
		if sel.PseudoElement() != "" || !sel.Match(n.n) {
			continue
		}
		if s := sel.Specificity(); !matched || best.Less(s) {
			best = s
		}
		matched = true
	}
	return best, matched
}

func resolve(winners map[string]candidate, parent *Node) Style {
	props := make(map[string]string, len(winners))
	var parentStyle Style
	if parent != nil {
		parentStyle = parent.style
	}

	// Deterministic order keeps shorthand expansion stable.
	keys := make([]string, 0, len(winners))
	for k := range winners {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prop := range keys {
		val := winners[prop].Value
		switch strings.ToLower(val) {
		case "inherit":
			if v, ok := parentStyle.Get(prop); ok {
				props[prop] = v
			}
			continue
		case "unset":
			if v, ok := parentStyle.Get(prop); ok && inherited[prop] {
				props[prop] = v
			}
			continue
		case "initial":
			continue
		}
		props[prop] = val
	}

	if bg, ok := props["background"]; ok {
		color, image := splitBackground(bg)
		if _, declared := props["background-color"]; !declared && color != "" {
			props["background-color"] = color
		}
		if _, declared := props["background-image"]; !declared && image != "" {
			props["background-image"] = image
		}
	}

	for prop := range inherited {
		if _, declared := winners[prop]; declared {
			continue
		}
		if v, ok := parentStyle.Get(prop); ok {
			props[prop] = v
		}
	}
	return Style{props: props}
}

var backgroundKeywords = map[string]bool{
	"none": true, "repeat": true, "no-repeat": true, "repeat-x": true, "repeat-y": true,
	"space": true, "round": true, "center": true, "top": true, "bottom": true,
	"left": true, "right": true, "fixed": true, "scroll": true, "local": true,
	"cover": true, "contain": true, "auto": true, "border-box": true,
	"padding-box": true, "content-box": true, "text": true,
}

var imageFuncs = []string{"url(", "gradient(", "image(", "image-set(", "element(", "cross-fade("}

// splitBackground picks the colour and the first image layer out of a
// background shorthand. Colours inside image functions are not the
// background colour.
func splitBackground(v string) (color, image string) {
	for _, tok := range topLevelTokens(strings.ToLower(v)) {
		switch {
		case isImageToken(tok):
			if image == "" {
				image = tok
			}
		case strings.HasPrefix(tok, "#"),
			strings.HasPrefix(tok, "rgb(") || strings.HasPrefix(tok, "rgba("),
			strings.HasPrefix(tok, "hsl(") || strings.HasPrefix(tok, "hsla("):
			color = tok
		case strings.ContainsAny(tok, "()0123456789") || backgroundKeywords[tok]:
		default:
			color = tok
		}
	}
	return color, image
}

func isImageToken(tok string) bool {
	for _, f := range imageFuncs {
		if strings.Contains(tok, f) {
			return true
		}
	}
	return false
}

// topLevelTokens splits on whitespace, "," and "/" outside parentheses.
func topLevelTokens(v string) []string {
	var (
		toks  []string
		start = -1
		depth int
	)
	for i, r := range v {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '/'):
			if start >= 0 {
				toks = append(toks, v[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		toks = append(toks, v[start:])
	}
	return toks
}
