package rules

import (
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

var (
	qFormControls  = dom.MustQuery("input, select, textarea")
	qLabelTargets  = dom.MustQuery(`input:not([type="hidden"]), select, textarea`)
	qInvalid       = dom.MustQuery(`[aria-invalid="true"]`)
	qFormChildren  = dom.MustQuery("form input, form select, form textarea")
	qHeadings      = dom.MustQuery("h1, h2, h3, h4, h5, h6")
	qLabels        = dom.MustQuery("label")
	headingFillers = []string{"heading", "title", "section"}
	labelFillers   = []string{"label", "input"}
)

// Button-like inputs are named by their value, not by a label.
var selfLabelledInputs = map[string]bool{
	"submit": true,
	"reset":  true,
	"button": true,
	"image":  true,
}

func understandable() []Rule {
	return []Rule{
		{
			Name:        "MissingLanguage",
			Type:        "Missing Language of Page",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeveritySerious,
			Criterion:   "3.1.1",
			Tier:        domain.TierStandard,
			Description: "Document missing language attribute (WCAG 2.0 A 3.1.1)",
			Check:       checkLanguage,
		},
		{
			Name:        "FocusChange",
			Type:        "Focus Change",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeverityModerate,
			Criterion:   "3.2.1",
			Tier:        domain.TierStandard,
			Description: "Focus change may not be announced to screen readers",
			Check:       checkFocusChange,
		},
		{
			Name:        "InputChange",
			Type:        "Input Change",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeverityModerate,
			Criterion:   "3.2.2",
			Tier:        domain.TierStandard,
			Description: "Input change may not be announced to screen readers",
			Check:       checkInputChange,
		},
		{
			Name:        "UndescribedValidationError",
			Type:        "Input Error Not Described",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeveritySerious,
			Criterion:   "3.3.1",
			Tier:        domain.TierStandard,
			Description: "Form input marked as invalid but error is not programmatically described (WCAG 2.0 A 3.3.1)",
			Check:       checkErrorIdentification,
		},
		{
			Name:        "MissingFormLabel",
			Type:        "Missing Form Label/Name",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeveritySerious,
			Criterion:   "3.3.2",
			Tier:        domain.TierStandard,
			Description: "Form control missing accessible name (label, aria-label, aria-labelledby, or title attribute) (WCAG 2.0 A 1.3.1, 4.1.2)",
			Check:       checkFormLabels,
		},
		{
			Name:        "NonDescriptiveHeading",
			Type:        "Potentially Non-Descriptive Heading",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeverityModerate,
			Criterion:   "2.4.6",
			Tier:        domain.TierStandard,
			Description: "Heading text may not clearly describe the section content (WCAG 2.0 AA 2.4.6)",
			Check:       checkHeadingText,
		},
		{
			Name:        "NonDescriptiveLabel",
			Type:        "Potentially Non-Descriptive Label",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeverityModerate,
			Criterion:   "2.4.6",
			Tier:        domain.TierStandard,
			Description: "Label text may not clearly describe the associated input field (WCAG 2.0 AA 2.4.6)",
			Check:       checkLabelText,
		},
		{
			Name:        "MissingErrorSuggestion",
			Type:        "Missing Error Suggestion",
			Principle:   domain.PrincipleUnderstandable,
			Severity:    domain.SeverityModerate,
			Criterion:   "3.3.3",
			Tier:        domain.TierStandard,
			Description: "Form control marked as invalid but missing error suggestion",
			Check:       checkErrorSuggestion,
		},
	}
}

func checkLanguage(doc *dom.Document, emit func(Finding)) {
	root := doc.Root()
	if root == nil || root.HasAttr("lang") {
		return
	}
	emit(Finding{Element: root.OuterHTML(), Selector: "html"})
}

func checkFocusChange(doc *dom.Document, emit func(Finding)) {
	for _, n := range doc.Elements() {
		if !n.HasAttr("onfocus") || n.HasAttr("aria-live") {
			continue
		}
		emit(Finding{Ordinal: n.Index(), Element: n.OuterHTML(), Selector: dom.SelectorFor(n)})
	}
}

func checkInputChange(doc *dom.Document, emit func(Finding)) {
	for i, n := range doc.QueryAll(qFormControls) {
		if !n.HasAttr("onchange") || n.HasAttr("aria-live") {
			continue
		}
		emit(Finding{Ordinal: i, Element: n.OuterHTML(), Selector: dom.SelectorFor(n)})
	}
}

// checkErrorIdentification requires aria-describedby or aria-errormessage to
// point at an element that actually carries text.
func checkErrorIdentification(doc *dom.Document, emit func(Finding)) {
	for i, n := range doc.QueryAll(qInvalid) {
		if referencesContent(doc, n.AttrOr("aria-describedby", "")) ||
			referencesContent(doc, n.AttrOr("aria-errormessage", "")) {
			continue
		}
		emit(Finding{Ordinal: i, Element: n.OuterHTML(), Selector: dom.SelectorFor(n)})
	}
}

func checkFormLabels(doc *dom.Document, emit func(Finding)) {
	labelFor := make(map[string]bool)
	for _, l := range doc.QueryAll(qLabels) {
		if f := l.AttrOr("for", ""); f != "" {
			labelFor[f] = true
		}
	}

	for i, n := range doc.QueryAll(qLabelTargets) {
		if n.Tag() == "input" && selfLabelledInputs[inputType(n)] {
			continue
		}
		if id := n.AttrOr("id", ""); id != "" && labelFor[id] {
			continue
		}
		if n.HasAttr("aria-label") || n.HasAttr("aria-labelledby") || n.HasAttr("title") {
			continue
		}
		if n.Closest(func(p *dom.Node) bool { return p.Tag() == "label" }) != nil {
			continue
		}
		emit(Finding{Ordinal: i, Element: n.OuterHTML(), Selector: dom.SelectorFor(n)})
	}
}

func checkHeadingText(doc *dom.Document, emit func(Finding)) {
	for i, h := range doc.QueryAll(qHeadings) {
		text := normalizeSpace(h.Text())
		if text != "" && !containsWord(text, headingFillers...) {
			continue
		}
		emit(Finding{Ordinal: i, Element: h.OuterHTML(), Selector: dom.SelectorFor(h)})
	}
}

func checkLabelText(doc *dom.Document, emit func(Finding)) {
	for i, l := range doc.QueryAll(qLabels) {
		text := normalizeSpace(l.Text())
		if text != "" && !containsWord(text, labelFillers...) {
			continue
		}
		emit(Finding{Ordinal: i, Element: l.OuterHTML(), Selector: dom.SelectorFor(l)})
	}
}

// checkErrorSuggestion expects an invalid control inside a form to be
// followed by an element with class "error-message".
func checkErrorSuggestion(doc *dom.Document, emit func(Finding)) {
	for i, n := range doc.QueryAll(qFormChildren) {
		v, ok := n.Attr("aria-invalid")
		if !ok || strings.EqualFold(strings.TrimSpace(v), "false") {
			continue
		}
		if next := n.NextElementSibling(); next != nil && next.HasClass("error-message") {
			continue
		}
		emit(Finding{Ordinal: i, Element: n.OuterHTML(), Selector: dom.SelectorFor(n)})
	}
}
