package rules

import (
	"fmt"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

var (
	qInteractive   = dom.MustQuery(`a, button, [role="button"], input, select, textarea`)
	qDialog        = dom.MustQuery(`dialog, [role="dialog"], [role="alertdialog"]`)
	qCloseControls = dom.MustQuery(`button, [role="button"], a, input[type="button"], input[type="submit"]`)
	qDialogForm    = dom.MustQuery(`form[method="dialog"]`)
	qMeta          = dom.MustQuery("meta[http-equiv]")
	qSkipLink      = dom.MustQuery(`a[href="#main-content"]`)
	qTabStops      = dom.MustQuery(`a, button, input, select, textarea, [tabindex]`)
	qLinks         = dom.MustQuery("a")
)

var closeWords = []string{"close", "dismiss", "cancel", "×", "x"}

var genericLinkText = map[string]bool{
	"Click here": true,
	"Read more":  true,
}

func operable() []Rule {
	return []Rule{
		{
			Name:        "KeyboardAccessibility",
			Type:        "Keyboard Accessibility",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeveritySerious,
			Criterion:   "2.1.1",
			Tier:        domain.TierStandard,
			Description: "Interactive element may not be keyboard accessible",
			Check:       checkKeyboardAccessibility,
		},
		{
			Name:        "PotentialFocusTrap",
			Type:        "Potential Keyboard Trap",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeveritySerious,
			Criterion:   "2.1.2",
			Tier:        domain.TierStandard,
			Description: "Dialog may trap keyboard focus: no close control found",
			Check:       checkFocusTrap,
		},
		{
			Name:        "AutoRefresh",
			Type:        "Auto-Refresh",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeveritySerious,
			Criterion:   "2.2.1",
			Tier:        domain.TierStandard,
			Description: "Page uses auto-refresh which may be disorienting",
			Check:       checkAutoRefresh,
		},
		{
			Name:        "FlashingContent",
			Type:        "Flashing Content",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeverityCritical,
			Criterion:   "2.3.1",
			Tier:        domain.TierStandard,
			Description: "Element contains flashing animation",
			Check:       checkFlashingContent,
		},
		{
			Name:        "MissingSkipLink",
			Type:        "Missing Skip Link",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeveritySerious,
			Criterion:   "2.4.1",
			Tier:        domain.TierStandard,
			Description: "No skip link to bypass repeated blocks",
			Check:       checkSkipLink,
		},
		{
			Name:        "MissingPageTitle",
			Type:        "Missing Page Title",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeveritySerious,
			Criterion:   "2.4.2",
			Tier:        domain.TierStandard,
			Description: "Page missing title element",
			Check:       checkPageTitle,
		},
		{
			Name:        "FocusOrder",
			Type:        "Focus Order",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeverityModerate,
			Criterion:   "2.4.3",
			Tier:        domain.TierStandard,
			Description: "Focus order may not be logical",
			Check:       checkFocusOrder,
		},
		{
			Name:        "GenericLinkText",
			Type:        "Generic Link Text",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeverityModerate,
			Criterion:   "2.4.4",
			Tier:        domain.TierStandard,
			Description: "Link text is too generic",
			Check:       checkGenericLinkText,
		},
		{
			Name:        "FocusNotVisible",
			Type:        "Focus Not Visible",
			Principle:   domain.PrincipleOperable,
			Severity:    domain.SeveritySerious,
			Criterion:   "2.4.7",
			Tier:        domain.TierStandard,
			Description: "Focus indicator may not be visible",
			Check:       checkFocusVisible,
		},
	}
}

// checkKeyboardAccessibility flags interactive elements that a keyboard user
// cannot reach: custom controls without a non-negative tabindex, and any
// control removed from the tab order with a negative one. Hidden and disabled
// controls are not interactive and are ignored.
func checkKeyboardAccessibility(doc *dom.Document, emit func(Finding)) {
	for i, n := range doc.QueryAll(qInteractive) {
		if n.HasAttr("disabled") || (n.Tag() == "input" && inputType(n) == "hidden") {
			continue
		}
		if n.Tag() == "a" && !n.HasAttr("href") && !n.HasAttr("onclick") && !n.HasAttr("role") {
			continue
		}
		idx, hasIdx := tabIndex(n)
		reachable := (hasIdx && idx >= 0) || (!hasIdx && nativelyFocusable(n))
		if reachable {
			continue
		}
		emit(Finding{
			Ordinal:  i,
			Element:  n.OuterHTML(),
			Fix:      n.WithAttr("tabindex", "0"),
			Selector: dom.SelectorFor(n),
		})
	}
}

func checkFocusTrap(doc *dom.Document, emit func(Finding)) {
	for i, dialog := range doc.QueryAll(qDialog) {
		if hasCloseControl(dialog) {
			continue
		}
		emit(Finding{
			Ordinal:  i,
			Element:  dialog.OuterHTML(),
			Selector: dom.SelectorFor(dialog),
		})
	}
}

func hasCloseControl(dialog *dom.Node) bool {
	if dialog.Has(qDialogForm) {
		return true
	}
	for _, c := range dialog.QueryAll(qCloseControls) {
		name := strings.ToLower(accessibleName(c))
		if strings.Contains(name, "×") {
			return true
		}
		if containsWord(name, closeWords...) {
			return true
		}
	}
	return false
}

func checkAutoRefresh(doc *dom.Document, emit func(Finding)) {
	i := 0
	for _, meta := range doc.QueryAll(qMeta) {
		if !strings.EqualFold(strings.TrimSpace(meta.AttrOr("http-equiv", "")), "refresh") {
			continue
		}
		emit(Finding{Ordinal: i, Element: meta.OuterHTML(), Selector: dom.SelectorFor(meta)})
		i++
	}
}

func checkFlashingContent(doc *dom.Document, emit func(Finding)) {
	for _, n := range doc.Elements() {
		anim, ok := n.Style().Animation()
		if !ok || !strings.Contains(strings.ToLower(anim), "flash") {
			continue
		}
		emit(Finding{
			Ordinal:  n.Index(),
			Element:  n.OuterHTML(),
			Selector: dom.SelectorFor(n),
		})
	}
}

func checkSkipLink(doc *dom.Document, emit func(Finding)) {
	if doc.QueryFirst(qSkipLink) != nil {
		return
	}
	target := doc.Body()
	if target == nil {
		target = doc.Root()
	}
	emit(Finding{Element: target.OuterHTML(), Selector: dom.SelectorFor(target)})
}

func checkPageTitle(doc *dom.Document, emit func(Finding)) {
	if title := doc.First("title"); title != nil && strings.TrimSpace(title.Text()) != "" {
		return
	}
	head := doc.Head()
	emit(Finding{Element: head.OuterHTML(), Selector: "head"})
}

// checkFocusOrder walks tab stops in document order and flags each one whose
// tabindex is lower than its predecessor's. Elements with a negative tabindex
// are out of the tab sequence and are not considered.
func checkFocusOrder(doc *dom.Document, emit func(Finding)) {
	last := -1
	for i, n := range doc.QueryAll(qTabStops) {
		idx, _ := tabIndex(n)
		if idx < 0 {
			continue
		}
		if idx < last {
			emit(Finding{
				Ordinal:     i,
				Element:     n.OuterHTML(),
				Description: fmt.Sprintf("Focus order may not be logical: tabindex %d follows tabindex %d", idx, last),
				Selector:    dom.SelectorFor(n),
			})
		}
		last = idx
	}
}

func checkGenericLinkText(doc *dom.Document, emit func(Finding)) {
	for i, a := range doc.QueryAll(qLinks) {
		if !genericLinkText[normalizeSpace(a.Text())] {
			continue
		}
		emit(Finding{Ordinal: i, Element: a.OuterHTML(), Selector: dom.SelectorFor(a)})
	}
}

// checkFocusVisible inspects :focus rules. A rule hides the focus indicator
// when it sets neither outline nor box-shadow, or turns the outline off
// without supplying a shadow.
func checkFocusVisible(doc *dom.Document, emit func(Finding)) {
	ordinal := 0
	for _, sheet := range doc.Stylesheets() {
		for _, rule := range sheet.Rules {
			i := ordinal
			ordinal++
			if !strings.Contains(rule.Selector, ":focus") {
				continue
			}
			outline, hasOutline := rule.Value("outline")
			shadow, hasShadow := rule.Value("box-shadow")
			if hasShadow && isNone(shadow) {
				hasShadow = false
			}
			if hasShadow || (hasOutline && !isNone(outline)) {
				continue
			}
			emit(Finding{
				Ordinal:  i,
				Element:  rule.CSSText(),
				Selector: rule.Selector,
			})
		}
	}
}

func isNone(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none", "0", "0px", "0 none":
		return true
	}
	return false
}
