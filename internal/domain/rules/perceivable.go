package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/contrast"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

var (
	qImg          = dom.MustQuery("img")
	qMedia        = dom.MustQuery("video, audio")
	qCaptions     = dom.MustQuery(`track[kind="captions"]`)
	qDescriptions = dom.MustQuery(`track[kind="descriptions"]`)
)

func perceivable() []Rule {
	return []Rule{
		{
			Name:        "MissingAltText",
			Type:        "Missing Alt Text",
			Principle:   domain.PrinciplePerceivable,
			Severity:    domain.SeveritySerious,
			Criterion:   "1.1.1",
			Tier:        domain.TierStandard,
			Description: "Image is missing alt text, which is required for screen readers",
			Check:       checkMissingAltText,
		},
		{
			Name:        "MissingMediaControls",
			Type:        "Missing Media Controls",
			Principle:   domain.PrinciplePerceivable,
			Severity:    domain.SeveritySerious,
			Criterion:   "1.2.1",
			Tier:        domain.TierStandard,
			Description: "Media element is missing the controls attribute",
			Check:       checkMediaControls,
		},
		{
			Name:        "MissingMediaCaptions",
			Type:        "Missing Media Captions",
			Principle:   domain.PrinciplePerceivable,
			Severity:    domain.SeveritySerious,
			Criterion:   "1.2.2",
			Tier:        domain.TierStandard,
			Description: "Media element is missing a captions track",
			Check:       checkMediaCaptions,
		},
		{
			Name:        "MissingAudioDescription",
			Type:        "Missing Audio Description",
			Principle:   domain.PrinciplePerceivable,
			Severity:    domain.SeveritySerious,
			Criterion:   "1.2.5",
			Tier:        domain.TierStandard,
			Description: "Video missing audio description track (WCAG 2.0 AA 1.2.5)",
			Check:       checkAudioDescription,
		},
		{
			Name:        "FixedFontSize",
			Type:        "Fixed Font Size",
			Principle:   domain.PrinciplePerceivable,
			Severity:    domain.SeverityModerate,
			Criterion:   "1.4.4",
			Tier:        domain.TierStandard,
			Description: "Fixed font size may prevent text resizing",
			Check:       checkFixedFontSize,
		},
		{
			Name:        "LowColorContrast",
			Type:        "Low Color Contrast",
			Principle:   domain.PrinciplePerceivable,
			Severity:    domain.SeveritySerious,
			Criterion:   "1.4.3",
			Tier:        domain.TierStandard,
			Description: "Text color does not provide sufficient contrast with background",
			Check:       checkColorContrast,
		},
		{
			Name:        "ImageOfText",
			Type:        "Image of Text",
			Principle:   domain.PrinciplePerceivable,
			Severity:    domain.SeverityModerate,
			Criterion:   "1.4.5",
			Tier:        domain.TierStandard,
			Description: "Image appears to contain text that should be actual text",
			Check:       checkImageOfText,
		},
	}
}

func checkMissingAltText(doc *dom.Document, emit func(Finding)) {
	for i, img := range doc.QueryAll(qImg) {
		if img.HasAttr("alt") {
			continue
		}
		emit(Finding{
			Ordinal:  i,
			Element:  img.OuterHTML(),
			Fix:      img.WithAttr("alt", "Description of image"),
			Selector: dom.SelectorFor(img),
		})
	}
}

func checkMediaControls(doc *dom.Document, emit func(Finding)) {
	for i, m := range doc.QueryAll(qMedia) {
		if m.HasAttr("controls") {
			continue
		}
		emit(Finding{
			Ordinal:     i,
			Element:     m.OuterHTML(),
			Description: fmt.Sprintf("%s element missing controls attribute", strings.ToUpper(m.Tag())),
			Fix:         m.WithAttr("controls", ""),
			Selector:    dom.SelectorFor(m),
		})
	}
}

func checkMediaCaptions(doc *dom.Document, emit func(Finding)) {
	for i, m := range doc.QueryAll(qMedia) {
		if m.Has(qCaptions) {
			continue
		}
		emit(Finding{
			Ordinal:     i,
			Element:     m.OuterHTML(),
			Description: fmt.Sprintf("%s missing captions track", strings.ToUpper(m.Tag())),
			Selector:    dom.SelectorFor(m),
		})
	}
}

func checkAudioDescription(doc *dom.Document, emit func(Finding)) {
	for i, m := range doc.QueryAll(qMedia) {
		if m.Tag() != "video" || m.Has(qDescriptions) {
			continue
		}
		emit(Finding{
			Ordinal:  i,
			Element:  m.OuterHTML(),
			Selector: dom.SelectorFor(m),
		})
	}
}

// checkFixedFontSize inspects stylesheet rules, including those under @media,
// because a pixel size blocks resizing regardless of where it applies.
func checkFixedFontSize(doc *dom.Document, emit func(Finding)) {
	ordinal := 0
	for _, sheet := range doc.Stylesheets() {
		for _, rule := range sheet.Rules {
			i := ordinal
			ordinal++
			size, ok := rule.Value("font-size")
			if !ok || !strings.Contains(strings.ToLower(size), "px") {
				continue
			}
			emit(Finding{
				Ordinal:     i,
				Element:     rule.CSSText(),
				Description: fmt.Sprintf("Fixed font size %s on %q may prevent text resizing; use %s instead", size, rule.Selector, remFor(size)),
				Selector:    rule.Selector,
			})
		}
	}
}

func remFor(px string) string {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(px)), "px"), 64)
	if err != nil || v <= 0 {
		return "a relative unit such as rem"
	}
	return strconv.FormatFloat(v/16, 'f', -1, 64) + "rem"
}

// checkColorContrast compares each text-bearing element against its nearest
// painted background. When only one side is declared the other takes the
// browser default; when neither is, or the background is an image or
// gradient, the element is skipped.
func checkColorContrast(doc *dom.Document, emit func(Finding)) {
	for _, n := range bodyElements(doc) {
		if !rendersText(n) {
			continue
		}
		if _, image := n.BackgroundImage(); image {
			continue
		}
		fg, fgOK := n.Style().Color()
		bg, bgOK := n.BackgroundColor()
		if !fgOK && !bgOK {
			continue
		}
		if !fgOK {
			fg = "#000000"
		}
		if !bgOK {
			bg = "#FFFFFF"
		}
		ratio := contrast.Ratio(bg, fg)
		if contrast.Passes(ratio) {
			continue
		}
		emit(Finding{
			Ordinal:  n.Index(),
			Element:  n.OuterHTML(),
			Message:  fmt.Sprintf("Contrast ratio %.2f:1 between %s and %s is below %.1f:1", ratio, fg, bg, contrast.MinimumAA),
			Selector: dom.SelectorFor(n),
		})
	}
}

func checkImageOfText(doc *dom.Document, emit func(Finding)) {
	for i, img := range doc.QueryAll(qImg) {
		alt, ok := img.Attr("alt")
		if !ok || alt == "" || strings.ContainsAny(alt, " \t\n") {
			continue
		}
		emit(Finding{
			Ordinal:  i,
			Element:  img.OuterHTML(),
			Selector: dom.SelectorFor(img),
		})
	}
}
