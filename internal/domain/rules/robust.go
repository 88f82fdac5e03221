package rules

import (
	"fmt"
	"strings"

	"github.com/openkraft/a11ykraft/internal/domain"
	"github.com/openkraft/a11ykraft/internal/domain/dom"
)

var qRoles = dom.MustQuery("[role]")

func robust() []Rule {
	return []Rule{
		{
			Name:        "DuplicateID",
			Type:        "Duplicate ID",
			Principle:   domain.PrincipleRobust,
			Severity:    domain.SeveritySerious,
			Criterion:   "4.1.1",
			Tier:        domain.TierStandard,
			Description: "Duplicate ID found",
			Check:       checkDuplicateIDs,
		},
		{
			Name:        "RoleWithoutName",
			Type:        "Missing ARIA Label",
			Principle:   domain.PrincipleRobust,
			Severity:    domain.SeveritySerious,
			Criterion:   "4.1.2",
			Tier:        domain.TierStandard,
			Description: "Element with role attribute missing accessible name",
			Check:       checkRoleNames,
		},
	}
}

// checkDuplicateIDs reports every element that shares its id with another.
func checkDuplicateIDs(doc *dom.Document, emit func(Finding)) {
	counts := doc.IDs()
	for _, n := range doc.Elements() {
		id := n.AttrOr("id", "")
		if counts[id] < 2 {
			continue
		}
		emit(Finding{
			Ordinal:     n.Index(),
			Element:     n.OuterHTML(),
			Description: fmt.Sprintf("Duplicate ID %q found on %d elements", id, counts[id]),
			Selector:    "#" + id,
		})
	}
}

// checkRoleNames requires an accessible name on every element with a role.
// presentation and none strip the element's semantics, so there is nothing
// to name.
func checkRoleNames(doc *dom.Document, emit func(Finding)) {
	for i, n := range doc.QueryAll(qRoles) {
		roles := strings.Fields(strings.ToLower(n.AttrOr("role", "")))
		if len(roles) == 0 || roles[0] == "presentation" || roles[0] == "none" {
			continue
		}
		if n.HasAttr("aria-label") || n.HasAttr("aria-labelledby") {
			continue
		}
		emit(Finding{Ordinal: i, Element: n.OuterHTML(), Selector: dom.SelectorFor(n)})
	}
}
