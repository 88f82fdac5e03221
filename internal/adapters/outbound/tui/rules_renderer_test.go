package tui_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/tui"
	"github.com/openkraft/a11ykraft/internal/domain/rules"
)

func TestRenderRules_GroupsByPrinciple(t *testing.T) {
	output := tui.RenderRules(rules.Default().Info())

	assert.Contains(t, output, "missing-alt-text")
	assert.Contains(t, output, "navigation-consistency")

	perceivable := strings.Index(output, "Perceivable")
	operable := strings.Index(output, "Operable")
	robust := strings.Index(output, "Robust")
	site := strings.Index(output, "Site-wide")
	assert.True(t, perceivable >= 0 && perceivable < operable && operable < robust && robust < site)
}
