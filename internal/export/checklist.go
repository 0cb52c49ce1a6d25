// Package export renders tester-scope checklists from a Findings snapshot.
// It consumes only the persisted JSON shape and lives outside the analysis
// core: the pipeline works the same whether or not anything is exported.
package export

import (
	"fmt"
	"strings"

	"trisk/internal/findings"
)

// Section is one titled block of checklist items.
type Section struct {
	Title string
	Items []string
}

// enhancement and dictionary type markers used to pick focus objects.
var (
	enhancementMarkers = []string{":CMOD:", ":SMOD:", ":ENHO:", ":ENHS:", ":SPOT:"}
	dictionaryMarkers  = []string{":TABL:", ":VIEW:", ":DDLS:"}
)

const focusObjectLimit = 10

// BuildChecklist derives checklist sections from a findings snapshot.
func BuildChecklist(f *findings.Findings) []Section {
	sections := make([]Section, 0, 3)

	var focus []string

	if enh := riskKeysMatching(f.ObjectRisks, enhancementMarkers); len(enh) > 0 {
		focus = append(focus, "Prioritize validation around exits/enhancements (high regression risk):")
		focus = append(focus, enh...)
	}
	if ddic := riskKeysMatching(f.ObjectRisks, dictionaryMarkers); len(ddic) > 0 {
		focus = append(focus, "Prioritize DDIC/CDS checks (data structure & semantics):")
		focus = append(focus, ddic...)
	}
	if len(f.ImpactedApps) > 0 {
		focus = append(focus, "Impacted apps/components to regression test (ranked):")
		for i, app := range f.ImpactedApps {
			if i >= focusObjectLimit {
				break
			}
			name := app.DisplayName
			if name == "" {
				name = app.AppID
			}
			focus = append(focus, fmt.Sprintf("- %s (matched objects: %d, impact: %.2f)",
				name, app.MatchedObjects, app.ImpactScore))
		}
	}
	if len(focus) == 0 {
		focus = append(focus, "- Review top risk objects and select at least 1 happy-path + 1 negative-path scenario per impacted area.")
	}
	sections = append(sections, Section{Title: "What to focus on", Items: focus})

	var dedupe []string
	if len(f.Overlaps) > 0 {
		dedupe = append(dedupe, "Avoid redundant testing where overlap is already covered:")
		for i, ov := range f.Overlaps {
			if i >= focusObjectLimit {
				break
			}
			dedupe = append(dedupe, fmt.Sprintf("- Overlaps with %s (shared objects: %d)",
				ov.OtherChangeID, ov.SharedObjectCount))
		}
	} else {
		dedupe = append(dedupe, "- No recent overlaps detected in local history (or no prior analyses in last window).")
	}
	sections = append(sections, Section{Title: "Redundancy guardrails", Items: dedupe})

	sections = append(sections, Section{Title: "Quick smoke checklist", Items: []string{
		"- Run quick smoke for the impacted apps (basic navigation + primary transaction).",
		"- Validate authorization/role impacts if exits/enhancements touch security-sensitive flows.",
		"- Confirm error handling: failures should be localized and actionable.",
		"- Capture screenshots/logs for any new validations to make future triage faster.",
	}})

	return sections
}

func riskKeysMatching(risks []findings.ObjectRisk, markers []string) []string {
	var items []string
	for _, r := range risks {
		if len(items) >= focusObjectLimit {
			break
		}
		for _, m := range markers {
			if strings.Contains(r.NormalizedKey, m) {
				items = append(items, "- "+r.NormalizedKey)
				break
			}
		}
	}
	return items
}

// stripBullet removes the leading "- " marker items may carry; renderers
// add their own bullets.
func stripBullet(item string) string {
	return strings.TrimPrefix(item, "- ")
}
