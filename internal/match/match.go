// Package match maps changed objects onto the application catalog and
// produces per-application impact summaries.
package match

import (
	"path"
	"sort"

	"trisk/internal/catalog"
	"trisk/internal/findings"
	"trisk/internal/objects"
)

// topObjectsPerApp caps the normalized keys carried per impacted app.
const topObjectsPerApp = 10

// Map returns one ImpactedApp per catalog entry that matched at least one
// object. An object matches an entry when its type satisfies the entry's
// type set (empty set = no constraint) and either its name matches a
// namespace pattern or its package matches a package pattern, empty pattern
// sets being non-constraining for their own dimension. Results are sorted
// by (impact_score, criticality) descending, stable.
func Map(objs []objects.Object, cat *catalog.Catalog) []findings.ImpactedApp {
	if cat == nil || len(cat.Apps) == 0 || len(objs) == 0 {
		return []findings.ImpactedApp{}
	}

	results := make([]findings.ImpactedApp, 0, len(cat.Apps))

	for _, app := range cat.Apps {
		typeSet := make(map[string]bool, len(app.MatchRules.ObjectTypes))
		for _, t := range app.MatchRules.ObjectTypes {
			typeSet[t] = true
		}

		var matched []string
		for _, o := range objs {
			typeOK := len(typeSet) == 0 || typeSet[o.Type]
			nsOK := len(app.MatchRules.Namespaces) == 0 || matchAny(app.MatchRules.Namespaces, o.Name)
			pkgOK := len(app.MatchRules.Packages) == 0 || matchAny(app.MatchRules.Packages, o.Package)

			if typeOK && (nsOK || pkgOK) {
				matched = append(matched, o.NormalizedKey)
			}
		}

		if len(matched) == 0 {
			continue
		}

		impact := float64(len(matched)) / float64(len(objs))
		if impact > 1.0 {
			impact = 1.0
		}

		top := matched
		if len(top) > topObjectsPerApp {
			top = top[:topObjectsPerApp]
		}

		results = append(results, findings.ImpactedApp{
			AppID:          app.AppID,
			DisplayName:    app.DisplayName,
			ImpactScore:    impact,
			MatchedObjects: len(matched),
			TopObjects:     top,
			Tags:           app.Tags,
			Criticality:    app.Criticality,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ImpactScore != results[j].ImpactScore {
			return results[i].ImpactScore > results[j].ImpactScore
		}
		return results[i].Criticality > results[j].Criticality
	})

	return results
}

// matchAny reports whether value matches any of the shell-glob patterns.
// Patterns and values are already upper-cased by the catalog loader and
// object parser; a pattern that fails to compile counts as no match.
func matchAny(patterns []string, value string) bool {
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if ok, err := path.Match(pat, value); err == nil && ok {
			return true
		}
	}
	return false
}
