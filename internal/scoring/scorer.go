// Package scoring combines objects, app impact summaries and overlap data
// into per-object risk points and an aggregate 0-100 risk score.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"trisk/internal/findings"
	"trisk/internal/objects"
	"trisk/internal/version"
)

// Scorer computes risk according to a Weights policy.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer. Zero-value weights fall back to defaults.
func NewScorer(w Weights) *Scorer {
	if w.BasePoints == nil {
		w = DefaultWeights()
	}
	return &Scorer{weights: w}
}

// Score produces the complete Findings for one analysis run. The returned
// snapshot is immutable; later runs with the same change id supersede it.
func (s *Scorer) Score(changeID string, objs []objects.Object, apps []findings.ImpactedApp, overlaps []findings.OverlapRecord) *findings.Findings {
	w := s.weights

	// How many other changes share each object.
	overlapCounts := make(map[string]int)
	for _, ov := range overlaps {
		for _, key := range ov.SharedObjects {
			overlapCounts[key]++
		}
	}

	// Objects carried by a critical app's top objects.
	criticalKeys := make(map[string]bool)
	for _, app := range apps {
		if app.Criticality < w.CriticalAppThreshold {
			continue
		}
		for _, key := range app.TopObjects {
			criticalKeys[key] = true
		}
	}

	risks := make([]findings.ObjectRisk, 0, len(objs))
	totalPoints := 0.0

	for _, o := range objs {
		points, reasons := s.scoreObject(o, len(apps), criticalKeys, overlapCounts[o.NormalizedKey])
		totalPoints += points

		rounded := int(math.Round(points))
		if rounded < 0 {
			rounded = 0
		}
		risks = append(risks, findings.ObjectRisk{
			NormalizedKey: o.NormalizedKey,
			RiskPoints:    rounded,
			Reasons:       reasons,
		})
	}

	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].RiskPoints > risks[j].RiskPoints
	})

	divisor := len(objs)
	if divisor < 1 {
		divisor = 1
	}
	score := int(math.Round(totalPoints / float64(divisor) * w.Scale * 10))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return &findings.Findings{
		Version:     version.Version,
		ChangeID:    changeID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary: findings.Summary{
			RiskScore:     score,
			RiskLevel:     w.Level(score),
			ObjectsTotal:  len(objs),
			AppsImpacted:  len(apps),
			OverlapsFound: len(overlaps),
		},
		ImpactedApps: apps,
		Overlaps:     overlaps,
		ObjectRisks:  risks,
		Notes:        []string{},
		TesterScope: []string{
			"Use the overlap table to avoid re-testing scenarios already covered by another change.",
			"Prioritize tests around user exits/enhancements and DDIC changes to keep production issues boring to fix.",
		},
	}
}

// scoreObject computes the raw (pre-rounding) points and reasons for one
// object.
func (s *Scorer) scoreObject(o objects.Object, appsImpacted int, criticalKeys map[string]bool, sharedWith int) (float64, []string) {
	w := s.weights

	base, ok := w.BasePoints[o.Type]
	if !ok {
		base = w.DefaultPoints
	}
	points := float64(base)

	typ := o.Type
	if typ == "" {
		typ = "UNK"
	}
	reasons := []string{"type:" + typ}

	if criticalKeys[o.NormalizedKey] {
		points *= w.CriticalAppMultiplier
		reasons = append(reasons, "matched_critical_app")
	}

	switch {
	case sharedWith == 1:
		points += float64(w.OverlapBonusSingle)
		reasons = append(reasons, "shared_across_changes(1)")
	case sharedWith == 2:
		points += float64(w.OverlapBonusDouble)
		reasons = append(reasons, "shared_across_changes(2)")
	case sharedWith >= 3:
		points += float64(w.OverlapBonusMany)
		reasons = append(reasons, fmt.Sprintf("shared_across_changes(%d)", sharedWith))
	}

	if appsImpacted > w.WideImpactAppThreshold && hasAnyPrefix(o.Name, w.CustomerPrefixes) {
		points += float64(w.WideImpactBonus)
		reasons = append(reasons, "wide_app_impact_hint")
	}

	return points, reasons
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
