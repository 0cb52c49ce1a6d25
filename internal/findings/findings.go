// Package findings defines the result shapes produced by an analysis run.
// Field names and nesting are part of the persisted/exported contract and
// must stay stable for downstream checklist and report generators.
package findings

import "trisk/internal/objects"

// Summary is the headline result of one analysis.
type Summary struct {
	RiskScore     int    `json:"risk_score"`
	RiskLevel     string `json:"risk_level"`
	ObjectsTotal  int    `json:"objects_total"`
	AppsImpacted  int    `json:"apps_impacted"`
	OverlapsFound int    `json:"overlaps_found"`
}

// ImpactedApp is a cataloged application whose match rules selected at
// least one object in the current change.
type ImpactedApp struct {
	AppID          string   `json:"app_id"`
	DisplayName    string   `json:"display_name"`
	ImpactScore    float64  `json:"impact_score"`
	MatchedObjects int      `json:"matched_objects"`
	TopObjects     []string `json:"top_objects"`
	Tags           []string `json:"tags,omitempty"`
	Criticality    int      `json:"criticality"`
}

// OverlapRecord describes shared objects between the current change and one
// previously analyzed change. Computed fresh per run, never persisted
// standalone.
type OverlapRecord struct {
	OtherChangeID     string   `json:"other_change_id"`
	SharedObjectCount int      `json:"shared_object_count"`
	SharedObjects     []string `json:"shared_objects"`
}

// ObjectRisk is the per-object score with its contributing reasons.
type ObjectRisk struct {
	NormalizedKey string   `json:"normalized_key"`
	RiskPoints    int      `json:"risk_points"`
	Reasons       []string `json:"reasons"`
}

// Findings is the aggregate, immutable result of one analysis run. It is
// persisted verbatim (keyed by change id, upsert semantics) and superseded,
// never merged, by a later run with the same change id.
type Findings struct {
	Version      string           `json:"trisk_version,omitempty"`
	ChangeID     string           `json:"change_id"`
	GeneratedAt  string           `json:"generated_at"`
	Summary      Summary          `json:"summary"`
	Objects      []objects.Object `json:"objects,omitempty"`
	ImpactedApps []ImpactedApp    `json:"impacted_apps"`
	Overlaps     []OverlapRecord  `json:"overlaps"`
	ObjectRisks  []ObjectRisk     `json:"object_risks"`
	Notes        []string         `json:"notes"`
	TesterScope  []string         `json:"tester_scope_suggestions"`
}

// RiskKeys returns the normalized keys carried by the snapshot's object
// risks, falling back to the raw objects list when object_risks is absent
// (older snapshots stored only objects).
func (f *Findings) RiskKeys() map[string]bool {
	keys := make(map[string]bool, len(f.ObjectRisks))
	for _, r := range f.ObjectRisks {
		if r.NormalizedKey != "" {
			keys[r.NormalizedKey] = true
		}
	}
	if len(keys) == 0 {
		for _, o := range f.Objects {
			if o.NormalizedKey != "" {
				keys[o.NormalizedKey] = true
			}
		}
	}
	return keys
}
