package scoring

import (
	"strings"

	"trisk/internal/config"
)

// Weights holds the scoring heuristics. The values are policy, not
// structural logic; they can be recalibrated via configuration without
// touching the algorithm shape. Defaults reproduce the established output
// of prior analyses, so change them deliberately.
type Weights struct {
	// BasePoints maps object type codes to base risk points.
	BasePoints map[string]int
	// DefaultPoints applies to types absent from BasePoints.
	DefaultPoints int

	// CriticalAppMultiplier scales points for objects carried by an
	// impacted app at or above CriticalAppThreshold.
	CriticalAppMultiplier float64
	CriticalAppThreshold  int

	// Overlap bonuses keyed by how many other changes share the object.
	OverlapBonusSingle int
	OverlapBonusDouble int
	OverlapBonusMany   int

	// WideImpactBonus applies when more than WideImpactAppThreshold apps
	// are impacted and the object name carries a customer namespace prefix.
	WideImpactBonus        int
	WideImpactAppThreshold int
	CustomerPrefixes       []string

	// Scale converts average raw points into the 0-100 aggregate score.
	Scale float64

	// Risk level bands (inclusive lower bounds).
	HighBand   int
	MediumBand int
}

// DefaultWeights returns the built-in scoring policy.
func DefaultWeights() Weights {
	return Weights{
		BasePoints: map[string]int{
			// reports/programs
			"PROG": 6, "REPS": 6, "REPT": 6,
			// enhancements / exits
			"CMOD": 8, "SMOD": 8, "ENHO": 9, "ENHS": 9, "SPOT": 9,
			// logic
			"CLAS": 7, "INTF": 7, "FUGR": 8, "FUNC": 8,
			// ddic
			"TABL": 10, "VIEW": 9, "DDLS": 9, "DTEL": 5, "DOMA": 5, "TTYP": 5,
		},
		DefaultPoints:          3,
		CriticalAppMultiplier:  1.3,
		CriticalAppThreshold:   4,
		OverlapBonusSingle:     2,
		OverlapBonusDouble:     5,
		OverlapBonusMany:       9,
		WideImpactBonus:        2,
		WideImpactAppThreshold: 3,
		CustomerPrefixes:       []string{"Z", "Y"},
		Scale:                  1.25,
		HighBand:               75,
		MediumBand:             40,
	}
}

// WeightsFromConfig overlays configured overrides onto the defaults.
// Zero values in the config leave the default in place.
func WeightsFromConfig(cfg config.ScoringConfig) Weights {
	w := DefaultWeights()
	if cfg.Scale > 0 {
		w.Scale = cfg.Scale
	}
	if cfg.CriticalAppMultiplier > 0 {
		w.CriticalAppMultiplier = cfg.CriticalAppMultiplier
	}
	if cfg.HighBand > 0 {
		w.HighBand = cfg.HighBand
	}
	if cfg.MediumBand > 0 {
		w.MediumBand = cfg.MediumBand
	}
	for t, pts := range cfg.BasePoints {
		w.BasePoints[strings.ToUpper(t)] = pts
	}
	return w
}

// Level converts an aggregate score into its risk band.
func (w Weights) Level(score int) string {
	if score >= w.HighBand {
		return "High"
	}
	if score >= w.MediumBand {
		return "Medium"
	}
	return "Low"
}
