// Package history persists analysis snapshots and answers overlap queries
// against previously analyzed changes. The Store interface is the only
// system boundary inside the analysis core; the SQLite implementation is
// the default collaborator, the in-memory one serves tests.
package history

import (
	"sort"
	"time"

	"trisk/internal/findings"
	"trisk/internal/objects"
)

// Store persists Findings snapshots keyed by change id.
type Store interface {
	// Save upserts the snapshot for its change id, overwriting any prior
	// snapshot with the same id.
	Save(changeID string, f *findings.Findings) error

	// Get returns the stored snapshot, or nil when absent.
	Get(changeID string) (*findings.Findings, error)

	// List returns stored change ids with their generation timestamps,
	// newest first.
	List() ([]Entry, error)

	// FindOverlaps returns overlap records against all other stored
	// changes within the lookback window.
	FindOverlaps(changeID string, objs []objects.Object, windowDays int) ([]findings.OverlapRecord, error)

	Close() error
}

// Entry is one row of the stored history.
type Entry struct {
	ChangeID    string `json:"change_id"`
	GeneratedAt string `json:"generated_at"`
}

// Limits caps overlap query results.
type Limits struct {
	// MaxRecords caps the number of prior changes reported.
	MaxRecords int
	// MaxSharedKeys caps the shared-object list per record.
	MaxSharedKeys int
}

// DefaultLimits returns the standing caps (top 25 changes, 200 keys each).
func DefaultLimits() Limits {
	return Limits{MaxRecords: 25, MaxSharedKeys: 200}
}

func (l Limits) orDefaults() Limits {
	d := DefaultLimits()
	if l.MaxRecords <= 0 {
		l.MaxRecords = d.MaxRecords
	}
	if l.MaxSharedKeys <= 0 {
		l.MaxSharedKeys = d.MaxSharedKeys
	}
	return l
}

// snapshot is the store-internal view of one persisted change used during
// an overlap scan.
type snapshot struct {
	changeID    string
	generatedAt string
	f           *findings.Findings
}

// withinWindow reports whether a stored snapshot is recent enough for the
// overlap scan. A timestamp that fails to parse is treated as in-window:
// a malformed date is no reason to hide a real object overlap.
func withinWindow(generatedAt string, cutoff time.Time) bool {
	if generatedAt == "" {
		return true
	}
	ts, err := time.Parse(time.RFC3339, generatedAt)
	if err != nil {
		if ts, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
			return true
		}
	}
	return !ts.Before(cutoff)
}

// computeOverlaps intersects the current object keys with each snapshot and
// assembles capped, sorted overlap records. Snapshots for the current
// change id are skipped.
func computeOverlaps(changeID string, keys map[string]bool, snaps []snapshot, windowDays int, limits Limits, now time.Time) []findings.OverlapRecord {
	limits = limits.orDefaults()
	cutoff := now.AddDate(0, 0, -windowDays)

	overlaps := make([]findings.OverlapRecord, 0)
	for _, snap := range snaps {
		if snap.changeID == changeID || snap.f == nil {
			continue
		}
		if !withinWindow(snap.generatedAt, cutoff) {
			continue
		}

		var shared []string
		for key := range snap.f.RiskKeys() {
			if keys[key] {
				shared = append(shared, key)
			}
		}
		if len(shared) == 0 {
			continue
		}
		sort.Strings(shared)
		count := len(shared)
		if len(shared) > limits.MaxSharedKeys {
			shared = shared[:limits.MaxSharedKeys]
		}

		overlaps = append(overlaps, findings.OverlapRecord{
			OtherChangeID:     snap.changeID,
			SharedObjectCount: count,
			SharedObjects:     shared,
		})
	}

	sort.SliceStable(overlaps, func(i, j int) bool {
		if overlaps[i].SharedObjectCount != overlaps[j].SharedObjectCount {
			return overlaps[i].SharedObjectCount > overlaps[j].SharedObjectCount
		}
		return overlaps[i].OtherChangeID < overlaps[j].OtherChangeID
	})

	if len(overlaps) > limits.MaxRecords {
		overlaps = overlaps[:limits.MaxRecords]
	}
	return overlaps
}
