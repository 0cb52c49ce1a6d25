package analysis

import (
	"errors"
	"testing"

	"trisk/internal/catalog"
	"trisk/internal/findings"
	"trisk/internal/history"
	"trisk/internal/logging"
	"trisk/internal/objects"
	"trisk/internal/scoring"
)

func newTestAnalyzer(store history.Store) *Analyzer {
	cat := &catalog.Catalog{Version: "1", Apps: []catalog.Entry{
		{AppID: "fin", DisplayName: "Finance", Criticality: 5, MatchRules: catalog.MatchRules{
			Namespaces: []string{"ZFI*"},
		}},
	}}
	return New(store, cat, scoring.DefaultWeights(), logging.Nop())
}

func TestRunFullPipeline(t *testing.T) {
	store := history.NewMemoryStore(history.Limits{})
	a := newTestAnalyzer(store)

	f, err := a.Run(Request{
		ChangeID:   "CHG-1",
		Input:      []byte("R3TR PROG ZFI_POSTING_REPORT\nR3TR CMOD ZFI_EXIT_001"),
		Format:     objects.FormatText,
		WindowDays: 30,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if f.Summary.ObjectsTotal != 2 {
		t.Errorf("ObjectsTotal = %d, want 2", f.Summary.ObjectsTotal)
	}
	if f.Summary.AppsImpacted != 1 {
		t.Errorf("AppsImpacted = %d, want 1", f.Summary.AppsImpacted)
	}
	if f.Summary.RiskScore < 0 || f.Summary.RiskScore > 100 {
		t.Errorf("risk score out of bounds: %d", f.Summary.RiskScore)
	}

	// The snapshot must be persisted for future overlap queries.
	stored, err := store.Get("CHG-1")
	if err != nil || stored == nil {
		t.Fatalf("snapshot not persisted: %+v, %v", stored, err)
	}
	if stored.Summary.RiskScore != f.Summary.RiskScore {
		t.Errorf("stored snapshot differs from returned findings")
	}
}

func TestRunSequentialChangesReportOverlap(t *testing.T) {
	store := history.NewMemoryStore(history.Limits{})
	a := newTestAnalyzer(store)

	if _, err := a.Run(Request{
		ChangeID:   "CHG-1",
		Input:      []byte("R3TR PROG ZFI_SHARED\nR3TR TABL ZFI_T1"),
		WindowDays: 30,
	}); err != nil {
		t.Fatal(err)
	}

	f, err := a.Run(Request{
		ChangeID:   "CHG-2",
		Input:      []byte("R3TR PROG ZFI_SHARED\nR3TR VIEW ZFI_V9"),
		WindowDays: 30,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(f.Overlaps) != 1 {
		t.Fatalf("overlaps = %+v, want one record for CHG-1", f.Overlaps)
	}
	ov := f.Overlaps[0]
	if ov.OtherChangeID != "CHG-1" || ov.SharedObjectCount != 1 {
		t.Errorf("overlap = %+v", ov)
	}
	if ov.SharedObjects[0] != "R3TR:PROG:ZFI_SHARED" {
		t.Errorf("shared objects = %v", ov.SharedObjects)
	}
	if f.Summary.OverlapsFound != 1 {
		t.Errorf("OverlapsFound = %d, want 1", f.Summary.OverlapsFound)
	}
}

func TestRunNoObjects(t *testing.T) {
	store := history.NewMemoryStore(history.Limits{})
	a := newTestAnalyzer(store)

	_, err := a.Run(Request{ChangeID: "CHG-EMPTY", Input: []byte("nothing to see here")})
	if !errors.Is(err, ErrNoObjects) {
		t.Fatalf("err = %v, want ErrNoObjects", err)
	}

	// Nothing may be persisted for a run that produced no objects.
	stored, _ := store.Get("CHG-EMPTY")
	if stored != nil {
		t.Errorf("no snapshot should be persisted: %+v", stored)
	}
}

func TestRunRequiresChangeID(t *testing.T) {
	a := newTestAnalyzer(history.NewMemoryStore(history.Limits{}))
	if _, err := a.Run(Request{Input: []byte("R3TR PROG ZX")}); err == nil {
		t.Error("missing change id should fail")
	}
}

// failingStore simulates a broken history backend.
type failingStore struct {
	*history.MemoryStore
	failOverlaps bool
	failSave     bool
}

func (f *failingStore) FindOverlaps(changeID string, objs []objects.Object, windowDays int) ([]findings.OverlapRecord, error) {
	if f.failOverlaps {
		return nil, errors.New("backend gone")
	}
	return f.MemoryStore.FindOverlaps(changeID, objs, windowDays)
}

func (f *failingStore) Save(changeID string, fnd *findings.Findings) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(changeID, fnd)
}

func TestRunDegradesWhenOverlapQueryFails(t *testing.T) {
	store := &failingStore{MemoryStore: history.NewMemoryStore(history.Limits{}), failOverlaps: true}
	a := newTestAnalyzer(store)

	f, err := a.Run(Request{ChangeID: "CHG-1", Input: []byte("R3TR PROG ZFI_X")})
	if err != nil {
		t.Fatalf("overlap failure must not abort the run: %v", err)
	}
	if f.Summary.OverlapsFound != 0 {
		t.Errorf("OverlapsFound = %d, want 0", f.Summary.OverlapsFound)
	}
	if len(f.Notes) == 0 {
		t.Error("degraded run should carry a note")
	}
}

func TestRunSaveFailureSurfacesError(t *testing.T) {
	store := &failingStore{MemoryStore: history.NewMemoryStore(history.Limits{}), failSave: true}
	a := newTestAnalyzer(store)

	if _, err := a.Run(Request{ChangeID: "CHG-1", Input: []byte("R3TR PROG ZFI_X")}); err == nil {
		t.Error("save failure must surface as an error")
	}
}

// panickyStore provokes the orchestration boundary recovery.
type panickyStore struct {
	*history.MemoryStore
}

func (p *panickyStore) FindOverlaps(string, []objects.Object, int) ([]findings.OverlapRecord, error) {
	panic("corrupted state")
}

func TestRunRecoversFromPanic(t *testing.T) {
	store := &panickyStore{MemoryStore: history.NewMemoryStore(history.Limits{})}
	a := newTestAnalyzer(store)

	f, err := a.Run(Request{ChangeID: "CHG-1", Input: []byte("R3TR PROG ZFI_X")})
	if err == nil {
		t.Fatal("panic must surface as a single error")
	}
	if f != nil {
		t.Errorf("no partial findings on panic, got %+v", f)
	}

	stored, _ := store.Get("CHG-1")
	if stored != nil {
		t.Errorf("no partial snapshot may be persisted: %+v", stored)
	}
}

func TestRunRerunSupersedesSnapshot(t *testing.T) {
	store := history.NewMemoryStore(history.Limits{})
	a := newTestAnalyzer(store)

	if _, err := a.Run(Request{ChangeID: "CHG-1", Input: []byte("R3TR PROG ZFI_A")}); err != nil {
		t.Fatal(err)
	}
	second, err := a.Run(Request{ChangeID: "CHG-1", Input: []byte("R3TR TABL ZFI_B\nR3TR VIEW ZFI_C")})
	if err != nil {
		t.Fatal(err)
	}

	stored, _ := store.Get("CHG-1")
	if stored.Summary.ObjectsTotal != second.Summary.ObjectsTotal {
		t.Errorf("rerun should supersede: stored %d objects, want %d",
			stored.Summary.ObjectsTotal, second.Summary.ObjectsTotal)
	}
}
