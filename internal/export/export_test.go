package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trisk/internal/findings"
)

func sampleFindings() *findings.Findings {
	return &findings.Findings{
		ChangeID:    "CHG-7",
		GeneratedAt: "2025-06-01T10:00:00Z",
		Summary: findings.Summary{
			RiskScore: 62, RiskLevel: "Medium", ObjectsTotal: 3, AppsImpacted: 1, OverlapsFound: 1,
		},
		ImpactedApps: []findings.ImpactedApp{
			{AppID: "fin", DisplayName: "Finance Core", ImpactScore: 0.67, MatchedObjects: 2, Criticality: 5},
		},
		Overlaps: []findings.OverlapRecord{
			{OtherChangeID: "CHG-3", SharedObjectCount: 1, SharedObjects: []string{"R3TR:TABL:ZCFG"}},
		},
		ObjectRisks: []findings.ObjectRisk{
			{NormalizedKey: "R3TR:TABL:ZCFG", RiskPoints: 12, Reasons: []string{"type:TABL"}},
			{NormalizedKey: "R3TR:CMOD:ZEXIT", RiskPoints: 8, Reasons: []string{"type:CMOD"}},
			{NormalizedKey: "R3TR:PROG:ZREP", RiskPoints: 6, Reasons: []string{"type:PROG"}},
		},
		Notes:       []string{},
		TesterScope: []string{},
	}
}

func TestBuildChecklistSections(t *testing.T) {
	sections := BuildChecklist(sampleFindings())
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}

	focus := strings.Join(sections[0].Items, "\n")
	if !strings.Contains(focus, "R3TR:CMOD:ZEXIT") {
		t.Errorf("focus section should name enhancement objects: %q", focus)
	}
	if !strings.Contains(focus, "R3TR:TABL:ZCFG") {
		t.Errorf("focus section should name DDIC objects: %q", focus)
	}
	if !strings.Contains(focus, "Finance Core") {
		t.Errorf("focus section should rank impacted apps: %q", focus)
	}

	guardrails := strings.Join(sections[1].Items, "\n")
	if !strings.Contains(guardrails, "CHG-3") {
		t.Errorf("guardrails should reference overlapping change: %q", guardrails)
	}
}

func TestBuildChecklistEmptyFindings(t *testing.T) {
	f := &findings.Findings{ChangeID: "CHG-0", Summary: findings.Summary{RiskLevel: "Low"}}
	sections := BuildChecklist(f)
	if len(sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(sections))
	}
	if len(sections[0].Items) == 0 || len(sections[1].Items) == 0 {
		t.Error("empty findings still produce fallback guidance")
	}
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "checklist.html")
	if err := WriteHTML(sampleFindings(), path); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{"CHG-7", "62 (Medium)", "Redundancy guardrails", "<li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklist.pdf")
	if err := WritePDF(sampleFindings(), path); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Error("output is not a PDF document")
	}
}

func TestWriteJSONPreservesFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findings.json")
	if err := WriteJSON(sampleFindings(), path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"change_id", "generated_at", "summary", "impacted_apps", "overlaps", "object_risks", "notes", "tester_scope_suggestions"} {
		if _, ok := doc[field]; !ok {
			t.Errorf("exported JSON missing field %q", field)
		}
	}
	summary := doc["summary"].(map[string]interface{})
	for _, field := range []string{"risk_score", "risk_level", "objects_total", "apps_impacted", "overlaps_found"} {
		if _, ok := summary[field]; !ok {
			t.Errorf("summary missing field %q", field)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("alpha beta gamma delta", 11)
	if len(lines) != 2 || lines[0] != "alpha beta" || lines[1] != "gamma delta" {
		t.Errorf("lines = %v", lines)
	}
	if lines := wrapText("", 10); len(lines) != 1 || lines[0] != "" {
		t.Errorf("empty input: %v", lines)
	}
}
