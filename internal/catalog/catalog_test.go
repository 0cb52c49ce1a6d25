package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"trisk/internal/logging"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeCatalog(t, "catalog.json", `{
		"version": "2",
		"apps": [
			{"app_id": "fin", "criticality": 5, "match_rules": {"namespaces": ["zfi*"]}}
		]
	}`)

	cat := Load(path, logging.Nop())
	if cat.Version != "2" || len(cat.Apps) != 1 {
		t.Fatalf("unexpected catalog: %+v", cat)
	}
	app := cat.Apps[0]
	if app.DisplayName != "fin" {
		t.Errorf("DisplayName should default to app_id, got %q", app.DisplayName)
	}
	if app.MatchRules.Namespaces[0] != "ZFI*" {
		t.Errorf("patterns should be upper-cased, got %q", app.MatchRules.Namespaces[0])
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", `
version: "1"
apps:
  - app_id: logistics
    display_name: Logistics
    match_rules:
      object_types: [tabl, view]
`)

	cat := Load(path, logging.Nop())
	if len(cat.Apps) != 1 {
		t.Fatalf("unexpected catalog: %+v", cat)
	}
	if cat.Apps[0].Criticality != DefaultCriticality {
		t.Errorf("Criticality = %d, want default %d", cat.Apps[0].Criticality, DefaultCriticality)
	}
	if cat.Apps[0].MatchRules.ObjectTypes[0] != "TABL" {
		t.Errorf("object types should be upper-cased: %v", cat.Apps[0].MatchRules.ObjectTypes)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeCatalog(t, "catalog.toml", `
version = "1"

[[apps]]
app_id = "fin"
criticality = 4

[apps.match_rules]
namespaces = ["ZFI*"]
`)

	cat := Load(path, logging.Nop())
	if len(cat.Apps) != 1 || cat.Apps[0].Criticality != 4 {
		t.Fatalf("unexpected catalog: %+v", cat)
	}
}

func TestLoadMalformedDegradesToEmpty(t *testing.T) {
	path := writeCatalog(t, "catalog.json", `{"apps": [`)

	cat := Load(path, logging.Nop())
	if len(cat.Apps) != 0 {
		t.Errorf("malformed catalog should be empty, got %d apps", len(cat.Apps))
	}
}

func TestLoadMissingFileDegradesToEmpty(t *testing.T) {
	cat := Load(filepath.Join(t.TempDir(), "nope.json"), logging.Nop())
	if len(cat.Apps) != 0 {
		t.Errorf("missing catalog should be empty, got %d apps", len(cat.Apps))
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	cat := Load("", logging.Nop())
	if len(cat.Apps) == 0 {
		t.Error("default catalog should not be empty")
	}
}

func TestDecodeUnsupportedExtension(t *testing.T) {
	if _, err := Decode([]byte("whatever"), ".ini"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestValidate(t *testing.T) {
	cat := &Catalog{Apps: []Entry{
		{AppID: "a", Criticality: 3},
		{AppID: "a", Criticality: 3},
		{AppID: "", Criticality: 3},
		{AppID: "b", Criticality: 9},
	}}

	problems := cat.Validate()
	if len(problems) != 3 {
		t.Errorf("got %d problems, want 3: %v", len(problems), problems)
	}

	if problems := Default().Validate(); len(problems) != 0 {
		t.Errorf("default catalog should validate cleanly: %v", problems)
	}
}
