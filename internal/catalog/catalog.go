// Package catalog models the application catalog: the configured set of
// downstream applications with the match rules that bind changed objects
// to them. A catalog is loaded once per analysis and never mutated.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"trisk/internal/logging"
)

// DefaultCriticality is assumed when an entry does not state one.
const DefaultCriticality = 3

// MatchRules binds objects to an application. Empty pattern sets are
// non-constraining for their own dimension.
type MatchRules struct {
	Packages    []string `json:"packages" yaml:"packages" toml:"packages"`
	Namespaces  []string `json:"namespaces" yaml:"namespaces" toml:"namespaces"`
	ObjectTypes []string `json:"object_types" yaml:"object_types" toml:"object_types"`
}

// Entry is one cataloged application.
type Entry struct {
	AppID       string     `json:"app_id" yaml:"app_id" toml:"app_id"`
	DisplayName string     `json:"display_name" yaml:"display_name" toml:"display_name"`
	Criticality int        `json:"criticality" yaml:"criticality" toml:"criticality"`
	Tags        []string   `json:"tags" yaml:"tags" toml:"tags"`
	MatchRules  MatchRules `json:"match_rules" yaml:"match_rules" toml:"match_rules"`
}

// Catalog is the versioned application catalog document.
type Catalog struct {
	Version string  `json:"version" yaml:"version" toml:"version"`
	Apps    []Entry `json:"apps" yaml:"apps" toml:"apps"`
}

// Empty returns a catalog with no applications.
func Empty() *Catalog {
	return &Catalog{Version: "0", Apps: []Entry{}}
}

// Default returns the bundled fallback catalog used when no external
// catalog is configured. It covers the common finance/logistics split so a
// fresh install produces useful impact output out of the box.
func Default() *Catalog {
	return &Catalog{
		Version: "1",
		Apps: []Entry{
			{
				AppID:       "fin-core",
				DisplayName: "Finance Core",
				Criticality: 5,
				Tags:        []string{"finance", "posting"},
				MatchRules: MatchRules{
					Namespaces: []string{"ZFI*", "ZGL*"},
					Packages:   []string{"ZFI*"},
				},
			},
			{
				AppID:       "logistics",
				DisplayName: "Logistics & Fulfillment",
				Criticality: 4,
				Tags:        []string{"logistics"},
				MatchRules: MatchRules{
					Namespaces: []string{"ZSD*", "ZMM*", "ZLE*"},
					Packages:   []string{"ZSD*", "ZMM*"},
				},
			},
			{
				AppID:       "ddic-shared",
				DisplayName: "Shared Data Dictionary",
				Criticality: 3,
				Tags:        []string{"ddic"},
				MatchRules: MatchRules{
					ObjectTypes: []string{"TABL", "VIEW", "DDLS", "DTEL", "DOMA", "TTYP"},
				},
			},
		},
	}
}

// Load reads a catalog document from path, decoding by file extension
// (.json, .yaml/.yml, .toml). A missing or malformed catalog degrades to an
// empty catalog with a logged warning; analysis proceeds with zero impacted
// apps rather than failing.
func Load(path string, logger *logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.Nop()
	}
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Catalog not readable, using empty catalog", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return Empty()
	}

	cat, err := Decode(data, filepath.Ext(path))
	if err != nil {
		logger.Warn("Catalog malformed, using empty catalog", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return Empty()
	}
	return cat
}

// Decode parses catalog bytes in the format implied by ext.
func Decode(data []byte, ext string) (*Catalog, error) {
	var cat Catalog
	var err error

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cat)
	case ".toml":
		err = toml.Unmarshal(data, &cat)
	case ".json", "":
		err = json.Unmarshal(data, &cat)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	normalize(&cat)
	return &cat, nil
}

// normalize fills defaults and upper-cases the pattern dimensions so the
// matcher can work case-insensitively.
func normalize(cat *Catalog) {
	if cat.Apps == nil {
		cat.Apps = []Entry{}
	}
	for i := range cat.Apps {
		app := &cat.Apps[i]
		if app.DisplayName == "" {
			app.DisplayName = app.AppID
		}
		if app.Criticality == 0 {
			app.Criticality = DefaultCriticality
		}
		for j, p := range app.MatchRules.Packages {
			app.MatchRules.Packages[j] = strings.ToUpper(strings.TrimSpace(p))
		}
		for j, p := range app.MatchRules.Namespaces {
			app.MatchRules.Namespaces[j] = strings.ToUpper(strings.TrimSpace(p))
		}
		for j, ot := range app.MatchRules.ObjectTypes {
			app.MatchRules.ObjectTypes[j] = strings.ToUpper(strings.TrimSpace(ot))
		}
	}
}

// Validate reports structural problems that would make entries unmatchable.
func (c *Catalog) Validate() []string {
	var problems []string
	seen := make(map[string]bool)
	for i, app := range c.Apps {
		if app.AppID == "" {
			problems = append(problems, fmt.Sprintf("apps[%d]: missing app_id", i))
			continue
		}
		if seen[app.AppID] {
			problems = append(problems, fmt.Sprintf("apps[%d]: duplicate app_id %q", i, app.AppID))
		}
		seen[app.AppID] = true
		if app.Criticality < 1 || app.Criticality > 5 {
			problems = append(problems, fmt.Sprintf("apps[%d] (%s): criticality %d outside 1-5", i, app.AppID, app.Criticality))
		}
	}
	return problems
}
