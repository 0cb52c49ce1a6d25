package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"trisk/internal/findings"
)

// printFindings writes the findings to stdout, either as the verbatim JSON
// snapshot or as a short human summary.
func printFindings(f *findings.Findings, format string) {
	if format != "human" {
		data, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}
	fmt.Print(humanSummary(f))
}

func humanSummary(f *findings.Findings) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Change %s: risk %d (%s)\n", f.ChangeID, f.Summary.RiskScore, f.Summary.RiskLevel)
	fmt.Fprintf(&b, "  objects: %d, impacted apps: %d, overlapping changes: %d\n",
		f.Summary.ObjectsTotal, f.Summary.AppsImpacted, f.Summary.OverlapsFound)

	if len(f.ImpactedApps) > 0 {
		b.WriteString("\nImpacted apps:\n")
		for _, app := range f.ImpactedApps {
			fmt.Fprintf(&b, "  %-24s impact %.2f  matched %d  criticality %d\n",
				app.DisplayName, app.ImpactScore, app.MatchedObjects, app.Criticality)
		}
	}

	if len(f.Overlaps) > 0 {
		b.WriteString("\nOverlapping changes:\n")
		for _, ov := range f.Overlaps {
			fmt.Fprintf(&b, "  %-16s shared objects: %d\n", ov.OtherChangeID, ov.SharedObjectCount)
		}
	}

	top := f.ObjectRisks
	if len(top) > 10 {
		top = top[:10]
	}
	if len(top) > 0 {
		b.WriteString("\nTop risk objects:\n")
		for _, r := range top {
			fmt.Fprintf(&b, "  %-40s %3d  %s\n", r.NormalizedKey, r.RiskPoints, strings.Join(r.Reasons, ", "))
		}
	}

	return b.String()
}
