package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"trisk/internal/findings"
)

// WriteJSON writes the findings snapshot verbatim. Field names and nesting
// are the compatibility contract for downstream report generators.
func WriteJSON(f *findings.Findings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
