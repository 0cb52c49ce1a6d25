package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"trisk/internal/findings"
)

const pdfLineWidth = 95 // approx chars per line at 10pt Arial on letter

// WritePDF renders the checklist to a PDF file at path.
func WritePDF(f *findings.Findings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(19, 19, 19)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, "Tester Scope Checklist", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	meta := fmt.Sprintf("Change: %s   |   Generated: %s   |   Risk: %d (%s)",
		f.ChangeID,
		time.Now().UTC().Format("2006-01-02 15:04"),
		f.Summary.RiskScore,
		f.Summary.RiskLevel,
	)
	pdf.CellFormat(0, 6, meta, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, section := range BuildChecklist(f) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 7, section.Title, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range section.Items {
			lines := wrapText(stripBullet(item), pdfLineWidth)
			pdf.CellFormat(0, 5, "- "+lines[0], "", 1, "L", false, 0, "")
			for _, ln := range lines[1:] {
				pdf.CellFormat(0, 5, "   "+ln, "", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(3)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// wrapText splits text into lines of at most maxChars, breaking on spaces.
func wrapText(text string, maxChars int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	for _, w := range words {
		if cur.Len() > 0 && cur.Len()+1+len(w) > maxChars {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
