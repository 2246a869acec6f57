package experiment

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/vivian-xia/reviewrag/evaluation"
)

// ExportCSV writes the comparison as a standalone CSV with RunID and
// Setting leading the evaluation columns. The file is overwritten, not
// appended: an export is a snapshot of one run, unlike the shared
// evaluation log.
func ExportCSV(path string, comparisons ...*Comparison) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"RunID", "Setting"}, evaluation.Header()...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	for _, c := range comparisons {
		for _, outcome := range []Outcome{c.Baseline, c.Modified} {
			row := append([]string{c.RunID, outcome.Setting}, outcome.Record.Row()...)
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	return f.Close()
}
