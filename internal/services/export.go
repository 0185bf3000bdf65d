package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"expensetracker/internal/core"
)

// ExportFilename returns e.g. "Expenses2025-06-01 10:04:05.csv".
func ExportFilename(kind core.Kind, now time.Time) string {
	return kind.ExportPrefix() + now.Format(time.DateTime) + ".csv"
}

// WriteCSV writes txns as Amount,Description,Category|Source,Date rows.
func WriteCSV(w io.Writer, kind core.Kind, txns []core.Transaction) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write([]string{"Amount", "Description", kind.LabelHeader(), "Date"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, t := range txns {
		row := []string{
			t.Amount.String(),
			t.Description,
			t.Label,
			t.Date.String(),
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", t.ID, err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
