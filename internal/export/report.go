package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/croplapse/croplapse-export-poc/internal/utils"
	"github.com/gocarina/gocsv"
)

// ReportRow flattens a manifest record for the CSV report.
type ReportRow struct {
	Name        string `csv:"name"`
	LocationID  string `csv:"loc_id"`
	Dataset     string `csv:"dataset"`
	Bands       string `csv:"bands"`
	Start       string `csv:"start"`
	End         string `csv:"end"`
	State       string `csv:"state"`
	Operation   string `csv:"operation"`
	OutputPath  string `csv:"output_path"`
	SubmittedAt string `csv:"submitted_at"`
	Error       string `csv:"error"`
}

// WriteReport dumps the manifest as CSV for spreadsheet triage.
func WriteReport(path string, m *Manifest) error {
	rows := make([]ReportRow, 0, len(m.Records))
	for _, name := range utils.SortedKeys(m.Records) {
		rec := m.Records[name]
		rows = append(rows, ReportRow{
			Name:        rec.Name,
			LocationID:  rec.LocationID,
			Dataset:     rec.Dataset,
			Bands:       strings.Join(rec.Bands, ","),
			Start:       rec.Start,
			End:         rec.End,
			State:       rec.State,
			Operation:   rec.Operation,
			OutputPath:  rec.OutputPath,
			SubmittedAt: rec.SubmittedAt.Format(time.RFC3339),
			Error:       rec.Error,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
