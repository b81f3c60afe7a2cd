// Package export writes the applied-jobs board to a file.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"

	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

const (
	sheetName  = "Applied Jobs"
	fileMode   = 0o644
	tempPrefix = "scoutjar-applied-*.json"
)

// Row is one applied job with its applicant count and recruiter.
type Row struct {
	JobID      scoutjar.ID `json:"job_id"`
	JobTitle   string      `json:"job_title"`
	MatchScore float64     `json:"match_score,omitempty"`
	Applicants int         `json:"applicant_count"`
	Recruiter  string      `json:"recruiter,omitempty"`
	Company    string      `json:"company,omitempty"`
}

var headers = []string{"Job ID", "Job Title", "Match Score", "Applicants", "Recruiter", "Company"}

type Exporter struct {
	fs  afero.Fs
	now func() time.Time
}

func New(fs afero.Fs) *Exporter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Exporter{fs: fs, now: time.Now}
}

// AppliedJobs writes rows to path and returns the path written. Paths
// ending in .xlsx get a spreadsheet; anything else gets indented JSON. An
// empty path writes a JSON file in the temp dir.
func (e *Exporter) AppliedJobs(path string, rows []Row) (string, error) {
	if strings.TrimSpace(path) == "" {
		return e.tempJSON(rows)
	}

	path = filepath.Clean(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := e.fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating export dir: %w", err)
		}
	}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		data, err = e.xlsx(rows)
	} else {
		data, err = marshalJSON(rows)
	}
	if err != nil {
		return "", err
	}

	if err := afero.WriteFile(e.fs, path, data, fileMode); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}

	return path, nil
}

func (e *Exporter) tempJSON(rows []Row) (string, error) {
	data, err := marshalJSON(rows)
	if err != nil {
		return "", err
	}

	f, err := afero.TempFile(e.fs, "", tempPrefix)
	if err != nil {
		return "", fmt.Errorf("creating temp export: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("writing temp export: %w", err)
	}

	return f.Name(), nil
}

func marshalJSON(rows []Row) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return append(data, '\n'), nil
}

func (e *Exporter) xlsx(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", headerStyle); err != nil {
		return nil, err
	}

	for i, row := range rows {
		values := []any{row.JobID.String(), row.JobTitle, row.MatchScore, row.Applicants, row.Recruiter, row.Company}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", "B", 40)
	_ = f.SetColWidth(sheetName, "C", "D", 14)
	_ = f.SetColWidth(sheetName, "E", "F", 28)
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   sheetName,
		Creator: "scoutjar-talent",
		Created: e.now().UTC().Format(time.RFC3339),
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encoding spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
