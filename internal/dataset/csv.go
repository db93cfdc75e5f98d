// Package dataset reads applicant tables from CSV and writes scored results back
// out with the original columns preserved.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "screening-workers/internal/common/errors"
	"screening-workers/internal/screening"
)

// DefaultResultsFileName is the conventional name of a results download.
const DefaultResultsFileName = "AI_Selection_Results.csv"

// Result columns appended to the input columns.
const (
	ColumnFinalScore           = "Final_Score"
	ColumnFinalScorePercentage = "Final_Score_Percentage"
	ColumnSelectionStatus      = "Predicted_Selection_Status"
	ColumnError                = "Error"
)

// Table is a CSV file held in memory with its header.
type Table struct {
	Header  []string
	Records [][]string
}

// ReadCSV parses a CSV with a header line. Ragged lines are padded or truncated to
// the header width.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	t := &Table{Header: header}
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}
		t.Records = append(t.Records, fit(rec, len(header)))
	}
	return t, nil
}

// ReadFile opens and parses a CSV file.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// Rows converts records into named-field rows. Empty cells are omitted so they
// read as absent. Unless strict is set, columns that do not name a known field
// are dropped and returned as ignored; with strict they are kept and rejected by
// the orchestrator.
func (t *Table) Rows(strict bool) (rows []screening.Row, ignored []string) {
	keep := make([]bool, len(t.Header))
	for i, h := range t.Header {
		_, known := screening.ResolveField(h)
		keep[i] = known || strict
		if !known && !strict {
			ignored = append(ignored, h)
		}
	}

	rows = make([]screening.Row, len(t.Records))
	for r, rec := range t.Records {
		row := make(screening.Row, len(t.Header))
		for i, cell := range rec {
			if !keep[i] || strings.TrimSpace(cell) == "" {
				continue
			}
			row[t.Header[i]] = cell
		}
		rows[r] = row
	}
	return rows, ignored
}

// WriteResultsCSV writes the table with the result columns appended. batch must
// hold one outcome per record, in record order.
func WriteResultsCSV(w io.Writer, t *Table, batch *screening.BatchResult) error {
	if batch == nil || len(batch.Results) != len(t.Records) {
		return fmt.Errorf("results do not match table: %d records", len(t.Records))
	}

	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Header)+4)
	header = append(header, t.Header...)
	header = append(header, ColumnFinalScore, ColumnFinalScorePercentage, ColumnSelectionStatus, ColumnError)
	if err := cw.Write(header); err != nil {
		return err
	}

	for i, rec := range t.Records {
		out := batch.Results[i]
		line := make([]string, 0, len(header))
		line = append(line, rec...)

		var final, pct, status, reason string
		if out.Result != nil {
			final = formatOptional(out.Result.FinalScore)
			pct = formatOptional(out.Result.FinalScorePercentage)
			status = string(out.Result.SelectionStatus)
		}
		if out.Error != nil {
			reason = fmt.Sprintf("%s: %s", out.Error.Code, out.Error.Reason)
		}

		line = append(line, final, pct, status, reason)
		if err := cw.Write(line); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// checkHeader rejects two columns that carry the same name or resolve to the
// same field, since one cell would otherwise overwrite the other.
func checkHeader(header []string) error {
	seen := make(map[string]string, len(header))
	for _, h := range header {
		if h == "" {
			continue
		}
		key := h
		if field, known := screening.ResolveField(h); known {
			key = field
		}
		if prev, dup := seen[key]; dup {
			return apperrors.NewInvalidInputError(key,
				fmt.Sprintf("columns %q and %q name the same field", prev, h))
		}
		seen[key] = h
	}
	return nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func fit(rec []string, width int) []string {
	if len(rec) == width {
		return rec
	}
	out := make([]string, width)
	copy(out, rec)
	return out
}
