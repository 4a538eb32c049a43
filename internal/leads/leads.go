// Package leads loads practitioner lead lists from XLSX and CSV files
// for batch verification.
package leads

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/practice-intel/internal/model"
)

// Lead is one practitioner row from a lead list.
type Lead struct {
	Name     string
	NPI      string
	Practice string
	Location string
}

// Load reads a lead list, dispatching on the file extension. Column
// order is resolved from the header row; a file without a recognizable
// name column is invalid input.
func Load(path string) ([]Lead, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path)
	case ".csv":
		return LoadCSV(path)
	default:
		return nil, eris.Wrapf(model.ErrInvalidInput, "leads: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadXLSX reads leads from the first sheet of an XLSX file.
func LoadXLSX(path string) ([]Lead, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "leads: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Wrap(model.ErrInvalidInput, "leads: xlsx has no sheets")
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = strings.TrimSpace(c.Value)
		}
		rows = append(rows, cells)
	}
	return fromRows(rows)
}

// LoadCSV reads leads from a CSV file.
func LoadCSV(path string) ([]Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "leads: open csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "leads: read csv")
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		rows = append(rows, record)
	}
	return fromRows(rows)
}

// columnAliases maps header spellings to lead fields.
var columnAliases = map[string]string{
	"name":          "name",
	"doctor":        "name",
	"doctor name":   "name",
	"provider":      "name",
	"provider name": "name",
	"npi":           "npi",
	"npi number":    "npi",
	"practice":      "practice",
	"practice name": "practice",
	"organization":  "practice",
	"location":      "location",
	"city":          "location",
	"address":       "location",
}

func fromRows(rows [][]string) ([]Lead, error) {
	if len(rows) == 0 {
		return nil, eris.Wrap(model.ErrInvalidInput, "leads: empty file")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		if field, ok := columnAliases[strings.ToLower(h)]; ok {
			if _, taken := cols[field]; !taken {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.Wrap(model.ErrInvalidInput, "leads: no name column in header")
	}

	cell := func(row []string, field string) string {
		i, ok := cols[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []Lead
	for _, row := range rows[1:] {
		l := Lead{
			Name:     cell(row, "name"),
			NPI:      cell(row, "npi"),
			Practice: cell(row, "practice"),
			Location: cell(row, "location"),
		}
		if l.Name == "" {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
