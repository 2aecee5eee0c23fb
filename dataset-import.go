package visux

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghetzel/go-stockutil/stringutil"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// LoadRecordSet reads a .csv or .xlsx file whose first row names the
// features.
func LoadRecordSet(path string) (*RecordSet, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case `.csv`:
		if file, err := os.Open(path); err == nil {
			defer file.Close()
			return ReadCSV(file)
		} else {
			return nil, err
		}
	case `.xlsx`, `.xlsm`:
		return ReadXLSX(path)
	default:
		return nil, errors.Wrapf(ErrValidation, "unsupported dataset file type %q", ext)
	}
}

func ReadCSV(r io.Reader) (*RecordSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if rows, err := reader.ReadAll(); err == nil {
		return rowsToRecordSet(rows)
	} else {
		return nil, errors.Wrap(err, `read csv`)
	}
}

// ReadXLSX reads the first sheet of a workbook.
func ReadXLSX(path string) (*RecordSet, error) {
	book, err := excelize.OpenFile(path)

	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %q", path)
	}

	defer book.Close()

	sheets := book.GetSheetList()

	if len(sheets) == 0 {
		return nil, errors.Wrapf(ErrValidation, "workbook %q has no sheets", path)
	}

	if rows, err := book.GetRows(sheets[0]); err == nil {
		return rowsToRecordSet(rows)
	} else {
		return nil, errors.Wrapf(err, "read sheet %q", sheets[0])
	}
}

func rowsToRecordSet(rows [][]string) (*RecordSet, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrValidation, `dataset has no header row`)
	}

	records := &RecordSet{
		Features: make([]string, 0, len(rows[0])),
		Records:  make([]map[string]interface{}, 0, len(rows)-1),
	}

	seen := make(map[string]bool)

	for i, name := range rows[0] {
		name = strings.TrimSpace(name)

		if name == `` {
			return nil, errors.Wrapf(ErrValidation, "column %d has no name", i+1)
		} else if seen[name] {
			return nil, errors.Wrapf(ErrValidation, "column %q appears twice", name)
		}

		seen[name] = true
		records.Features = append(records.Features, name)
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		record := make(map[string]interface{}, len(records.Features))

		for i, feature := range records.Features {
			if i < len(row) {
				if cell := strings.TrimSpace(row[i]); cell != `` {
					record[feature] = stringutil.Autotype(cell)
					continue
				}
			}

			record[feature] = nil
		}

		records.Records = append(records.Records, record)
	}

	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != `` {
			return false
		}
	}

	return true
}
