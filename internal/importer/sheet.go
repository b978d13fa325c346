// Package importer reads field reading sheets exported from spreadsheets and
// registers them in bulk.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	enc "github.com/aguacoop/aguacoop/internal/encoding"
)

// Row is one meter reading taken from a sheet.
type Row struct {
	Line         int
	MeterID      uuid.UUID
	CurrentValue decimal.Decimal
	Note         string
}

// Issue is a sheet line that could not be turned into a Row.
type Issue struct {
	Line   int
	Reason string
}

type Sheet struct {
	Profile string
	Charset string
	Rows    []Row
	Issues  []Issue
}

type colIndex map[string]int

// Parse reads a ';' or ',' separated sheet. Lines before the header and lines with an
// empty meter cell are ignored.
func Parse(r io.Reader) (*Sheet, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(raw)))
	reader.Comma = separator(string(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// csv skips blank lines, so keep each record's line in the file.
	var (
		rows  [][]string
		lines []int
	)

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, rec)
		lines = append(lines, line)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching sheet layout: expected a %q and a %q column",
			profiles[0].MeterCol, profiles[0].CurrentCol)
	}

	sheet := &Sheet{Profile: profile.Name, Charset: utf8r.Charset}
	parseRows(sheet, profile, cols, rows[headerIdx+1:], lines[headerIdx+1:])

	return sheet, nil
}

// separator picks ';' unless the header area only uses commas.
func separator(s string) rune {
	head := s[:min(len(s), 2048)]

	if strings.Count(head, ";") == 0 && strings.Count(head, ",") > 0 {
		return ','
	}

	return ';'
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(sheet *Sheet, p *Profile, cols colIndex, rows [][]string, lines []int) {
	meterIdx := cols[p.MeterCol]
	currentIdx := cols[p.CurrentCol]

	noteIdx := -1
	if idx, ok := cols[p.NoteCol]; ok {
		noteIdx = idx
	}

	for i, row := range rows {
		line := lines[i]

		meterCell := cellValue(row, meterIdx)
		if meterCell == "" {
			continue
		}

		meterID, err := uuid.Parse(meterCell)
		if err != nil {
			sheet.Issues = append(sheet.Issues, Issue{Line: line, Reason: fmt.Sprintf("invalid meter %q", meterCell)})
			continue
		}

		current, err := parseReading(cellValue(row, currentIdx))
		if err != nil {
			sheet.Issues = append(sheet.Issues, Issue{Line: line, Reason: err.Error()})
			continue
		}

		sheet.Rows = append(sheet.Rows, Row{
			Line:         line,
			MeterID:      meterID,
			CurrentValue: current,
			Note:         cellValue(row, noteIdx),
		})
	}
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
