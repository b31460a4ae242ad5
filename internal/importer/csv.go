package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/centavoapp/centavo/internal/model"
)

// csvDateFormats are tried in order when parsing the date column.
var csvDateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
}

// CSVParser parses statement exports with date, description and signed
// amount columns. A header row is detected and skipped.
type CSVParser struct{}

// NewCSVParser creates a CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse reads CSV rows. Negative amounts become expenses, positive income;
// every returned amount is a positive magnitude.
func (p *CSVParser) Parse(reader io.Reader) ([]Row, error) {
	r := csv.NewReader(reader)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	var rows []Row
	for i, record := range records {
		if len(record) < 3 {
			return nil, fmt.Errorf("row %d: expected at least 3 columns, got %d", i+1, len(record))
		}

		date, err := parseCSVDate(record[0])
		if err != nil {
			if i == 0 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		amount, err := model.ParseMoney(record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		rowType := model.TypeIncome
		if amount.Cents < 0 {
			rowType = model.TypeExpense
			amount = amount.Neg()
		}

		rows = append(rows, Row{
			Date:        date,
			Description: strings.TrimSpace(record[1]),
			Type:        rowType,
			Amount:      amount,
		})
	}

	return rows, nil
}

func parseCSVDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range csvDateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
