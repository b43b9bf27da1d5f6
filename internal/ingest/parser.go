package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iiorcrop/mandi/internal/models"
)

var pointValidator = validator.New()

// Canonical column names. Source files carry unit suffixes on some
// headers ("Min Price (Rs./Quintal)"), so headers are matched by prefix.
const (
	colState    = "State Name"
	colDistrict = "District Name"
	colMarket   = "Market Name"
	colVariety  = "Variety"
	colGroup    = "Group"
	colArrivals = "Arrivals"
	colMinPrice = "Min Price"
	colMaxPrice = "Max Price"
	colModal    = "Modal Price"
	colDate     = "Reported Date"
	colGrade    = "Grade"
)

// Row is one loosely-typed CSV row keyed by canonical column name
type Row map[string]string

// ParseStats reports how many rows a parse run produced and dropped
type ParseStats struct {
	Parsed  int
	Dropped int
}

// Parse streams price rows from a CSV document, calling emit for every
// retained row. Rows missing the state, district, or market name, or
// failing record validation, are dropped silently; a structurally
// malformed CSV aborts the run with the reader's error. A non-nil
// error from emit also aborts the run.
func Parse(r io.Reader, emit func(models.PricePoint) error) (ParseStats, error) {
	var stats ParseStats

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Some exports pad short rows; let the reader hand us what is there
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := indexColumns(header)
	now := time.Now()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read CSV row: %w", err)
		}

		row := make(Row, len(columns))
		for name, idx := range columns {
			if idx < len(record) {
				row[name] = record[idx]
			}
		}

		point, ok := Transform(row, now)
		if !ok {
			stats.Dropped++
			continue
		}
		if err := validatePoint(point); err != nil {
			stats.Dropped++
			continue
		}

		if err := emit(point); err != nil {
			return stats, err
		}
		stats.Parsed++
	}

	return stats, nil
}

// Transform converts one raw row into a normalized price point. The
// second return value is false when the row fails the retention
// invariant (state, district, and market all non-empty after trimming);
// every other field degrades to a default instead of rejecting the row.
func Transform(row Row, now time.Time) (models.PricePoint, bool) {
	state := strings.TrimSpace(row[colState])
	district := strings.TrimSpace(row[colDistrict])
	market := strings.TrimSpace(row[colMarket])

	if state == "" || district == "" || market == "" {
		return models.PricePoint{}, false
	}

	return models.PricePoint{
		State:          state,
		District:       district,
		Market:         market,
		Variety:        strings.TrimSpace(row[colVariety]),
		CommodityGroup: strings.TrimSpace(row[colGroup]),
		Arrivals:       normalizeArrivals(row[colArrivals]),
		MinPrice:       coercePrice(row[colMinPrice]),
		MaxPrice:       coercePrice(row[colMaxPrice]),
		ModalPrice:     coercePrice(row[colModal]),
		ReportedDate:   parseReportedDate(row[colDate], now),
		Grade:          strings.TrimSpace(row[colGrade]),
	}, true
}

// indexColumns maps canonical column names to positions in the header.
// Matching is by prefix so "Min Price (Rs./Quintal)" binds to "Min Price".
func indexColumns(header []string) map[string]int {
	canonical := []string{
		colState, colDistrict, colMarket, colVariety, colGroup,
		colArrivals, colMinPrice, colMaxPrice, colModal, colDate, colGrade,
	}

	columns := make(map[string]int, len(canonical))
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, name := range canonical {
			if _, seen := columns[name]; seen {
				continue
			}
			if strings.HasPrefix(strings.ToLower(h), strings.ToLower(name)) {
				columns[name] = i
				break
			}
		}
	}
	return columns
}

// parseReportedDate parses the DD/MM/YY date column. Two-digit years
// under 50 land in the 2000s, the rest in the 1900s. A missing value or
// the repeated-# overflow sentinel spreadsheet tools emit falls back to
// the ingestion time.
func parseReportedDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || isDateSentinel(s) {
		return now
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return now
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return now
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return now
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return now
	}

	switch {
	case year < 50:
		year += 2000
	case year < 100:
		year += 1900
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return now
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// validatePoint checks a transformed row against the record invariants:
// non-empty name columns, non-negative prices
func validatePoint(point models.PricePoint) error {
	return pointValidator.Struct(point)
}

// isDateSentinel reports whether s is a run of # characters
func isDateSentinel(s string) bool {
	return s != "" && strings.Trim(s, "#") == ""
}

// coercePrice parses a price column as a float, degrading to 0 on a
// missing, non-numeric, or negative value
func coercePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// normalizeArrivals strips a case-insensitive "tonnes" suffix and
// surrounding whitespace. Arrivals stays free text because source data
// mixes units.
func normalizeArrivals(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len("tonnes") && strings.EqualFold(s[len(s)-len("tonnes"):], "tonnes") {
		s = s[:len(s)-len("tonnes")]
	}
	return strings.TrimSpace(s)
}
