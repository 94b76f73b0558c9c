package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/ngram-report/internal/models"
)

// DefaultSheet is the sheet name of the bulk-operations search term export.
const DefaultSheet = "SP Search Term Report"

const (
	ColSearchTerm   = "Customer Search Term"
	ColCampaignName = "Campaign Name (Informational only)"
	ColASIN         = "ASIN"
	ColCampaignID   = "Campaign ID"
	ColImpressions  = "Impressions"
	ColClicks       = "Clicks"
	ColSpend        = "Spend"
	ColSales        = "Sales"
	ColUnits        = "Units"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaError lists the columns a dataset is missing.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema mismatch: missing column(s) %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// ValueError is a cell that could not be parsed.
type ValueError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("line %d column %q: invalid value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error { return e.Err }

// ProductSource selects where a row's product identifier comes from.
type ProductSource string

const (
	ProductAuto         ProductSource = "auto"
	ProductCampaignName ProductSource = "campaign_name"
	ProductASINColumn   ProductSource = "asin_column"
)

func ParseProductSource(s string) (ProductSource, error) {
	switch ps := ProductSource(strings.ToLower(strings.TrimSpace(s))); ps {
	case "":
		return ProductAuto, nil
	case ProductAuto, ProductCampaignName, ProductASINColumn:
		return ps, nil
	}
	return "", fmt.Errorf("unknown product source %q", s)
}

type ReadOptions struct {
	Sheet             string
	ProductSource     ProductSource
	RequireCampaignID bool
}

// Read dispatches on the file extension: .csv or .xlsx.
func Read(name string, r io.Reader, opts ReadOptions) ([]models.SearchTermRow, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadCSV(r, opts)
	case ".xlsx", ".xlsm", "":
		return ReadXLSX(r, opts)
	}
	return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
}

// ReadXLSX reads the search term sheet of a workbook. When the configured
// sheet is absent the first sheet is used.
func ReadXLSX(r io.Reader, opts ReadOptions) ([]models.SearchTermRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRecords(records, opts)
}

// ReadCSV reads a comma separated export with a header line.
func ReadCSV(r io.Reader, opts ReadOptions) ([]models.SearchTermRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return parseRecords(records, opts)
}

type layout struct {
	term        int
	campaign    int
	asin        int
	campaignID  int
	impressions int
	clicks      int
	spend       int
	sales       int
	units       int
}

func resolveLayout(header []string, opts ReadOptions) (layout, error) {
	pos := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var missing []string
	col := func(name string, required bool) int {
		i, ok := pos[name]
		if !ok {
			if required {
				missing = append(missing, name)
			}
			return -1
		}
		return i
	}

	l := layout{
		term:        col(ColSearchTerm, true),
		impressions: col(ColImpressions, true),
		clicks:      col(ColClicks, true),
		spend:       col(ColSpend, true),
		sales:       col(ColSales, true),
		units:       col(ColUnits, true),
		campaignID:  col(ColCampaignID, opts.RequireCampaignID),
	}
	switch opts.ProductSource {
	case ProductASINColumn:
		l.asin = col(ColASIN, true)
		l.campaign = col(ColCampaignName, false)
	case ProductCampaignName:
		l.asin = -1
		l.campaign = col(ColCampaignName, true)
	default:
		l.asin = col(ColASIN, false)
		l.campaign = col(ColCampaignName, false)
		if l.asin < 0 && l.campaign < 0 {
			missing = append(missing, ColCampaignName+" or "+ColASIN)
		}
	}
	if len(missing) > 0 {
		return l, &SchemaError{Missing: missing}
	}
	return l, nil
}

func parseRecords(records [][]string, opts ReadOptions) ([]models.SearchTermRow, error) {
	if len(records) == 0 {
		return nil, &SchemaError{Missing: []string{ColSearchTerm}}
	}
	l, err := resolveLayout(records[0], opts)
	if err != nil {
		return nil, err
	}

	rows := make([]models.SearchTermRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2 // header is line 1
		if blank(rec) {
			continue
		}
		r := models.SearchTermRow{
			Line:         line,
			SearchTerm:   cell(rec, l.term),
			CampaignName: cell(rec, l.campaign),
			CampaignID:   cell(rec, l.campaignID),
			ProductID:    strings.ToUpper(cell(rec, l.asin)),
		}
		var err error
		if r.Impressions, err = parseCount(rec, l.impressions, line, ColImpressions); err != nil {
			return nil, err
		}
		if r.Clicks, err = parseCount(rec, l.clicks, line, ColClicks); err != nil {
			return nil, err
		}
		if r.Units, err = parseCount(rec, l.units, line, ColUnits); err != nil {
			return nil, err
		}
		if r.Spend, err = parseAmount(rec, l.spend, line, ColSpend); err != nil {
			return nil, err
		}
		if r.Sales, err = parseAmount(rec, l.sales, line, ColSales); err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var numberCleaner = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "", "\u00a0", "")

func parseNumber(rec []string, i, line int, col string) (float64, error) {
	raw := cell(rec, i)
	s := numberCleaner.Replace(raw)
	if s == "" || s == "-" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
		err = errors.New("not a finite number")
	}
	if err != nil {
		return 0, &ValueError{Line: line, Column: col, Value: raw, Err: err}
	}
	return f, nil
}

func parseAmount(rec []string, i, line int, col string) (float64, error) {
	return parseNumber(rec, i, line, col)
}

func parseCount(rec []string, i, line int, col string) (uint64, error) {
	f, err := parseNumber(rec, i, line, col)
	if err != nil {
		return 0, err
	}
	if f >= math.MaxUint64 {
		return 0, &ValueError{Line: line, Column: col, Value: cell(rec, i), Err: errors.New("count out of range")}
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, &ValueError{Line: line, Column: col, Value: cell(rec, i), Err: errors.New("not a non-negative whole number")}
	}
	return uint64(f), nil
}
