// Package export renders reports as workbooks and pushes them to a sink.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/ngram-report/internal/models"
	"github.com/AngelCh415/ngram-report/internal/ngram"
)

const (
	ReportSheet = "Report"
	TypeColumn  = "N-Gram Type"
	XLSXMime    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var baseColumns = []string{"ngrams", "Impressions", "Clicks", "Spend", "Sales", "Units", "CTR", "Conversion Rate", "ACOS", "CPA", "CPC"}

// Columns returns the header of a per-order sheet.
func Columns(includeCampaignIDs bool) []string {
	cols := append([]string(nil), baseColumns...)
	if includeCampaignIDs {
		cols = append(cols, "Campaign ID")
	}
	return cols
}

// Filename is the download name for a report produced at now.
func Filename(now time.Time) string {
	return "ngram_analysis_output_with_report_" + now.Format("2006-01-02_15-04-05") + ".xlsx"
}

// WriteXLSX writes one sheet per n-gram order plus the combined Report sheet.
// Undefined ratios are left as blank cells. An empty order still gets its
// sheet, with no header.
func WriteXLSX(w io.Writer, rep models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, o := range ngram.Orders {
		name := o.Label()
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		rows := rep.Slices()[i]
		if len(rows) == 0 {
			continue
		}
		if err := writeRow(f, name, 1, headerRow(Columns(rep.IncludeCampaignIDs))); err != nil {
			return err
		}
		for j, m := range rows {
			if err := writeRow(f, name, j+2, metricCells(m, rep.IncludeCampaignIDs)); err != nil {
				return err
			}
		}
	}

	if _, err := f.NewSheet(ReportSheet); err != nil {
		return err
	}
	if len(rep.Combined) > 0 {
		head := append([]any{TypeColumn}, headerRow(Columns(rep.IncludeCampaignIDs))...)
		if err := writeRow(f, ReportSheet, 1, head); err != nil {
			return err
		}
		for j, m := range rep.Combined {
			cells := append([]any{m.Type}, metricCells(m.AggregatedMetrics, rep.IncludeCampaignIDs)...)
			if err := writeRow(f, ReportSheet, j+2, cells); err != nil {
				return err
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func headerRow(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

func metricCells(m models.AggregatedMetrics, includeCampaignIDs bool) []any {
	cells := []any{
		m.Term, m.Impressions, m.Clicks, m.Spend, m.Sales, m.Units,
		ratioCell(m.CTR), ratioCell(m.ConversionRate), ratioCell(m.ACOS), ratioCell(m.CPA), ratioCell(m.CPC),
	}
	if includeCampaignIDs {
		cells = append(cells, strings.Join(m.CampaignIDs, ","))
	}
	return cells
}

func ratioCell(r models.Ratio) any {
	if !r.Defined() {
		return nil
	}
	return float64(r)
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	ref, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, ref, &cells)
}
