package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tealeg/xlsx"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// WriteXLSX renders a report as a workbook with a summary sheet followed by
// one data sheet.
func WriteXLSX(r *Report, w io.Writer) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return err
	}
	addRow(summary, "Title", r.Title)
	addRow(summary, "Type", string(r.Type))
	addRow(summary, "Description", r.Description)
	addRow(summary, "Generated", r.CreatedAt.UTC().Format(dateTimeLayout))
	if r.Range.From != nil {
		addRow(summary, "From", r.Range.From.UTC().Format(dateTimeLayout))
	}
	if r.Range.To != nil {
		addRow(summary, "To", r.Range.To.UTC().Format(dateTimeLayout))
	}

	switch {
	case r.Sales != nil:
		err = writeSales(file, r.Sales)
	case r.Performance != nil:
		err = writePerformance(file, r.Performance)
	case r.Ranking != nil:
		err = writeRanking(file, r.Ranking)
	}
	if err != nil {
		return err
	}

	return file.Write(w)
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}

func writeSales(file *xlsx.File, d *SalesData) error {
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return err
	}
	addRow(sheet, "Total sales", d.TotalSales.StringFixed(2))
	addRow(sheet, "Total orders", strconv.Itoa(d.TotalOrders))
	addRow(sheet, "Average order value", d.AverageOrderValue.StringFixed(2))

	addRow(sheet)
	addRow(sheet, "Stall", "Revenue")
	for _, a := range d.ByStall {
		addRow(sheet, a.Label, a.Amount.StringFixed(2))
	}

	addRow(sheet)
	addRow(sheet, "Date", "Revenue")
	for _, a := range d.ByDate {
		addRow(sheet, a.Key, a.Amount.StringFixed(2))
	}
	return nil
}

func writePerformance(file *xlsx.File, d *PerformanceData) error {
	sheet, err := file.AddSheet("Performance")
	if err != nil {
		return err
	}
	addRow(sheet, "Status", "Orders", "Revenue")
	for _, b := range d.ByStatus {
		addRow(sheet, string(b.Status), strconv.Itoa(b.Count), b.Revenue.StringFixed(2))
	}
	addRow(sheet, "Total", strconv.Itoa(d.TotalOrders))
	return nil
}

func writeRanking(file *xlsx.File, d *RankingData) error {
	sheet, err := file.AddSheet("Stall Ranking")
	if err != nil {
		return err
	}
	addRow(sheet, "Rank", "Stall", "Revenue", "Orders", "Items sold")
	for _, s := range d.Stalls {
		addRow(sheet,
			strconv.Itoa(s.Rank),
			s.Name,
			s.TotalRevenue.StringFixed(2),
			strconv.Itoa(s.TotalOrders),
			strconv.Itoa(s.ItemsSold),
		)
	}
	return nil
}

// Filename is the attachment name offered for a report download.
func Filename(r *Report) string {
	return fmt.Sprintf("%s-%s.xlsx", r.Type, r.CreatedAt.UTC().Format("20060102-150405"))
}
