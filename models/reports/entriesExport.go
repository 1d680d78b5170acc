package reports

import (
	"fmt"

	"github.com/sbmetals/leadtrack_backend/models"
	"github.com/xuri/excelize/v2"
)

// BuildEntriesWorkbook renders refining entries plus the current summary
// figures into a spreadsheet for download.
func BuildEntriesWorkbook(entries []*models.RefiningEntry, summary *models.SummaryStats) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Refining Entries"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	// Add headers
	f.SetCellValue(sheetName, "A1", "EntryId")
	f.SetCellValue(sheetName, "B1", "Date")
	f.SetCellValue(sheetName, "C1", "SubmittedBy")
	f.SetCellValue(sheetName, "D1", "InputSource")
	f.SetCellValue(sheetName, "E1", "SbPercent")
	f.SetCellValue(sheetName, "F1", "LeadIngotKg")
	f.SetCellValue(sheetName, "G1", "PureLeadKg")
	f.SetCellValue(sheetName, "H1", "TotalDrossKg")

	// Add data
	rowNo := 2
	for _, entry := range entries {
		for _, b := range entry.Batches {
			sb := ""
			if b.SbPercentage != nil {
				sb = b.SbPercentage.String()
			}
			f.SetCellValue(sheetName, "A"+fmt.Sprint(rowNo), entry.ID)
			f.SetCellValue(sheetName, "B"+fmt.Sprint(rowNo), entry.CreatedAt.Format("02-01-2006"))
			f.SetCellValue(sheetName, "C"+fmt.Sprint(rowNo), entry.UserName)
			f.SetCellValue(sheetName, "D"+fmt.Sprint(rowNo), b.InputSource)
			f.SetCellValue(sheetName, "E"+fmt.Sprint(rowNo), sb)
			f.SetCellValue(sheetName, "F"+fmt.Sprint(rowNo), b.LeadIngotKg.String())
			f.SetCellValue(sheetName, "G"+fmt.Sprint(rowNo), b.PureLeadKg.String())
			f.SetCellValue(sheetName, "H"+fmt.Sprint(rowNo), b.TotalDrossKg().String())
			rowNo++
		}
	}

	summarySheet := "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	f.SetCellValue(summarySheet, "A1", "Figure")
	f.SetCellValue(summarySheet, "B1", "Kg")
	rows := []struct {
		label string
		value string
	}{
		{"Pure Lead Stock", summary.PureLeadStock.String()},
		{"High Lead Stock", summary.HighLeadStock.String()},
		{"RML Stock", summary.RmlStock.String()},
		{"Total Dross", summary.TotalDross.String()},
		{"Antimony Recoverable", summary.AntimonyRecoverable.String()},
		{"Total Receivable", summary.TotalReceivable.String()},
	}
	for i, r := range rows {
		f.SetCellValue(summarySheet, "A"+fmt.Sprint(i+2), r.label)
		f.SetCellValue(summarySheet, "B"+fmt.Sprint(i+2), r.value)
	}

	return f, nil
}
