// Package export writes list views to spreadsheets.
package export

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook builds a single-sheet workbook with one column per table field
// and one row per item, in the order given.
func Workbook[T any](sheetName string, table *listview.Table[T], items []T) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("add sheet %s: %w", sheetName, err)
	}

	headerRow := sheet.AddRow()
	for _, f := range table.Fields {
		headerRow.AddCell().SetValue(f.Label)
	}

	for _, item := range items {
		row := sheet.AddRow()
		for _, f := range table.Fields {
			cell := row.AddCell()
			switch v := f.Value(item).(type) {
			case nil:
				cell.SetString("")
			case float64:
				cell.SetFloat(v)
			case time.Time:
				cell.SetString(listview.FormatDate(v))
			case bool:
				cell.SetString(f.Display(item))
			default:
				cell.SetValue(v)
			}
		}
	}
	return file, nil
}

// Write streams the workbook to w.
func Write[T any](w io.Writer, sheetName string, table *listview.Table[T], items []T) error {
	file, err := Workbook(sheetName, table, items)
	if err != nil {
		return err
	}
	return file.Write(w)
}

// Attachment sets the download headers for filename.
func Attachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Transfer-Encoding", "binary")
	w.Header().Set("Expires", "0")
}
