// Package sheet writes list exports as xlsx workbooks and reads spreadsheet imports.
package sheet

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const (
	Name        = "Sheet1"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Build writes headers on the first row and one row per entry below it
func Build(headers []string, rows [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(Name, cell, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(Name, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if len(headers) > 0 {
		last, _ := excelize.ColumnNumberToName(len(headers))
		f.SetColWidth(Name, "A", last, 18)
	}
	return f, nil
}

// Send streams the workbook as an attachment
func Send(c *gin.Context, f *excelize.File, filename string) {
	defer f.Close()

	c.Header("Content-Type", ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate spreadsheet"})
	}
}
