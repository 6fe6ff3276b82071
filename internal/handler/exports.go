package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/agoodis/product-management-system/internal/apierror"
	"github.com/agoodis/product-management-system/internal/dto"
	"github.com/agoodis/product-management-system/internal/service"
)

type ExportsHandler struct{ svc service.ExportService }

func NewExportsHandler(svc service.ExportService) *ExportsHandler {
	return &ExportsHandler{svc: svc}
}

// Download builds the projection for the target and streams it as a file:
// GET /v1/exports/:target?format=xlsx|csv. The projection itself is pure
// read-side; this handler only serializes it.
func (h *ExportsHandler) Download(c *gin.Context) {
	target, ok := dto.ParseExportTarget(c.Param("target"))
	if !ok {
		c.JSON(http.StatusBadRequest, apierror.New("unknown export target"))
		return
	}

	sheet, err := h.svc.Sheet(c.Request.Context(), target)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("failed to build export"))
		return
	}

	stamp := time.Now().Format("20060102_150405")
	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		writeCSV(c, sheet, fmt.Sprintf("export_%s_%s.csv", target, stamp))
	case "xlsx":
		writeXLSX(c, sheet, fmt.Sprintf("export_%s_%s.xlsx", target, stamp))
	default:
		c.JSON(http.StatusBadRequest, apierror.New("format must be xlsx or csv"))
	}
}

func writeCSV(c *gin.Context, sheet *dto.ExportSheet, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	w.Write(sheet.Headers)
	for _, row := range sheet.Rows {
		w.Write(row)
	}
}

func writeXLSX(c *gin.Context, sheet *dto.ExportSheet, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheet.Name)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, header := range sheet.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet.Name, cell, header)
		f.SetCellStyle(sheet.Name, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet.Name, col, col, 18)
	}
	for rowIdx, row := range sheet.Rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet.Name, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(c.Writer); err != nil {
		c.Error(err)
	}
}
