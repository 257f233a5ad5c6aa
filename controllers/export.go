// controllers/export.go
package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"garagepro-backend/billing"
	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportInvoices streams the filtered invoice register as an XLSX workbook.
// It honors the same from/to/status query parameters as the list endpoint.
func ExportInvoices(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	query := config.DB.Where("garage_id = ?", garageUUID)
	if filter.From != nil {
		query = query.Where("created_at >= ?", billing.StartOfDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", billing.EndOfDay(*filter.To))
	}
	if filter.Status != billing.StatusAll {
		query = query.Where("status = ?", filter.Status)
	}

	var invoices []models.Invoice
	if err := query.Order("created_at ASC").Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	lookups, err := invoiceLookups(garageUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	buf, err := buildInvoiceWorkbook(invoices, lookups)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate export")
		return
	}

	filename := fmt.Sprintf("invoices-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func buildInvoiceWorkbook(invoices []models.Invoice, lookups billing.Lookups) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	sheetName := "Invoices"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Invoice No", "Date", "Type", "Customer", "Vehicle",
		"Subtotal", "Discount", "CGST", "SGST", "Total GST",
		"Labor Charges", "Total", "Status", "Paid At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, inv := range invoices {
		row := rowIndex + 2

		customerName := lookups.CustomerNames[inv.CustomerID.String()]
		if customerName == "" {
			customerName = "Unknown Customer"
		}
		vehicleNumber := lookups.VehicleNumbers[inv.VehicleID.String()]
		if vehicleNumber == "" {
			vehicleNumber = "Unknown Vehicle"
		}

		paidAt := ""
		if inv.PaidAt != nil {
			paidAt = inv.PaidAt.Format("2006-01-02 15:04:05")
		}

		values := []interface{}{
			inv.InvoiceNumber,
			inv.CreatedAt.Format("2006-01-02"),
			inv.InvoiceType,
			customerName,
			vehicleNumber,
			inv.Subtotal,
			inv.DiscountAmount,
			inv.CGSTAmount,
			inv.SGSTAmount,
			inv.TotalGSTAmount,
			inv.LaborCharges,
			inv.Total,
			inv.Status,
			paidAt,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := 0; i < len(headers); i++ {
		f.SetColWidth(sheetName, string('A'+rune(i)), string('A'+rune(i)), 15)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %v", err)
	}
	return &buf, nil
}
