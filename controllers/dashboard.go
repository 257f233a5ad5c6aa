// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"garagepro-backend/billing"
	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	TotalCustomers  int             `json:"totalCustomers"`
	MonthlyRevenue  float64         `json:"monthlyRevenue"`
	TotalInvoices   int             `json:"totalInvoices"`
	PendingAmount   float64         `json:"pendingAmount"`
	RecentInvoices  []RecentInvoice `json:"recentInvoices"`
	OverdueInvoices []RecentInvoice `json:"overdueInvoices"`
	LowStockParts   []LowStockAlert `json:"lowStockParts"`
}

type RecentInvoice struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoiceNumber"`
	CustomerName  string  `json:"customerName"`
	VehicleNumber string  `json:"vehicleNumber"`
	Total         float64 `json:"total"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
}

type LowStockAlert struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StockQuantity int    `json:"stockQuantity"`
	MinStockLevel int    `json:"minStockLevel"`
}

func GetDashboardOverview(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	// Total Customers
	var totalCustomers int64
	config.DB.Model(&models.Customer{}).Where("garage_id = ?", garageUUID).Count(&totalCustomers)

	// This Month's Revenue
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthlyRevenue float64
	config.DB.Model(&models.Invoice{}).
		Where("garage_id = ? AND status <> 'cancelled' AND created_at >= ?", garageUUID, firstOfMonth).
		Select("COALESCE(SUM(total), 0)").Scan(&monthlyRevenue)

	// Total Invoices
	var totalInvoices int64
	config.DB.Model(&models.Invoice{}).Where("garage_id = ?", garageUUID).Count(&totalInvoices)

	// Outstanding amount across unpaid invoices
	var pendingAmount float64
	config.DB.Model(&models.Invoice{}).
		Where("garage_id = ? AND status IN ?", garageUUID, []string{
			string(billing.StatusSent), string(billing.StatusPending), string(billing.StatusOverdue),
		}).
		Select("COALESCE(SUM(total), 0)").Scan(&pendingAmount)

	lookups, err := invoiceLookups(garageUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	// Recent Invoices
	var recent []models.Invoice
	if err := config.DB.Where("garage_id = ?", garageUUID).
		Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	// Overdue Invoices
	var overdue []models.Invoice
	if err := config.DB.Where("garage_id = ? AND status = ?", garageUUID, string(billing.StatusOverdue)).
		Order("due_date ASC").Limit(5).Find(&overdue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	// Parts at or below their minimum stock level
	var parts []models.Part
	if err := config.DB.Where("garage_id = ? AND is_active = ? AND min_stock_level IS NOT NULL AND stock_quantity <= min_stock_level", garageUUID, true).
		Order("stock_quantity ASC").Limit(10).Find(&parts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	overview := DashboardOverview{
		TotalCustomers:  int(totalCustomers),
		MonthlyRevenue:  monthlyRevenue,
		TotalInvoices:   int(totalInvoices),
		PendingAmount:   pendingAmount,
		RecentInvoices:  summarizeInvoices(recent, lookups),
		OverdueInvoices: summarizeInvoices(overdue, lookups),
		LowStockParts:   summarizeParts(parts),
	}

	c.JSON(http.StatusOK, overview)
}

func summarizeInvoices(invoices []models.Invoice, lookups billing.Lookups) []RecentInvoice {
	out := make([]RecentInvoice, 0, len(invoices))
	for _, inv := range invoices {
		customerName := lookups.CustomerNames[inv.CustomerID.String()]
		if customerName == "" {
			customerName = "Unknown Customer"
		}
		vehicleNumber := lookups.VehicleNumbers[inv.VehicleID.String()]
		if vehicleNumber == "" {
			vehicleNumber = "Unknown Vehicle"
		}
		out = append(out, RecentInvoice{
			ID:            inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			CustomerName:  customerName,
			VehicleNumber: vehicleNumber,
			Total:         inv.Total,
			Status:        inv.Status,
			CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func summarizeParts(parts []models.Part) []LowStockAlert {
	out := make([]LowStockAlert, 0, len(parts))
	for _, p := range parts {
		alert := LowStockAlert{
			ID:            p.ID.String(),
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
		}
		if p.MinStockLevel != nil {
			alert.MinStockLevel = *p.MinStockLevel
		}
		out = append(out, alert)
	}
	return out
}
