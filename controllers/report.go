// controllers/report.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64           `json:"currentMonthRevenue"`
	MonthGrowth           float64           `json:"monthGrowth"`
	CurrentQuarterRevenue float64           `json:"currentQuarterRevenue"`
	QuarterGrowth         float64           `json:"quarterGrowth"`
	CurrentYearRevenue    float64           `json:"currentYearRevenue"`
	YearGrowth            float64           `json:"yearGrowth"`
	TopServices           []ServiceSummary  `json:"topServices"`
	TopCustomers          []CustomerSummary `json:"topCustomers"`
	QuickStats            QuickStatistics   `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type CustomerSummary struct {
	Name   string  `json:"name"`
	Visits int     `json:"visits"`
	Spent  float64 `json:"spent"`
}

type QuickStatistics struct {
	TotalCustomers   int     `json:"totalCustomers"`
	TotalInvoices    int     `json:"totalInvoices"`
	AvgMonthlyVisits float64 `json:"avgMonthlyVisits"`
	AvgOrderValue    float64 `json:"avgOrderValue"`
}

// GSTMonthSummary is one row of the monthly GST rollup.
type GSTMonthSummary struct {
	Month    string  `json:"month"`
	Invoices int     `json:"invoices"`
	Taxable  float64 `json:"taxable"`
	CGST     float64 `json:"cgst"`
	SGST     float64 `json:"sgst"`
	TotalGST float64 `json:"totalGst"`
}

// GetReportAnalytics returns the complete analytics summary
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	// Get current time
	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	currentLocation := now.Location()

	// Calculate date ranges
	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, currentLocation)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	// Get revenue reports
	currentMonthRevenue, err := rc.getRevenue(garageUUID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly revenue")
		return
	}

	lastMonthRevenue, err := rc.getRevenue(garageUUID,
		firstOfMonth.AddDate(0, -1, 0),
		lastOfMonth.AddDate(0, -1, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last month revenue")
		return
	}

	currentQuarterRevenue, err := rc.getRevenue(garageUUID,
		rc.getQuarterStart(now),
		rc.getQuarterEnd(now))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quarterly revenue")
		return
	}

	lastQuarterRevenue, err := rc.getRevenue(garageUUID,
		rc.getQuarterStart(now).AddDate(0, -3, 0),
		rc.getQuarterEnd(now).AddDate(0, -3, 0))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last quarter revenue")
		return
	}

	currentYearRevenue, err := rc.getRevenue(garageUUID,
		time.Date(currentYear, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get yearly revenue")
		return
	}

	lastYearRevenue, err := rc.getRevenue(garageUUID,
		time.Date(currentYear-1, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear-1, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last year revenue")
		return
	}

	// Calculate growth percentages
	monthGrowth := rc.calculateGrowthPercentage(currentMonthRevenue, lastMonthRevenue)
	quarterGrowth := rc.calculateGrowthPercentage(currentQuarterRevenue, lastQuarterRevenue)
	yearGrowth := rc.calculateGrowthPercentage(currentYearRevenue, lastYearRevenue)

	// Get top services
	topServices, err := rc.getTopServices(garageUUID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top services")
		return
	}

	// Get top customers
	topCustomers, err := rc.getTopCustomers(garageUUID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top customers")
		return
	}

	// Get quick statistics
	quickStats, err := rc.getQuickStatistics(garageUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quick statistics")
		return
	}

	summary := AnalyticsSummary{
		CurrentMonthRevenue:   currentMonthRevenue,
		MonthGrowth:           monthGrowth,
		CurrentQuarterRevenue: currentQuarterRevenue,
		QuarterGrowth:         quarterGrowth,
		CurrentYearRevenue:    currentYearRevenue,
		YearGrowth:            yearGrowth,
		TopServices:           topServices,
		TopCustomers:          topCustomers,
		QuickStats:            quickStats,
	}

	c.JSON(http.StatusOK, summary)
}

// GetGSTReport returns the month-by-month CGST/SGST rollup for a year,
// GST invoices only, excluding cancelled ones.
func (rc *ReportController) GetGSTReport(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	year := time.Now().Year()
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 2000 || parsed > 2100 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}

	type gstRow struct {
		Month    int
		Invoices int
		Taxable  float64
		CGST     float64
		SGST     float64
	}
	var rows []gstRow
	err := config.DB.Raw(`
		SELECT
			EXTRACT(MONTH FROM created_at)::int AS month,
			COUNT(*) AS invoices,
			COALESCE(SUM(subtotal - discount_amount), 0) AS taxable,
			COALESCE(SUM(cgst_amount), 0) AS cgst,
			COALESCE(SUM(sgst_amount), 0) AS sgst
		FROM invoices
		WHERE garage_id = ?
			AND invoice_type = 'gst'
			AND status <> 'cancelled'
			AND deleted_at IS NULL
			AND EXTRACT(YEAR FROM created_at) = ?
		GROUP BY 1
		ORDER BY 1
	`, garageUUID, year).Scan(&rows).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get GST report")
		return
	}

	months := make([]GSTMonthSummary, 12)
	for i := range months {
		months[i] = GSTMonthSummary{Month: time.Month(i + 1).String()}
	}
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		m := &months[r.Month-1]
		m.Invoices = r.Invoices
		m.Taxable = r.Taxable
		m.CGST = r.CGST
		m.SGST = r.SGST
		m.TotalGST = r.CGST + r.SGST
	}

	c.JSON(http.StatusOK, gin.H{"year": year, "months": months})
}

// Helper functions for reports

func (rc *ReportController) getRevenue(garageID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := config.DB.Model(&models.Invoice{}).
		Where("garage_id = ? AND status <> 'cancelled' AND created_at BETWEEN ? AND ?", garageID, start, end).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) getQuarterEnd(date time.Time) time.Time {
	return rc.getQuarterStart(date).AddDate(0, 3, -1)
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (rc *ReportController) getTopServices(garageID uuid.UUID, start, end time.Time, limit int) ([]ServiceSummary, error) {
	var services []ServiceSummary

	err := config.DB.Table("invoice_items").
		Select("invoice_items.name, SUM(invoice_items.quantity) as count, SUM(invoice_items.total_amount) as revenue").
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoices.garage_id = ? AND invoice_items.item_type = 'service' AND invoices.status <> 'cancelled' AND invoices.created_at BETWEEN ? AND ? AND invoices.deleted_at IS NULL", garageID, start, end).
		Group("invoice_items.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error

	return services, err
}

func (rc *ReportController) getTopCustomers(garageID uuid.UUID, start, end time.Time, limit int) ([]CustomerSummary, error) {
	var customers []CustomerSummary

	err := config.DB.Table("invoices").
		Select("customers.name, COUNT(invoices.id) as visits, SUM(invoices.total) as spent").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.garage_id = ? AND invoices.status <> 'cancelled' AND invoices.created_at BETWEEN ? AND ? AND invoices.deleted_at IS NULL AND customers.deleted_at IS NULL", garageID, start, end).
		Group("customers.name").
		Order("spent DESC").
		Limit(limit).
		Scan(&customers).Error

	return customers, err
}

func (rc *ReportController) getQuickStatistics(garageID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	// Total Customers
	var totalCustomers int64
	if err := config.DB.Model(&models.Customer{}).
		Where("garage_id = ?", garageID).
		Count(&totalCustomers).Error; err != nil {
		return stats, err
	}
	stats.TotalCustomers = int(totalCustomers)

	// Total Invoices
	var totalInvoices int64
	if err := config.DB.Model(&models.Invoice{}).
		Where("garage_id = ?", garageID).
		Count(&totalInvoices).Error; err != nil {
		return stats, err
	}
	stats.TotalInvoices = int(totalInvoices)

	// Average Monthly Visits
	var avgVisits float64
	err := config.DB.Raw(`
		SELECT COALESCE(AVG(visits), 0) FROM (
			SELECT COUNT(*) as visits
			FROM invoices
			WHERE garage_id = ? AND deleted_at IS NULL
			GROUP BY DATE_TRUNC('month', created_at)
		) monthly_visits
	`, garageID).Scan(&avgVisits).Error
	if err != nil {
		return stats, err
	}
	stats.AvgMonthlyVisits = avgVisits

	// Average Order Value
	var totalRevenue float64
	if err := config.DB.Model(&models.Invoice{}).
		Where("garage_id = ? AND status <> 'cancelled'", garageID).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return stats, err
	}

	if stats.TotalInvoices > 0 {
		stats.AvgOrderValue = totalRevenue / float64(stats.TotalInvoices)
	}

	return stats, nil
}
