// controllers/invoice.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"garagepro-backend/billing"
	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceItemInput selects a catalog entry for one invoice line
type InvoiceItemInput struct {
	ItemType       string    `json:"itemType" binding:"required,oneof=service part"`
	ItemID         uuid.UUID `json:"itemId" binding:"required"`
	Quantity       int       `json:"quantity" binding:"required,min=1"`
	DiscountAmount float64   `json:"discountAmount" binding:"min=0"`
}

// InvoicePaymentInput records an up-front payment together with the invoice
type InvoicePaymentInput struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required,oneof=cash card upi netbanking bank_transfer"`
	TransactionID string  `json:"transactionId"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an invoice
type CreateInvoiceInput struct {
	InvoiceType        string                `json:"invoiceType" binding:"required,oneof=gst non-gst"`
	CustomerID         uuid.UUID             `json:"customerId" binding:"required"`
	VehicleID          uuid.UUID             `json:"vehicleId" binding:"required"`
	Items              []InvoiceItemInput    `json:"items" binding:"required,min=1,dive"`
	LaborCharges       float64               `json:"laborCharges" binding:"min=0"`
	ExtraCharges       []billing.ExtraCharge `json:"extraCharges"`
	DiscountPercentage float64               `json:"discountPercentage" binding:"min=0,max=100"`
	Status             string                `json:"status" binding:"omitempty,oneof=draft sent pending"`
	DueDate            *time.Time            `json:"dueDate"`
	Notes              string                `json:"notes"`
	Kilometers         *int                  `json:"kilometers"`
	Payment            *InvoicePaymentInput  `json:"payment"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating an invoice
type UpdateInvoiceInput struct {
	Items              *[]InvoiceItemInput    `json:"items" binding:"omitempty,min=1,dive"`
	LaborCharges       *float64               `json:"laborCharges" binding:"omitempty,min=0"`
	ExtraCharges       *[]billing.ExtraCharge `json:"extraCharges"`
	DiscountPercentage *float64               `json:"discountPercentage" binding:"omitempty,min=0,max=100"`
	DueDate            *time.Time             `json:"dueDate"`
	Notes              *string                `json:"notes"`
	Kilometers         *int                   `json:"kilometers"`
}

// UpdateStatusInput carries the target lifecycle state
type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// buildLineItems snapshots the selected catalog entries through the billing
// aggregator and applies the requested quantities and discounts.
func buildLineItems(tx *gorm.DB, garageID uuid.UUID, inputs []InvoiceItemInput) ([]billing.LineItem, error) {
	var items []billing.LineItem

	for _, in := range inputs {
		var snapshot billing.CatalogSnapshot
		var kind billing.ItemKind

		switch in.ItemType {
		case "service":
			var service models.Service
			if err := tx.Where("garage_id = ? AND id = ? AND is_active = ?", garageID, in.ItemID, true).
				First(&service).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, &billing.ValidationError{Field: "items", Message: "service not found: " + in.ItemID.String()}
				}
				return nil, err
			}
			snapshot = billing.CatalogSnapshot{
				ID:        service.ID.String(),
				Name:      service.Name,
				Code:      service.SACCode,
				UnitPrice: service.BasePrice,
				GSTRate:   service.GSTRate,
			}
			kind = billing.KindService
		case "part":
			var part models.Part
			if err := tx.Where("garage_id = ? AND id = ? AND is_active = ?", garageID, in.ItemID, true).
				First(&part).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, &billing.ValidationError{Field: "items", Message: "part not found: " + in.ItemID.String()}
				}
				return nil, err
			}
			if part.StockQuantity < in.Quantity {
				return nil, &billing.ValidationError{Field: "items", Message: "insufficient stock for part: " + part.Name}
			}
			snapshot = billing.CatalogSnapshot{
				ID:        part.ID.String(),
				Name:      part.Name,
				Code:      part.HSNCode,
				UnitPrice: part.Price,
				GSTRate:   part.GSTRate,
			}
			kind = billing.KindPart
		}

		before := len(items)
		items = billing.AddCatalogItem(items, snapshot, kind)
		if len(items) == before {
			// Duplicate catalog selection collapses into the first line.
			continue
		}

		lineID := items[len(items)-1].ID
		var err error
		if items, err = billing.UpdateQuantity(items, lineID, in.Quantity); err != nil {
			return nil, err
		}
		if in.DiscountAmount > 0 {
			if items, err = billing.UpdateDiscount(items, lineID, in.DiscountAmount); err != nil {
				return nil, err
			}
		}
	}

	return items, nil
}

// toInvoiceItems converts billing line items to rows, splitting each line's
// GST into CGST/SGST for GST invoices.
func toInvoiceItems(invoiceID uuid.UUID, items []billing.LineItem, invType billing.InvoiceType) []models.InvoiceItem {
	rows := make([]models.InvoiceItem, 0, len(items))
	for _, li := range items {
		row := models.InvoiceItem{
			ID:             uuid.New(),
			InvoiceID:      invoiceID,
			ItemType:       string(li.Kind),
			ItemID:         uuid.MustParse(li.CatalogID),
			Name:           li.Name,
			SACHSNCode:     li.SACHSNCode,
			Quantity:       li.Quantity,
			UnitPrice:      li.UnitPrice,
			DiscountAmount: li.DiscountAmount,
			GSTRate:        li.GSTRate,
			TotalAmount:    li.TotalAmount,
		}
		if invType == billing.TypeGST {
			gst := li.TotalAmount * li.GSTRate / 100
			row.CGSTAmount = billing.Round2(gst / 2)
			row.SGSTAmount = billing.Round2(gst / 2)
		} else {
			row.GSTRate = 0
		}
		rows = append(rows, row)
	}
	return rows
}

// nextInvoiceNumber bumps the per-day sequence row inside tx. The counter
// increments in a single UPDATE so concurrent creations never read the same
// value; a collision on the first number of a day falls back to the unique
// index on invoice_number and the caller's retry.
func nextInvoiceNumber(tx *gorm.DB, garageID uuid.UUID, invType billing.InvoiceType, now time.Time) (string, error) {
	day := now.Format("20060102")

	res := tx.Model(&models.InvoiceSequence{}).
		Where("garage_id = ? AND invoice_type = ? AND day = ?", garageID, string(invType), day).
		Update("counter", gorm.Expr("counter + 1"))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		seq := models.InvoiceSequence{
			ID:          uuid.New(),
			GarageID:    garageID,
			InvoiceType: string(invType),
			Day:         day,
			Counter:     1,
		}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
		return billing.FormatInvoiceNumber(invType, now, 1)
	}

	var seq models.InvoiceSequence
	if err := tx.Where("garage_id = ? AND invoice_type = ? AND day = ?", garageID, string(invType), day).
		First(&seq).Error; err != nil {
		return "", err
	}
	return billing.FormatInvoiceNumber(invType, now, seq.Counter)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// CreateInvoice builds and persists an invoice atomically: sequence bump,
// header, line items, part stock, optional payment and customer stats all
// commit or roll back together.
func CreateInvoice(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	userUUID, ok := userFromContext(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Customer and vehicle must exist, and the vehicle must belong to the
	// named customer.
	var customer models.Customer
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, input.VehicleID).
		First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if vehicle.CustomerID != customer.ID {
		utils.RespondWithError(c, http.StatusBadRequest, "Vehicle does not belong to this customer")
		return
	}

	invType := billing.InvoiceType(input.InvoiceType)
	now := time.Now()

	status := input.Status
	if status == "" {
		status = string(billing.StatusPending)
	}

	dueDate := now.AddDate(0, 0, 30)
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}

	var created models.Invoice

	// One silent retry on an invoice-number collision.
	for attempt := 0; attempt < 2; attempt++ {
		err := config.DB.Transaction(func(tx *gorm.DB) error {
			lineItems, err := buildLineItems(tx, garageUUID, input.Items)
			if err != nil {
				return err
			}

			totals, err := billing.ComputeTotals(lineItems, input.LaborCharges, input.ExtraCharges, input.DiscountPercentage, invType)
			if err != nil {
				return err
			}

			number, err := nextInvoiceNumber(tx, garageUUID, invType, now)
			if err != nil {
				return err
			}

			invoice := models.Invoice{
				ID:                 uuid.New(),
				GarageID:           garageUUID,
				CreatedByUserID:    userUUID,
				InvoiceNumber:      number,
				InvoiceType:        string(invType),
				CustomerID:         customer.ID,
				VehicleID:          vehicle.ID,
				Subtotal:           billing.Round2(totals.Subtotal),
				DiscountPercentage: input.DiscountPercentage,
				DiscountAmount:     billing.Round2(totals.DiscountAmount),
				CGSTAmount:         billing.Round2(totals.CGST),
				SGSTAmount:         billing.Round2(totals.SGST),
				TotalGSTAmount:     billing.Round2(totals.TotalGST),
				LaborCharges:       input.LaborCharges,
				ExtraCharges:       input.ExtraCharges,
				Total:              billing.Round2(totals.Total),
				Status:             status,
				DueDate:            &dueDate,
				Notes:              input.Notes,
				Kilometers:         input.Kilometers,
			}
			invoice.Items = toInvoiceItems(invoice.ID, lineItems, invType)

			if err := tx.Create(&invoice).Error; err != nil {
				return err
			}

			// Parts leave stock when billed.
			for _, li := range lineItems {
				if li.Kind != billing.KindPart {
					continue
				}
				if err := tx.Model(&models.Part{}).Where("id = ?", li.CatalogID).
					Update("stock_quantity", gorm.Expr("stock_quantity - ?", li.Quantity)).Error; err != nil {
					return err
				}
			}

			if input.Payment != nil {
				paidAt := now
				payment := models.Payment{
					ID:            uuid.New(),
					GarageID:      garageUUID,
					InvoiceID:     invoice.ID,
					Amount:        input.Payment.Amount,
					Method:        input.Payment.Method,
					Status:        "completed",
					TransactionID: input.Payment.TransactionID,
					PaidAt:        &paidAt,
				}
				if err := tx.Create(&payment).Error; err != nil {
					return err
				}
			}

			// Update customer stats
			if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).
				Updates(map[string]interface{}{
					"total_visits": gorm.Expr("total_visits + ?", 1),
					"total_spent":  gorm.Expr("total_spent + ?", invoice.Total),
					"last_visit":   now,
				}).Error; err != nil {
				return err
			}

			created = invoice
			return nil
		})

		if err == nil {
			c.JSON(http.StatusCreated, created)
			return
		}

		var verr *billing.ValidationError
		if errors.As(err, &verr) {
			utils.RespondWithBillingError(c, err)
			return
		}
		if isUniqueViolation(err) && attempt == 0 {
			continue
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}
}

// parseListFilter reads the query-string filter parameters.
func parseListFilter(c *gin.Context) (billing.Filter, bool) {
	var filter billing.Filter

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return filter, false
		}
		filter.To = &t
	}

	filter.Status = c.DefaultQuery("status", billing.StatusAll)
	if filter.Status != billing.StatusAll && !billing.ValidStatus(billing.Status(filter.Status)) {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown status filter")
		return filter, false
	}

	filter.SearchTerm = c.Query("search")
	return filter, true
}

// GetInvoices lists invoices narrowed by date range and status at the
// database, then searched and paginated in memory.
func GetInvoices(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	page := 1
	if p := c.Query("page"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 1 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid page number")
			return
		}
		page = parsed
	}

	// Date and status narrow at the database; search needs the customer
	// and vehicle joins so it runs in memory over the narrowed set.
	query := config.DB.Preload("Items").Where("garage_id = ?", garageUUID)
	if filter.From != nil {
		query = query.Where("created_at >= ?", billing.StartOfDay(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", billing.EndOfDay(*filter.To))
	}
	if filter.Status != billing.StatusAll {
		query = query.Where("status = ?", filter.Status)
	}
	if invType := c.Query("invoiceType"); invType != "" {
		query = query.Where("invoice_type = ?", invType)
	}

	var invoices []models.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	lookups, err := invoiceLookups(garageUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	byID := make(map[string]models.Invoice, len(invoices))
	summaries := make([]billing.InvoiceSummary, 0, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID.String()] = inv
		summaries = append(summaries, billing.InvoiceSummary{
			ID:            inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    inv.CustomerID.String(),
			VehicleID:     inv.VehicleID.String(),
			Status:        billing.Status(inv.Status),
			CreatedAt:     inv.CreatedAt,
		})
	}

	matched := billing.FilterInvoices(summaries, billing.Filter{SearchTerm: filter.SearchTerm, Status: billing.StatusAll}, lookups)
	pageSlice := billing.Paginate(matched, page, billing.DefaultPageSize)

	results := make([]models.Invoice, 0, len(pageSlice))
	for _, s := range pageSlice {
		results = append(results, byID[s.ID])
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices":   results,
		"page":       page,
		"pageSize":   billing.DefaultPageSize,
		"totalCount": len(matched),
		"totalPages": billing.TotalPages(len(matched), billing.DefaultPageSize),
	})
}

// invoiceLookups loads the id -> display-field maps used for text search.
func invoiceLookups(garageID uuid.UUID) (billing.Lookups, error) {
	lookups := billing.Lookups{
		CustomerNames:  map[string]string{},
		VehicleNumbers: map[string]string{},
	}

	var customers []models.Customer
	if err := config.DB.Select("id", "name").Where("garage_id = ?", garageID).Find(&customers).Error; err != nil {
		return lookups, err
	}
	for _, cu := range customers {
		lookups.CustomerNames[cu.ID.String()] = cu.Name
	}

	var vehicles []models.Vehicle
	if err := config.DB.Select("id", "vehicle_number").Where("garage_id = ?", garageID).Find(&vehicles).Error; err != nil {
		return lookups, err
	}
	for _, v := range vehicles {
		lookups.VehicleNumbers[v.ID.String()] = v.VehicleNumber
	}

	return lookups, nil
}

// GetInvoice retrieves one invoice with items, payments and the linked
// customer and vehicle. Missing references degrade to placeholders instead
// of failing the view.
func GetInvoice(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := config.DB.Preload("Items").Preload("Payments").
		Where("garage_id = ? AND id = ?", garageUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	customerName := "Unknown Customer"
	var customer models.Customer
	if err := config.DB.Where("id = ?", invoice.CustomerID).First(&customer).Error; err == nil {
		customerName = customer.Name
	}

	vehicleNumber := "Unknown Vehicle"
	var vehicle models.Vehicle
	if err := config.DB.Where("id = ?", invoice.VehicleID).First(&vehicle).Error; err == nil {
		vehicleNumber = vehicle.VehicleNumber
	}

	c.JSON(http.StatusOK, gin.H{
		"invoice":       invoice,
		"customerName":  customerName,
		"vehicleNumber": vehicleNumber,
	})
}

// UpdateInvoice edits a draft-stage invoice. Replacing items restores the
// old part stock, rebuilds the lines through the aggregator and recomputes
// every invoice-level amount.
func UpdateInvoice(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Preload("Items").
			Where("garage_id = ? AND id = ?", garageUUID, invoiceUUID).
			First(&invoice).Error; err != nil {
			return err
		}

		if invoice.Status == string(billing.StatusPaid) || invoice.Status == string(billing.StatusCancelled) {
			return &billing.ValidationError{Field: "status", Message: "paid or cancelled invoices cannot be edited"}
		}

		recompute := false

		if input.Items != nil {
			// Return previously billed parts to stock before rebuilding.
			for _, item := range invoice.Items {
				if item.ItemType != string(billing.KindPart) {
					continue
				}
				if err := tx.Model(&models.Part{}).Where("id = ?", item.ItemID).
					Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}

			lineItems, err := buildLineItems(tx, garageUUID, *input.Items)
			if err != nil {
				return err
			}
			invoice.Items = toInvoiceItems(invoice.ID, lineItems, billing.InvoiceType(invoice.InvoiceType))
			if err := tx.Create(&invoice.Items).Error; err != nil {
				return err
			}
			for _, li := range lineItems {
				if li.Kind != billing.KindPart {
					continue
				}
				if err := tx.Model(&models.Part{}).Where("id = ?", li.CatalogID).
					Update("stock_quantity", gorm.Expr("stock_quantity - ?", li.Quantity)).Error; err != nil {
					return err
				}
			}
			recompute = true
		}

		if input.LaborCharges != nil {
			invoice.LaborCharges = *input.LaborCharges
			recompute = true
		}
		if input.ExtraCharges != nil {
			invoice.ExtraCharges = *input.ExtraCharges
			recompute = true
		}
		if input.DiscountPercentage != nil {
			invoice.DiscountPercentage = *input.DiscountPercentage
			recompute = true
		}
		if input.DueDate != nil {
			invoice.DueDate = input.DueDate
		}
		if input.Notes != nil {
			invoice.Notes = *input.Notes
		}
		if input.Kilometers != nil {
			invoice.Kilometers = input.Kilometers
		}

		if recompute {
			lineItems := make([]billing.LineItem, 0, len(invoice.Items))
			for _, item := range invoice.Items {
				lineItems = append(lineItems, billing.LineItem{
					ID:             item.ID.String(),
					Kind:           billing.ItemKind(item.ItemType),
					CatalogID:      item.ItemID.String(),
					Name:           item.Name,
					SACHSNCode:     item.SACHSNCode,
					Quantity:       item.Quantity,
					UnitPrice:      item.UnitPrice,
					DiscountAmount: item.DiscountAmount,
					GSTRate:        item.GSTRate,
					TotalAmount:    item.TotalAmount,
				})
			}

			totals, err := billing.ComputeTotals(lineItems, invoice.LaborCharges, invoice.ExtraCharges, invoice.DiscountPercentage, billing.InvoiceType(invoice.InvoiceType))
			if err != nil {
				return err
			}

			oldTotal := invoice.Total
			invoice.Subtotal = billing.Round2(totals.Subtotal)
			invoice.DiscountAmount = billing.Round2(totals.DiscountAmount)
			invoice.CGSTAmount = billing.Round2(totals.CGST)
			invoice.SGSTAmount = billing.Round2(totals.SGST)
			invoice.TotalGSTAmount = billing.Round2(totals.TotalGST)
			invoice.Total = billing.Round2(totals.Total)

			if err := tx.Model(&models.Customer{}).Where("id = ?", invoice.CustomerID).
				Update("total_spent", gorm.Expr("total_spent + ?", invoice.Total-oldTotal)).Error; err != nil {
				return err
			}
		}

		return tx.Omit("Items").Save(&invoice).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
			return
		}
		utils.RespondWithBillingError(c, err)
		return
	}

	var invoice models.Invoice
	config.DB.Preload("Items").Where("id = ?", invoiceUUID).First(&invoice)
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus moves an invoice through the transition table; marking
// paid stamps paidAt and completes pending payments, undoing paid reverses
// both.
func UpdateInvoiceStatus(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var updated models.Invoice
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Where("garage_id = ? AND id = ?", garageUUID, invoiceUUID).
			First(&invoice).Error; err != nil {
			return err
		}

		now := time.Now()
		effect, err := billing.ApplyTransition(billing.Status(invoice.Status), billing.Status(input.Status), now)
		if err != nil {
			return err
		}

		previousPaidAt := invoice.PaidAt

		invoice.Status = string(effect.Status)
		if effect.SetPaidAt {
			invoice.PaidAt = effect.PaidAt
		}

		if err := tx.Save(&invoice).Error; err != nil {
			return err
		}

		// Keep payment records consistent with the invoice status.
		if effect.Status == billing.StatusPaid {
			if err := tx.Model(&models.Payment{}).
				Where("invoice_id = ? AND status = ?", invoice.ID, "pending").
				Updates(map[string]interface{}{"status": "completed", "paid_at": now}).Error; err != nil {
				return err
			}
		} else if effect.SetPaidAt && effect.PaidAt == nil && previousPaidAt != nil {
			// Undo: payments auto-completed at the paid timestamp go back
			// to pending.
			if err := tx.Model(&models.Payment{}).
				Where("invoice_id = ? AND status = ? AND paid_at = ?", invoice.ID, "completed", *previousPaidAt).
				Updates(map[string]interface{}{"status": "pending", "paid_at": nil}).Error; err != nil {
				return err
			}
		}

		updated = invoice
		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
			return
		}
		utils.RespondWithBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteInvoice removes an invoice with its items and payments, returns
// billed parts to stock and rolls back the customer stats.
func DeleteInvoice(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Preload("Items").
			Where("garage_id = ? AND id = ?", garageUUID, invoiceUUID).
			First(&invoice).Error; err != nil {
			return err
		}

		for _, item := range invoice.Items {
			if item.ItemType != string(billing.KindPart) {
				continue
			}
			if err := tx.Model(&models.Part{}).Where("id = ?", item.ItemID).
				Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&invoice).Error; err != nil {
			return err
		}

		// Update customer stats (decrement)
		return tx.Model(&models.Customer{}).Where("id = ?", invoice.CustomerID).
			Updates(map[string]interface{}{
				"total_visits": gorm.Expr("total_visits - ?", 1),
				"total_spent":  gorm.Expr("total_spent - ?", invoice.Total),
			}).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
