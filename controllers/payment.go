// controllers/payment.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"garagepro-backend/billing"
	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreatePaymentInput defines the expected JSON structure for recording a payment
type CreatePaymentInput struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required,oneof=cash card upi netbanking bank_transfer"`
	Status        string  `json:"status" binding:"omitempty,oneof=pending completed"`
	TransactionID string  `json:"transactionId"`
}

// RefundPaymentInput defines the expected JSON structure for refunding a payment
type RefundPaymentInput struct {
	Amount float64 `json:"amount" binding:"omitempty,gt=0"`
	Reason string  `json:"reason" binding:"required"`
}

// CreatePayment records a payment against an invoice. When completed
// payments cover the invoice total the invoice is marked paid through the
// transition guard.
func CreatePayment(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	var input CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	status := input.Status
	if status == "" {
		status = "completed"
	}

	var payment models.Payment
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Where("garage_id = ? AND id = ?", garageUUID, invoiceUUID).
			First(&invoice).Error; err != nil {
			return err
		}

		if invoice.Status == string(billing.StatusCancelled) {
			return &billing.ValidationError{Field: "status", Message: "cancelled invoices cannot take payments"}
		}

		now := time.Now()
		payment = models.Payment{
			ID:            uuid.New(),
			GarageID:      garageUUID,
			InvoiceID:     invoice.ID,
			Amount:        input.Amount,
			Method:        input.Method,
			Status:        status,
			TransactionID: input.TransactionID,
		}
		if status == "completed" {
			payment.PaidAt = &now
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if status != "completed" || invoice.Status == string(billing.StatusPaid) {
			return nil
		}

		var paid float64
		if err := tx.Model(&models.Payment{}).
			Where("invoice_id = ? AND status = ?", invoice.ID, "completed").
			Select("COALESCE(SUM(amount), 0)").Scan(&paid).Error; err != nil {
			return err
		}

		if paid+0.005 < invoice.Total {
			return nil
		}

		effect, err := billing.ApplyTransition(billing.Status(invoice.Status), billing.StatusPaid, now)
		if err != nil {
			// Draft invoices stay where they are until sent.
			var terr *billing.TransitionError
			if errors.As(err, &terr) {
				return nil
			}
			return err
		}

		return tx.Model(&invoice).Updates(map[string]interface{}{
			"status":  string(effect.Status),
			"paid_at": effect.PaidAt,
		}).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
			return
		}
		utils.RespondWithBillingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// ListInvoicePayments returns the payments recorded against one invoice.
func ListInvoicePayments(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	invoiceUUID, ok := pathUUID(c, "id", "invoice")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := config.DB.Select("id").Where("garage_id = ? AND id = ?", garageUUID, invoiceUUID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var payments []models.Payment
	if err := config.DB.Where("invoice_id = ?", invoice.ID).
		Order("created_at DESC").Find(&payments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve payments")
		return
	}

	c.JSON(http.StatusOK, payments)
}

// RefundPayment marks a completed payment refunded, fully or partially.
func RefundPayment(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	paymentUUID, ok := pathUUID(c, "id", "payment")
	if !ok {
		return
	}

	var input RefundPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var payment models.Payment
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, paymentUUID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if payment.Status != "completed" {
		utils.RespondWithError(c, http.StatusBadRequest, "Only completed payments can be refunded")
		return
	}

	amount := input.Amount
	if amount == 0 {
		amount = payment.Amount
	}
	if amount > payment.Amount {
		utils.RespondWithError(c, http.StatusBadRequest, "Refund exceeds payment amount")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        "refunded",
		"refund_amount": amount,
		"refund_reason": input.Reason,
		"refunded_at":   now,
	}
	if err := config.DB.Model(&payment).Updates(updates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to refund payment")
		return
	}

	c.JSON(http.StatusOK, payment)
}
