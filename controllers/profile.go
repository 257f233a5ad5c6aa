// controllers/profile.go
package controllers

import (
	"errors"
	"net/http"

	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateProfileInput defines the expected JSON structure for updating the garage profile
type UpdateProfileInput struct {
	Name                  *string `json:"name"`
	Address               *string `json:"address"`
	Phone                 *string `json:"phone"`
	GSTIN                 *string `json:"gstin"`
	PaymentReminders      *bool   `json:"paymentReminders"`
	WhatsAppNotifications *bool   `json:"whatsappNotifications"`
	SMSNotifications      *bool   `json:"smsNotifications"`
}

// GetProfile returns the authenticated user's garage profile.
func GetProfile(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	var garage models.Garage
	if err := config.DB.Where("id = ?", garageUUID).First(&garage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Garage not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, garage)
}

// UpdateProfile edits the garage profile and notification toggles.
func UpdateProfile(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var garage models.Garage
	if err := config.DB.Where("id = ?", garageUUID).First(&garage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Garage not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Phone != nil && !utils.ValidatePhone(*input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}

	if input.Name != nil {
		garage.Name = *input.Name
	}
	if input.Address != nil {
		garage.Address = *input.Address
	}
	if input.Phone != nil {
		garage.Phone = *input.Phone
	}
	if input.GSTIN != nil {
		garage.GSTIN = *input.GSTIN
	}
	if input.PaymentReminders != nil {
		garage.PaymentReminders = *input.PaymentReminders
	}
	if input.WhatsAppNotifications != nil {
		garage.WhatsAppNotifications = *input.WhatsAppNotifications
	}
	if input.SMSNotifications != nil {
		garage.SMSNotifications = *input.SMSNotifications
	}

	if err := config.DB.Save(&garage).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, garage)
}
