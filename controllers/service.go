// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"garagepro-backend/config"
	"garagepro-backend/models"
	"garagepro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateServiceInput defines the expected JSON structure for creating a catalog service
type CreateServiceInput struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	BasePrice     float64 `json:"basePrice" binding:"required,min=0"`
	SACCode       string  `json:"sacCode"`
	EstimatedTime int     `json:"estimatedTime" binding:"min=0"` // in minutes
	GSTRate       float64 `json:"gstRate" binding:"min=0,max=100"`
}

// UpdateServiceInput defines the expected JSON structure for updating a catalog service
type UpdateServiceInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	BasePrice     *float64 `json:"basePrice" binding:"omitempty,min=0"`
	SACCode       *string  `json:"sacCode"`
	EstimatedTime *int     `json:"estimatedTime" binding:"omitempty,min=0"`
	GSTRate       *float64 `json:"gstRate" binding:"omitempty,min=0,max=100"`
	IsActive      *bool    `json:"isActive"`
}

// CreateService adds a service to the garage's catalog
func CreateService(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		ID:            uuid.New(),
		GarageID:      garageUUID,
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		BasePrice:     input.BasePrice,
		SACCode:       input.SACCode,
		EstimatedTime: input.EstimatedTime,
		GSTRate:       input.GSTRate,
		IsActive:      true,
	}

	if err := config.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetServices retrieves catalog services; pass includeInactive=true for the full list
func GetServices(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("garage_id = ?", garageUUID)
	if c.Query("includeInactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var services []models.Service
	if err := query.Order("created_at DESC").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService retrieves a specific catalog service by ID
func GetService(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	serviceUUID, ok := pathUUID(c, "id", "service")
	if !ok {
		return
	}

	var service models.Service
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, serviceUUID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateService updates an existing catalog service. Edits never touch line
// items already snapshotted onto invoices.
func UpdateService(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	serviceUUID, ok := pathUUID(c, "id", "service")
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, serviceUUID).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.BasePrice != nil {
		service.BasePrice = *input.BasePrice
	}
	if input.SACCode != nil {
		service.SACCode = *input.SACCode
	}
	if input.EstimatedTime != nil {
		service.EstimatedTime = *input.EstimatedTime
	}
	if input.GSTRate != nil {
		service.GSTRate = *input.GSTRate
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteService soft-disables a catalog service rather than removing it
func DeleteService(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	serviceUUID, ok := pathUUID(c, "id", "service")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Service{}).
		Where("garage_id = ? AND id = ?", garageUUID, serviceUUID).
		Update("is_active", false)

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to disable service")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service disabled successfully"})
}
