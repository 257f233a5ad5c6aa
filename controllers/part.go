// controllers/part.go
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

// CreatePartInput defines the expected JSON structure for creating a catalog part
type CreatePartInput struct {
	Name          string  `json:"name" binding:"required"`
	HSNCode       string  `json:"hsnCode"`
	Price         float64 `json:"price" binding:"required,min=0"`
	GSTRate       float64 `json:"gstRate" binding:"min=0,max=100"`
	StockQuantity int     `json:"stockQuantity" binding:"min=0"`
	Category      string  `json:"category"`
	Supplier      string  `json:"supplier"`
	PartNumber    string  `json:"partNumber"`
	MinStockLevel *int    `json:"minStockLevel" binding:"omitempty,min=0"`
}

// UpdatePartInput defines the expected JSON structure for updating a catalog part
type UpdatePartInput struct {
	Name          *string  `json:"name"`
	HSNCode       *string  `json:"hsnCode"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	GSTRate       *float64 `json:"gstRate" binding:"omitempty,min=0,max=100"`
	Category      *string  `json:"category"`
	Supplier      *string  `json:"supplier"`
	PartNumber    *string  `json:"partNumber"`
	MinStockLevel *int     `json:"minStockLevel" binding:"omitempty,min=0"`
	IsActive      *bool    `json:"isActive"`
}

// AdjustStockInput moves the stock level by a signed delta (goods inward or
// manual correction).
type AdjustStockInput struct {
	Delta int `json:"delta" binding:"required"`
}

// CreatePart adds a part to the garage's catalog
func CreatePart(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	var input CreatePartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	part := models.Part{
		ID:            uuid.New(),
		GarageID:      garageUUID,
		Name:          input.Name,
		HSNCode:       input.HSNCode,
		Price:         input.Price,
		GSTRate:       input.GSTRate,
		StockQuantity: input.StockQuantity,
		Category:      input.Category,
		Supplier:      input.Supplier,
		PartNumber:    input.PartNumber,
		MinStockLevel: input.MinStockLevel,
		IsActive:      true,
	}

	if err := config.DB.Create(&part).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create part")
		return
	}

	c.JSON(http.StatusCreated, part)
}

// GetParts retrieves catalog parts; pass includeInactive=true for the full list
func GetParts(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("garage_id = ?", garageUUID)
	if c.Query("includeInactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var parts []models.Part
	if err := query.Order("created_at DESC").Find(&parts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve parts")
		return
	}

	c.JSON(http.StatusOK, parts)
}

// GetPart retrieves a specific catalog part by ID
func GetPart(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	partUUID, ok := pathUUID(c, "id", "part")
	if !ok {
		return
	}

	var part models.Part
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, partUUID).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Part not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, part)
}

// UpdatePart updates an existing catalog part
func UpdatePart(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	partUUID, ok := pathUUID(c, "id", "part")
	if !ok {
		return
	}

	var input UpdatePartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var part models.Part
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, partUUID).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Part not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		part.Name = *input.Name
	}
	if input.HSNCode != nil {
		part.HSNCode = *input.HSNCode
	}
	if input.Price != nil {
		part.Price = *input.Price
	}
	if input.GSTRate != nil {
		part.GSTRate = *input.GSTRate
	}
	if input.Category != nil {
		part.Category = *input.Category
	}
	if input.Supplier != nil {
		part.Supplier = *input.Supplier
	}
	if input.PartNumber != nil {
		part.PartNumber = *input.PartNumber
	}
	if input.MinStockLevel != nil {
		part.MinStockLevel = input.MinStockLevel
	}
	if input.IsActive != nil {
		part.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&part).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update part")
		return
	}

	c.JSON(http.StatusOK, part)
}

// AdjustPartStock applies a signed stock delta; the result may not go negative
func AdjustPartStock(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	partUUID, ok := pathUUID(c, "id", "part")
	if !ok {
		return
	}

	var input AdjustStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var part models.Part
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, partUUID).
		First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Part not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if part.StockQuantity+input.Delta < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Stock cannot go negative")
		return
	}

	part.StockQuantity += input.Delta
	if err := config.DB.Save(&part).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to adjust stock")
		return
	}

	c.JSON(http.StatusOK, part)
}

// DeletePart soft-disables a catalog part rather than removing it
func DeletePart(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	partUUID, ok := pathUUID(c, "id", "part")
	if !ok {
		return
	}

	result := config.DB.Model(&models.Part{}).
		Where("garage_id = ? AND id = ?", garageUUID, partUUID).
		Update("is_active", false)

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to disable part")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Part not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Part disabled successfully"})
}
