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

// CreateVehicleInput defines the expected JSON structure for creating a vehicle
type CreateVehicleInput struct {
	CustomerID    uuid.UUID `json:"customerId" binding:"required"`
	Make          string    `json:"make" binding:"required"`
	Model         string    `json:"model" binding:"required"`
	Year          *int      `json:"year"`
	VehicleNumber string    `json:"vehicleNumber" binding:"required"`
	VehicleType   string    `json:"vehicleType" binding:"required,oneof=car bike scooter truck van"`
	EngineNumber  string    `json:"engineNumber"`
	ChassisNumber string    `json:"chassisNumber"`
	Color         string    `json:"color"`
}

// UpdateVehicleInput defines the expected JSON structure for updating a vehicle
type UpdateVehicleInput struct {
	Make          *string `json:"make"`
	Model         *string `json:"model"`
	Year          *int    `json:"year"`
	VehicleNumber *string `json:"vehicleNumber"`
	VehicleType   *string `json:"vehicleType" binding:"omitempty,oneof=car bike scooter truck van"`
	EngineNumber  *string `json:"engineNumber"`
	ChassisNumber *string `json:"chassisNumber"`
	Color         *string `json:"color"`
}

// CreateVehicle registers a vehicle under an existing customer
func CreateVehicle(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	var input CreateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Owning customer must exist in the same garage
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

	vehicle := models.Vehicle{
		ID:            uuid.New(),
		GarageID:      garageUUID,
		CustomerID:    input.CustomerID,
		Make:          input.Make,
		Model:         input.Model,
		Year:          input.Year,
		VehicleNumber: input.VehicleNumber,
		VehicleType:   input.VehicleType,
		EngineNumber:  input.EngineNumber,
		ChassisNumber: input.ChassisNumber,
		Color:         input.Color,
	}

	if err := config.DB.Create(&vehicle).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicles retrieves all vehicles for the garage
func GetVehicles(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("garage_id = ?", garageUUID)
	if customerID := c.Query("customerId"); customerID != "" {
		customerUUID, err := uuid.Parse(customerID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		query = query.Where("customer_id = ?", customerUUID)
	}

	var vehicles []models.Vehicle
	if err := query.Find(&vehicles).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve vehicles")
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

// GetVehicle retrieves a specific vehicle by ID
func GetVehicle(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	vehicleUUID, ok := pathUUID(c, "id", "vehicle")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, vehicleUUID).
		First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// UpdateVehicle updates an existing vehicle
func UpdateVehicle(c *gin.Context) {
	garageUUID, ok := garageFromContext(c)
	if !ok {
		return
	}
	vehicleUUID, ok := pathUUID(c, "id", "vehicle")
	if !ok {
		return
	}

	var input UpdateVehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var vehicle models.Vehicle
	if err := config.DB.Where("garage_id = ? AND id = ?", garageUUID, vehicleUUID).
		First(&vehicle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Vehicle not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Make != nil {
		vehicle.Make = *input.Make
	}
	if input.Model != nil {
		vehicle.Model = *input.Model
	}
	if input.Year != nil {
		vehicle.Year = input.Year
	}
	if input.VehicleNumber != nil {
		vehicle.VehicleNumber = *input.VehicleNumber
	}
	if input.VehicleType != nil {
		vehicle.VehicleType = *input.VehicleType
	}
	if input.EngineNumber != nil {
		vehicle.EngineNumber = *input.EngineNumber
	}
	if input.ChassisNumber != nil {
		vehicle.ChassisNumber = *input.ChassisNumber
	}
	if input.Color != nil {
		vehicle.Color = *input.Color
	}

	if err := config.DB.Save(&vehicle).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update vehicle")
		return
	}

	c.JSON(http.StatusOK, vehicle)
}
