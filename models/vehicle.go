package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle spells out the timestamp fields instead of embedding gorm.Model:
// the embed's unqualified name would collide with the Model (make/model)
// column.
type Vehicle struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	GarageID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_garage_vehicle_number,priority:1"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	Make          string `gorm:"not null"`
	Model         string `gorm:"not null"`
	Year          *int
	VehicleNumber string `gorm:"not null;uniqueIndex:idx_garage_vehicle_number,priority:2"`
	VehicleType   string `gorm:"type:varchar(20);not null"` // car, bike, scooter, truck, van
	EngineNumber  string
	ChassisNumber string
	Color         string

	Invoices []Invoice `gorm:"foreignKey:VehicleID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}
