package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Part struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	GarageID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name          string  `gorm:"not null"`
	HSNCode       string  `gorm:"column:hsn_code"`
	Price         float64 `gorm:"type:decimal(10,2);not null"`
	GSTRate       float64 `gorm:"type:decimal(5,2);default:18.0"`
	StockQuantity int     `gorm:"default:0"`
	Category      string
	Supplier      string
	PartNumber    string
	MinStockLevel *int
	IsActive      bool `gorm:"default:true"`

	gorm.Model
}

func (p *Part) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
