package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Garage struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"not null"`
	Address string
	Phone   string
	GSTIN   string `gorm:"column:gstin"`

	PaymentReminders      bool `gorm:"default:true"`
	WhatsAppNotifications bool `gorm:"default:false"`
	SMSNotifications      bool `gorm:"default:false"`

	Users     []User     `gorm:"foreignKey:GarageID"`
	Customers []Customer `gorm:"foreignKey:GarageID"`
	Services  []Service  `gorm:"foreignKey:GarageID"`
	Parts     []Part     `gorm:"foreignKey:GarageID"`
	Invoices  []Invoice  `gorm:"foreignKey:GarageID"`
}

func (g *Garage) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}
