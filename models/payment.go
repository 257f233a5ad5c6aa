package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	GarageID  uuid.UUID `gorm:"type:uuid;index;not null"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	Amount        float64 `gorm:"type:decimal(10,2);not null"`
	Method        string  `gorm:"type:varchar(20);not null"`            // cash, card, upi, netbanking, bank_transfer
	Status        string  `gorm:"type:varchar(20);default:'completed'"` // completed, pending, failed, refunded
	TransactionID string
	PaidAt        *time.Time

	RefundAmount *float64 `gorm:"type:decimal(10,2)"`
	RefundReason string
	RefundedAt   *time.Time

	gorm.Model
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
