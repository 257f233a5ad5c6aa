package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"garagepro-backend/billing"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExtraCharges stores ad-hoc invoice charges as a JSONB column.
type ExtraCharges []billing.ExtraCharge

func (e ExtraCharges) Value() (driver.Value, error) {
	return json.Marshal(e)
}

func (e *ExtraCharges) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	case nil:
		*e = nil
		return nil
	}
	return errors.New("unsupported type for extra charges")
}

type Invoice struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	GarageID        uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null"`

	InvoiceNumber string    `gorm:"uniqueIndex;not null"`
	InvoiceType   string    `gorm:"type:varchar(10);not null"` // gst, non-gst
	CustomerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	VehicleID     uuid.UUID `gorm:"type:uuid;index;not null"`

	Subtotal           float64      `gorm:"type:decimal(10,2);not null"`
	DiscountPercentage float64      `gorm:"type:decimal(5,2);default:0.0"`
	DiscountAmount     float64      `gorm:"type:decimal(10,2);default:0.0"`
	CGSTAmount         float64      `gorm:"type:decimal(10,2);default:0.0"`
	SGSTAmount         float64      `gorm:"type:decimal(10,2);default:0.0"`
	TotalGSTAmount     float64      `gorm:"type:decimal(10,2);default:0.0"`
	LaborCharges       float64      `gorm:"type:decimal(10,2);default:0.0"`
	ExtraCharges       ExtraCharges `gorm:"type:jsonb"`
	Total              float64      `gorm:"type:decimal(10,2);not null"`

	Status     string `gorm:"type:varchar(20);default:'pending'"`
	DueDate    *time.Time
	PaidAt     *time.Time
	Notes      string
	Kilometers *int

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID"`

	gorm.Model
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// InvoiceItem snapshots the catalog entry at add time; ItemID is a weak
// back-reference and is never dereferenced for recomputation.
type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`

	ItemType       string    `gorm:"type:varchar(10);not null"` // service, part
	ItemID         uuid.UUID `gorm:"type:uuid;index;not null"`
	Name           string    `gorm:"not null"`
	SACHSNCode     string    `gorm:"column:sac_hsn_code"`
	Quantity       int       `gorm:"default:1"`
	UnitPrice      float64   `gorm:"type:decimal(10,2);not null"`
	DiscountAmount float64   `gorm:"type:decimal(10,2);default:0.0"`
	GSTRate        float64   `gorm:"type:decimal(5,2);default:0.0"`
	CGSTAmount     float64   `gorm:"type:decimal(10,2);default:0.0"`
	SGSTAmount     float64   `gorm:"type:decimal(10,2);default:0.0"`
	TotalAmount    float64   `gorm:"type:decimal(10,2);not null"`
}

func (i *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

// InvoiceSequence is the per-garage per-type per-day counter behind invoice
// numbering. The row is locked and bumped inside the creation transaction.
type InvoiceSequence struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	GarageID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_seq,priority:1"`
	InvoiceType string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_invoice_seq,priority:2"`
	Day         string    `gorm:"type:varchar(8);not null;uniqueIndex:idx_invoice_seq,priority:3"` // YYYYMMDD
	Counter     int64     `gorm:"default:0"`
}

func (s *InvoiceSequence) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
