package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	GarageID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name          string `gorm:"not null"`
	Description   string
	Category      string  `gorm:"default:'General'"`
	BasePrice     float64 `gorm:"type:decimal(10,2);not null"`
	SACCode       string  `gorm:"column:sac_code"`
	EstimatedTime int     // in minutes
	GSTRate       float64 `gorm:"type:decimal(5,2);default:18.0"`
	IsActive      bool    `gorm:"default:true"`

	gorm.Model
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
