package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ServiceType string

const (
	ServiceTypeAcceptanceFee    ServiceType = "acceptance_fee"
	ServiceTypeAlignersMaterial ServiceType = "aligners_material"
	ServiceTypePrintingMethod   ServiceType = "printing_method"
)

// ServiceItem is one priced entry of the clinic's reference catalog.
type ServiceItem struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	Type      ServiceType     `gorm:"type:varchar(32);not null" json:"type"`
	Code      string          `gorm:"type:varchar(128);not null;uniqueIndex" json:"code"`
	Name      string          `gorm:"type:text;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`
}

func (ServiceItem) TableName() string { return "services" }
