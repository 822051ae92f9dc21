package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListActive(ctx context.Context, db *gorm.DB, serviceType *ServiceType) ([]ServiceItem, error)
	FindActiveByCode(ctx context.Context, db *gorm.DB, code string) (*ServiceItem, error)
	FindFirstActive(ctx context.Context, db *gorm.DB, serviceType ServiceType) (*ServiceItem, error)
}
