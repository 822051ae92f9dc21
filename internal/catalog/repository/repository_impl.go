package repository

import (
	"context"

	"github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, serviceType *domain.ServiceType) ([]domain.ServiceItem, error) {
	var items []domain.ServiceItem
	stmt := db.WithContext(ctx).
		Model(&domain.ServiceItem{}).
		Where("is_active = ?", true)
	if serviceType != nil {
		stmt = stmt.Where("type = ?", *serviceType)
	}
	if err := stmt.Order("type asc, name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindActiveByCode(ctx context.Context, db *gorm.DB, code string) (*domain.ServiceItem, error) {
	var item domain.ServiceItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, type, code, name, price, is_active, created_at, updated_at
		 FROM services WHERE code = ? AND is_active = ? LIMIT 1`,
		code,
		true,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindFirstActive(ctx context.Context, db *gorm.DB, serviceType domain.ServiceType) (*domain.ServiceItem, error) {
	var item domain.ServiceItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, type, code, name, price, is_active, created_at, updated_at
		 FROM services WHERE type = ? AND is_active = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		serviceType,
		true,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
