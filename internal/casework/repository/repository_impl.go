package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/casework/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *domain.Case) error {
	if c == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Create(c).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Case, error) {
	return r.find(ctx, db.WithContext(ctx), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Case, error) {
	return r.find(ctx, db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *repo) find(ctx context.Context, stmt *gorm.DB, id snowflake.ID) (*domain.Case, error) {
	var c domain.Case
	err := stmt.Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) ListByDoctor(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]domain.Case, error) {
	var items []domain.Case
	err := db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateIfStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, expected domain.Status, fields map[string]any) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Case{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) MaxRefinementNumber(ctx context.Context, db *gorm.DB, parentID snowflake.ID) (int, error) {
	var last int
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(refinement_number), 0) FROM cases WHERE parent_case_id = ?`,
		parentID,
	).Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last, nil
}

func (r *repo) CountAllocations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM payment_case_allocations WHERE case_id = ?`,
		id,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) LockAllocations(ctx context.Context, db *gorm.DB, id snowflake.ID) ([]domain.AllocationShare, error) {
	var items []domain.AllocationShare
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Table("payment_case_allocations").
		Select("id, payment_id, allocated_amount").
		Where("case_id = ?", id).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ShrinkAllocation(ctx context.Context, db *gorm.DB, allocationID snowflake.ID, amount decimal.Decimal) error {
	if amount.IsPositive() {
		return db.WithContext(ctx).Exec(
			`UPDATE payment_case_allocations SET allocated_amount = ? WHERE id = ?`,
			amount, allocationID,
		).Error
	}
	return db.WithContext(ctx).Exec(`DELETE FROM payment_case_allocations WHERE id = ?`, allocationID).Error
}

func (r *repo) CreditPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID, amount decimal.Decimal) error {
	var row struct {
		UnallocatedAmount decimal.Decimal `gorm:"column:unallocated_amount"`
	}
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Table("payments").
		Select("unallocated_amount").
		Where("id = ?", paymentID).
		Take(&row).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Exec(
		`UPDATE payments SET unallocated_amount = ? WHERE id = ?`,
		row.UnallocatedAmount.Add(amount), paymentID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(`DELETE FROM cases WHERE id = ?`, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
