package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const allocationBatchSize = 200

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	if payment == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) InsertAllocations(ctx context.Context, db *gorm.DB, allocations []domain.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(allocations, allocationBatchSize).Error
}

func (r *repo) FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var p domain.Payment
	err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindPaymentByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*domain.Payment, error) {
	var p domain.Payment
	err := db.WithContext(ctx).Where("idempotency_key = ?", key).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// DeletePayment removes allocations explicitly so the result does not depend
// on the store enforcing ON DELETE CASCADE.
func (r *repo) DeletePayment(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	if err := db.WithContext(ctx).Exec(`DELETE FROM payment_case_allocations WHERE payment_id = ?`, id).Error; err != nil {
		return 0, err
	}
	result := db.WithContext(ctx).Exec(`DELETE FROM payments WHERE id = ?`, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) LockCaseCosts(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]domain.CaseCost, error) {
	return r.caseCosts(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), doctorID)
}

func (r *repo) ListCaseCosts(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]domain.CaseCost, error) {
	return r.caseCosts(db.WithContext(ctx), doctorID)
}

func (r *repo) caseCosts(stmt *gorm.DB, doctorID snowflake.ID) ([]domain.CaseCost, error) {
	var items []domain.CaseCost
	err := stmt.
		Table("cases").
		Select("id, doctor_id, total_cost, created_at").
		Where("doctor_id = ?", doctorID).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAllocationsByCaseIDs(ctx context.Context, db *gorm.DB, caseIDs []snowflake.ID) ([]domain.Allocation, error) {
	if len(caseIDs) == 0 {
		return []domain.Allocation{}, nil
	}
	var items []domain.Allocation
	err := db.WithContext(ctx).
		Where("case_id IN ?", caseIDs).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAllocationsByPaymentIDs(ctx context.Context, db *gorm.DB, paymentIDs []snowflake.ID) ([]domain.Allocation, error) {
	if len(paymentIDs) == 0 {
		return []domain.Allocation{}, nil
	}
	var items []domain.Allocation
	err := db.WithContext(ctx).
		Where("payment_id IN ?", paymentIDs).
		Order("created_at asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListPaymentsByDoctor(ctx context.Context, db *gorm.DB, doctorID snowflake.ID) ([]domain.Payment, error) {
	var items []domain.Payment
	err := db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB) ([]domain.Payment, error) {
	var items []domain.Payment
	err := db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
