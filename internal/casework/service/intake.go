package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"github.com/railzwaylabs/aligntrack/internal/casework/domain"
	"github.com/railzwaylabs/aligntrack/pkg/db"
	"github.com/railzwaylabs/aligntrack/pkg/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) SubmitCase(ctx context.Context, req domain.SubmitRequest) (*domain.Case, error) {
	doctorID, err := s.resolveSubmitter(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	patientName, err := requireText("patient_name", req.PatientName)
	if err != nil {
		return nil, err
	}
	if err := validateAge(req.PatientAge); err != nil {
		return nil, err
	}
	if err := validateArch(req.TreatmentArch); err != nil {
		return nil, err
	}
	uploads, err := files{
		method:     req.UploadMethod,
		upper:      req.UpperScanURL,
		lower:      req.LowerScanURL,
		bite:       req.BiteScanURL,
		compressed: req.CompressedFileURL,
	}.validate()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	c := &domain.Case{
		ID:                s.genID.Generate(),
		DoctorID:          doctorID,
		Status:            domain.StatusSubmitted,
		PatientName:       patientName,
		PatientAge:        req.PatientAge,
		PatientGender:     optionalText(req.PatientGender),
		TreatmentArch:     req.TreatmentArch,
		ChiefComplaint:    optionalText(req.ChiefComplaint),
		AlignerMaterial:   optionalText(req.AlignerMaterial),
		PrintingMethod:    optionalText(req.PrintingMethod),
		UploadMethod:      uploads.method,
		UpperScanURL:      uploads.upper,
		LowerScanURL:      uploads.lower,
		BiteScanURL:       uploads.bite,
		CompressedFileURL: uploads.compressed,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, c); err != nil {
			return err
		}
		event := toAdmins(domain.EventTransition, map[string]any{"patient_name": patientName})
		event.CaseID = c.ID
		event.ActorID = actorcontext.ActorIDPtr(ctx)
		event.ToStatus = domain.StatusSubmitted
		return s.events.Publish(ctx, tx, *event)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("case submitted",
		zap.String("case_id", c.ID.String()),
		zap.String("doctor_id", doctorID.String()),
	)
	return c, nil
}

func (s *Service) resolveSubmitter(ctx context.Context, requested string) (snowflake.ID, error) {
	actor, ok := actorcontext.FromContext(ctx)
	if !ok {
		return 0, domain.ErrForbidden
	}
	if !actor.Role.IsStaff() {
		return actor.ID, nil
	}
	id, err := snowflake.ParseString(requested)
	if err != nil || id <= 0 {
		return 0, validation.New("doctor_id", "required")
	}
	return id, nil
}

// RequestRefinement spawns a follow-up case from a delivered parent. The
// parent row stays locked while the next refinement number is computed and
// inserted, and the unique (parent_case_id, refinement_number) index rejects
// any insert that still races past the lock.
func (s *Service) RequestRefinement(ctx context.Context, parentID string, req domain.RefinementRequest) (*domain.Case, error) {
	id, err := parseID(parentID)
	if err != nil {
		return nil, err
	}
	uploads, err := files{
		method:     req.UploadMethod,
		upper:      req.UpperScanURL,
		lower:      req.LowerScanURL,
		bite:       req.BiteScanURL,
		compressed: req.CompressedFileURL,
	}.validate()
	if err != nil {
		return nil, err
	}

	var child *domain.Case
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parent, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if parent == nil {
			return domain.ErrNotFound
		}
		if err := authorizeOwner(ctx, parent); err != nil {
			return err
		}
		if parent.Status != domain.StatusDelivered {
			return s.reject("request_refinement", parent, domain.ErrInvalidStateTransition)
		}

		last, err := s.repo.MaxRefinementNumber(ctx, tx, parent.ID)
		if err != nil {
			return err
		}
		next := last + 1

		complaint := optionalText(req.ChiefComplaint)
		if complaint == nil {
			complaint = parent.ChiefComplaint
		}

		now := s.clock.Now(ctx)
		parentRef := parent.ID
		child = &domain.Case{
			ID:                s.genID.Generate(),
			DoctorID:          parent.DoctorID,
			Status:            domain.StatusSubmitted,
			ParentCaseID:      &parentRef,
			RefinementNumber:  &next,
			PatientName:       parent.PatientName,
			PatientAge:        parent.PatientAge,
			PatientGender:     parent.PatientGender,
			TreatmentArch:     parent.TreatmentArch,
			ChiefComplaint:    complaint,
			AlignerMaterial:   parent.AlignerMaterial,
			PrintingMethod:    parent.PrintingMethod,
			UploadMethod:      uploads.method,
			UpperScanURL:      uploads.upper,
			LowerScanURL:      uploads.lower,
			BiteScanURL:       uploads.bite,
			CompressedFileURL: uploads.compressed,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.repo.Insert(ctx, tx, child); err != nil {
			if db.IsUniqueViolation(err) {
				return domain.ErrRefinementConflict
			}
			return err
		}

		event := toAdmins(domain.EventRefinementCreated, map[string]any{
			"parent_case_id":    parent.ID.String(),
			"refinement_number": next,
		})
		event.CaseID = child.ID
		event.ActorID = actorcontext.ActorIDPtr(ctx)
		event.ToStatus = domain.StatusSubmitted
		return s.events.Publish(ctx, tx, *event)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRefinementConflict) {
			s.metrics.TransitionRejected("request_refinement", "refinement_conflict")
		}
		return nil, err
	}

	s.log.Info("refinement created",
		zap.String("case_id", child.ID.String()),
		zap.String("parent_case_id", id.String()),
		zap.Int("refinement_number", *child.RefinementNumber),
	)
	return child, nil
}

// DeleteCase removes a case that has no payments applied and no refinements.
func (s *Service) DeleteCase(ctx context.Context, id string) error {
	if actor, ok := actorcontext.FromContext(ctx); ok && actor.Role != actorcontext.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	caseID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDForUpdate(ctx, tx, caseID)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}

		allocations, err := s.repo.CountAllocations(ctx, tx, caseID)
		if err != nil {
			return err
		}
		if allocations > 0 {
			return domain.ErrHasAllocations
		}
		refinements, err := s.repo.MaxRefinementNumber(ctx, tx, caseID)
		if err != nil {
			return err
		}
		if refinements > 0 {
			return domain.ErrHasRefinements
		}

		affected, err := s.repo.Delete(ctx, tx, caseID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}

		s.log.Info("case deleted",
			zap.String("case_id", caseID.String()),
			zap.String("status", string(c.Status)),
		)
		return nil
	})
}
