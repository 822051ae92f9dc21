package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"github.com/railzwaylabs/aligntrack/internal/casework/domain"
	catalogdomain "github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	"github.com/railzwaylabs/aligntrack/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	verr, ok := validation.As(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, field, verr.Field)
}

func TestSubmitCaseValidatesUploads(t *testing.T) {
	f := setup(t)

	_, err := f.svc.SubmitCase(doctorCtx(), domain.SubmitRequest{
		PatientName:   "Jane Roe",
		TreatmentArch: domain.TreatmentArchUpper,
		UploadMethod:  domain.UploadMethodIndividual,
		UpperScanURL:  strPtr("https://files.example/upper.stl"),
		LowerScanURL:  strPtr("   "),
	})
	requireValidation(t, err, "lower_scan_url")

	_, err = f.svc.SubmitCase(doctorCtx(), domain.SubmitRequest{
		PatientName:   "Jane Roe",
		TreatmentArch: domain.TreatmentArchUpper,
		UploadMethod:  domain.UploadMethodCompressed,
	})
	requireValidation(t, err, "compressed_file_url")

	_, err = f.svc.SubmitCase(doctorCtx(), domain.SubmitRequest{
		PatientName:       " ",
		TreatmentArch:     domain.TreatmentArchUpper,
		UploadMethod:      domain.UploadMethodCompressed,
		CompressedFileURL: strPtr("https://files.example/scan.zip"),
	})
	requireValidation(t, err, "patient_name")

	c, err := f.svc.SubmitCase(doctorCtx(), domain.SubmitRequest{
		PatientName:       "Jane Roe",
		TreatmentArch:     domain.TreatmentArchLower,
		UploadMethod:      domain.UploadMethodCompressed,
		CompressedFileURL: strPtr("https://files.example/scan.zip"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, c.Status)
	assert.Equal(t, doctorID, c.DoctorID)
	assert.Nil(t, c.TotalCost)

	event := f.events.last()
	assert.Equal(t, domain.EventTransition, event.Type)
	assert.Nil(t, event.RecipientID)
	assert.Nil(t, event.FromStatus)
}

func TestSubmitCaseByStaffRequiresDoctor(t *testing.T) {
	f := setup(t)

	req := domain.SubmitRequest{
		PatientName:       "Jane Roe",
		TreatmentArch:     domain.TreatmentArchBoth,
		UploadMethod:      domain.UploadMethodCompressed,
		CompressedFileURL: strPtr("https://files.example/scan.zip"),
	}
	_, err := f.svc.SubmitCase(adminCtx(), req)
	requireValidation(t, err, "doctor_id")

	req.DoctorID = doctorID.String()
	c, err := f.svc.SubmitCase(adminCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, doctorID, c.DoctorID)

	_, err = f.svc.SubmitCase(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAcceptCaseUsesCatalogFeeByDefault(t *testing.T) {
	f := setup(t)
	c := f.submit(t)

	f.catalog.On("AcceptanceFee", mock.Anything).Return(dec("50"), nil).Once()

	accepted, err := f.svc.AcceptCase(adminCtx(), c.ID.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, accepted.Status)
	assertAmount(t, "50", accepted.CaseStudyFee)
	f.catalog.AssertExpectations(t)

	event := f.events.last()
	require.NotNil(t, event.RecipientID)
	assert.Equal(t, doctorID, *event.RecipientID)
	require.NotNil(t, event.FromStatus)
	assert.Equal(t, domain.StatusSubmitted, *event.FromStatus)
	assert.Equal(t, domain.StatusAccepted, event.ToStatus)
}

func TestAcceptCaseRejectsNegativeFee(t *testing.T) {
	f := setup(t)
	c := f.submit(t)

	_, err := f.svc.AcceptCase(adminCtx(), c.ID.String(), decPtr("-1"))
	requireValidation(t, err, "fee")
	assert.Equal(t, domain.StatusSubmitted, f.reload(t, c.ID).Status)

	_, err = f.svc.AcceptCase(adminCtx(), c.ID.String(), decPtr("1.005"))
	requireValidation(t, err, "fee")
}

func TestAcceptCaseWithoutCatalogFee(t *testing.T) {
	f := setup(t)
	c := f.submit(t)

	f.catalog.On("AcceptanceFee", mock.Anything).Return(decimal.Zero, catalogdomain.ErrNotFound).Once()

	_, err := f.svc.AcceptCase(adminCtx(), c.ID.String(), nil)
	requireValidation(t, err, "fee")
}

func TestDeclineCaseRequiresReason(t *testing.T) {
	f := setup(t)
	c := f.submit(t)

	_, err := f.svc.DeclineCase(adminCtx(), c.ID.String(), "   ")
	requireValidation(t, err, "reason")

	stored := f.reload(t, c.ID)
	assert.Equal(t, domain.StatusSubmitted, stored.Status)
	assert.Nil(t, stored.DeclineReason)
}

func TestDeclineAndUndo(t *testing.T) {
	f := setup(t)
	c := f.submit(t)

	declined, err := f.svc.DeclineCase(adminCtx(), c.ID.String(), "scans are blurry")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, declined.Status)
	require.NotNil(t, declined.DeclineReason)
	assert.Equal(t, "scans are blurry", *declined.DeclineReason)
	require.NotNil(t, declined.DeclinedAt)
	require.NotNil(t, declined.DeclinedBy)
	assert.Equal(t, adminID, *declined.DeclinedBy)

	event := f.events.last()
	assert.Equal(t, domain.EventDecline, event.Type)
	require.NotNil(t, event.RecipientID)
	assert.Equal(t, doctorID, *event.RecipientID)

	restored, err := f.svc.UndoDecline(adminCtx(), c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, restored.Status)
	assert.Nil(t, restored.DeclineReason)
	assert.Nil(t, restored.DeclinedAt)
	assert.Nil(t, restored.DeclinedBy)
}

func TestInvalidTransitionPerformsNoWrite(t *testing.T) {
	f := setup(t)
	c := f.submit(t)
	before := f.reload(t, c.ID)
	published := len(f.events.events)

	_, err := f.svc.CompleteCase(doctorCtx(), c.ID.String(), 5, "great")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.svc.UndoDecline(adminCtx(), c.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.svc.DoctorApprove(doctorCtx(), c.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	after := f.reload(t, c.ID)
	assert.Equal(t, before.Status, after.Status)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	assert.Len(t, f.events.events, published)
}

func TestSendForApprovalValidatesPlan(t *testing.T) {
	f := setup(t)
	c := f.submit(t)
	_, err := f.svc.AcceptCase(adminCtx(), c.ID.String(), decPtr("100"))
	require.NoError(t, err)

	_, err = f.svc.SendForApproval(adminCtx(), c.ID.String(), domain.SendForApprovalRequest{
		UpperAlignersCount:      0,
		LowerAlignersCount:      10,
		EstimatedDurationMonths: 6,
	})
	requireValidation(t, err, "upper_aligners_count")

	_, err = f.svc.SendForApproval(adminCtx(), c.ID.String(), domain.SendForApprovalRequest{
		UpperAlignersCount:      10,
		LowerAlignersCount:      10,
		EstimatedDurationMonths: -2,
	})
	requireValidation(t, err, "estimated_duration_months")
	assert.Equal(t, domain.StatusAccepted, f.reload(t, c.ID).Status)
}

func TestSendForApprovalComputesTotal(t *testing.T) {
	f := setup(t)
	c := f.submit(t)
	_, err := f.svc.AcceptCase(adminCtx(), c.ID.String(), decPtr("100"))
	require.NoError(t, err)

	f.catalog.On("MaterialPrice", mock.Anything, "Premium TPU").Return(dec("25"), nil).Once()

	sent, err := f.svc.SendForApproval(adminCtx(), c.ID.String(), domain.SendForApprovalRequest{
		UpperAlignersCount:      14,
		LowerAlignersCount:      12,
		EstimatedDurationMonths: 8,
		DeliveryCharges:         dec("12.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingUserApproval, sent.Status)
	assertAmount(t, "100", sent.CaseStudyFee)
	assertAmount(t, "25", sent.AlignersPrice)
	assertAmount(t, "12.50", sent.DeliveryCharges)
	assertAmount(t, "137.50", sent.TotalCost)
	require.NotNil(t, sent.UpperAlignersCount)
	assert.Equal(t, 14, *sent.UpperAlignersCount)
	assert.Nil(t, sent.ApprovedTotalCost)
	f.catalog.AssertExpectations(t)
}

func TestDoctorApproveFreezesTotal(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)

	approved, err := f.svc.DoctorApprove(doctorCtx(), c.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)
	assertAmount(t, "150", approved.ApprovedTotalCost)
	require.NotNil(t, approved.ApprovedAt)

	event := f.events.last()
	assert.Nil(t, event.RecipientID)

	edited, err := f.svc.UpdatePlan(adminCtx(), c.ID.String(), domain.UpdatePlanRequest{
		DeliveryCharges: decPtr("30"),
	})
	require.NoError(t, err)
	assertAmount(t, "170", edited.TotalCost)
	assertAmount(t, "150", edited.ApprovedTotalCost)
	assert.Equal(t, domain.StatusApproved, edited.Status)

	_, err = f.svc.DoctorApprove(doctorCtx(), c.ID.String())
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestDoctorDeclineKeepsOnlyCaseStudyFee(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)

	_, err := f.svc.DoctorDecline(doctorCtx(), c.ID.String(), "")
	requireValidation(t, err, "reason")

	declined, err := f.svc.DoctorDecline(doctorCtx(), c.ID.String(), "patient moved abroad")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUserRejected, declined.Status)
	assertAmount(t, "100", declined.TotalCost)
	require.NotNil(t, declined.DeclineReason)
	assert.Equal(t, "patient moved abroad", *declined.DeclineReason)
	assert.True(t, declined.Status.Terminal())
}

func TestDoctorDeclineReleasesPaidAboveFeeAsCredit(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)
	first, second := snowflake.ID(501), snowflake.ID(502)
	f.allocate(t, c.ID, first, "90")
	f.allocate(t, c.ID, second, "50")

	declined, err := f.svc.DoctorDecline(doctorCtx(), c.ID.String(), "patient moved abroad")
	require.NoError(t, err)
	assertAmount(t, "100", declined.TotalCost)

	allocated := f.allocatedTo(t, c.ID)
	assert.True(t, dec("100").Equal(allocated), "allocated %s", allocated)
	assert.True(t, dec("40").Equal(f.credit(t, second)), "newest payment takes the credit")
	assert.True(t, f.credit(t, first).IsZero())
	assert.Equal(t, "40.00", f.events.last().Payload["released_credit"])
}

func TestDoctorDeclineWithinFeeKeepsAllocations(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)
	payment := snowflake.ID(503)
	f.allocate(t, c.ID, payment, "60")

	_, err := f.svc.DoctorDecline(doctorCtx(), c.ID.String(), "too expensive")
	require.NoError(t, err)

	assert.True(t, dec("60").Equal(f.allocatedTo(t, c.ID)))
	assert.True(t, f.credit(t, payment).IsZero())
	assert.NotContains(t, f.events.last().Payload, "released_credit")
}

func TestUpdatePlanBelowPaidReleasesCredit(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)
	_, err := f.svc.DoctorApprove(doctorCtx(), c.ID.String())
	require.NoError(t, err)
	payment := snowflake.ID(504)
	f.allocate(t, c.ID, payment, "150")

	edited, err := f.svc.UpdatePlan(adminCtx(), c.ID.String(), domain.UpdatePlanRequest{
		Fee:           decPtr("10"),
		MaterialPrice: decPtr("0"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, edited.Status)
	assertAmount(t, "20", edited.TotalCost)
	assertAmount(t, "150", edited.ApprovedTotalCost)

	assert.True(t, dec("20").Equal(f.allocatedTo(t, c.ID)))
	assert.True(t, dec("130").Equal(f.credit(t, payment)))
}

func TestUpdatePlanCountsOnlyLeavesAllocations(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)
	payment := snowflake.ID(505)
	f.allocate(t, c.ID, payment, "150")

	upper := 20
	_, err := f.svc.UpdatePlan(adminCtx(), c.ID.String(), domain.UpdatePlanRequest{UpperAlignersCount: &upper})
	require.NoError(t, err)

	assert.True(t, dec("150").Equal(f.allocatedTo(t, c.ID)))
	assert.True(t, f.credit(t, payment).IsZero())
}

func TestQuoteAboveColumnRangeRejected(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)

	_, err := f.svc.UpdatePlan(adminCtx(), c.ID.String(), domain.UpdatePlanRequest{
		DeliveryCharges: decPtr("1000000000000"),
	})
	requireValidation(t, err, "delivery_charges")

	_, err = f.svc.UpdatePlan(adminCtx(), c.ID.String(), domain.UpdatePlanRequest{
		Fee:           decPtr("999999999999.99"),
		MaterialPrice: decPtr("1"),
	})
	requireValidation(t, err, "total_cost")
}

func TestDoctorRequestEdit(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)

	noted, err := f.svc.DoctorRequestEdit(doctorCtx(), c.ID.String(), domain.EditRequest{
		Note: strPtr("please add attachments on 13"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingUserApproval, noted.Status)
	require.NotNil(t, noted.EditRequestNote)
	assert.Equal(t, "please add attachments on 13", *noted.EditRequestNote)

	blank, err := f.svc.DoctorRequestEdit(doctorCtx(), c.ID.String(), domain.EditRequest{Note: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingUserApproval, blank.Status)
	require.NotNil(t, blank.EditRequestNote)
	assert.Equal(t, "please add attachments on 13", *blank.EditRequestNote)
	assert.Equal(t, domain.StatusAwaitingUserApproval, f.events.last().ToStatus)

	_, err = f.svc.DoctorRequestEdit(doctorCtx(), c.ID.String(), domain.EditRequest{MaterialChanged: true})
	requireValidation(t, err, "new_material")

	repriced, err := f.svc.DoctorRequestEdit(doctorCtx(), c.ID.String(), domain.EditRequest{
		MaterialChanged: true,
		NewMaterial:     strPtr("Standard PETG"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, repriced.Status)
	require.NotNil(t, repriced.AlignerMaterial)
	assert.Equal(t, "Standard PETG", *repriced.AlignerMaterial)
}

func TestAdvanceManufacturingRequiresImmediateSuccessor(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)
	_, err := f.svc.DoctorApprove(doctorCtx(), c.ID.String())
	require.NoError(t, err)

	_, err = f.svc.AdvanceManufacturing(adminCtx(), c.ID.String(), domain.StatusApproved, domain.StatusReadyForDelivery)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.svc.AdvanceManufacturing(adminCtx(), c.ID.String(), domain.StatusInProduction, domain.StatusReadyForDelivery)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	moved, err := f.svc.AdvanceManufacturing(adminCtx(), c.ID.String(), domain.StatusApproved, domain.StatusInProduction)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProduction, moved.Status)
}

func TestPlanLockedOnceReady(t *testing.T) {
	f := setup(t)
	c := f.delivered(t)
	assert.False(t, c.PlanEditAllowed())

	_, err := f.svc.UpdatePlan(adminCtx(), c.ID.String(), domain.UpdatePlanRequest{
		DeliveryCharges: decPtr("1"),
	})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestCompleteCase(t *testing.T) {
	f := setup(t)
	c := f.delivered(t)

	_, err := f.svc.CompleteCase(doctorCtx(), c.ID.String(), 6, "")
	requireValidation(t, err, "satisfaction_rating")
	_, err = f.svc.CompleteCase(doctorCtx(), c.ID.String(), 0, "")
	requireValidation(t, err, "satisfaction_rating")

	done, err := f.svc.CompleteCase(doctorCtx(), c.ID.String(), 5, "perfect fit")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, done.Status)
	require.NotNil(t, done.SatisfactionRating)
	assert.Equal(t, 5, *done.SatisfactionRating)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.CompletionMessage)
	assert.Equal(t, "perfect fit", *done.CompletionMessage)
}

func TestRequestRefinementNumbering(t *testing.T) {
	f := setup(t)
	refinement := domain.RefinementRequest{
		UploadMethod:      domain.UploadMethodCompressed,
		CompressedFileURL: strPtr("https://files.example/refine.zip"),
	}

	notReady := f.submit(t)
	_, err := f.svc.RequestRefinement(doctorCtx(), notReady.ID.String(), refinement)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	parent := f.delivered(t)

	first, err := f.svc.RequestRefinement(doctorCtx(), parent.ID.String(), refinement)
	require.NoError(t, err)
	require.NotNil(t, first.RefinementNumber)
	assert.Equal(t, 1, *first.RefinementNumber)

	second, err := f.svc.RequestRefinement(doctorCtx(), parent.ID.String(), refinement)
	require.NoError(t, err)
	require.NotNil(t, second.RefinementNumber)
	assert.Equal(t, 2, *second.RefinementNumber)

	assert.Equal(t, domain.StatusSubmitted, second.Status)
	require.NotNil(t, second.ParentCaseID)
	assert.Equal(t, parent.ID, *second.ParentCaseID)
	assert.Equal(t, parent.PatientName, second.PatientName)
	assert.Equal(t, parent.TreatmentArch, second.TreatmentArch)
	assert.Equal(t, parent.AlignerMaterial, second.AlignerMaterial)
	assert.Nil(t, second.CaseStudyFee)
	assert.Nil(t, second.TotalCost)
	assert.Nil(t, second.ApprovedTotalCost)
	assert.Nil(t, second.UpperAlignersCount)

	event := f.events.last()
	assert.Equal(t, domain.EventRefinementCreated, event.Type)
	assert.Equal(t, second.ID, event.CaseID)

	stored := f.reload(t, parent.ID)
	assert.Equal(t, domain.StatusDelivered, stored.Status)
}

func TestRequestRefinementValidatesUploads(t *testing.T) {
	f := setup(t)
	parent := f.delivered(t)

	_, err := f.svc.RequestRefinement(doctorCtx(), parent.ID.String(), domain.RefinementRequest{
		UploadMethod: domain.UploadMethodIndividual,
		UpperScanURL: strPtr("https://files.example/upper.stl"),
	})
	requireValidation(t, err, "lower_scan_url")
}

// staleRepo serves a snapshot taken before another actor moved the case.
type staleRepo struct {
	domain.Repository
	status domain.Status
}

func (r staleRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Case, error) {
	c, err := r.Repository.FindByID(ctx, db, id)
	if err != nil || c == nil {
		return c, err
	}
	c.Status = r.status
	return c, nil
}

func TestStaleStateConflict(t *testing.T) {
	f := setup(t)
	c := f.submit(t)

	_, err := f.svc.DeclineCase(adminCtx(), c.ID.String(), "duplicate order")
	require.NoError(t, err)

	stale := New(Params{
		DB:      f.db,
		Log:     zapNop(),
		GenID:   mustNode(t),
		Clock:   f.clock,
		Repo:    staleRepo{Repository: f.repo, status: domain.StatusSubmitted},
		Catalog: f.catalog,
		Events:  f.events,
	})

	_, err = stale.AcceptCase(adminCtx(), c.ID.String(), decPtr("80"))
	require.ErrorIs(t, err, domain.ErrStaleState)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	stored := f.reload(t, c.ID)
	assert.Equal(t, domain.StatusRejected, stored.Status)
	assert.Nil(t, stored.CaseStudyFee)
}

func TestDoctorCannotTouchOtherDoctorsCase(t *testing.T) {
	f := setup(t)
	c := f.awaitingApproval(t)

	other := actorcontext.WithActor(context.Background(), actorcontext.Actor{ID: 7002, Role: actorcontext.RoleDoctor})
	_, err := f.svc.DoctorApprove(other, c.ID.String())
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.ListCasesByDoctor(other, doctorID.String())
	require.ErrorIs(t, err, domain.ErrForbidden)

	items, err := f.svc.ListCasesByDoctor(doctorCtx(), doctorID.String())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, c.ID, items[0].ID)
}

func TestGetCaseErrors(t *testing.T) {
	f := setup(t)

	_, err := f.svc.GetCase(adminCtx(), "not-an-id")
	require.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = f.svc.GetCase(adminCtx(), "123456")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCase(t *testing.T) {
	f := setup(t)
	superAdmin := actorcontext.WithActor(context.Background(), actorcontext.Actor{ID: 1, Role: actorcontext.RoleSuperAdmin})

	billed := f.submit(t)
	require.NoError(t, f.db.Exec(
		`INSERT INTO payment_case_allocations (id, payment_id, case_id, allocated_amount) VALUES (?, ?, ?, ?)`,
		1, 2, billed.ID, "10.00",
	).Error)

	err := f.svc.DeleteCase(adminCtx(), billed.ID.String())
	require.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.DeleteCase(superAdmin, billed.ID.String())
	require.ErrorIs(t, err, domain.ErrHasAllocations)

	parent := f.delivered(t)
	_, err = f.svc.RequestRefinement(doctorCtx(), parent.ID.String(), domain.RefinementRequest{
		UploadMethod:      domain.UploadMethodCompressed,
		CompressedFileURL: strPtr("https://files.example/refine.zip"),
	})
	require.NoError(t, err)
	err = f.svc.DeleteCase(superAdmin, parent.ID.String())
	require.ErrorIs(t, err, domain.ErrHasRefinements)

	fresh := f.submit(t)
	require.NoError(t, f.svc.DeleteCase(superAdmin, fresh.ID.String()))
	_, err = f.svc.GetCase(adminCtx(), fresh.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}
