package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service interface {
	SubmitCase(ctx context.Context, req SubmitRequest) (*Case, error)
	GetCase(ctx context.Context, id string) (*Case, error)
	ListCasesByDoctor(ctx context.Context, doctorID string) ([]Case, error)

	AcceptCase(ctx context.Context, id string, fee *decimal.Decimal) (*Case, error)
	DeclineCase(ctx context.Context, id string, reason string) (*Case, error)
	UndoDecline(ctx context.Context, id string) (*Case, error)
	SendForApproval(ctx context.Context, id string, req SendForApprovalRequest) (*Case, error)
	UpdatePlan(ctx context.Context, id string, req UpdatePlanRequest) (*Case, error)

	DoctorApprove(ctx context.Context, id string) (*Case, error)
	DoctorDecline(ctx context.Context, id string, reason string) (*Case, error)
	DoctorRequestEdit(ctx context.Context, id string, req EditRequest) (*Case, error)

	AdvanceManufacturing(ctx context.Context, id string, expectedCurrent, next Status) (*Case, error)
	CompleteCase(ctx context.Context, id string, rating int, message string) (*Case, error)
	RequestRefinement(ctx context.Context, parentID string, req RefinementRequest) (*Case, error)

	DeleteCase(ctx context.Context, id string) error
}

// SubmitRequest creates a case. DoctorID is only honoured for staff
// submitting on a doctor's behalf; doctors always submit as themselves.
type SubmitRequest struct {
	DoctorID          string        `json:"doctor_id"`
	PatientName       string        `json:"patient_name"`
	PatientAge        *int          `json:"patient_age"`
	PatientGender     *string       `json:"patient_gender"`
	TreatmentArch     TreatmentArch `json:"treatment_arch"`
	ChiefComplaint    *string       `json:"chief_complaint"`
	AlignerMaterial   *string       `json:"aligner_material"`
	PrintingMethod    *string       `json:"printing_method"`
	UploadMethod      UploadMethod  `json:"upload_method"`
	UpperScanURL      *string       `json:"upper_scan_url"`
	LowerScanURL      *string       `json:"lower_scan_url"`
	BiteScanURL       *string       `json:"bite_scan_url"`
	CompressedFileURL *string       `json:"compressed_file_url"`
}

// SendForApprovalRequest carries the treatment plan and its price. A nil
// MaterialPrice falls back to the catalog price of the case's material and a
// nil Fee to the case study fee captured at acceptance.
type SendForApprovalRequest struct {
	UpperAlignersCount      int              `json:"upper_aligners_count"`
	LowerAlignersCount      int              `json:"lower_aligners_count"`
	EstimatedDurationMonths int              `json:"estimated_duration_months"`
	Fee                     *decimal.Decimal `json:"fee"`
	MaterialPrice           *decimal.Decimal `json:"material_price"`
	DeliveryCharges         decimal.Decimal  `json:"delivery_charges"`
}

// UpdatePlanRequest patches plan fields; nil fields are left unchanged.
type UpdatePlanRequest struct {
	UpperAlignersCount      *int             `json:"upper_aligners_count"`
	LowerAlignersCount      *int             `json:"lower_aligners_count"`
	EstimatedDurationMonths *int             `json:"estimated_duration_months"`
	Fee                     *decimal.Decimal `json:"fee"`
	MaterialPrice           *decimal.Decimal `json:"material_price"`
	DeliveryCharges         *decimal.Decimal `json:"delivery_charges"`
}

type EditRequest struct {
	NewMaterial     *string `json:"new_material"`
	MaterialChanged bool    `json:"material_changed"`
	Note            *string `json:"note"`
}

// RefinementRequest references the fresh scans for a follow-up case. Patient
// and treatment fields are copied from the parent.
type RefinementRequest struct {
	ChiefComplaint    *string      `json:"chief_complaint"`
	UploadMethod      UploadMethod `json:"upload_method"`
	UpperScanURL      *string      `json:"upper_scan_url"`
	LowerScanURL      *string      `json:"lower_scan_url"`
	BiteScanURL       *string      `json:"bite_scan_url"`
	CompressedFileURL *string      `json:"compressed_file_url"`
}
