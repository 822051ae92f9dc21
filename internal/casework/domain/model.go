package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type UploadMethod string

const (
	UploadMethodIndividual UploadMethod = "individual"
	UploadMethodCompressed UploadMethod = "compressed"
)

type TreatmentArch string

const (
	TreatmentArchUpper TreatmentArch = "upper"
	TreatmentArchLower TreatmentArch = "lower"
	TreatmentArchBoth  TreatmentArch = "both"
)

type Case struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	DoctorID         snowflake.ID  `gorm:"not null;index" json:"doctor_id"`
	Status           Status        `gorm:"type:varchar(32);not null" json:"status"`
	ParentCaseID     *snowflake.ID `gorm:"uniqueIndex:ux_cases_parent_refinement" json:"parent_case_id,omitempty"`
	RefinementNumber *int          `gorm:"uniqueIndex:ux_cases_parent_refinement" json:"refinement_number,omitempty"`

	PatientName     string        `gorm:"type:text;not null" json:"patient_name"`
	PatientAge      *int          `json:"patient_age,omitempty"`
	PatientGender   *string       `gorm:"type:varchar(16)" json:"patient_gender,omitempty"`
	TreatmentArch   TreatmentArch `gorm:"type:varchar(16);not null" json:"treatment_arch"`
	ChiefComplaint  *string       `gorm:"type:text" json:"chief_complaint,omitempty"`
	AlignerMaterial *string       `gorm:"type:text" json:"aligner_material,omitempty"`
	PrintingMethod  *string       `gorm:"type:text" json:"printing_method,omitempty"`

	UploadMethod      UploadMethod `gorm:"type:varchar(16);not null" json:"upload_method"`
	UpperScanURL      *string      `gorm:"type:text" json:"upper_scan_url,omitempty"`
	LowerScanURL      *string      `gorm:"type:text" json:"lower_scan_url,omitempty"`
	BiteScanURL       *string      `gorm:"type:text" json:"bite_scan_url,omitempty"`
	CompressedFileURL *string      `gorm:"type:text" json:"compressed_file_url,omitempty"`

	CaseStudyFee      *decimal.Decimal `gorm:"type:decimal(14,2)" json:"case_study_fee,omitempty"`
	AlignersPrice     *decimal.Decimal `gorm:"type:decimal(14,2)" json:"aligners_price,omitempty"`
	DeliveryCharges   *decimal.Decimal `gorm:"type:decimal(14,2)" json:"delivery_charges,omitempty"`
	TotalCost         *decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_cost,omitempty"`
	ApprovedTotalCost *decimal.Decimal `gorm:"type:decimal(14,2)" json:"approved_total_cost,omitempty"`

	UpperAlignersCount      *int    `json:"upper_aligners_count,omitempty"`
	LowerAlignersCount      *int    `json:"lower_aligners_count,omitempty"`
	EstimatedDurationMonths *int    `json:"estimated_duration_months,omitempty"`
	EditRequestNote         *string `gorm:"type:text" json:"edit_request_note,omitempty"`

	DeclineReason *string       `gorm:"type:text" json:"decline_reason,omitempty"`
	DeclinedAt    *time.Time    `json:"declined_at,omitempty"`
	DeclinedBy    *snowflake.ID `json:"declined_by,omitempty"`

	SatisfactionRating *int       `json:"satisfaction_rating,omitempty"`
	CompletionMessage  *string    `gorm:"type:text" json:"completion_message,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Case) TableName() string { return "cases" }

// PlanEditAllowed reports whether plan fields may still change.
func (c *Case) PlanEditAllowed() bool {
	return IsPlanEditAllowed(c.Status)
}

// IsRefinement reports whether the case was spawned from a delivered parent.
func (c *Case) IsRefinement() bool {
	return c.ParentCaseID != nil
}
