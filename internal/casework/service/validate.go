package service

import (
	"errors"
	"strings"

	"github.com/railzwaylabs/aligntrack/internal/casework/domain"
	"github.com/railzwaylabs/aligntrack/internal/money"
	"github.com/railzwaylabs/aligntrack/pkg/validation"
	"github.com/shopspring/decimal"
)

const maxPatientAge = 130

func requireText(field string, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", validation.New(field, "required")
	}
	return trimmed, nil
}

func optionalText(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func requirePositive(field string, value int) error {
	if value <= 0 {
		return validation.New(field, "must_be_positive")
	}
	return nil
}

func normalizeAmount(field string, value decimal.Decimal) (decimal.Decimal, error) {
	amount, err := money.Normalize(value)
	if err != nil {
		if errors.Is(err, money.ErrNegativeAmount) {
			return decimal.Zero, validation.New(field, "must_be_non_negative")
		}
		if errors.Is(err, money.ErrTooLarge) {
			return decimal.Zero, validation.New(field, "too_large")
		}
		return decimal.Zero, validation.New(field, "too_many_decimals")
	}
	return amount, nil
}

// quotedTotal sums the quote components and keeps the result storable.
func quotedTotal(parts ...decimal.Decimal) (decimal.Decimal, error) {
	total := money.Sum(parts...)
	if total.GreaterThan(money.MaxAmount) {
		return decimal.Zero, validation.New("total_cost", "too_large")
	}
	return total, nil
}

// files are opaque URLs; only their presence per upload method is checked.
type files struct {
	method     domain.UploadMethod
	upper      *string
	lower      *string
	bite       *string
	compressed *string
}

func (f files) validate() (files, error) {
	out := files{
		method:     f.method,
		upper:      optionalText(f.upper),
		lower:      optionalText(f.lower),
		bite:       optionalText(f.bite),
		compressed: optionalText(f.compressed),
	}

	switch f.method {
	case domain.UploadMethodIndividual:
		if out.upper == nil {
			return files{}, validation.New("upper_scan_url", "required")
		}
		if out.lower == nil {
			return files{}, validation.New("lower_scan_url", "required")
		}
	case domain.UploadMethodCompressed:
		if out.compressed == nil {
			return files{}, validation.New("compressed_file_url", "required")
		}
	default:
		return files{}, validation.New("upload_method", "invalid")
	}
	return out, nil
}

func validateArch(arch domain.TreatmentArch) error {
	switch arch {
	case domain.TreatmentArchUpper, domain.TreatmentArchLower, domain.TreatmentArchBoth:
		return nil
	default:
		return validation.New("treatment_arch", "invalid")
	}
}

func validateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > maxPatientAge {
		return validation.New("patient_age", "out_of_range")
	}
	return nil
}
