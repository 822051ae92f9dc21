package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, serviceType string) ([]ServiceItem, error)
	AcceptanceFee(ctx context.Context) (decimal.Decimal, error)
	MaterialPrice(ctx context.Context, material string) (decimal.Decimal, error)
}

var (
	ErrNotFound           = errors.New("service_not_found")
	ErrInvalidServiceType = errors.New("invalid_service_type")
)

func ParseServiceType(value string) (ServiceType, error) {
	switch ServiceType(value) {
	case ServiceTypeAcceptanceFee, ServiceTypeAlignersMaterial, ServiceTypePrintingMethod:
		return ServiceType(value), nil
	default:
		return "", ErrInvalidServiceType
	}
}
