package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, serviceType string) ([]domain.ServiceItem, error) {
	var filter *domain.ServiceType
	if value := strings.TrimSpace(serviceType); value != "" {
		parsed, err := domain.ParseServiceType(value)
		if err != nil {
			return nil, err
		}
		filter = &parsed
	}

	items, err := s.repo.ListActive(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ServiceItem{}
	}
	return items, nil
}

func (s *Service) AcceptanceFee(ctx context.Context) (decimal.Decimal, error) {
	item, err := s.repo.FindFirstActive(ctx, s.db, domain.ServiceTypeAcceptanceFee)
	if err != nil {
		return decimal.Zero, err
	}
	if item == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return item.Price, nil
}

// MaterialPrice resolves a material by display name through its slug code.
func (s *Service) MaterialPrice(ctx context.Context, material string) (decimal.Decimal, error) {
	name := strings.TrimSpace(material)
	if name == "" {
		return decimal.Zero, domain.ErrNotFound
	}

	code := slug.Make(string(domain.ServiceTypeAlignersMaterial) + " " + name)
	item, err := s.repo.FindActiveByCode(ctx, s.db, code)
	if err != nil {
		return decimal.Zero, err
	}
	if item == nil || item.Type != domain.ServiceTypeAlignersMaterial {
		s.log.Debug("material not in catalog", zap.String("material", name), zap.String("code", code))
		return decimal.Zero, domain.ErrNotFound
	}
	return item.Price, nil
}
