package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/aligntrack/internal/actorcontext"
	"github.com/railzwaylabs/aligntrack/internal/casework/domain"
	"github.com/railzwaylabs/aligntrack/internal/casework/repository"
	catalogdomain "github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	"github.com/railzwaylabs/aligntrack/internal/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	doctorID snowflake.ID = 7001
	adminID  snowflake.ID = 9001
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) List(ctx context.Context, serviceType string) ([]catalogdomain.ServiceItem, error) {
	args := m.Called(ctx, serviceType)
	return args.Get(0).([]catalogdomain.ServiceItem), args.Error(1)
}

func (m *MockCatalog) AcceptanceFee(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockCatalog) MaterialPrice(ctx context.Context, material string) (decimal.Decimal, error) {
	args := m.Called(ctx, material)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ *gorm.DB, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) last() domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fixture struct {
	svc     domain.Service
	db      *gorm.DB
	repo    domain.Repository
	catalog *MockCatalog
	events  *recordingPublisher
	clock   *clock.FixedClock

	allocSeq int64
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Case{}))
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS payment_case_allocations (
		id INTEGER PRIMARY KEY,
		payment_id INTEGER NOT NULL,
		case_id INTEGER NOT NULL,
		allocated_amount NUMERIC NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY,
		unallocated_amount NUMERIC NOT NULL DEFAULT 0
	)`).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{
		db:      db,
		repo:    repository.Provide(),
		catalog: &MockCatalog{},
		events:  &recordingPublisher{},
		clock:   clock.NewFixed(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	}
	f.svc = New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   f.clock,
		Repo:    f.repo,
		Catalog: f.catalog,
		Events:  f.events,
	})
	return f
}

func doctorCtx() context.Context {
	return actorcontext.WithActor(context.Background(), actorcontext.Actor{ID: doctorID, Role: actorcontext.RoleDoctor})
}

func adminCtx() context.Context {
	return actorcontext.WithActor(context.Background(), actorcontext.Actor{ID: adminID, Role: actorcontext.RoleAdmin})
}

func strPtr(v string) *string { return &v }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func assertAmount(t *testing.T, want string, got *decimal.Decimal) {
	t.Helper()
	require.NotNil(t, got)
	assert.True(t, dec(want).Equal(*got), "want %s got %s", want, got.String())
}

func (f *fixture) submit(t *testing.T) *domain.Case {
	t.Helper()
	c, err := f.svc.SubmitCase(doctorCtx(), domain.SubmitRequest{
		PatientName:     "Jane Roe",
		TreatmentArch:   domain.TreatmentArchBoth,
		AlignerMaterial: strPtr("Premium TPU"),
		UploadMethod:    domain.UploadMethodIndividual,
		UpperScanURL:    strPtr("https://files.example/upper.stl"),
		LowerScanURL:    strPtr("https://files.example/lower.stl"),
	})
	require.NoError(t, err)
	return c
}

// awaitingApproval drives a fresh case to awaiting_user_approval with a
// total of 100 + 40 + 10.
func (f *fixture) awaitingApproval(t *testing.T) *domain.Case {
	t.Helper()
	c := f.submit(t)
	_, err := f.svc.AcceptCase(adminCtx(), c.ID.String(), decPtr("100"))
	require.NoError(t, err)
	c, err = f.svc.SendForApproval(adminCtx(), c.ID.String(), domain.SendForApprovalRequest{
		UpperAlignersCount:      12,
		LowerAlignersCount:      10,
		EstimatedDurationMonths: 6,
		MaterialPrice:           decPtr("40"),
		DeliveryCharges:         dec("10"),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) delivered(t *testing.T) *domain.Case {
	t.Helper()
	c := f.awaitingApproval(t)
	_, err := f.svc.DoctorApprove(doctorCtx(), c.ID.String())
	require.NoError(t, err)
	chain := []domain.Status{domain.StatusApproved, domain.StatusInProduction, domain.StatusReadyForDelivery, domain.StatusDelivered}
	for i := 0; i < len(chain)-1; i++ {
		c, err = f.svc.AdvanceManufacturing(adminCtx(), c.ID.String(), chain[i], chain[i+1])
		require.NoError(t, err)
	}
	require.Equal(t, domain.StatusDelivered, c.Status)
	return c
}

func (f *fixture) reload(t *testing.T, id snowflake.ID) *domain.Case {
	t.Helper()
	c, err := f.repo.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

// allocate records a payment share against a case. Later calls get higher
// allocation ids, which is the order allocations are released in.
func (f *fixture) allocate(t *testing.T, caseID, paymentID snowflake.ID, amount string) {
	t.Helper()
	f.allocSeq++
	require.NoError(t, f.db.Exec(`INSERT OR IGNORE INTO payments (id, unallocated_amount) VALUES (?, 0)`, paymentID).Error)
	require.NoError(t, f.db.Exec(
		`INSERT INTO payment_case_allocations (id, payment_id, case_id, allocated_amount) VALUES (?, ?, ?, ?)`,
		f.allocSeq, paymentID, caseID, dec(amount),
	).Error)
}

func (f *fixture) allocatedTo(t *testing.T, caseID snowflake.ID) decimal.Decimal {
	t.Helper()
	var row struct{ Total decimal.Decimal }
	require.NoError(t, f.db.Raw(
		`SELECT COALESCE(SUM(allocated_amount), 0) AS total FROM payment_case_allocations WHERE case_id = ?`, caseID,
	).Scan(&row).Error)
	return row.Total
}

func (f *fixture) credit(t *testing.T, paymentID snowflake.ID) decimal.Decimal {
	t.Helper()
	var row struct{ UnallocatedAmount decimal.Decimal }
	require.NoError(t, f.db.Raw(`SELECT unallocated_amount FROM payments WHERE id = ?`, paymentID).Scan(&row).Error)
	return row.UnallocatedAmount
}

func zapNop() *zap.Logger { return zap.NewNop() }

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	return node
}
