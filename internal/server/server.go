package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	allocationdomain "github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	"github.com/railzwaylabs/aligntrack/internal/authorization"
	billingdomain "github.com/railzwaylabs/aligntrack/internal/billing/domain"
	casedomain "github.com/railzwaylabs/aligntrack/internal/casework/domain"
	catalogdomain "github.com/railzwaylabs/aligntrack/internal/catalog/domain"
	"github.com/railzwaylabs/aligntrack/internal/config"
	notificationdomain "github.com/railzwaylabs/aligntrack/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(New),
	fx.Invoke(RegisterLifecycle),
)

type Params struct {
	fx.In

	Cfg             config.Config
	Log             *zap.Logger
	DB              *gorm.DB
	Registry        *prometheus.Registry
	Authz           *authorization.Authorizer
	CaseSvc         casedomain.Service
	PaymentSvc      allocationdomain.Service
	BillingSvc      billingdomain.Service
	CatalogSvc      catalogdomain.Service
	NotificationSvc notificationdomain.Service
}

type Server struct {
	cfg             config.Config
	log             *zap.Logger
	db              *gorm.DB
	registry        *prometheus.Registry
	authz           *authorization.Authorizer
	caseSvc         casedomain.Service
	paymentSvc      allocationdomain.Service
	billingSvc      billingdomain.Service
	catalogSvc      catalogdomain.Service
	notificationSvc notificationdomain.Service

	engine *gin.Engine
}

func New(p Params) *Server {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:             p.Cfg,
		log:             p.Log.Named("server"),
		db:              p.DB,
		registry:        p.Registry,
		authz:           p.Authz,
		caseSvc:         p.CaseSvc,
		paymentSvc:      p.PaymentSvc,
		billingSvc:      p.BillingSvc,
		catalogSvc:      p.CatalogSvc,
		notificationSvc: p.NotificationSvc,
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.RequestContext())
	s.RegisterRoutes(s.engine)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(s.metricsHandler()))

	api := r.Group("/api", s.AuthRequired(), s.RoleRequired())

	api.POST("/cases", s.SubmitCase)
	api.GET("/cases/:id", s.GetCase)
	api.DELETE("/cases/:id", s.DeleteCase)
	api.POST("/cases/:id/accept", s.AcceptCase)
	api.POST("/cases/:id/decline", s.DeclineCase)
	api.POST("/cases/:id/undo-decline", s.UndoDecline)
	api.POST("/cases/:id/send-for-approval", s.SendForApproval)
	api.POST("/cases/:id/plan", s.UpdatePlan)
	api.POST("/cases/:id/approve", s.ApproveCase)
	api.POST("/cases/:id/reject", s.RejectCase)
	api.POST("/cases/:id/request-edit", s.RequestEdit)
	api.POST("/cases/:id/manufacturing", s.AdvanceManufacturing)
	api.POST("/cases/:id/complete", s.CompleteCase)
	api.POST("/cases/:id/refinements", s.RequestRefinement)
	api.GET("/doctors/:id/cases", s.ListDoctorCases)

	api.POST("/payments", s.RecordPayment)
	api.GET("/payments/:id", s.GetPayment)
	api.DELETE("/payments/:id", s.DeletePayment)
	api.GET("/doctors/:id/payments", s.ListDoctorPayments)

	api.GET("/doctors/:id/billing", s.DoctorBilling)
	api.GET("/billing/totals", s.BillingTotals)

	api.GET("/services", s.ListServices)

	api.GET("/notifications/unread-count", s.UnreadCount)
	api.POST("/notifications/read", s.MarkNotificationsRead)
}

func (s *Server) metricsHandler() http.Handler {
	if s.registry == nil {
		return promhttp.Handler()
	}
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, s.registry}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// @Summary      Health
// @Tags         system
// @Produce      json
// @Success      200  {object}  DataResponse
// @Router       /healthz [get]
func (s *Server) Healthz(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"data": gin.H{"status": "unavailable"}})
		return
	}
	respondData(c, gin.H{"status": "ok"})
}

// RegisterLifecycle binds the HTTP listener to the fx lifecycle.
func RegisterLifecycle(lc fx.Lifecycle, s *Server) {
	httpServer := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", httpServer.Addr)
			if err != nil {
				return err
			}
			s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}
