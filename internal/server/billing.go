package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// @Summary      Doctor Billing Summary
// @Description  Outstanding balance, credit and per-case payment status for one doctor
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Doctor ID"
// @Success      200  {object}  DataResponse
// @Router       /api/doctors/{id}/billing [get]
func (s *Server) DoctorBilling(c *gin.Context) {
	resp, err := s.billingSvc.DoctorSummary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Clinic Totals
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  DataResponse
// @Router       /api/billing/totals [get]
func (s *Server) BillingTotals(c *gin.Context) {
	resp, err := s.billingSvc.Totals(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      List Services
// @Description  Active pricing reference entries, optionally filtered by type
// @Tags         services
// @Produce      json
// @Security     BearerAuth
// @Param        type  query  string  false  "Service type"
// @Success      200  {object}  DataResponse
// @Router       /api/services [get]
func (s *Server) ListServices(c *gin.Context) {
	resp, err := s.catalogSvc.List(c.Request.Context(), strings.TrimSpace(c.Query("type")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
