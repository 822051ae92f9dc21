package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	allocationdomain "github.com/railzwaylabs/aligntrack/internal/allocation/domain"
)

// @Summary      Record Payment
// @Description  Record a payment or expense and allocate it across the doctor's open cases
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string  false  "Idempotency Key"
// @Param        request body allocationdomain.RecordPaymentRequest true "Record Payment Request"
// @Success      201  {object}  DataResponse
// @Router       /api/payments [post]
func (s *Server) RecordPayment(c *gin.Context) {
	var req allocationdomain.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.IdempotencyKey = idempotencyKeyFromHeader(c)

	resp, err := s.paymentSvc.RecordPayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

// @Summary      Get Payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  DataResponse
// @Router       /api/payments/{id} [get]
func (s *Server) GetPayment(c *gin.Context) {
	resp, err := s.paymentSvc.GetPayment(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Delete Payment
// @Description  Delete a payment together with its allocations
// @Tags         payments
// @Security     BearerAuth
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  DataResponse
// @Router       /api/payments/{id} [delete]
func (s *Server) DeletePayment(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.paymentSvc.DeletePayment(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"id": id, "deleted": true})
}

// @Summary      List Doctor Payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Doctor ID"
// @Success      200  {object}  DataResponse
// @Router       /api/doctors/{id}/payments [get]
func (s *Server) ListDoctorPayments(c *gin.Context) {
	resp, err := s.paymentSvc.ListPaymentsByDoctor(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
