package server

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	casedomain "github.com/railzwaylabs/aligntrack/internal/casework/domain"
	"github.com/shopspring/decimal"
)

type acceptCaseRequest struct {
	Fee *decimal.Decimal `json:"fee"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type manufacturingRequest struct {
	ExpectedStatus string `json:"expected_status"`
	NextStatus     string `json:"next_status"`
}

type completeCaseRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func caseID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

// @Summary      Submit Case
// @Description  Create a submitted case for a patient
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body casedomain.SubmitRequest true "Submit Case Request"
// @Success      201  {object}  DataResponse
// @Router       /api/cases [post]
func (s *Server) SubmitCase(c *gin.Context) {
	var req casedomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.SubmitCase(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}

// @Summary      Get Case
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id} [get]
func (s *Server) GetCase(c *gin.Context) {
	resp, err := s.caseSvc.GetCase(c.Request.Context(), caseID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      List Doctor Cases
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Doctor ID"
// @Success      200  {object}  DataResponse
// @Router       /api/doctors/{id}/cases [get]
func (s *Server) ListDoctorCases(c *gin.Context) {
	resp, err := s.caseSvc.ListCasesByDoctor(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Delete Case
// @Tags         cases
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id} [delete]
func (s *Server) DeleteCase(c *gin.Context) {
	id := caseID(c)
	if err := s.caseSvc.DeleteCase(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, gin.H{"id": id, "deleted": true})
}

// @Summary      Accept Case
// @Description  Accept a submitted case. Without a fee the catalog acceptance fee applies.
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body acceptCaseRequest false "Accept Case Request"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/accept [post]
func (s *Server) AcceptCase(c *gin.Context) {
	var req acceptCaseRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.AcceptCase(c.Request.Context(), caseID(c), req.Fee)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Decline Case
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body reasonRequest true "Decline Case Request"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/decline [post]
func (s *Server) DeclineCase(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.DeclineCase(c.Request.Context(), caseID(c), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Undo Decline
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/undo-decline [post]
func (s *Server) UndoDecline(c *gin.Context) {
	resp, err := s.caseSvc.UndoDecline(c.Request.Context(), caseID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Send For Approval
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body casedomain.SendForApprovalRequest true "Treatment Plan"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/send-for-approval [post]
func (s *Server) SendForApproval(c *gin.Context) {
	var req casedomain.SendForApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.SendForApproval(c.Request.Context(), caseID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Update Plan
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body casedomain.UpdatePlanRequest true "Plan Patch"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/plan [post]
func (s *Server) UpdatePlan(c *gin.Context) {
	var req casedomain.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.UpdatePlan(c.Request.Context(), caseID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Approve Plan
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/approve [post]
func (s *Server) ApproveCase(c *gin.Context) {
	resp, err := s.caseSvc.DoctorApprove(c.Request.Context(), caseID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Reject Plan
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body reasonRequest true "Reject Plan Request"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/reject [post]
func (s *Server) RejectCase(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.DoctorDecline(c.Request.Context(), caseID(c), req.Reason)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Request Plan Edit
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body casedomain.EditRequest true "Edit Request"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/request-edit [post]
func (s *Server) RequestEdit(c *gin.Context) {
	var req casedomain.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.DoctorRequestEdit(c.Request.Context(), caseID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Advance Manufacturing
// @Description  Move a case to the next manufacturing status
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body manufacturingRequest true "Manufacturing Step"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/manufacturing [post]
func (s *Server) AdvanceManufacturing(c *gin.Context) {
	var req manufacturingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	expected, err := casedomain.ParseStatus(req.ExpectedStatus)
	if err != nil {
		AbortWithError(c, newValidationError("expected_status", "invalid_status"))
		return
	}
	next, err := casedomain.ParseStatus(req.NextStatus)
	if err != nil {
		AbortWithError(c, newValidationError("next_status", "invalid_status"))
		return
	}

	resp, err := s.caseSvc.AdvanceManufacturing(c.Request.Context(), caseID(c), expected, next)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Complete Case
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case ID"
// @Param        request body completeCaseRequest true "Completion Feedback"
// @Success      200  {object}  DataResponse
// @Router       /api/cases/{id}/complete [post]
func (s *Server) CompleteCase(c *gin.Context) {
	var req completeCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.CompleteCase(c.Request.Context(), caseID(c), req.Rating, req.Message)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Request Refinement
// @Description  Open a follow-up case for a delivered case
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Parent Case ID"
// @Param        request body casedomain.RefinementRequest true "Refinement Request"
// @Success      201  {object}  DataResponse
// @Router       /api/cases/{id}/refinements [post]
func (s *Server) RequestRefinement(c *gin.Context) {
	var req casedomain.RefinementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.caseSvc.RequestRefinement(c.Request.Context(), caseID(c), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, resp)
}
