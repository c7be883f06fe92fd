package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

type decideRequest struct {
	Decision string `json:"decision" validate:"required"`
	Comments string `json:"comments" validate:"max=4000"`
}

type workflowResponse struct {
	ID          string    `json:"id"`
	RiskID      string    `json:"risk_id"`
	RequesterID string    `json:"requester_id"`
	ApproverID  string    `json:"approver_id"`
	Status      string    `json:"status"`
	Comments    string    `json:"comments"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toWorkflowResponse(wf *model.ApprovalWorkflow) workflowResponse {
	return workflowResponse{
		ID:          wf.ID.String(),
		RiskID:      wf.RiskID.String(),
		RequesterID: wf.RequesterID.String(),
		ApproverID:  wf.ApproverID.String(),
		Status:      wf.Status.String(),
		Comments:    wf.Comments,
		CreatedAt:   wf.CreatedAt,
		UpdatedAt:   wf.UpdatedAt,
	}
}

type identityResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func toIdentityResponse(m *model.Member) *identityResponse {
	if m == nil {
		return nil
	}
	return &identityResponse{ID: m.UserID.String(), Name: m.Name, Email: m.Email}
}

type historyItemResponse struct {
	workflowResponse
	Requester *identityResponse `json:"requester,omitempty"`
	Approver  *identityResponse `json:"approver,omitempty"`
}

func toHistoryItemResponse(e *model.ApprovalHistoryEntry) historyItemResponse {
	return historyItemResponse{
		workflowResponse: toWorkflowResponse(e.Workflow),
		Requester:        toIdentityResponse(e.Requester),
		Approver:         toIdentityResponse(e.Approver),
	}
}

func (s *Server) submitAcceptance(w http.ResponseWriter, r *http.Request) {
	wf, err := s.uc.Approval.Submit(r.Context(), actorFrom(r.Context()), types.RiskID(chi.URLParam(r, "riskId")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toWorkflowResponse(wf))
}

func (s *Server) decideApproval(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := s.decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	decision, err := types.ParseDecision(req.Decision)
	if err != nil {
		handleError(w, r, goerr.Wrap(errBadRequest, err.Error()))
		return
	}

	wf, err := s.uc.Approval.Decide(r.Context(), actorFrom(r.Context()),
		types.RiskID(chi.URLParam(r, "riskId")),
		types.WorkflowID(chi.URLParam(r, "approvalId")),
		decision, req.Comments)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toWorkflowResponse(wf))
}

func (s *Server) approvalHistory(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	history, err := s.uc.Approval.History(r.Context(), actorFrom(r.Context()),
		types.RiskID(chi.URLParam(r, "riskId")), page)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toPageResponse(history, toHistoryItemResponse))
}
