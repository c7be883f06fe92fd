package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/usecase"
)

type riskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	Category    string `json:"category" validate:"required,oneof=technological operational legal"`
	Impact      string `json:"impact" validate:"required,oneof=low medium high critical"`
	Probability string `json:"probability" validate:"required,oneof=low medium high critical"`
	Status      string `json:"status" validate:"omitempty,oneof=open in_progress mitigated accepted"`
	OwnerID     string `json:"owner_id" validate:"max=256"`
}

func (req *riskRequest) input() usecase.RiskInput {
	return usecase.RiskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    types.RiskCategory(req.Category),
		Impact:      types.Severity(req.Impact),
		Probability: types.Severity(req.Probability),
		Status:      types.RiskStatus(req.Status),
		OwnerID:     types.UserID(req.OwnerID),
	}
}

type riskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Impact      string    `json:"impact"`
	Probability string    `json:"probability"`
	RiskLevel   string    `json:"risk_level"`
	Status      string    `json:"status"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRiskResponse(r *model.Risk) riskResponse {
	return riskResponse{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category.String(),
		Impact:      r.Impact.String(),
		Probability: r.Probability.String(),
		RiskLevel:   r.Level.String(),
		Status:      r.Status.String(),
		OwnerID:     r.OwnerID.String(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (s *Server) createRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := s.decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	risk, err := s.uc.Risk.CreateRisk(r.Context(), actorFrom(r.Context()), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toRiskResponse(risk))
}

func (s *Server) listRisks(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	risks, err := s.uc.Risk.ListRisks(r.Context(), actorFrom(r.Context()), page)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toPageResponse(risks, toRiskResponse))
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	risk, err := s.uc.Risk.GetRisk(r.Context(), actorFrom(r.Context()), types.RiskID(chi.URLParam(r, "riskId")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toRiskResponse(risk))
}

func (s *Server) updateRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := s.decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	risk, err := s.uc.Risk.UpdateRisk(r.Context(), actorFrom(r.Context()),
		types.RiskID(chi.URLParam(r, "riskId")), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toRiskResponse(risk))
}
