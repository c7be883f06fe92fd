package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// Risk is an organizational record of a potential negative event.
// Level is derived from Impact and Probability and is never set by callers.
type Risk struct {
	ID             types.RiskID
	OrganizationID types.OrganizationID
	Title          string
	Description    string
	Category       types.RiskCategory
	Impact         types.Severity
	Probability    types.Severity
	Level          types.Severity
	Status         types.RiskStatus
	OwnerID        types.UserID // empty when unassigned
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasOwner reports whether an owner is assigned
func (r *Risk) HasOwner() bool {
	return r != nil && r.OwnerID != ""
}

// Classify recomputes Level from Impact and Probability using the given matrix
func (r *Risk) Classify(m *RiskMatrix) {
	r.Level = m.Classify(r.Impact, r.Probability)
}

// Validate checks caller-supplied fields of the risk
func (r *Risk) Validate() error {
	if r.Title == "" {
		return goerr.Wrap(ErrInvalidRisk, "risk title is required")
	}
	if r.OrganizationID == "" {
		return goerr.Wrap(ErrInvalidRisk, "organization is required")
	}
	if !r.Category.IsValid() {
		return goerr.Wrap(ErrInvalidRisk, "invalid risk category", goerr.V(CategoryKey, r.Category))
	}
	if !r.Impact.IsValid() {
		return goerr.Wrap(ErrInvalidRisk, "invalid impact", goerr.V(ImpactKey, r.Impact))
	}
	if !r.Probability.IsValid() {
		return goerr.Wrap(ErrInvalidRisk, "invalid probability", goerr.V(ProbabilityKey, r.Probability))
	}
	if !r.Status.Normalize().IsValid() {
		return goerr.Wrap(ErrInvalidRisk, "invalid risk status", goerr.V(StatusKey, r.Status))
	}
	return nil
}

// Copy returns a shallow copy of the risk
func (r *Risk) Copy() *Risk {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
