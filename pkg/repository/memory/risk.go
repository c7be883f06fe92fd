package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

type riskRepository struct {
	mu    sync.RWMutex
	risks map[types.RiskID]*model.Risk
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		risks: make(map[types.RiskID]*model.Risk),
	}
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.risks[risk.ID]; exists {
		return nil, goerr.New("risk already exists", goerr.V("id", risk.ID))
	}

	r.risks[risk.ID] = risk.Copy()
	return risk.Copy(), nil
}

func (r *riskRepository) Get(ctx context.Context, orgID types.OrganizationID, id types.RiskID) (*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risk, err := r.getLocked(orgID, id)
	if err != nil {
		return nil, err
	}

	// Return a copy to prevent external modification
	return risk.Copy(), nil
}

// getLocked requires r.mu to be held
func (r *riskRepository) getLocked(orgID types.OrganizationID, id types.RiskID) (*model.Risk, error) {
	risk, exists := r.risks[id]
	if !exists || risk.OrganizationID != orgID {
		return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id), goerr.V("organization_id", orgID))
	}
	return risk, nil
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	risks := make([]*model.Risk, 0)
	for _, risk := range r.risks {
		if risk.OrganizationID == orgID {
			risks = append(risks, risk.Copy())
		}
	}

	sort.Slice(risks, func(i, j int) bool {
		if risks[i].CreatedAt.Equal(risks[j].CreatedAt) {
			return risks[i].ID < risks[j].ID
		}
		return risks[i].CreatedAt.Before(risks[j].CreatedAt)
	})

	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk, expected types.RiskStatus) (*model.Risk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.getLocked(risk.OrganizationID, risk.ID)
	if err != nil {
		return nil, err
	}

	updated := risk.Copy()
	updated.CreatedAt = existing.CreatedAt
	if updated.Status == "" {
		updated.Status = existing.Status
	} else if existing.Status != expected {
		return nil, goerr.Wrap(interfaces.ErrStatusChanged, "risk status changed",
			goerr.V("id", risk.ID), goerr.V("expected", expected), goerr.V("actual", existing.Status))
	}
	r.risks[updated.ID] = updated
	return updated.Copy(), nil
}
