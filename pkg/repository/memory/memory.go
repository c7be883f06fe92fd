package memory

import (
	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	risk     *riskRepository
	workflow *approvalWorkflowRepository
	member   *memberRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	riskRepo := newRiskRepository()

	return &Memory{
		risk:     riskRepo,
		workflow: newApprovalWorkflowRepository(riskRepo),
		member:   newMemberRepository(),
	}
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) ApprovalWorkflow() interfaces.ApprovalWorkflowRepository {
	return m.workflow
}

func (m *Memory) Member() interfaces.MemberRepository {
	return m.member
}

func (m *Memory) Close() error {
	return nil
}
