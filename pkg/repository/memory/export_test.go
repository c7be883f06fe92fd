package memory

import "github.com/WilderMartins/GRC-sub003/pkg/domain/types"

// DropRisk removes a risk behind the repository's back so tests can force a
// cascade failure
func (m *Memory) DropRisk(id types.RiskID) {
	m.risk.mu.Lock()
	defer m.risk.mu.Unlock()
	delete(m.risk.risks, id)
}
