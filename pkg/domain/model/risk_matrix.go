package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

const severityLevels = 4

// RiskMatrix maps (impact, probability) to a risk level.
// A valid matrix is total over the 4x4 input space and monotonically
// non-decreasing along both axes.
type RiskMatrix struct {
	cells [severityLevels][severityLevels]types.Severity
}

// RiskMatrixCell is a single (impact, probability) -> level assignment
type RiskMatrixCell struct {
	Impact      types.Severity
	Probability types.Severity
	Level       types.Severity
}

// DefaultRiskMatrix returns the built-in policy: critical if either input is
// critical or both are high, otherwise the rounded-up mean of the two ranks.
func DefaultRiskMatrix() *RiskMatrix {
	m := &RiskMatrix{}
	for _, impact := range types.AllSeverities() {
		for _, probability := range types.AllSeverities() {
			m.set(impact, probability, defaultLevel(impact, probability))
		}
	}
	return m
}

func defaultLevel(impact, probability types.Severity) types.Severity {
	if impact == types.SeverityCritical || probability == types.SeverityCritical {
		return types.SeverityCritical
	}
	if impact == types.SeverityHigh && probability == types.SeverityHigh {
		return types.SeverityCritical
	}
	sum := impact.Rank() + probability.Rank()
	return types.SeverityFromRank((sum + 1) / 2)
}

// NewRiskMatrix builds a matrix from explicit cells. Every one of the 16
// combinations must be given exactly once and the result must be monotonic.
func NewRiskMatrix(cells []RiskMatrixCell) (*RiskMatrix, error) {
	m := &RiskMatrix{}
	seen := make(map[[2]int]bool, len(cells))

	for _, c := range cells {
		if !c.Impact.IsValid() || !c.Probability.IsValid() || !c.Level.IsValid() {
			return nil, goerr.Wrap(ErrInvalidRiskMatrix, "invalid severity in cell",
				goerr.V(ImpactKey, c.Impact),
				goerr.V(ProbabilityKey, c.Probability),
				goerr.V(LevelKey, c.Level))
		}
		key := [2]int{c.Impact.Rank(), c.Probability.Rank()}
		if seen[key] {
			return nil, goerr.Wrap(ErrInvalidRiskMatrix, "duplicate cell",
				goerr.V(ImpactKey, c.Impact),
				goerr.V(ProbabilityKey, c.Probability))
		}
		seen[key] = true
		m.set(c.Impact, c.Probability, c.Level)
	}

	if len(seen) != severityLevels*severityLevels {
		return nil, goerr.Wrap(ErrInvalidRiskMatrix, "matrix must define every impact/probability combination",
			goerr.V("defined", len(seen)))
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks totality and monotonicity of the matrix
func (m *RiskMatrix) Validate() error {
	for i := 0; i < severityLevels; i++ {
		for p := 0; p < severityLevels; p++ {
			cur := m.cells[i][p]
			if !cur.IsValid() {
				return goerr.Wrap(ErrInvalidRiskMatrix, "undefined cell",
					goerr.V(ImpactKey, types.SeverityFromRank(i+1)),
					goerr.V(ProbabilityKey, types.SeverityFromRank(p+1)))
			}
			if i > 0 && cur.Rank() < m.cells[i-1][p].Rank() {
				return goerr.Wrap(ErrInvalidRiskMatrix, "level decreases as impact increases",
					goerr.V(ImpactKey, types.SeverityFromRank(i+1)),
					goerr.V(ProbabilityKey, types.SeverityFromRank(p+1)))
			}
			if p > 0 && cur.Rank() < m.cells[i][p-1].Rank() {
				return goerr.Wrap(ErrInvalidRiskMatrix, "level decreases as probability increases",
					goerr.V(ImpactKey, types.SeverityFromRank(i+1)),
					goerr.V(ProbabilityKey, types.SeverityFromRank(p+1)))
			}
		}
	}
	return nil
}

// Classify returns the risk level for the given impact and probability.
// Inputs are expected to be validated; anything else is treated as low.
func (m *RiskMatrix) Classify(impact, probability types.Severity) types.Severity {
	return m.cells[index(impact)][index(probability)]
}

// Cells returns all 16 cells, impact-major
func (m *RiskMatrix) Cells() []RiskMatrixCell {
	cells := make([]RiskMatrixCell, 0, severityLevels*severityLevels)
	for _, impact := range types.AllSeverities() {
		for _, probability := range types.AllSeverities() {
			cells = append(cells, RiskMatrixCell{
				Impact:      impact,
				Probability: probability,
				Level:       m.Classify(impact, probability),
			})
		}
	}
	return cells
}

func (m *RiskMatrix) set(impact, probability, level types.Severity) {
	m.cells[index(impact)][index(probability)] = level
}

func index(s types.Severity) int {
	if r := s.Rank(); r > 0 {
		return r - 1
	}
	return 0
}
