package types

import "fmt"

// RiskCategory classifies the nature of a risk
type RiskCategory string

const (
	RiskCategoryTechnological RiskCategory = "technological"
	RiskCategoryOperational   RiskCategory = "operational"
	RiskCategoryLegal         RiskCategory = "legal"
)

// IsValid checks if the category is valid
func (c RiskCategory) IsValid() bool {
	switch c {
	case RiskCategoryTechnological,
		RiskCategoryOperational,
		RiskCategoryLegal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category
func (c RiskCategory) String() string {
	return string(c)
}

// ParseRiskCategory parses a string into a RiskCategory
func ParseRiskCategory(s string) (RiskCategory, error) {
	c := RiskCategory(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid risk category: %s", s)
	}
	return c, nil
}
