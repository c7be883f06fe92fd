package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidRisk       = goerr.New("invalid risk")
	ErrInvalidMember     = goerr.New("invalid member")
	ErrInvalidRiskMatrix = goerr.New("invalid risk matrix")
)

// Context keys for error values
const (
	CategoryKey    = "category"
	ImpactKey      = "impact"
	ProbabilityKey = "probability"
	LevelKey       = "level"
	StatusKey      = "status"
	UserIDKey      = "user_id"
	RoleKey        = "role"
)
