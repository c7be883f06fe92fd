package usecase

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every error returned by the use cases either matches one
// of these roots with errors.Is or is an internal failure.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Specific errors, each wrapping one taxonomy root
var (
	// Access control errors
	ErrNotMember        = fmt.Errorf("%w: caller is not a member of any organization", ErrForbidden)
	ErrInsufficientRole = fmt.Errorf("%w: caller must be admin or manager", ErrForbidden)
	ErrNotApprover      = fmt.Errorf("%w: caller is not the designated approver", ErrForbidden)

	// Entity state errors
	ErrRiskHasNoOwner = fmt.Errorf("%w: risk has no owner", ErrInvalidState)

	// Concurrency errors
	ErrApprovalPending = fmt.Errorf("%w: approval already pending", ErrConflict)
	ErrAlreadyDecided  = fmt.Errorf("%w: workflow already decided", ErrConflict)
	ErrStatusChanged   = fmt.Errorf("%w: risk status changed concurrently", ErrConflict)

	// Not found errors
	ErrRiskNotFound     = fmt.Errorf("%w: risk not found", ErrNotFound)
	ErrWorkflowNotFound = fmt.Errorf("%w: approval workflow not found", ErrNotFound)
)

// Context keys for error values
const (
	RiskIDKey     = "risk_id"
	WorkflowIDKey = "workflow_id"
	UserIDKey     = "user_id"
	OrgIDKey      = "organization_id"
)
