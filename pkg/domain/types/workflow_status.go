package types

import (
	"fmt"
	"strings"
)

// WorkflowStatus represents the state of an approval workflow.
// Pending is the only initial state; approved and rejected are terminal.
type WorkflowStatus string

const (
	WorkflowStatusPending  WorkflowStatus = "pending"
	WorkflowStatusApproved WorkflowStatus = "approved"
	WorkflowStatusRejected WorkflowStatus = "rejected"
)

// IsValid checks if the workflow status is valid
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusPending,
		WorkflowStatusApproved,
		WorkflowStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition may leave the status
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusApproved || s == WorkflowStatusRejected
}

// String returns the string representation of the workflow status
func (s WorkflowStatus) String() string {
	return string(s)
}

// ParseDecision parses the decision vocabulary accepted at the API boundary.
// Both the Portuguese wire values ("aprovado", "rejeitado") and the English
// status names are accepted. Only terminal statuses are valid decisions.
func ParseDecision(s string) (WorkflowStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aprovado", "approved":
		return WorkflowStatusApproved, nil
	case "rejeitado", "rejected":
		return WorkflowStatusRejected, nil
	default:
		return "", fmt.Errorf("invalid decision: %s", s)
	}
}
