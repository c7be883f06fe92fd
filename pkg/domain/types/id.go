package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// RiskID is the opaque identifier of a risk
type RiskID string

// NewRiskID generates a new random RiskID
func NewRiskID() RiskID {
	return RiskID(uuid.NewString())
}

// Validate checks if the RiskID is valid
func (id RiskID) Validate() error {
	return validateUUID(string(id), "risk ID")
}

// String returns the string representation of RiskID
func (id RiskID) String() string {
	return string(id)
}

// WorkflowID is the opaque identifier of an approval workflow
type WorkflowID string

// NewWorkflowID generates a new random WorkflowID
func NewWorkflowID() WorkflowID {
	return WorkflowID(uuid.NewString())
}

// Validate checks if the WorkflowID is valid
func (id WorkflowID) Validate() error {
	return validateUUID(string(id), "workflow ID")
}

// String returns the string representation of WorkflowID
func (id WorkflowID) String() string {
	return string(id)
}

// EventID is the identifier of an outbound workflow event
type EventID string

// NewEventID generates a new random EventID
func NewEventID() EventID {
	return EventID(uuid.NewString())
}

// UserID identifies a user. Values come from the identity provider and are not generated here.
type UserID string

// String returns the string representation of UserID
func (id UserID) String() string {
	return string(id)
}

// OrganizationID identifies an organization (tenant)
type OrganizationID string

// String returns the string representation of OrganizationID
func (id OrganizationID) String() string {
	return string(id)
}

func validateUUID(v, label string) error {
	if v == "" {
		return goerr.New(label + " cannot be empty")
	}
	if _, err := uuid.Parse(v); err != nil {
		return goerr.Wrap(err, label+" must be a UUID", goerr.V("id", v))
	}
	return nil
}
