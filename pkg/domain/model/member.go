package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

// Member is a user's membership in exactly one organization
type Member struct {
	UserID         types.UserID
	OrganizationID types.OrganizationID
	Role           types.Role
	Name           string
	Email          string
}

// Validate checks if the member is valid
func (m *Member) Validate() error {
	if m.UserID == "" {
		return goerr.Wrap(ErrInvalidMember, "user ID is required")
	}
	if m.OrganizationID == "" {
		return goerr.Wrap(ErrInvalidMember, "organization is required", goerr.V(UserIDKey, m.UserID))
	}
	if !m.Role.IsValid() {
		return goerr.Wrap(ErrInvalidMember, "invalid role", goerr.V(UserIDKey, m.UserID), goerr.V(RoleKey, m.Role))
	}
	return nil
}

// Copy returns a shallow copy of the member
func (m *Member) Copy() *Member {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
