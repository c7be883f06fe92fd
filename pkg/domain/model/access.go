package model

import "github.com/WilderMartins/GRC-sub003/pkg/domain/types"

// The predicates below are the single place where approval admission rules
// live. They hold no state and fail closed on nil or mismatched inputs.

// HasSubmitRole reports whether the caller is an admin or manager of the risk's organization
func HasSubmitRole(caller *Member, risk *Risk) bool {
	if caller == nil || risk == nil {
		return false
	}
	if caller.OrganizationID == "" || caller.OrganizationID != risk.OrganizationID {
		return false
	}
	return caller.Role == types.RoleAdmin || caller.Role == types.RoleManager
}

// CanSubmitAcceptance reports whether the caller may submit the risk for acceptance
func CanSubmitAcceptance(caller *Member, risk *Risk) bool {
	return HasSubmitRole(caller, risk) && risk.HasOwner()
}

// CanDecideApproval reports whether the caller is the workflow's designated
// approver. Organization role grants no exception.
func CanDecideApproval(callerID types.UserID, wf *ApprovalWorkflow) bool {
	if wf == nil || callerID == "" {
		return false
	}
	return callerID == wf.ApproverID
}

// CanViewRisk reports whether the caller belongs to the risk's organization
func CanViewRisk(caller *Member, risk *Risk) bool {
	if caller == nil || risk == nil || caller.OrganizationID == "" {
		return false
	}
	return caller.OrganizationID == risk.OrganizationID
}
