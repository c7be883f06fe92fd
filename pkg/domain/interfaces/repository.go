package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Risk() RiskRepository
	ApprovalWorkflow() ApprovalWorkflowRepository
	Member() MemberRepository

	// Close releases backend connections
	Close() error
}
