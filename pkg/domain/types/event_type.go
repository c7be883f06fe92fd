package types

// EventType names an outbound workflow state-change event
type EventType string

const (
	EventTypeWorkflowSubmitted EventType = "workflow.submitted"
	EventTypeWorkflowDecided   EventType = "workflow.decided"
)

// String returns the string representation of EventType
func (t EventType) String() string {
	return string(t)
}
