package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors shared by every repository backend
var (
	// ErrNotFound is returned when the requested record does not exist in the given organization
	ErrNotFound = goerr.New("not found")

	// ErrPendingExists is returned by CreatePending when the risk already has a pending workflow
	ErrPendingExists = goerr.New("pending approval workflow already exists")

	// ErrNotPending is returned by Decide when the workflow has already left pending
	ErrNotPending = goerr.New("approval workflow is not pending")

	// ErrStatusChanged is returned by Risk Update when the stored status no
	// longer matches the status the caller read
	ErrStatusChanged = goerr.New("risk status changed")
)
