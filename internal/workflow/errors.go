package workflow

import (
	"errors"
	"fmt"
)

// ErrSameBranch is returned when source and target name the same branch
var ErrSameBranch = errors.New("source and target branch are the same")

// BranchNotFoundError is returned when a branch does not exist on the remote
type BranchNotFoundError struct {
	Branch string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist, check the name or push it first", e.Branch)
}

// RemoteAPIError wraps a failed hosting API call
type RemoteAPIError struct {
	Op  string
	Err error
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}
