package ingot

import "context"

// Approver handles user interaction for approval workflows, particularly
// for destructive delete tasks against the remote repository.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Prompts user to type the host name for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before deleting remote
	// content.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - host: Repository host whose content will be deleted
	//   - count: Number of records the delete task will target
	//
	// Returns:
	//   - bool: true if approved, false if denied
	//   - error: Any error that occurred during the approval process
	RequestApproval(ctx context.Context, host string, count int) (bool, error)
}
