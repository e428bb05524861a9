package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vknys/ingot/pkg/ingot"
)

// ForcedApprover implements the Approver interface for forced
// (non-interactive) approval. It displays a countdown and automatically
// approves after the countdown, used when the --force flag is provided.
type ForcedApprover struct {
	verbose bool
}

// NewForcedApprover creates a new ForcedApprover.
func NewForcedApprover(verbose bool) ingot.Approver {
	return &ForcedApprover{verbose: verbose}
}

// RequestApproval displays a countdown and automatically approves after
// the countdown.
func (a *ForcedApprover) RequestApproval(ctx context.Context, host string, count int) (bool, error) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "⚠️  WARNING: About to DELETE %d items from '%s'\n", count, host)
	fmt.Fprintln(os.Stderr, "This will permanently remove the targeted content!")

	countdownSeconds := int(ingot.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(os.Stderr, "\rDeleting in: %d seconds... (Press Ctrl+C to cancel)", i)
			time.Sleep(1 * time.Second)
		}
	}

	fmt.Fprintf(os.Stderr, "\r✓ Proceeding with deletion...                              \n")
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ ingot.Approver = (*ForcedApprover)(nil)
