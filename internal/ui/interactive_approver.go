package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vknys/ingot/pkg/ingot"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the host name to
// confirm destructive operations.
type InteractiveApprover struct {
	verbose bool
}

// NewInteractiveApprover creates a new InteractiveApprover.
func NewInteractiveApprover(verbose bool) ingot.Approver {
	return &InteractiveApprover{verbose: verbose}
}

// RequestApproval prompts the user to type the host name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, host string, count int) (bool, error) {
	fmt.Fprintf(os.Stderr, "\n⚠️  WARNING: You are about to DELETE %d items from '%s'\n", count, host)
	fmt.Fprintln(os.Stderr, "This will permanently remove the targeted content!")
	fmt.Fprintf(os.Stderr, "\nTo confirm, type the host name '%s' and press Enter: ", host)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == host {
			fmt.Fprintln(os.Stderr, "✓ Confirmed. Proceeding with deletion...")
			return true, nil
		}
		fmt.Fprintf(os.Stderr, "✗ Input '%s' does not match host '%s'. Operation cancelled.\n", input, host)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ ingot.Approver = (*InteractiveApprover)(nil)
