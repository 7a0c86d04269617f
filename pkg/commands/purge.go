package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"simpletasks/pkg/backend"
)

// HandlePurge deletes every task, or only completed ones with doneOnly.
// Unless skipConfirm is set the user confirms on in first.
func HandlePurge(ctx context.Context, b backend.Backend, in io.Reader, w io.Writer, doneOnly, skipConfirm bool) (int, error) {
	var ids []string
	for _, t := range b.Store().Tasks() {
		if !doneOnly || t.Completed {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "Nothing to delete.")
		return 0, nil
	}

	// Show confirmation unless --yes flag is used
	if !skipConfirm {
		fmt.Fprintf(w, "Are you sure you want to delete %d task(s)? (y/N): ", len(ids))
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(w, "Operation cancelled.")
			return 0, nil
		}
	}

	var deleted int
	for _, id := range ids {
		if err := b.DeleteTask(ctx, id); err != nil {
			return deleted, fmt.Errorf("error purging tasks: %w", err)
		}
		deleted++
	}

	fmt.Fprintf(w, "Successfully deleted %d task(s)\n", deleted)
	return deleted, nil
}
