package common

import (
	"errors"
	"fmt"

	"mediac/internal/domain/model"
)

// ErrAborted marks an operator decline at the confirmation gate. It is a
// clean no-op exit, not a failure.
var ErrAborted = errors.New("aborted by operator")

// GateMutation enforces the safety gates before any filesystem mutation. Dry
// runs pass through untouched; with --doit the operator must still confirm
// interactively unless --yes was given. The preview is computed from the
// frozen, index-assigned task list and is never recomputed after dispatch.
func GateMutation(app *AppContext, command, conditions string, tasks []model.TaskDescriptor) error {
	if !app.Options.DoIt {
		return nil
	}
	if app.Options.Yes {
		return nil
	}
	if app.Confirm == nil {
		return fmt.Errorf("confirmation required for %s: use --yes in non-interactive mode", command)
	}

	var pending int
	var bytes int64
	for i := range tasks {
		if tasks[i].Status == model.TaskPending {
			pending++
			bytes += tasks[i].SizeBytes
		}
	}

	summary := fmt.Sprintf("%s: %d task(s), %s total\nconditions: %s",
		command, pending, FormatBytes(bytes), conditions)
	ok, err := app.Confirm(summary)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

// FormatBytes renders a byte count for operator-facing previews.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
