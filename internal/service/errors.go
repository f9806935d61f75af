package service

import (
	"errors"
	"fmt"

	"workspaceflow/internal/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrAccessDenied = errors.New("access denied")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	// ErrDependency means the store or blob storage failed or timed out. It is safe to retry.
	ErrDependency = errors.New("dependency failure")
)

var (
	ErrMemberNotFound     = fmt.Errorf("member %w", ErrNotFound)
	ErrWorkspaceNotFound  = fmt.Errorf("workspace %w", ErrNotFound)
	ErrWorkflowNotFound   = fmt.Errorf("workflow %w", ErrNotFound)
	ErrTemplateNotFound   = fmt.Errorf("status template %w", ErrNotFound)
	ErrColumnNotFound     = fmt.Errorf("status column %w", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("task %w", ErrNotFound)
	ErrSubtaskNotFound    = fmt.Errorf("subtask %w", ErrNotFound)
	ErrMessageNotFound    = fmt.Errorf("chat message %w", ErrNotFound)
	ErrAttachmentNotFound = fmt.Errorf("attachment %w", ErrNotFound)
	ErrMembershipNotFound = fmt.Errorf("membership %w", ErrNotFound)
	ErrAssigneeNotFound   = fmt.Errorf("assignment %w", ErrNotFound)
	ErrPictureNotFound    = fmt.Errorf("profile picture %w", ErrNotFound)

	ErrNotWorkspaceMember = fmt.Errorf("%w: not a member of the workspace", ErrAccessDenied)
	ErrBadCredentials     = fmt.Errorf("%w: invalid email or password", ErrAccessDenied)
	ErrNotOwner           = fmt.Errorf("%w: only the owner may do this", ErrAccessDenied)
	ErrSystemTemplate     = fmt.Errorf("%w: system templates are read-only", ErrAccessDenied)

	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyMember    = fmt.Errorf("%w: already a member", ErrConflict)
	ErrAlreadyAssigned  = fmt.Errorf("%w: member already assigned", ErrConflict)
	ErrTimerRunning     = fmt.Errorf("%w: timer already running", ErrConflict)
	ErrTimerStopped     = fmt.Errorf("%w: timer not running", ErrConflict)
	ErrColumnInUse      = fmt.Errorf("%w: column still holds tasks", ErrConflict)
	ErrTemplateInUse    = fmt.Errorf("%w: template is used by a workflow", ErrConflict)
	ErrWorkflowHasTasks = fmt.Errorf("%w: workflow already has tasks", ErrConflict)
	ErrStillOwner       = fmt.Errorf("%w: member still owns a workspace", ErrConflict)

	ErrForeignColumn = fmt.Errorf("%w: column belongs to another template", ErrValidation)
	ErrRemoveOwner   = fmt.Errorf("%w: the workspace owner cannot be removed", ErrValidation)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeErr maps a repository error onto the service taxonomy. Errors that
// already belong to it pass through unchanged.
func storeErr(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAccessDenied), errors.Is(err, ErrConflict),
		errors.Is(err, ErrValidation), errors.Is(err, ErrDependency):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrDependency, err)
	}
}
