package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
)

type TaskInput struct {
	Title              string     `json:"title" binding:"required" validate:"required,max=500"`
	Description        string     `json:"description" validate:"max=5000"`
	ColumnID           *uint      `json:"column_id"`
	ProgressPercentage *float64   `json:"progress_percentage"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	DueDate            *time.Time `json:"due_date"`
	EstimatedHours     *float64   `json:"estimated_hours" validate:"omitempty,gte=0"`
	AssigneeIDs        []uint     `json:"assignee_ids" validate:"unique"`
}

type TaskPatch struct {
	Title              *string    `json:"title" validate:"omitempty,min=1,max=500"`
	Description        *string    `json:"description" validate:"omitempty,max=5000"`
	ColumnID           *uint      `json:"column_id"`
	ProgressPercentage *float64   `json:"progress_percentage"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	DueDate            *time.Time `json:"due_date"`
	EstimatedHours     *float64   `json:"estimated_hours" validate:"omitempty,gte=0"`
	ActualHours        *float64   `json:"actual_hours" validate:"omitempty,gte=0"`
}

func checkProgress(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return invalid("progress_percentage must be between 0 and 100, got %v", p)
	}
	return nil
}

// setProgress applies a progress value and keeps completed_at in step with it:
// set when progress reaches 100, cleared when it drops below.
func setProgress(t *model.Task, p float64, now time.Time) {
	t.ProgressPercentage = p
	switch {
	case p >= 100 && t.CompletedAt == nil:
		t.CompletedAt = &now
	case p < 100:
		t.CompletedAt = nil
	}
}

// columnFor loads a column and checks it belongs to the workflow's template.
func columnFor(ctx context.Context, tx *repository.Store, wf *model.Workflow, columnID uint) (*model.StatusColumn, error) {
	column, err := tx.Statuses.GetColumn(ctx, columnID)
	if err != nil {
		return nil, storeErr(err, ErrColumnNotFound)
	}
	if column.TemplateID != wf.StatusTemplateID {
		return nil, ErrForeignColumn
	}
	return column, nil
}

// assign links a member to a task after checking they belong to the workspace.
func (s *Service) assign(ctx context.Context, tx *repository.Store, workspaceID, taskID, memberID uint) (*model.Member, error) {
	member, err := tx.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, storeErr(err, ErrMemberNotFound)
	}
	if err := requireMember(ctx, tx, workspaceID, memberID); err != nil {
		return nil, err
	}
	assigned, err := tx.Tasks.IsAssigned(ctx, taskID, memberID)
	if err != nil {
		return nil, err
	}
	if assigned {
		return nil, ErrAlreadyAssigned
	}
	if err := tx.Tasks.AddAssignee(ctx, &model.TaskAssignee{TaskID: taskID, MemberID: memberID, AssignedAt: s.now()}); err != nil {
		return nil, err
	}
	return member, nil
}

// CreateTask adds a task to a workflow. Without an explicit column the task
// lands in the first column of the workflow's template.
func (s *Service) CreateTask(ctx context.Context, actor, workflowID uint, in TaskInput) (*model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.ProgressPercentage != nil {
		if err := checkProgress(*in.ProgressPercentage); err != nil {
			return nil, err
		}
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:          in.Title,
		Description:    in.Description,
		WorkflowID:     workflowID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
		CreatedBy:      &actor,
	}
	err := s.tx(ctx, func(tx *repository.Store) error {
		wf, err := workflowAccess(ctx, tx, workflowID, actor, true)
		if err != nil {
			return err
		}
		var column *model.StatusColumn
		if in.ColumnID != nil {
			column, err = columnFor(ctx, tx, wf, *in.ColumnID)
		} else {
			column, err = tx.Statuses.FirstColumn(ctx, wf.StatusTemplateID)
			if err != nil {
				err = storeErr(err, invalid("template %d has no columns", wf.StatusTemplateID))
			}
		}
		if err != nil {
			return err
		}
		task.ColumnID = column.ID
		if in.ProgressPercentage != nil {
			setProgress(task, *in.ProgressPercentage, s.now())
		}

		if err := tx.Tasks.Create(ctx, task); err != nil {
			return err
		}
		for _, memberID := range in.AssigneeIDs {
			if _, err := s.assign(ctx, tx, wf.WorkspaceID, task.ID, memberID); err != nil {
				return err
			}
		}
		if _, err := tx.Workflows.RefreshProgress(ctx, wf.ID); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionCreated,
			entity:      model.EntityTask,
			entityID:    task.ID,
			workspaceID: wf.WorkspaceID,
			taskID:      task.ID,
			description: fmt.Sprintf("Task %q created in %q", task.Title, column.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) GetTask(ctx context.Context, actor, id uint) (*model.Task, error) {
	var task *model.Task
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := taskAccess(ctx, st, id, actor); err != nil {
			return err
		}
		var err error
		task, err = st.Tasks.GetByID(ctx, id)
		return storeErr(err, ErrTaskNotFound)
	})
	return task, err
}

// ListTasks returns a workflow's tasks, optionally only those in one column.
func (s *Service) ListTasks(ctx context.Context, actor, workflowID uint, columnID *uint) ([]model.Task, error) {
	var tasks []model.Task
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := workflowAccess(ctx, st, workflowID, actor, false); err != nil {
			return err
		}
		var err error
		tasks, err = st.Tasks.ListByWorkflow(ctx, workflowID, columnID)
		return err
	})
	return tasks, err
}

// ListMyTasks returns the tasks assigned to the actor.
func (s *Service) ListMyTasks(ctx context.Context, actor uint) ([]model.Task, error) {
	var tasks []model.Task
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		tasks, err = st.Tasks.ListAssignedTo(ctx, actor)
		return err
	})
	return tasks, err
}

// lockTask checks access, then locks the task and its workflow in that order.
func lockTask(ctx context.Context, tx *repository.Store, taskID, actor uint) (*model.Task, *model.Workflow, error) {
	if _, err := taskAccess(ctx, tx, taskID, actor); err != nil {
		return nil, nil, err
	}
	task, err := tx.Tasks.GetForUpdate(ctx, taskID)
	if err != nil {
		return nil, nil, storeErr(err, ErrTaskNotFound)
	}
	wf, err := tx.Workflows.GetForUpdate(ctx, task.WorkflowID)
	if err != nil {
		return nil, nil, storeErr(err, ErrWorkflowNotFound)
	}
	return task, wf, nil
}

func (s *Service) UpdateTask(ctx context.Context, actor, id uint, in TaskPatch) (*model.Task, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.ProgressPercentage != nil {
		if err := checkProgress(*in.ProgressPercentage); err != nil {
			return nil, err
		}
	}

	var task *model.Task
	err := s.tx(ctx, func(tx *repository.Store) error {
		var (
			wf  *model.Workflow
			err error
		)
		task, wf, err = lockTask(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		action := model.ActionUpdated
		if in.ColumnID != nil && *in.ColumnID != task.ColumnID {
			column, err := columnFor(ctx, tx, wf, *in.ColumnID)
			if err != nil {
				return err
			}
			task.ColumnID = column.ID
			action = model.ActionMoved
		}
		if in.Title != nil {
			task.Title = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.StartDate != nil {
			task.StartDate = in.StartDate
		}
		if in.EndDate != nil {
			task.EndDate = in.EndDate
		}
		if in.DueDate != nil {
			task.DueDate = in.DueDate
		}
		if in.EstimatedHours != nil {
			task.EstimatedHours = in.EstimatedHours
		}
		if in.ActualHours != nil {
			task.ActualHours = *in.ActualHours
		}
		if err := checkDates(task.StartDate, task.EndDate); err != nil {
			return err
		}
		if in.ProgressPercentage != nil {
			wasComplete := task.State() == model.TaskComplete
			setProgress(task, *in.ProgressPercentage, s.now())
			if !wasComplete && task.State() == model.TaskComplete {
				action = model.ActionCompleted
			}
		}

		if err := tx.Tasks.Update(ctx, task); err != nil {
			return err
		}
		if _, err := tx.Workflows.RefreshProgress(ctx, wf.ID); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      action,
			entity:      model.EntityTask,
			entityID:    task.ID,
			workspaceID: wf.WorkspaceID,
			taskID:      task.ID,
			description: fmt.Sprintf("Task %q %s", task.Title, action),
		})
	})
	return task, err
}

// MoveTask places a task in another column of its workflow's template.
// Progress is left alone.
func (s *Service) MoveTask(ctx context.Context, actor, taskID, columnID uint) (*model.Task, error) {
	var task *model.Task
	err := s.tx(ctx, func(tx *repository.Store) error {
		var (
			wf  *model.Workflow
			err error
		)
		task, wf, err = lockTask(ctx, tx, taskID, actor)
		if err != nil {
			return err
		}
		column, err := columnFor(ctx, tx, wf, columnID)
		if err != nil {
			return err
		}
		from := task.ColumnID
		task.ColumnID = column.ID
		if err := tx.Tasks.Update(ctx, task); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionMoved,
			entity:      model.EntityTask,
			entityID:    task.ID,
			workspaceID: wf.WorkspaceID,
			taskID:      task.ID,
			description: fmt.Sprintf("Task %q moved from column %d to %q", task.Title, from, column.Name),
		})
	})
	return task, err
}

// DeleteTask removes a task with its subtasks, messages, attachments and
// assignments. Attachment files are removed after commit; failures come
// back as warnings.
func (s *Service) DeleteTask(ctx context.Context, actor, id uint) (CascadeResult, error) {
	var paths []string
	err := s.tx(ctx, func(tx *repository.Store) error {
		task, wf, err := lockTask(ctx, tx, id, actor)
		if err != nil {
			return err
		}
		if paths, err = deleteTasks(ctx, tx, []uint{task.ID}); err != nil {
			return err
		}
		if _, err := tx.Workflows.RefreshProgress(ctx, wf.ID); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityTask,
			entityID:    task.ID,
			workspaceID: wf.WorkspaceID,
			taskID:      task.ID,
			description: fmt.Sprintf("Task %q deleted", task.Title),
		})
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return s.removeBlobs(ctx, paths), nil
}

// Timer

func (s *Service) StartTimer(ctx context.Context, actor, taskID uint) (*model.Task, error) {
	var task *model.Task
	err := s.tx(ctx, func(tx *repository.Store) error {
		var (
			wf  *model.Workflow
			err error
		)
		task, wf, err = lockTask(ctx, tx, taskID, actor)
		if err != nil {
			return err
		}
		if task.TimerRunning() {
			return ErrTimerRunning
		}
		now := s.now()
		task.TimerStartTime = &now
		if err := tx.Tasks.Update(ctx, task); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionTimerStart,
			entity:      model.EntityTask,
			entityID:    task.ID,
			workspaceID: wf.WorkspaceID,
			taskID:      task.ID,
			description: fmt.Sprintf("Timer started on %q", task.Title),
		})
	})
	return task, err
}

// StopTimer closes the open interval and adds its whole seconds to the task's total.
func (s *Service) StopTimer(ctx context.Context, actor, taskID uint) (*model.Task, error) {
	var task *model.Task
	err := s.tx(ctx, func(tx *repository.Store) error {
		var (
			wf  *model.Workflow
			err error
		)
		task, wf, err = lockTask(ctx, tx, taskID, actor)
		if err != nil {
			return err
		}
		if !task.TimerRunning() {
			return ErrTimerStopped
		}
		elapsed := int64(s.now().Sub(*task.TimerStartTime) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		task.TimeSpentSeconds += elapsed
		task.ActualHours = math.Round(float64(task.TimeSpentSeconds)/36) / 100
		task.TimerStartTime = nil
		if err := tx.Tasks.Update(ctx, task); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionTimerStop,
			entity:      model.EntityTask,
			entityID:    task.ID,
			workspaceID: wf.WorkspaceID,
			taskID:      task.ID,
			description: fmt.Sprintf("Timer stopped on %q after %ds", task.Title, elapsed),
		})
	})
	return task, err
}

// Assignment

func (s *Service) AssignMember(ctx context.Context, actor, taskID, memberID uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		workspaceID, err := taskAccess(ctx, tx, taskID, actor)
		if err != nil {
			return err
		}
		member, err := s.assign(ctx, tx, workspaceID, taskID, memberID)
		if err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionAssigned,
			entity:      model.EntityTask,
			entityID:    taskID,
			workspaceID: workspaceID,
			taskID:      taskID,
			description: fmt.Sprintf("%s assigned", member.FullName()),
		})
	})
}

func (s *Service) UnassignMember(ctx context.Context, actor, taskID, memberID uint) error {
	return s.tx(ctx, func(tx *repository.Store) error {
		workspaceID, err := taskAccess(ctx, tx, taskID, actor)
		if err != nil {
			return err
		}
		if err := tx.Tasks.RemoveAssignee(ctx, taskID, memberID); err != nil {
			return storeErr(err, ErrAssigneeNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUnassigned,
			entity:      model.EntityTask,
			entityID:    taskID,
			workspaceID: workspaceID,
			taskID:      taskID,
			description: fmt.Sprintf("Member %d unassigned", memberID),
		})
	})
}

func (s *Service) ListAssignees(ctx context.Context, actor, taskID uint) ([]model.Member, error) {
	var members []model.Member
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := taskAccess(ctx, st, taskID, actor); err != nil {
			return err
		}
		var err error
		members, err = st.Members.ListByTask(ctx, taskID)
		return err
	})
	return members, err
}
