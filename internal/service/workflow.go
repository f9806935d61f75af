package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
)

type WorkflowInput struct {
	Name             string     `json:"name" binding:"required" validate:"required,max=255"`
	StatusTemplateID *uint      `json:"status_template_id"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Deadline         *time.Time `json:"deadline"`
}

type WorkflowPatch struct {
	Name             *string    `json:"name" validate:"omitempty,min=1,max=255"`
	StatusTemplateID *uint      `json:"status_template_id"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
	Deadline         *time.Time `json:"deadline"`
}

func checkDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return invalid("end date is before start date")
	}
	return nil
}

// CreateWorkflow adds a workflow to a workspace, bound to the given template
// or the default one. The creator is linked to it.
func (s *Service) CreateWorkflow(ctx context.Context, actor, workspaceID uint, in WorkflowInput) (*model.Workflow, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	if err := checkDates(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	wf := &model.Workflow{
		Name:        in.Name,
		WorkspaceID: workspaceID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Deadline:    in.Deadline,
		CreatedBy:   &actor,
	}
	err := s.tx(ctx, func(tx *repository.Store) error {
		if _, err := workspaceAccess(ctx, tx, workspaceID, actor); err != nil {
			return err
		}
		var (
			t   *model.StatusTemplate
			err error
		)
		if in.StatusTemplateID != nil {
			t, err = tx.Statuses.GetTemplate(ctx, *in.StatusTemplateID)
		} else {
			t, err = tx.Statuses.GetDefaultTemplate(ctx)
		}
		if err != nil {
			return storeErr(err, ErrTemplateNotFound)
		}
		wf.StatusTemplateID = t.ID

		if err := tx.Workflows.Create(ctx, wf); err != nil {
			return err
		}
		if err := tx.Memberships.AddWorkflowMember(ctx, &model.WorkflowMember{
			WorkflowID: wf.ID,
			MemberID:   actor,
			AssignedAt: s.now(),
		}); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionCreated,
			entity:      model.EntityWorkflow,
			entityID:    wf.ID,
			workspaceID: workspaceID,
			description: fmt.Sprintf("Workflow %q created with template %q", wf.Name, t.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *Service) GetWorkflow(ctx context.Context, actor, id uint) (*model.Workflow, error) {
	var wf *model.Workflow
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		wf, err = workflowAccess(ctx, st, id, actor, false)
		return err
	})
	return wf, err
}

func (s *Service) ListWorkflows(ctx context.Context, actor, workspaceID uint) ([]model.Workflow, error) {
	var list []model.Workflow
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := workspaceAccess(ctx, st, workspaceID, actor); err != nil {
			return err
		}
		var err error
		list, err = st.Workflows.ListByWorkspace(ctx, workspaceID)
		return err
	})
	return list, err
}

// UpdateWorkflow patches a workflow. The template may only change while the
// workflow has no tasks.
func (s *Service) UpdateWorkflow(ctx context.Context, actor, id uint, in WorkflowPatch) (*model.Workflow, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var wf *model.Workflow
	err := s.tx(ctx, func(tx *repository.Store) error {
		var err error
		wf, err = workflowAccess(ctx, tx, id, actor, true)
		if err != nil {
			return err
		}
		if in.Name != nil {
			wf.Name = strings.TrimSpace(*in.Name)
		}
		if in.StartDate != nil {
			wf.StartDate = in.StartDate
		}
		if in.EndDate != nil {
			wf.EndDate = in.EndDate
		}
		if in.Deadline != nil {
			wf.Deadline = in.Deadline
		}
		if err := checkDates(wf.StartDate, wf.EndDate); err != nil {
			return err
		}
		if in.StatusTemplateID != nil && *in.StatusTemplateID != wf.StatusTemplateID {
			if _, err := tx.Statuses.GetTemplate(ctx, *in.StatusTemplateID); err != nil {
				return storeErr(err, ErrTemplateNotFound)
			}
			n, err := tx.Tasks.CountByWorkflow(ctx, wf.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return ErrWorkflowHasTasks
			}
			wf.StatusTemplateID = *in.StatusTemplateID
		}
		if err := tx.Workflows.Update(ctx, wf); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityWorkflow,
			entityID:    wf.ID,
			workspaceID: wf.WorkspaceID,
			description: fmt.Sprintf("Workflow %q updated", wf.Name),
		})
	})
	return wf, err
}

// DeleteWorkflow removes a workflow with all of its tasks.
func (s *Service) DeleteWorkflow(ctx context.Context, actor, id uint) (CascadeResult, error) {
	var paths []string
	err := s.tx(ctx, func(tx *repository.Store) error {
		wf, err := workflowAccess(ctx, tx, id, actor, true)
		if err != nil {
			return err
		}
		if paths, err = deleteWorkflow(ctx, tx, wf.ID); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityWorkflow,
			entityID:    wf.ID,
			workspaceID: wf.WorkspaceID,
			description: fmt.Sprintf("Workflow %q deleted", wf.Name),
		})
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return s.removeBlobs(ctx, paths), nil
}

func deleteWorkflow(ctx context.Context, tx *repository.Store, workflowID uint) ([]string, error) {
	taskIDs, err := tx.Tasks.IDsByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	paths, err := deleteTasks(ctx, tx, taskIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Memberships.DeleteByWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}
	if err := tx.Workflows.Delete(ctx, workflowID); err != nil {
		return nil, storeErr(err, ErrWorkflowNotFound)
	}
	return paths, nil
}
