package service

import (
	"context"
	"sync"

	"workspaceflow/internal/repository"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// CascadeResult reports side effects that failed after a deletion was
// committed. The deletion itself stands.
type CascadeResult struct {
	Warnings []string `json:"warnings,omitempty"`
}

func (r CascadeResult) PartialSuccess() bool {
	return len(r.Warnings) > 0
}

func (r *CascadeResult) merge(other CascadeResult) {
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// deleteTasks removes the given tasks and everything hanging off them inside
// tx, returning the blob paths the caller must clean up after commit.
func deleteTasks(ctx context.Context, tx *repository.Store, taskIDs []uint) ([]string, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	paths, err := tx.Attachments.PathsByTasks(ctx, taskIDs)
	if err != nil {
		return nil, err
	}
	if err := tx.Tasks.DeleteChildren(ctx, taskIDs); err != nil {
		return nil, err
	}
	if err := tx.Tasks.DeleteByIDs(ctx, taskIDs); err != nil {
		return nil, err
	}
	return paths, nil
}

// removeBlobs deletes blobs concurrently and collects every failure.
func (s *Service) removeBlobs(ctx context.Context, paths []string) CascadeResult {
	if len(paths) == 0 {
		return CascadeResult{}
	}

	var (
		mu   sync.Mutex
		errs *multierror.Error
		g    errgroup.Group
	)
	g.SetLimit(blobWorkers)
	for _, p := range paths {
		g.Go(func() error {
			if err := s.blobs.Delete(ctx, p); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if errs.ErrorOrNil() == nil {
		return CascadeResult{}
	}
	res := CascadeResult{Warnings: make([]string, 0, len(errs.Errors))}
	for _, err := range errs.Errors {
		res.Warnings = append(res.Warnings, err.Error())
	}
	s.log.Warn("blob cleanup incomplete", "failed", len(res.Warnings), "total", len(paths), "error", errs.Error())
	return res
}
