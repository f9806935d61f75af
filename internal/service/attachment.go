package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
	"workspaceflow/internal/storage"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// UploadAttachment stores a file on a task. With postMessage set, a chat
// message pointing at the attachment is posted in the same transaction.
func (s *Service) UploadAttachment(ctx context.Context, actor, taskID uint, filename string, data []byte, postMessage bool) (*model.Attachment, error) {
	filename = filepath.Base(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, invalid("file name is required")
	}
	if len(data) == 0 {
		return nil, invalid("empty file")
	}
	if int64(len(data)) > s.maxAttachmentSize {
		return nil, invalid("file too large (max %s)", humanize.IBytes(uint64(s.maxAttachmentSize)))
	}

	var task *model.Task
	var workspaceID uint
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		if workspaceID, err = taskAccess(ctx, st, taskID, actor); err != nil {
			return err
		}
		task, err = st.Tasks.GetByID(ctx, taskID)
		return storeErr(err, ErrTaskNotFound)
	})
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(filename)
	hint := fmt.Sprintf("Workspace%d/Workflow%d/Task%d/file%s", workspaceID, task.WorkflowID, task.ID, ext)
	blobPath, err := s.blobs.Put(ctx, hint, data)
	if err != nil {
		return nil, fmt.Errorf("%w: store attachment: %v", ErrDependency, err)
	}

	a := &model.Attachment{
		UniqueFilename:   path.Base(blobPath),
		OriginalFilename: strings.TrimSuffix(filename, ext),
		FileExtension:    ext,
		FilePath:         blobPath,
		FileSize:         int64(len(data)),
		MimeType:         mimetype.Detect(data).String(),
		TaskID:           taskID,
		UploadedBy:       actor,
		UploadedAt:       s.now(),
	}
	err = s.tx(ctx, func(tx *repository.Store) error {
		if _, err := taskAccess(ctx, tx, taskID, actor); err != nil {
			return err
		}
		if err := tx.Attachments.Create(ctx, a); err != nil {
			return err
		}
		if postMessage {
			if err := tx.Messages.Create(ctx, &model.ChatMessage{
				Content:      filename,
				IsAttachment: true,
				AttachmentID: &a.ID,
				TaskID:       taskID,
				AuthorID:     actor,
			}); err != nil {
				return err
			}
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUploaded,
			entity:      model.EntityAttachment,
			entityID:    a.ID,
			workspaceID: workspaceID,
			taskID:      taskID,
			description: fmt.Sprintf("Uploaded %s (%s)", filename, humanize.IBytes(uint64(a.FileSize))),
		})
	})
	if err != nil {
		s.removeBlobs(ctx, []string{blobPath})
		return nil, err
	}
	return a, nil
}

// ListAttachments returns attachment metadata with a readable size and the uploader's name.
func (s *Service) ListAttachments(ctx context.Context, actor, taskID uint) ([]model.AttachmentView, error) {
	var rows []repository.AttachmentRow
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		if _, err := taskAccess(ctx, st, taskID, actor); err != nil {
			return err
		}
		var err error
		rows, err = st.Attachments.ListByTask(ctx, taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	views := make([]model.AttachmentView, 0, len(rows))
	for _, r := range rows {
		name := strings.TrimSpace(r.FirstName + " " + r.LastName)
		if name == "" {
			name = "Unknown"
		}
		views = append(views, model.AttachmentView{
			ID:         r.ID,
			Name:       r.OriginalFilename,
			Extension:  r.FileExtension,
			Size:       humanize.IBytes(uint64(r.FileSize)),
			MimeType:   r.MimeType,
			MemberName: name,
		})
	}
	return views, nil
}

// DownloadAttachment returns the attachment row and its file contents.
func (s *Service) DownloadAttachment(ctx context.Context, actor, id uint) (*model.Attachment, []byte, error) {
	var a *model.Attachment
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		a, err = st.Attachments.GetByID(ctx, id)
		if err != nil {
			return storeErr(err, ErrAttachmentNotFound)
		}
		_, err = taskAccess(ctx, st, a.TaskID, actor)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, a.FilePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: file does not exist on disk", ErrAttachmentNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read attachment: %v", ErrDependency, err)
	}
	return a, data, nil
}

// DeleteAttachment removes the attachment row, then its file on a best effort basis.
func (s *Service) DeleteAttachment(ctx context.Context, actor, id uint) (CascadeResult, error) {
	var blobPath string
	err := s.tx(ctx, func(tx *repository.Store) error {
		a, err := tx.Attachments.GetByID(ctx, id)
		if err != nil {
			return storeErr(err, ErrAttachmentNotFound)
		}
		workspaceID, err := taskAccess(ctx, tx, a.TaskID, actor)
		if err != nil {
			return err
		}
		if err := tx.Messages.ClearAttachment(ctx, a.ID); err != nil {
			return err
		}
		if err := tx.Attachments.Delete(ctx, a.ID); err != nil {
			return storeErr(err, ErrAttachmentNotFound)
		}
		blobPath = a.FilePath
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityAttachment,
			entityID:    a.ID,
			workspaceID: workspaceID,
			taskID:      a.TaskID,
			description: fmt.Sprintf("Attachment %s%s deleted", a.OriginalFilename, a.FileExtension),
		})
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return s.removeBlobs(ctx, []string{blobPath}), nil
}
