package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"workspaceflow/internal/auth"
	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"
	"workspaceflow/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

type RegisterInput struct {
	FirstName       string  `json:"first_name" binding:"required" validate:"required,max=255"`
	LastName        string  `json:"last_name" binding:"required" validate:"required,max=255"`
	Email           string  `json:"email" binding:"required" validate:"required,email,max=255"`
	Password        string  `json:"password" binding:"required" validate:"required,min=6,max=72"`
	ConfirmPassword string  `json:"confirm_password" binding:"required" validate:"required,eqfield=Password"`
	PhoneNumber     *string `json:"phone_number" validate:"omitempty,max=255"`
	AvatarColor     string  `json:"avatar_color" validate:"omitempty,hexcolor"`
}

type ProfileInput struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1,max=255"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1,max=255"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=255"`
	AvatarColor *string `json:"avatar_color" validate:"omitempty,hexcolor"`
}

type PasswordInput struct {
	OldPassword     string `json:"old_password" binding:"required" validate:"required"`
	NewPassword     string `json:"new_password" binding:"required" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required" validate:"required,eqfield=NewPassword"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Member, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = normalizePhone(in.PhoneNumber)
	if err := s.check(in); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	member := &model.Member{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		AvatarColor:    in.AvatarColor,
		HashedPassword: hashed,
	}
	if member.AvatarColor == "" {
		member.AvatarColor = model.DefaultAvatarColor
	}

	err = s.tx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Members.FindByEmail(ctx, in.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := tx.Members.Create(ctx, member); err != nil {
			return err
		}
		return s.audit(ctx, tx, member.ID, entry{
			action:      model.ActionCreated,
			entity:      model.EntityMember,
			entityID:    member.ID,
			description: fmt.Sprintf("Member %s registered", member.FullName()),
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("member registered", "member_id", member.ID)
	return member, nil
}

// normalizePhone trims a phone number and maps a blank one to nil, so the
// unique index only sees real numbers.
func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Authenticate checks credentials. Unknown email and wrong password fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.Member, error) {
	var member *model.Member
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		m, err := st.Members.FindByEmail(ctx, strings.TrimSpace(email))
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBadCredentials
		}
		member = m
		return err
	})
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(member.HashedPassword, password) {
		return nil, ErrBadCredentials
	}
	return member, nil
}

func (s *Service) GetMember(ctx context.Context, id uint) (*model.Member, error) {
	var member *model.Member
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		m, err := st.Members.GetByID(ctx, id)
		member = m
		return storeErr(err, ErrMemberNotFound)
	})
	return member, err
}

func (s *Service) ListMembers(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := s.read(ctx, func(ctx context.Context, st *repository.Store) error {
		var err error
		members, err = st.Members.List(ctx)
		return err
	})
	return members, err
}

// UpdateProfile changes the actor's own profile fields.
func (s *Service) UpdateProfile(ctx context.Context, actor, memberID uint, in ProfileInput) (*model.Member, error) {
	if actor != memberID {
		return nil, fmt.Errorf("%w: members may only edit their own profile", ErrAccessDenied)
	}
	if in.Email != nil {
		lower := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &lower
	}
	if in.PhoneNumber != nil {
		phone := strings.TrimSpace(*in.PhoneNumber)
		in.PhoneNumber = &phone
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	var member *model.Member
	err := s.tx(ctx, func(tx *repository.Store) error {
		m, err := tx.Members.GetByID(ctx, memberID)
		if err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		if in.Email != nil && *in.Email != m.Email {
			if _, err := tx.Members.FindByEmail(ctx, *in.Email); err == nil {
				return ErrEmailTaken
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			m.Email = *in.Email
		}
		if in.FirstName != nil {
			m.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			m.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.PhoneNumber != nil {
			m.PhoneNumber = normalizePhone(in.PhoneNumber)
		}
		if in.AvatarColor != nil {
			m.AvatarColor = *in.AvatarColor
		}
		if err := tx.Members.Update(ctx, m); err != nil {
			return err
		}
		member = m
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityMember,
			entityID:    m.ID,
			description: "Profile updated",
		})
	})
	return member, err
}

func (s *Service) ChangePassword(ctx context.Context, actor, memberID uint, in PasswordInput) error {
	if actor != memberID {
		return fmt.Errorf("%w: members may only change their own password", ErrAccessDenied)
	}
	if err := s.check(in); err != nil {
		return err
	}
	hashed, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.tx(ctx, func(tx *repository.Store) error {
		m, err := tx.Members.GetByID(ctx, memberID)
		if err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		if !auth.CheckPassword(m.HashedPassword, in.OldPassword) {
			return fmt.Errorf("%w: incorrect password", ErrAccessDenied)
		}
		m.HashedPassword = hashed
		if err := tx.Members.Update(ctx, m); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUpdated,
			entity:      model.EntityMember,
			entityID:    m.ID,
			description: "Password changed",
		})
	})
}

// DeleteMember removes the actor's own account. Owners must hand over or
// delete their workspaces first.
func (s *Service) DeleteMember(ctx context.Context, actor, memberID uint) (CascadeResult, error) {
	if actor != memberID {
		return CascadeResult{}, fmt.Errorf("%w: members may only delete their own account", ErrAccessDenied)
	}

	var picture string
	err := s.tx(ctx, func(tx *repository.Store) error {
		m, err := tx.Members.GetByID(ctx, memberID)
		if err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		owned, err := tx.Workspaces.CountOwned(ctx, memberID)
		if err != nil {
			return err
		}
		if owned > 0 {
			return ErrStillOwner
		}
		if m.HasProfilePicture() {
			picture = *m.ProfilePicturePath
		}
		if err := tx.Members.Delete(ctx, memberID); err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityMember,
			entityID:    memberID,
			description: fmt.Sprintf("Member %s deleted", m.FullName()),
		})
	})
	if err != nil {
		return CascadeResult{}, err
	}
	if picture == "" {
		return CascadeResult{}, nil
	}
	return s.removeBlobs(ctx, []string{picture}), nil
}

var pictureTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// UploadProfilePicture stores a new picture for the actor and drops the previous
// one. A failed removal of the old blob is reported in the result.
func (s *Service) UploadProfilePicture(ctx context.Context, actor uint, filename string, data []byte) (*model.Member, CascadeResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := pictureTypes[ext]; !ok {
		return nil, CascadeResult{}, invalid("invalid file type, allowed: JPG, JPEG, PNG, GIF, WebP")
	}
	if len(data) == 0 {
		return nil, CascadeResult{}, invalid("empty file")
	}
	if int64(len(data)) > s.maxPictureSize {
		return nil, CascadeResult{}, invalid("file too large (max %d bytes)", s.maxPictureSize)
	}
	mime := mimetype.Detect(data)
	if !mime.Is("image/jpeg") && !mime.Is("image/png") && !mime.Is("image/gif") && !mime.Is("image/webp") {
		return nil, CascadeResult{}, invalid("file is not a valid image")
	}

	path, err := s.blobs.Put(ctx, fmt.Sprintf("profile_pictures/member_%d%s", actor, ext), data)
	if err != nil {
		return nil, CascadeResult{}, fmt.Errorf("%w: store profile picture: %v", ErrDependency, err)
	}

	var (
		member *model.Member
		old    string
	)
	err = s.tx(ctx, func(tx *repository.Store) error {
		m, err := tx.Members.GetByID(ctx, actor)
		if err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		if m.HasProfilePicture() {
			old = *m.ProfilePicturePath
		}
		size := int64(len(data))
		mt := mime.String()
		m.ProfilePicturePath = &path
		m.ProfilePictureSize = &size
		m.ProfilePictureMimeType = &mt
		if err := tx.Members.Update(ctx, m); err != nil {
			return err
		}
		member = m
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionUploaded,
			entity:      model.EntityMember,
			entityID:    actor,
			description: "Profile picture uploaded",
		})
	})
	if err != nil {
		s.removeBlobs(ctx, []string{path})
		return nil, CascadeResult{}, err
	}
	if old == "" {
		return member, CascadeResult{}, nil
	}
	return member, s.removeBlobs(ctx, []string{old}), nil
}

// GetProfilePicture returns the picture bytes and their mime type.
func (s *Service) GetProfilePicture(ctx context.Context, memberID uint) ([]byte, string, error) {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, "", err
	}
	if !member.HasProfilePicture() {
		return nil, "", ErrPictureNotFound
	}
	data, err := s.blobs.Get(ctx, *member.ProfilePicturePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrPictureNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: read profile picture: %v", ErrDependency, err)
	}
	mt := "image/jpeg"
	if member.ProfilePictureMimeType != nil {
		mt = *member.ProfilePictureMimeType
	}
	return data, mt, nil
}

func (s *Service) DeleteProfilePicture(ctx context.Context, actor uint) (CascadeResult, error) {
	var path string
	err := s.tx(ctx, func(tx *repository.Store) error {
		m, err := tx.Members.GetByID(ctx, actor)
		if err != nil {
			return storeErr(err, ErrMemberNotFound)
		}
		if !m.HasProfilePicture() {
			return ErrPictureNotFound
		}
		path = *m.ProfilePicturePath
		m.ProfilePicturePath = nil
		m.ProfilePictureSize = nil
		m.ProfilePictureMimeType = nil
		if err := tx.Members.Update(ctx, m); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, entry{
			action:      model.ActionDeleted,
			entity:      model.EntityMember,
			entityID:    actor,
			description: "Profile picture removed",
		})
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return s.removeBlobs(ctx, []string{path}), nil
}
