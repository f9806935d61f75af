package service_test

import (
	"testing"

	"workspaceflow/internal/service"
	"workspaceflow/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestRegister(t *testing.T) {
	f := newFixture(t)

	m, err := f.svc.Register(f.ctx, service.RegisterInput{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "  Ada@Example.com ",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", m.Email)
	assert.NotEqual(t, "secret1", m.HashedPassword)

	_, err = f.svc.Register(f.ctx, service.RegisterInput{
		FirstName: "Ada", LastName: "Again", Email: "ADA@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = f.svc.Register(f.ctx, service.RegisterInput{
		FirstName: "Bob", LastName: "B", Email: "bob@example.com",
		Password: "secret1", ConfirmPassword: "secret2",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")

	got, err := f.svc.Authenticate(f.ctx, "ada@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.svc.Authenticate(f.ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	_, err = f.svc.Authenticate(f.ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")

	err := f.svc.ChangePassword(f.ctx, a.ID, a.ID, service.PasswordInput{
		OldPassword: "nope", NewPassword: "fresh123", ConfirmPassword: "fresh123",
	})
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	err = f.svc.ChangePassword(f.ctx, b.ID, a.ID, service.PasswordInput{
		OldPassword: "password1", NewPassword: "fresh123", ConfirmPassword: "fresh123",
	})
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	require.NoError(t, f.svc.ChangePassword(f.ctx, a.ID, a.ID, service.PasswordInput{
		OldPassword: "password1", NewPassword: "fresh123", ConfirmPassword: "fresh123",
	}))
	_, err = f.svc.Authenticate(f.ctx, "ada@example.com", "fresh123")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	f.register(t, "bob")

	m, err := f.svc.UpdateProfile(f.ctx, a.ID, a.ID, service.ProfileInput{
		FirstName:   ptr("Augusta"),
		AvatarColor: ptr("#112233"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", m.FirstName)
	assert.Equal(t, "#112233", m.AvatarColor)

	_, err = f.svc.UpdateProfile(f.ctx, a.ID, a.ID, service.ProfileInput{Email: ptr("BOB@example.com")})
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = f.svc.UpdateProfile(f.ctx, a.ID, a.ID, service.ProfileInput{AvatarColor: ptr("blue")})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDeleteMember_OwnerMustLetGo(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")
	b := f.register(t, "bob")
	ws, wf := f.board(t, a)
	_, err := f.svc.AddMember(f.ctx, a.ID, ws.ID, service.AddMemberInput{MemberID: b.ID})
	require.NoError(t, err)
	task, err := f.svc.CreateTask(f.ctx, b.ID, wf.ID, service.TaskInput{Title: "Bob's task", AssigneeIDs: []uint{b.ID}})
	require.NoError(t, err)

	_, err = f.svc.DeleteMember(f.ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, service.ErrConflict)
	_, err = f.svc.DeleteMember(f.ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	res, err := f.svc.DeleteMember(f.ctx, b.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, res.PartialSuccess())
	_, err = f.svc.GetMember(f.ctx, b.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	stored, err := f.svc.GetTask(f.ctx, a.ID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CreatedBy)
	assignees, err := f.svc.ListAssignees(f.ctx, a.ID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, assignees)
}

func TestProfilePicture(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "ada")

	_, _, err := f.svc.GetProfilePicture(f.ctx, a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, _, err = f.svc.UploadProfilePicture(f.ctx, a.ID, "me.txt", pngHeader)
	assert.ErrorIs(t, err, service.ErrValidation)
	_, _, err = f.svc.UploadProfilePicture(f.ctx, a.ID, "me.png", []byte("not an image at all"))
	assert.ErrorIs(t, err, service.ErrValidation)

	m, _, err := f.svc.UploadProfilePicture(f.ctx, a.ID, "Me.PNG", pngHeader)
	require.NoError(t, err)
	require.True(t, m.HasProfilePicture())
	first := *m.ProfilePicturePath

	data, mime, err := f.svc.GetProfilePicture(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", mime)

	m, res, err := f.svc.UploadProfilePicture(f.ctx, a.ID, "again.png", pngHeader)
	require.NoError(t, err)
	assert.False(t, res.PartialSuccess())
	assert.NotEqual(t, first, *m.ProfilePicturePath)
	_, err = f.blobs.Get(f.ctx, first)
	assert.Error(t, err)

	res, err = f.svc.DeleteProfilePicture(f.ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, res.PartialSuccess())
	_, _, err = f.svc.GetProfilePicture(f.ctx, a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.svc.DeleteProfilePicture(f.ctx, a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestProfilePicture_FailedCleanupIsReported(t *testing.T) {
	f := newFixture(t, func(b storage.Blob) storage.Blob { return brokenDeletes{b} })
	a := f.register(t, "ada")

	_, res, err := f.svc.UploadProfilePicture(f.ctx, a.ID, "me.png", pngHeader)
	require.NoError(t, err)
	assert.False(t, res.PartialSuccess())

	m, res, err := f.svc.UploadProfilePicture(f.ctx, a.ID, "again.png", pngHeader)
	require.NoError(t, err)
	assert.True(t, m.HasProfilePicture())
	assert.True(t, res.PartialSuccess())
	assert.Len(t, res.Warnings, 1)

	res, err = f.svc.DeleteMember(f.ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, res.PartialSuccess())
	_, err = f.svc.GetMember(f.ctx, a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRegister_BlankPhoneIsStoredAsNull(t *testing.T) {
	f := newFixture(t)
	in := func(name, phone string) service.RegisterInput {
		return service.RegisterInput{
			FirstName: name, LastName: "Tester", Email: name + "@example.com",
			Password: "password1", ConfirmPassword: "password1", PhoneNumber: ptr(phone),
		}
	}

	a, err := f.svc.Register(f.ctx, in("ada", ""))
	require.NoError(t, err)
	assert.Nil(t, a.PhoneNumber)
	b, err := f.svc.Register(f.ctx, in("bob", "   "))
	require.NoError(t, err)
	assert.Nil(t, b.PhoneNumber)

	c, err := f.svc.Register(f.ctx, in("cy", " +1 555 0100 "))
	require.NoError(t, err)
	require.NotNil(t, c.PhoneNumber)
	assert.Equal(t, "+1 555 0100", *c.PhoneNumber)
	_, err = f.svc.Register(f.ctx, in("dee", "+1 555 0100"))
	assert.ErrorIs(t, err, service.ErrConflict)

	m, err := f.svc.UpdateProfile(f.ctx, a.ID, a.ID, service.ProfileInput{PhoneNumber: ptr(" +1 555 0199 ")})
	require.NoError(t, err)
	require.NotNil(t, m.PhoneNumber)
	assert.Equal(t, "+1 555 0199", *m.PhoneNumber)
	m, err = f.svc.UpdateProfile(f.ctx, a.ID, a.ID, service.ProfileInput{PhoneNumber: ptr("  ")})
	require.NoError(t, err)
	assert.Nil(t, m.PhoneNumber)
	_, err = f.svc.UpdateProfile(f.ctx, b.ID, b.ID, service.ProfileInput{PhoneNumber: ptr("")})
	require.NoError(t, err)
}
