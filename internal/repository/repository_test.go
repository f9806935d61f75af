package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"workspaceflow/internal/model"
	"workspaceflow/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		DriverName:           "postgres",
		Conn:                 db,
		PreferSimpleProtocol: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestMemberRepository_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	member := &model.Member{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		AvatarColor:    model.DefaultAvatarColor,
		HashedPassword: "hashed_password",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), member)

	assert.NoError(t, err)
	assert.Equal(t, uint(7), member.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_Create_DuplicateEmail(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "members"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &model.Member{Email: "ada@example.com"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_FindByEmail_Found(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "members" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "hashed_password"}).
			AddRow(3, "Ada", "Lovelace", "ada@example.com", "hashed_password"))

	member, err := repo.FindByEmail(context.Background(), "Ada@Example.com")

	require.NoError(t, err)
	assert.Equal(t, uint(3), member.ID)
	assert.Equal(t, "ada@example.com", member.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepository_FindByEmail_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMemberRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "members" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	member, err := repo.FindByEmail(context.Background(), "nobody@example.com")

	assert.Nil(t, member)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_IsMember(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMembershipRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "workspace_members" WHERE workspace_id = \$1 AND member_id = \$2`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.IsMember(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Remove_NoLink(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewMembershipRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "workspace_members" WHERE workspace_id = \$1 AND member_id = \$2`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Remove(context.Background(), 1, 2)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_WorkspaceID_UnknownTask(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT workflows.workspace_id FROM "tasks" JOIN workflows`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"workspace_id"}))

	_, err := repo.WorkspaceID(context.Background(), 99)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetForUpdate_LocksRow(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewTaskRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "workflow_id", "column_id"}).
			AddRow(5, "Write report", 1, 2))

	task, err := repo.GetForUpdate(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, "Write report", task.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_List_VisibleTo(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewActivityRepository(gormDB)

	actor := uint(4)
	mock.ExpectQuery(`SELECT \* FROM "activity_logs" WHERE \(workspace_id IN \(SELECT "workspace_id" FROM "workspace_members" WHERE member_id = \$1\) OR member_id = \$2\) ORDER BY created_at, id LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "entity_type", "entity_id", "member_id"}).
			AddRow(1, "created", "task", 10, 4).
			AddRow(2, "moved", "task", 10, 4))

	entries, err := repo.List(context.Background(), model.ActivityFilter{VisibleTo: &actor, Limit: 50})

	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, model.ActionMoved, entries[1].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Transaction_SetsLockTimeoutAndRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB, repository.WithLockTimeout(250*time.Millisecond))

	mock.ExpectBegin()
	mock.ExpectExec(`SET LOCAL lock_timeout = '250ms'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := store.Transaction(context.Background(), func(tx *repository.Store) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Transaction_LockNotAvailableIsBusy(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "could not obtain lock"})
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(tx *repository.Store) error {
		_, err := tx.Tasks.GetForUpdate(context.Background(), 1)
		return err
	})

	assert.ErrorIs(t, err, repository.ErrBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}
