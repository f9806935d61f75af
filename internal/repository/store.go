package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups every repository over one connection, or over one transaction
// when obtained through Transaction.
type Store struct {
	db          *gorm.DB
	timeout     time.Duration
	lockTimeout time.Duration

	Members     *MemberRepository
	Workspaces  *WorkspaceRepository
	Memberships *MembershipRepository
	Workflows   *WorkflowRepository
	Statuses    *StatusRepository
	Tasks       *TaskRepository
	Subtasks    *SubtaskRepository
	Messages    *ChatRepository
	Attachments *AttachmentRepository
	Activities  *ActivityRepository
}

type StoreOption func(*Store)

// WithTimeout bounds every transaction started by the store.
func WithTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.timeout = d }
}

// WithLockTimeout sets how long a postgres transaction waits on a row lock.
func WithLockTimeout(d time.Duration) StoreOption {
	return func(s *Store) { s.lockTimeout = d }
}

func NewStore(db *gorm.DB, opts ...StoreOption) *Store {
	s := bind(db)
	s.timeout = 10 * time.Second
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func bind(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Members:     NewMemberRepository(db),
		Workspaces:  NewWorkspaceRepository(db),
		Memberships: NewMembershipRepository(db),
		Workflows:   NewWorkflowRepository(db),
		Statuses:    NewStatusRepository(db),
		Tasks:       NewTaskRepository(db),
		Subtasks:    NewSubtaskRepository(db),
		Messages:    NewChatRepository(db),
		Attachments: NewAttachmentRepository(db),
		Activities:  NewActivityRepository(db),
	}
}

// WithDeadline applies the store timeout to a read path.
func (s *Store) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Transaction runs fn against a Store bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	ctx, cancel := s.WithDeadline(ctx)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && isPostgres(tx) {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		inner := bind(tx)
		inner.timeout = s.timeout
		inner.lockTimeout = s.lockTimeout
		return fn(inner)
	})
	return translate(err)
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return translate(sqlDB.PingContext(ctx))
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

// forUpdate adds SELECT ... FOR UPDATE where the dialect supports row locks.
func forUpdate(db *gorm.DB) *gorm.DB {
	if isPostgres(db) {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
