package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

const pgUniqueViolation = "23505"

// Store groups the repositories over one connection (or one transaction).
type Store interface {
	DJs() DJRepository
	Reviews() ReviewRepository
	Tags() TagRepository
	Users() UserRepository
	Tasks() TaskRepository
	Invites() InviteRepository
	Comments() CommentRepository

	// WithinTx runs fn in a transaction; fn's Store is bound to it. Returning an
	// error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DJs() DJRepository           { return NewDJRepository(s.db) }
func (s *gormStore) Reviews() ReviewRepository   { return NewReviewRepository(s.db) }
func (s *gormStore) Tags() TagRepository         { return NewTagRepository(s.db) }
func (s *gormStore) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *gormStore) Tasks() TaskRepository       { return NewTaskRepository(s.db) }
func (s *gormStore) Invites() InviteRepository   { return NewInviteRepository(s.db) }
func (s *gormStore) Comments() CommentRepository { return NewCommentRepository(s.db) }

func (s *gormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// forUpdate locks the selected rows until the surrounding transaction ends.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// SortOrder is an already-validated ORDER BY column.
type SortOrder struct {
	Column string
	Desc   bool
}

func (o SortOrder) clause() clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc}
}

func pageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
