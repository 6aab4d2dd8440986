package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and expose one sub-repository per table. Every method is a
// single statement, so callers only need WithTx when they batch writes.
type Store interface {
	Users() Users
	Courses() Courses
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// back, nil commits.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts u and returns it with ID and CreatedAt set.
	// A duplicate email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail matches exactly; callers normalize first.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	CountUsers(ctx context.Context) (int64, error)
}

type Courses interface {
	// CreateCourse inserts c and returns the stored row (without the
	// instructor name, which only comes from joined reads).
	CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error)

	// GetCourseByID joins the owning instructor; orphaned rows are ErrNotFound.
	GetCourseByID(ctx context.Context, id int64) (domain.Course, error)

	// ListCourses returns every course with a live instructor in id order.
	ListCourses(ctx context.Context) ([]domain.Course, error)

	ListCoursesByInstructor(ctx context.Context, instructorID int64) ([]domain.Course, error)

	// SearchCourses matches term as a case-insensitive substring of the
	// title or the instructor name. Wildcards in term match literally.
	SearchCourses(ctx context.Context, term string) ([]domain.Course, error)

	// UpdateCourse sets title and description. ErrNotFound if no row changed.
	UpdateCourse(ctx context.Context, id int64, title, description string) error

	// DeleteCourse removes exactly one row. ErrNotFound if nothing matched.
	DeleteCourse(ctx context.Context, id int64) error
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByHash returns the row regardless of expiry; the caller
	// decides whether it is still valid.
	GetSessionByHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// DeleteSession is idempotent: deleting a missing row is not an error.
	DeleteSession(ctx context.Context, tokenHash string) error

	// DeleteExpiredSessions removes sessions that expired before cutoff and
	// reports how many were removed.
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// LikePattern turns a free-text search term into a substring LIKE pattern,
// escaping the wildcards with a backslash. Queries must declare ESCAPE '\'.
func LikePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
