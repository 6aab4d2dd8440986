package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
)

type sessionsRepo struct {
	q dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, role, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.TokenHash, s.UserID, string(s.Role), dbTime(s.CreatedAt), dbTime(s.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	var (
		s    domain.Session
		role string
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT token_hash, user_id, role, created_at, expires_at FROM sessions WHERE token_hash = $1`,
		tokenHash,
	).Scan(&s.TokenHash, &s.UserID, &role, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}

	if s.Role, err = domain.ParseRole(role); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, dbTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
