package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/logging"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/repomanager"
	"github.com/google/uuid"
)

// EventRecorder receives session lifecycle notes.
type EventRecorder interface {
	RecordEvent(ctx context.Context, username, text string) error
}

// SessionService issues and checks time-limited sessions. Validity is
// decided on every call against the stored expiration; expired rows are
// removed as soon as they are looked at.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	duration    time.Duration
	now         func() time.Time
	events      EventRecorder
	logger      logging.Logger
}

type SessionOption func(*SessionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) { s.now = now }
}

// WithEvents records "Session <id> created" entries through r.
func WithEvents(r EventRecorder) SessionOption {
	return func(s *SessionService) { s.events = r }
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, duration time.Duration, logger logging.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		db:          db,
		repomanager: m,
		duration:    duration,
		now:         time.Now,
		logger:      logging.ForComponent(logger, "sessions"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create opens a session for username that expires after the configured
// duration. role is a snapshot: later role changes do not affect it.
func (s *SessionService) Create(ctx context.Context, username string, role models.Role) (string, error) {
	if username == "" {
		return "", fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if _, err := models.ParseRole(string(role)); err != nil {
		return "", err
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return "", err
	}

	sess := &models.Session{
		ID:         uuid.NewString(),
		Username:   username,
		Role:       role,
		Expiration: s.now().Add(s.duration),
	}
	if err := s.repomanager.Sessions(s.db).Create(ctx, sess); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return "", fmt.Errorf("user %q: %w", username, common.ErrorNotFound)
		}
		return "", dbx.Unavailable(err)
	}

	s.logger.Info(ctx, "session created", "username", username, "role", role, "expires", sess.Expiration)

	if s.events != nil {
		if err := s.events.RecordEvent(ctx, username, fmt.Sprintf("Session %s created", sess.ID)); err != nil {
			s.logger.Warn(ctx, "failed to record session event", "username", username, "error", err)
		}
	}
	return sess.ID, nil
}

// Validate reports whether sessionID is live and, if so, its role. Unknown
// and expired sessions are invalid without error; an expired one is deleted.
func (s *SessionService) Validate(ctx context.Context, sessionID string) (bool, models.Role, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return false, "", nil
		}
		return false, "", err
	}
	return true, sess.Role, nil
}

// Require returns the live session or common.ErrorUnauthorized. When role
// is admin, a general session fails with common.ErrForbidden.
func (s *SessionService) Require(ctx context.Context, sessionID string, role models.Role) (*models.Session, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin && sess.Role != models.RoleAdmin {
		return nil, common.ErrForbidden
	}
	return sess, nil
}

// Terminate deletes the session. Unknown ids are ignored.
func (s *SessionService) Terminate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return err
	}
	removed, err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID)
	if err != nil {
		return dbx.Unavailable(err)
	}
	if removed {
		s.logger.Info(ctx, "session terminated", "session", sessionID)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many went.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return 0, err
	}
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, dbx.Unavailable(err)
	}
	return n, nil
}

// RunSweeper calls PurgeExpired every interval until ctx is done. A
// non-positive interval returns immediately.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.logger.Warn(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug(ctx, "expired sessions purged", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *SessionService) lookup(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, common.ErrorUnauthorized
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return nil, err
	}

	repo := s.repomanager.Sessions(s.db)
	sess, err := repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, dbx.Unavailable(err)
	}

	if !sess.ValidAt(s.now()) {
		if _, err := repo.Delete(ctx, sessionID); err != nil {
			return nil, dbx.Unavailable(err)
		}
		s.logger.Info(ctx, "session expired", "session", sessionID, "username", sess.Username)
		return nil, common.ErrorUnauthorized
	}
	return sess, nil
}
