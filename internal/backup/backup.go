// Package backup snapshots the chatkeeper database and ships the copy to one
// or more targets: a local directory and, optionally, an S3 bucket.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/logging"
)

// Target stores a finished snapshot under name.
type Target interface {
	Name() string
	Put(ctx context.Context, name string, r io.ReadSeeker) error
}

type Service struct {
	db      *sql.DB
	targets []Target
	logger  logging.Logger
	now     func() time.Time
}

func NewService(db *sql.DB, logger logging.Logger, targets ...Target) *Service {
	return &Service{
		db:      db,
		targets: targets,
		logger:  logging.ForComponent(logger, "backup"),
		now:     time.Now,
	}
}

// SnapshotName returns the object name used for a snapshot taken at t.
func SnapshotName(t time.Time) string {
	return "chat-" + t.UTC().Format("20060102T150405Z") + ".db"
}

// Run writes a consistent copy of the database with VACUUM INTO and hands it
// to every target. All targets are attempted; their errors are joined.
// It returns the snapshot name.
func (s *Service) Run(ctx context.Context) (string, error) {
	if len(s.targets) == 0 {
		return "", errors.New("backup: no targets configured")
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return "", err
	}

	tmp, err := os.MkdirTemp("", "chatkeeper-backup-")
	if err != nil {
		return "", fmt.Errorf("backup: temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	name := SnapshotName(s.now())
	path := filepath.Join(tmp, name)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", dbx.Unavailable(fmt.Errorf("backup: vacuum into: %w", err))
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("backup: open snapshot: %w", err)
	}
	defer f.Close()

	var errs []error
	for _, t := range s.targets {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", fmt.Errorf("backup: rewind snapshot: %w", err)
		}
		if err := t.Put(ctx, name, f); err != nil {
			s.logger.Error(ctx, "backup upload failed", "target", t.Name(), "snapshot", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", t.Name(), err))
			continue
		}
		s.logger.Info(ctx, "backup stored", "target", t.Name(), "snapshot", name)
	}

	if err := errors.Join(errs...); err != nil {
		return name, err
	}
	return name, nil
}
