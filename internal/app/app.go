// Package app wires configuration, storage, services and the interactive
// shell into a runnable chatkeeper process.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/backup"
	"github.com/dmitrijs2005/chatkeeper/internal/cli"
	"github.com/dmitrijs2005/chatkeeper/internal/config"
	"github.com/dmitrijs2005/chatkeeper/internal/logging"
	"github.com/dmitrijs2005/chatkeeper/internal/masterkey"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/chatkeeper/internal/services"
	"github.com/dmitrijs2005/chatkeeper/internal/storage"
)

// shutdownTimeout bounds how long Run waits for the shell to finish its
// current command after cancellation before the database is closed.
var shutdownTimeout = 5 * time.Second

type shellRunner interface {
	Run(ctx context.Context)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *services.SessionService
	shell    shellRunner
}

// NewApp opens the database and builds every service. A chat table from an
// older deployment is backed up before the schema is upgraded. Logs go to
// logOut; the shell talks over in and out.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	key, created, err := masterkey.Load(c.EnvFile, c.MasterKeyVar)
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	if created {
		logger.Warn(ctx, "generated a new master key", "file", c.EnvFile, "var", c.MasterKeyVar)
	}

	db, err := storage.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, c, logger, db, key, in, out)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, key []byte, in io.Reader, out io.Writer) (*App, error) {
	bk, err := newBackup(ctx, c, db, logger)
	if err != nil {
		return nil, err
	}

	missing, err := storage.MissingChatColumns(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		logger.Warn(ctx, "legacy chat table found", "missing", missing)
		if bk == nil {
			logger.Warn(ctx, "no backup target configured, upgrading without a backup")
		} else if _, err := bk.Run(ctx); err != nil {
			return nil, fmt.Errorf("backup before upgrade: %w", err)
		}
	}

	if err := storage.Migrate(ctx, db); err != nil {
		return nil, err
	}

	m := repomanager.NewSQLiteRepositoryManager()
	keys, err := services.NewKeyService(db, m, key)
	if err != nil {
		return nil, err
	}

	var write services.MessageCipher = keys
	if c.MessageCipher == models.CipherShift {
		write = services.ShiftCipher{}
	}

	messages := services.NewMessageService(db, m, logger, write, keys)
	creds := services.NewCredentialService(db, m, keys, c.PasswordParams(), logger)
	sessions := services.NewSessionService(db, m, c.SessionDuration, logger, services.WithEvents(messages))

	deps := cli.Deps{
		Credentials:      creds,
		Sessions:         sessions,
		Messages:         messages,
		Logger:           logger,
		HistorySize:      c.HistorySize,
		AdminEmailMarker: c.AdminEmailMarker,
	}
	if bk != nil {
		deps.Backup = bk
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		sessions: sessions,
		shell:    cli.NewApp(deps, in, out),
	}, nil
}

// newBackup returns nil when no target is configured.
func newBackup(ctx context.Context, c *config.Config, db *sql.DB, logger logging.Logger) (*backup.Service, error) {
	var targets []backup.Target
	if c.BackupDir != "" {
		targets = append(targets, backup.DirTarget{Dir: c.BackupDir})
	}
	if c.S3Bucket != "" {
		t, err := backup.NewS3Target(ctx, backup.S3Options{
			Bucket:       c.S3Bucket,
			Prefix:       c.S3Prefix,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return nil, nil
	}
	return backup.NewService(db, logger, targets...), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the session sweeper and the shell and blocks until the shell
// exits or a termination signal arrives. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "db", app.config.DatabaseDSN)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.RunSweeper(ctx, app.config.SweepInterval)
	}()

	shellDone := make(chan struct{})
	go func() {
		app.shell.Run(ctx)
		close(shellDone)
	}()

	select {
	case <-shellDone:
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
	}

	cancelFunc()
	wg.Wait()

	select {
	case <-shellDone:
	case <-time.After(shutdownTimeout):
		app.logger.Warn(ctx, "shell still busy, closing the database anyway", "timeout", shutdownTimeout)
	}

	return app.Close()
}

func (app *App) Close() error {
	return app.db.Close()
}
