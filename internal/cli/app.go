package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/logging"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/fatih/color"
)

// Deps are the collaborators of App. Backup and Responder are optional.
type Deps struct {
	Credentials Credentials
	Sessions    Sessions
	Messages    Messages
	Backup      BackupRunner
	Responder   Responder
	Logger      logging.Logger

	HistorySize      int
	AdminEmailMarker string
}

type App struct {
	creds     Credentials
	sessions  Sessions
	messages  Messages
	backup    BackupRunner
	responder Responder
	logger    logging.Logger

	historySize int
	adminMarker string

	reader *bufio.Reader
	out    io.Writer

	sessionID string
	username  string
	fullName  string
	role      models.Role
}

func NewApp(d Deps, in io.Reader, out io.Writer) *App {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		creds:       d.Credentials,
		sessions:    d.Sessions,
		messages:    d.Messages,
		backup:      d.Backup,
		responder:   d.Responder,
		logger:      logging.ForComponent(logger, "cli"),
		historySize: d.HistorySize,
		adminMarker: d.AdminEmailMarker,
		reader:      bufio.NewReader(in),
		out:         out,
	}
}

// Run serves commands until the user exits or input ends, then closes any
// open session.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, color.CyanString("chatkeeper")+" (type 'help' for commands)")

	runREPL(ctx, a, a.status, a.reader)

	if a.isLoggedIn() {
		if err := a.Logout(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn(ctx, "logout on exit failed", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessionID != ""
}

func (a *App) isAdmin() bool {
	return a.isLoggedIn() && a.role == models.RoleAdmin
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return color.HiBlackString("guest")
	}
	s := color.GreenString(a.username)
	if a.isAdmin() {
		s += " " + color.YellowString("[admin]")
	}
	return s
}

// require checks the current session against the store. A session that is
// gone or expired logs the shell out.
func (a *App) require(ctx context.Context, role models.Role) error {
	if !a.isLoggedIn() {
		return common.ErrorUnauthorized
	}
	if _, err := a.sessions.Require(ctx, a.sessionID, role); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			a.clearSession()
		}
		return err
	}
	return nil
}

func (a *App) clearSession() {
	a.sessionID, a.username, a.fullName, a.role = "", "", "", ""
}
