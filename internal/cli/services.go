package cli

import (
	"context"

	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

// Credentials is the account surface the shell uses.
type Credentials interface {
	Register(ctx context.Context, username, password, fullName, email string, role models.Role) error
	Authenticate(ctx context.Context, username, password string) (*models.Identity, error)
	Profile(ctx context.Context, username string) (*models.Profile, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, username, newPassword string) error
	SetRole(ctx context.Context, username string, role models.Role) error
	DeleteUser(ctx context.Context, username string) error
	AddUser(ctx context.Context, username, fullName, email string, role models.Role) (string, error)
}

type Sessions interface {
	Create(ctx context.Context, username string, role models.Role) (string, error)
	Require(ctx context.Context, sessionID string, role models.Role) (*models.Session, error)
	Terminate(ctx context.Context, sessionID string) error
}

type Messages interface {
	Append(ctx context.Context, username, message, role string, encrypt bool) (int64, error)
	AppendExchange(ctx context.Context, username, message, role, response string, encrypt bool) (int64, error)
	RecordEvent(ctx context.Context, username, text string) error
	GetLastN(ctx context.Context, n int, username string) ([]models.ChatMessage, error)
}

type BackupRunner interface {
	Run(ctx context.Context) (string, error)
}

// Responder produces a reply to a chat message, e.g. a completion service.
type Responder interface {
	Reply(ctx context.Context, username, message string) (string, error)
}
