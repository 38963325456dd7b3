// Package repomanager vends repositories bound to a database handle, so
// services can obtain the same repositories on *sql.DB or inside a
// transaction.
package repomanager

import (
	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/keys"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/messages"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/sessions"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Keys(db dbx.DBTX) keys.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Messages(db dbx.DBTX) messages.Repository
}

// SQLiteRepositoryManager returns the SQLite implementations.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Keys(db dbx.DBTX) keys.Repository {
	return keys.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Messages(db dbx.DBTX) messages.Repository {
	return messages.NewSQLiteRepository(db)
}
