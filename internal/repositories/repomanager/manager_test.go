package repomanager

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/keys"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/messages"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/sessions"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/users"
	"github.com/dmitrijs2005/chatkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRepositoryManager_Types(t *testing.T) {
	db := testutil.NewDB(t)
	m := NewSQLiteRepositoryManager()

	assert.IsType(t, &users.SQLiteRepository{}, m.Users(db))
	assert.IsType(t, &keys.SQLiteRepository{}, m.Keys(db))
	assert.IsType(t, &sessions.SQLiteRepository{}, m.Sessions(db))
	assert.IsType(t, &messages.SQLiteRepository{}, m.Messages(db))
}

func TestSQLiteRepositoryManager_WorksInsideTx(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	m := NewSQLiteRepositoryManager()

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := m.Users(tx).Create(ctx, &models.User{Username: "alice", PasswordHash: "h", Role: models.RoleGeneral}); err != nil {
			return err
		}
		return m.Keys(tx).Create(ctx, &models.KeyRecord{Username: "alice", WrappedKey: "w"})
	})
	require.NoError(t, err)

	_, err = m.Keys(db).Get(ctx, "alice")
	require.NoError(t, err)
}
