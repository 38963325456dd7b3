package services

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/cryptox"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/chatkeeper/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testParams = cryptox.PasswordParams{Time: 1, MemoryKiB: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	db        *sql.DB
	masterKey []byte
	keys      *KeyService
	creds     *CredentialService
	sessions  *SessionService
	messages  *MessageService
	clock     *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	m := repomanager.NewSQLiteRepositoryManager()
	logger := testutil.NoopLogger()

	master, err := cryptox.GenerateKey()
	require.NoError(t, err)
	keys, err := NewKeyService(db, m, master)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	messages := NewMessageService(db, m, logger, keys)

	return &fixture{
		db:        db,
		masterKey: master,
		keys:      keys,
		creds:     NewCredentialService(db, m, keys, testParams, logger),
		sessions:  NewSessionService(db, m, 30*time.Minute, logger, WithClock(clock.Now), WithEvents(messages)),
		messages:  messages,
		clock:     clock,
	}
}
