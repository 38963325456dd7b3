package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/logging"
	"github.com/dmitrijs2005/chatkeeper/internal/storage"
	"github.com/dmitrijs2005/chatkeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	name string
	got  map[string][]byte
	err  error
}

func (r *recordingTarget) Name() string { return r.name }

func (r *recordingTarget) Put(_ context.Context, name string, rd io.ReadSeeker) error {
	if r.err != nil {
		return r.err
	}
	b, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	if r.got == nil {
		r.got = map[string][]byte{}
	}
	r.got[name] = b
	return nil
}

func TestSnapshotName(t *testing.T) {
	ts := time.Date(2026, 5, 1, 9, 30, 5, 0, time.FixedZone("X", 3*3600))
	assert.Equal(t, "chat-20260501T063005Z.db", SnapshotName(ts))
}

func TestService_Run_DirTarget(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	_, err := db.Exec(`INSERT INTO chat_sessions (username, message, role) VALUES ('bob', 'hello', 'user')`)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backup")
	svc := NewService(db, logging.Nop(), DirTarget{Dir: dir})
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	name, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "chat-20260501T090000Z.db", name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no partial files left behind")

	snap, err := storage.Open(ctx, filepath.Join(dir, name))
	require.NoError(t, err)
	defer snap.Close()

	var msg string
	require.NoError(t, snap.QueryRow(`SELECT message FROM chat_sessions WHERE username = 'bob'`).Scan(&msg))
	assert.Equal(t, "hello", msg)
}

func TestService_Run_AllTargetsAttempted(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	broken := &recordingTarget{name: "broken", err: errors.New("disk full")}
	ok := &recordingTarget{name: "ok"}
	svc := NewService(db, logging.Nop(), broken, ok)

	name, err := svc.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: disk full")
	require.Contains(t, ok.got, name)
	assert.NotEmpty(t, ok.got[name])
}

func TestService_Run_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewService(testutil.NewDB(t), logging.Nop()).Run(ctx)
	assert.Error(t, err, "no targets")

	db := testutil.NewDB(t)
	require.NoError(t, db.Close())
	_, err = NewService(db, logging.Nop(), &recordingTarget{name: "x"}).Run(ctx)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}
