package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/chatkeeper/internal/filex"
)

// DirTarget copies snapshots into a local directory.
type DirTarget struct {
	Dir string
}

func (d DirTarget) Name() string { return "dir:" + d.Dir }

// Put writes r to Dir/name. The file is written under a temporary name and
// renamed once complete.
func (d DirTarget) Put(ctx context.Context, name string, r io.ReadSeeker) error {
	dir, err := filex.EnsureDir(d.Dir)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, name+".part-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(dir, name))
}
