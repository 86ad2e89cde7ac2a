package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStateDirs ensures the runtime folder layout exists under the given
// DB path: the Pebble store dir plus a scratch area for diagnostics and
// temp files. Paths must not be symlinks, must not be group/other
// writable, and must be writable by the process.
func EnsureStateDirs(dbPath string) error {
	for _, p := range []string{StorePath(dbPath), filepath.Join(dbPath, "state", "tmp")} {
		if err := ensureDir(p); err != nil {
			return err
		}
	}
	return nil
}

// StorePath returns the Pebble store directory under the DB path.
func StorePath(dbPath string) string {
	return filepath.Join(dbPath, "store")
}

func ensureDir(p string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("cannot create parent for %s: %w", p, err)
	}

	if err := checkDir(p); err != nil {
		return err
	}
	if err := os.MkdirAll(p, 0o700); err != nil {
		return fmt.Errorf("cannot create path %s: %w", p, err)
	}
	// re-check after creation in case the path was swapped underneath us
	if err := checkDir(p); err != nil {
		return err
	}

	// writability check: create and remove a temp file
	tmp, err := os.CreateTemp(p, ".validate-*")
	if err != nil {
		return fmt.Errorf("path not writable: %s: %w", p, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())
	return nil
}

// checkDir rejects symlinks, non-directories and permissive modes. A
// missing path is fine; the caller creates it.
func checkDir(p string) error {
	fi, err := os.Lstat(p)
	if err != nil {
		return nil
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("path is a symlink: %s", p)
	}
	if !fi.IsDir() {
		return fmt.Errorf("path exists and is not a directory: %s", p)
	}
	if fi.Mode().Perm()&0o022 != 0 {
		return fmt.Errorf("path has permissive mode (group/other write): %s", p)
	}
	return nil
}
