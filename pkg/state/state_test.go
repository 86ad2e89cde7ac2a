package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureStateDirs(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(root, "db")

	if err := EnsureStateDirs(dbPath); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, p := range []string{StorePath(dbPath), filepath.Join(dbPath, "state", "tmp")} {
		fi, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing dir %s: %v", p, err)
		}
		if !fi.IsDir() {
			t.Fatalf("not a directory: %s", p)
		}
		if fi.Mode().Perm()&0o022 != 0 {
			t.Fatalf("permissive mode on %s: %v", p, fi.Mode())
		}
	}

	// idempotent on an existing layout
	if err := EnsureStateDirs(dbPath); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
}

func TestEnsureStateDirsRejectsSymlink(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(root, "db")
	target := filepath.Join(root, "elsewhere")
	if err := os.MkdirAll(target, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(dbPath, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(dbPath, "store")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}
	if err := EnsureStateDirs(dbPath); err == nil {
		t.Fatal("symlinked store dir must be rejected")
	}
}

func TestEnsureStateDirsRejectsFile(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(root, "db")
	if err := os.MkdirAll(dbPath, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dbPath, "store"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := EnsureStateDirs(dbPath); err == nil {
		t.Fatal("plain file at store path must be rejected")
	}
}
