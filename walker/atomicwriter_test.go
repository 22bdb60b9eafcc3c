package walker

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestDefaultAtomicConfig(t *testing.T) {
	config := DefaultAtomicConfig()

	if config.TempSuffix != ".sg.tmp" {
		t.Errorf("expected TempSuffix '.sg.tmp', got %q", config.TempSuffix)
	}
	if !config.BackupOriginal {
		t.Error("expected BackupOriginal true by default")
	}
	if config.UseFsync {
		t.Error("expected UseFsync false by default")
	}
	if config.LockTimeout != 5*time.Second {
		t.Errorf("expected LockTimeout 5s, got %v", config.LockTimeout)
	}
}

// a fixer writing a brand-new file (e.g. a generated rule scaffold) should
// not leave a stray .bak behind - there is nothing to back up.
func TestAtomicWriter_WriteFile_NewFileNoBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rewritten.go")

	aw := NewAtomicWriter(DefaultAtomicConfig())
	if err := aw.WriteFile(path, "package main\n"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "package main\n" {
		t.Errorf("unexpected content %q", data)
	}
	if backups, _ := filepath.Glob(path + ".bak*"); len(backups) != 0 {
		t.Errorf("expected no backup for a file that did not previously exist, got %v", backups)
	}
}

// this is the actual fix-writeback shape: a rule rewrites an existing file
// in place, and the pre-rewrite source must survive as a timestamped backup.
func TestAtomicWriter_WriteFile_BacksUpExistingFileBeforeRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "service.go")
	original := "func old() {}\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	aw := NewAtomicWriter(DefaultAtomicConfig())
	rewritten := "func renamed() {}\n"
	if err := aw.WriteFile(path, rewritten); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != rewritten {
		t.Errorf("expected rewritten content, got %q", data)
	}

	matches, _ := filepath.Glob(path + ".bak.*")
	if len(matches) != 1 {
		t.Fatalf("expected exactly one timestamped backup, got %v", matches)
	}
	backup, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != original {
		t.Errorf("backup should hold the pre-rewrite source, got %q", backup)
	}
}

func TestAtomicWriter_WriteFile_PreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tight.go")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	config := DefaultAtomicConfig()
	config.BackupOriginal = false
	aw := NewAtomicWriter(config)
	if err := aw.WriteFile(path, "y"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600 preserved, got %v", info.Mode().Perm())
	}
}

// two rules firing on the same file (e.g. scan.go running several rule
// cores against one scanner result set) must not interleave their writes.
func TestAtomicWriter_WriteFile_ConcurrentWritersDoNotInterleave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shared.go")

	config := DefaultAtomicConfig()
	config.BackupOriginal = false
	aw := NewAtomicWriter(config)

	contentA := strings.Repeat("A", 4096) + "\n"
	contentB := strings.Repeat("B", 4096) + "\n"

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = aw.WriteFile(path, contentA) }()
	go func() { defer wg.Done(); _ = aw.WriteFile(path, contentB) }()
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != contentA && string(data) != contentB {
		t.Errorf("file content is neither full write: got %d bytes starting %q", len(data), data[:16])
	}
}

func TestAtomicWriter_WriteFile_StaleLockIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stale.go")
	lockPath := path + ".lock"
	if err := os.WriteFile(lockPath, []byte("999999999\n"), 0o644); err != nil {
		t.Fatalf("seed stale lock: %v", err)
	}

	aw := NewAtomicWriter(DefaultAtomicConfig())
	if err := aw.WriteFile(path, "content"); err != nil {
		t.Fatalf("expected stale lock to be reclaimed, got error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestAtomicWriter_WriteFile_InvalidDirectory(t *testing.T) {
	aw := NewAtomicWriter(DefaultAtomicConfig())
	err := aw.WriteFile("/nonexistent/directory/out.go", "content")
	if err == nil {
		t.Error("expected an error writing into a missing directory")
	}
}

func TestAtomicWriter_Cleanup_AllowsFurtherWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cleanup.go")

	aw := NewAtomicWriter(DefaultAtomicConfig())
	if err := aw.WriteFile(path, "first"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	aw.Cleanup()
	if err := aw.WriteFile(path, "second"); err != nil {
		t.Fatalf("WriteFile after Cleanup: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("expected 'second', got %q", data)
	}
}
