package native

import (
	"os"
	"path/filepath"
	"testing"
)

func stageFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("lib"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestRegistryRegisterDelete(t *testing.T) {
	r := NewRegistry()
	p := filepath.Join(t.TempDir(), "libx.so")
	stageFile(t, p)

	r.Register(p)
	if !r.Contains(p) || r.Len() != 1 {
		t.Fatalf("Contains=%v Len=%d", r.Contains(p), r.Len())
	}
	if err := r.Delete(p); err != nil {
		t.Fatal(err)
	}
	if r.Contains(p) {
		t.Fatal("still registered after Delete")
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("file survived Delete: %v", err)
	}
	// Deleting a missing file is fine.
	if err := r.Delete(p); err != nil {
		t.Fatal(err)
	}
}

func TestRegistryDrainRemovesFilesAndEmptyDirs(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "task1", "liba.so")
	b := filepath.Join(root, "task1", "libb.so")
	c := filepath.Join(root, "task2", "libc.so")
	keep := filepath.Join(root, "task2", "unrelated.txt")
	for _, p := range []string{a, b, c} {
		stageFile(t, p)
	}
	stageFile(t, keep)

	r := NewRegistry()
	r.Register(a)
	r.Register(b)
	r.Register(c)
	r.Drain()

	for _, p := range []string{a, b, c} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s survived Drain: %v", p, err)
		}
	}
	// task1 became empty and must be gone; task2 still has a file.
	if _, err := os.Stat(filepath.Join(root, "task1")); !os.IsNotExist(err) {
		t.Fatalf("empty dir survived Drain: %v", err)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len after Drain = %d", r.Len())
	}
}

func TestRegistryRegisterAfterDrainRemovesImmediately(t *testing.T) {
	r := NewRegistry()
	r.Drain()

	p := filepath.Join(t.TempDir(), "liblate.so")
	stageFile(t, p)
	r.Register(p)

	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("late registration not removed: %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d", r.Len())
	}
}

func TestRegistryDrainIsOneShot(t *testing.T) {
	r := NewRegistry()
	p := filepath.Join(t.TempDir(), "libx.so")
	r.Register(p)
	r.Drain()
	r.Drain()
}
