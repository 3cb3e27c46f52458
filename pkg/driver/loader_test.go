package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoaderResolvesLocalAndGitPreludes(t *testing.T) {
	path := writeManifest(t, `
name: demo
main: main.rpn
prelude:
  - words.rpn
  - name: shared
    git: https://example.com/shared.git
    rev: abc123
    path: lib/shared.rpn
`)
	root := filepath.Dir(path)
	writeFile(t, filepath.Join(root, "main.rpn"), "1 2 + puts")
	writeFile(t, filepath.Join(root, "words.rpn"), "{ 1 + } ")

	cache := t.TempDir()
	checkout := PreludeCheckoutDir(cache, "shared", "deadbeef")
	writeFile(t, filepath.Join(checkout, "lib", "shared.rpn"), "\"shared\" puts")

	lock := NewLockfile("demo", "rpn")
	lock.Upsert(&LockedPrelude{Name: "shared", Source: "git+https://example.com/shared.git", Commit: "deadbeef"})
	if err := WriteLockfile(lock, filepath.Join(root, LockfileFileName)); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}

	program, err := NewLoader(cache).Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	files := program.Files()
	if len(files) != 3 {
		t.Fatalf("Files = %#v, want 3 entries", files)
	}
	want := []string{
		filepath.Join(root, "words.rpn"),
		filepath.Join(checkout, "lib", "shared.rpn"),
		filepath.Join(root, "main.rpn"),
	}
	for idx, src := range files {
		if src.Path != want[idx] {
			t.Fatalf("Files[%d].Path = %q, want %q", idx, src.Path, want[idx])
		}
	}
	if program.Entry == nil || program.Entry.Name != "demo" {
		t.Fatalf("Entry unexpected: %#v", program.Entry)
	}
}

func TestLoaderRequiresLockEntryForGitPrelude(t *testing.T) {
	path := writeManifest(t, `
name: demo
prelude:
  - name: shared
    git: https://example.com/shared.git
    branch: main
    path: shared.rpn
`)
	_, err := NewLoader(t.TempDir()).Load(path)
	if !errors.Is(err, ErrPreludeNotInstalled) {
		t.Fatalf("expected ErrPreludeNotInstalled, got %v", err)
	}
	if !strings.Contains(err.Error(), "rpn deps install") {
		t.Fatalf("error should point at deps install: %v", err)
	}
}

func TestLoaderReportsMissingCheckout(t *testing.T) {
	path := writeManifest(t, `
name: demo
prelude:
  - name: shared
    git: https://example.com/shared.git
    rev: abc
    path: shared.rpn
`)
	lock := NewLockfile("demo", "rpn")
	lock.Upsert(&LockedPrelude{Name: "shared", Commit: "abc"})
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, err = NewLoader(t.TempDir()).Resolve(manifest, lock)
	if !errors.Is(err, ErrPreludeNotInstalled) || !strings.Contains(err.Error(), "missing from cache") {
		t.Fatalf("expected missing cache error, got %v", err)
	}
}

func TestLoaderMissingLocalFiles(t *testing.T) {
	path := writeManifest(t, `
name: demo
main: absent.rpn
`)
	_, err := NewLoader("").Load(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error for main, got %v", err)
	}

	path = writeManifest(t, `
name: demo
prelude: gone.rpn
`)
	_, err = NewLoader("").Load(path)
	if err == nil || !strings.Contains(err.Error(), "prelude") {
		t.Fatalf("expected prelude error, got %v", err)
	}
}

func TestPreludeCheckoutDirSanitizes(t *testing.T) {
	got := PreludeCheckoutDir("/cache", "a/b", "abc:1")
	want := filepath.Join("/cache", "preludes", "a_b", "abc_1")
	if got != want {
		t.Fatalf("PreludeCheckoutDir = %q, want %q", got, want)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
