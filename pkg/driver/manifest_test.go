package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: calc-tools
main: src/main.rpn
trace: true
repl:
  prompt: "calc> "
  history: .rpn_history
prelude:
  - lib/words.rpn
  - name: shared-words
    git: https://example.com/words.git
    tag: v1.0.0
    path: words.rpn
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}

	if got, want := manifest.Name, "calc_tools"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if !manifest.Trace {
		t.Fatalf("Trace = false, want true")
	}
	if manifest.Repl.Prompt != "calc> " || manifest.Repl.History != ".rpn_history" {
		t.Fatalf("Repl settings unexpected: %#v", manifest.Repl)
	}
	mainPath, ok := manifest.MainPath()
	if !ok || mainPath != filepath.Join(manifest.Dir(), "src", "main.rpn") {
		t.Fatalf("MainPath = %q (%v)", mainPath, ok)
	}
	if len(manifest.Preludes) != 2 {
		t.Fatalf("Preludes = %#v, want 2 entries", manifest.Preludes)
	}

	local := manifest.Preludes[0]
	if local.IsGit() || local.Path != filepath.Join(manifest.Dir(), "lib", "words.rpn") {
		t.Fatalf("local prelude not resolved: %#v", local)
	}
	remote := manifest.Preludes[1]
	if !remote.IsGit() || remote.Name != "shared_words" || remote.Tag != "v1.0.0" || remote.Path != "words.rpn" {
		t.Fatalf("git prelude not captured: %#v", remote)
	}
	if !manifest.HasGitPreludes() {
		t.Fatalf("HasGitPreludes = false")
	}
}

func TestLoadManifestPreludeShorthand(t *testing.T) {
	path := writeManifest(t, `
name: demo
prelude: words.rpn
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if len(manifest.Preludes) != 1 || manifest.Preludes[0].Path != filepath.Join(manifest.Dir(), "words.rpn") {
		t.Fatalf("scalar prelude not parsed: %#v", manifest.Preludes)
	}
	if manifest.HasGitPreludes() {
		t.Fatalf("HasGitPreludes = true for local prelude")
	}
	if _, ok := manifest.MainPath(); ok {
		t.Fatalf("MainPath reported a main entry that was never declared")
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
name: ""
prelude:
  - {}
  - name: words
    git: https://example.com/words.git
    path: words.rpn
  - name: other
    git: https://example.com/other.git
    tag: v1
    branch: main
  - path: local.rpn
    rev: abc123
`)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	msg := err.Error()
	wantFragments := []string{
		"name must be provided",
		"prelude[0]: must specify path or git",
		"prelude[1]: git preludes require rev, tag, or branch",
		"prelude[2]: git preludes accept only one of rev, tag, or branch",
		"prelude[3]: rev, tag and branch apply only to git preludes",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("validation error missing fragment %q: %s", fragment, msg)
		}
	}
}

func TestLoadManifestDuplicateGitPrelude(t *testing.T) {
	path := writeManifest(t, `
name: demo
prelude:
  - name: words
    git: https://example.com/a.git
    rev: abc
    path: a.rpn
  - name: words
    git: https://example.com/b.git
    rev: def
    path: b.rpn
`)
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), `prelude[1]: duplicate name "words"`) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
version: "1.0"
`)
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadManifestRejectsUnknownPreludeFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
prelude:
  - name: words
    git: https://example.com/words.git
    rev: abc123
    commit: abc123
    path: words.rpn
`)
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "prelude[0]") || !strings.Contains(err.Error(), "field commit not found") {
		t.Fatalf("expected unknown prelude field error, got %v", err)
	}
}

func TestLoadManifestEmpty(t *testing.T) {
	path := writeManifest(t, "")
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty manifest error, got %v", err)
	}
}

func TestManifestFindPrelude(t *testing.T) {
	path := writeManifest(t, `
name: demo
prelude:
  - name: shared-words
    git: https://example.com/words.git
    rev: abc123
    path: words.rpn
  - local.rpn
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}

	for _, name := range []string{"shared-words", "shared_words", "SHARED-WORDS"} {
		if spec, ok := manifest.FindPrelude(name); !ok || spec.Name != "shared_words" {
			t.Fatalf("FindPrelude(%q) failed: %#v", name, spec)
		}
	}
	if spec, ok := manifest.FindPrelude("missing"); ok || spec != nil {
		t.Fatalf("FindPrelude missing should be nil, got %#v", spec)
	}
}

func TestFindManifestWalksUpwards(t *testing.T) {
	path := writeManifest(t, "name: demo\n")
	nested := filepath.Join(filepath.Dir(path), "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest error: %v", err)
	}
	if found != path {
		t.Fatalf("FindManifest = %q, want %q", found, path)
	}
}

func TestFindManifestNotFound(t *testing.T) {
	_, err := FindManifest(t.TempDir())
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
