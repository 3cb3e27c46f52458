package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPreludeNotInstalled reports a git prelude missing from the lockfile or cache.
var ErrPreludeNotInstalled = errors.New("prelude not installed")

// Source is one script file queued for execution.
type Source struct {
	Name string
	Path string
}

// Program lists the files of a run in execution order: preludes first, then the entry.
type Program struct {
	Manifest *Manifest
	Preludes []Source
	Entry    *Source
}

// Files returns every source in execution order.
func (p *Program) Files() []Source {
	if p == nil {
		return nil
	}
	out := make([]Source, 0, len(p.Preludes)+1)
	out = append(out, p.Preludes...)
	if p.Entry != nil {
		out = append(out, *p.Entry)
	}
	return out
}

// Loader resolves a manifest and its lockfile into concrete source paths.
type Loader struct {
	CacheDir string
}

// NewLoader constructs a loader reading git checkouts from cacheDir.
func NewLoader(cacheDir string) *Loader {
	return &Loader{CacheDir: strings.TrimSpace(cacheDir)}
}

// Load reads the manifest at path plus its sibling rpn.lock, when present.
func (l *Loader) Load(path string) (*Program, error) {
	manifest, err := LoadManifest(path)
	if err != nil {
		return nil, err
	}
	var lock *Lockfile
	lockPath := filepath.Join(manifest.Dir(), LockfileFileName)
	if _, statErr := os.Stat(lockPath); statErr == nil {
		lock, err = LoadLockfile(lockPath)
		if err != nil {
			return nil, err
		}
	} else if !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("lockfile: stat %s: %w", lockPath, statErr)
	}
	return l.Resolve(manifest, lock)
}

// Resolve maps every prelude to a file on disk and checks that each exists.
func (l *Loader) Resolve(manifest *Manifest, lock *Lockfile) (*Program, error) {
	if manifest == nil {
		return nil, fmt.Errorf("loader: nil manifest")
	}
	program := &Program{Manifest: manifest}
	for _, spec := range manifest.Preludes {
		if spec == nil {
			continue
		}
		src, err := l.resolvePrelude(spec, lock)
		if err != nil {
			return nil, err
		}
		program.Preludes = append(program.Preludes, src)
	}
	if mainPath, ok := manifest.MainPath(); ok {
		if err := ensureFile(mainPath); err != nil {
			return nil, fmt.Errorf("loader: main %s: %w", manifest.Main, err)
		}
		program.Entry = &Source{Name: manifest.Name, Path: mainPath}
	}
	return program, nil
}

func (l *Loader) resolvePrelude(spec *PreludeSpec, lock *Lockfile) (Source, error) {
	if !spec.IsGit() {
		if err := ensureFile(spec.Path); err != nil {
			return Source{}, fmt.Errorf("loader: prelude %s: %w", spec.Label(), err)
		}
		return Source{Name: spec.Label(), Path: spec.Path}, nil
	}
	entry, ok := lock.Find(spec.Name)
	if !ok || entry.Commit == "" {
		return Source{}, fmt.Errorf("loader: prelude %q has no lockfile entry; run `rpn deps install`: %w", spec.Name, ErrPreludeNotInstalled)
	}
	if l.CacheDir == "" {
		return Source{}, fmt.Errorf("loader: prelude %q needs a cache directory", spec.Name)
	}
	path := filepath.Join(PreludeCheckoutDir(l.CacheDir, spec.Name, entry.Commit), filepath.FromSlash(spec.Path))
	if err := ensureFile(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Source{}, fmt.Errorf("loader: prelude %q missing from cache at %s; run `rpn deps install`: %w", spec.Name, path, ErrPreludeNotInstalled)
		}
		return Source{}, fmt.Errorf("loader: prelude %q: %w", spec.Name, err)
	}
	return Source{Name: spec.Name, Path: path}, nil
}

// PreludeCacheDir holds every fetched commit of one git prelude.
func PreludeCacheDir(cacheDir, name string) string {
	return filepath.Join(cacheDir, "preludes", sanitizePathSegment(name))
}

// PreludeCheckoutDir is where a git prelude pinned at commit lives inside the cache.
func PreludeCheckoutDir(cacheDir, name, commit string) string {
	return filepath.Join(PreludeCacheDir(cacheDir, name), sanitizePathSegment(commit))
}

func ensureFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func sanitizePathSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
