package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"rpn/interpreter-go/pkg/driver"
)

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch clones spec.Git, checks out pin (or the manifest's selector when pin is
// empty) and moves the tree to its commit-addressed cache directory.
func (g *gitFetcher) Fetch(spec *driver.PreludeSpec, pin string) (*driver.LockedPrelude, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, fmt.Errorf("git URL required")
	}

	revision, err := gitRevision(spec, pin)
	if err != nil {
		return nil, err
	}

	baseDir := driver.PreludeCacheDir(g.cacheDir, spec.Name)
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return nil, err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("resolve revision %s: %w", revision, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		cleanup()
		return nil, err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		cleanup()
		return nil, fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.RemoveAll(filepath.Join(tmpDir, ".git")); err != nil {
		cleanup()
		return nil, err
	}
	if info, err := os.Stat(filepath.Join(tmpDir, filepath.FromSlash(spec.Path))); err != nil || info.IsDir() {
		cleanup()
		return nil, fmt.Errorf("%s not found in %s at %s", spec.Path, url, hash.String())
	}

	commit := hash.String()
	targetDir := driver.PreludeCheckoutDir(g.cacheDir, spec.Name, commit)
	if err := os.RemoveAll(targetDir); err != nil {
		cleanup()
		return nil, err
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		cleanup()
		return nil, err
	}

	checksum, err := dirChecksum(targetDir)
	if err != nil {
		return nil, err
	}
	return &driver.LockedPrelude{
		Name:     spec.Name,
		Source:   spec.SourceDescriptor(),
		Commit:   commit,
		Checksum: checksum,
	}, nil
}

// gitRevision maps a pinned commit or the manifest selector to a go-git revision.
// Branches resolve through the origin remote since clones only create the default branch locally.
func gitRevision(spec *driver.PreludeSpec, pin string) (plumbing.Revision, error) {
	if pin = strings.TrimSpace(pin); pin != "" {
		return plumbing.Revision(pin), nil
	}
	switch {
	case spec.Rev != "":
		return plumbing.Revision(spec.Rev), nil
	case spec.Tag != "":
		return plumbing.Revision("refs/tags/" + spec.Tag), nil
	case spec.Branch != "":
		return plumbing.Revision("refs/remotes/origin/" + spec.Branch), nil
	default:
		return "", fmt.Errorf("git preludes require rev, tag, or branch")
	}
}

// dirChecksum hashes relative paths and contents of every regular file under root.
func dirChecksum(root string) (string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	h := sha256.New()
	for _, p := range files {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}
