package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rpn/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "rpn deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "rpn deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsSync(nil, false)
	case "update":
		return runDepsSync(args[1:], true)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// runDepsSync installs every git prelude. With update set, the named preludes (or
// all of them when none are named) are re-resolved instead of reusing pinned commits.
func runDepsSync(targets []string, update bool) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	manifest, err := loadManifestFrom(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cacheDir, err := resolveRPNHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve RPN_HOME: %v\n", err)
		return 1
	}

	refresh := make(map[string]struct{})
	if update {
		for _, target := range targets {
			spec, ok := manifest.FindPrelude(target)
			if !ok {
				fmt.Fprintf(os.Stderr, "git prelude %q not declared in manifest\n", target)
				return 1
			}
			refresh[spec.Name] = struct{}{}
		}
		if len(targets) == 0 {
			for _, spec := range manifest.Preludes {
				if spec.IsGit() {
					refresh[spec.Name] = struct{}{}
				}
			}
		}
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := lockfilePathFor(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath

	installer := newPreludeInstaller(manifest, newGitFetcher(cacheDir), cacheDir)
	changed, logs, err := installer.Install(lock, refresh)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to install preludes: %v\n", err)
		return 1
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		lock.Tool = cliToolVersion
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileFileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileFileName, lock.Path)
	}
	fmt.Fprintln(os.Stdout, "Preludes installed.")
	return 0
}

// preludeFetcher materializes a git prelude into the cache.
type preludeFetcher interface {
	Fetch(spec *driver.PreludeSpec, pin string) (*driver.LockedPrelude, error)
}

type preludeInstaller struct {
	manifest *driver.Manifest
	fetcher  preludeFetcher
	cacheDir string
}

func newPreludeInstaller(manifest *driver.Manifest, fetcher preludeFetcher, cacheDir string) *preludeInstaller {
	return &preludeInstaller{manifest: manifest, fetcher: fetcher, cacheDir: cacheDir}
}

// Install brings lock in line with the manifest and reports whether it changed.
func (in *preludeInstaller) Install(lock *driver.Lockfile, refresh map[string]struct{}) (bool, []string, error) {
	var logs []string
	changed := false
	keep := make(map[string]struct{})

	for _, spec := range in.manifest.Preludes {
		if !spec.IsGit() {
			continue
		}
		keep[spec.Name] = struct{}{}

		pin := ""
		if entry, ok := lock.Find(spec.Name); ok && entry.Source == spec.SourceDescriptor() {
			if _, forced := refresh[spec.Name]; !forced {
				pin = entry.Commit
				if in.checkoutPresent(spec, entry) {
					logs = append(logs, fmt.Sprintf("Using %s @ %s", spec.Name, shortCommit(entry.Commit)))
					continue
				}
			}
		}

		locked, err := in.fetcher.Fetch(spec, pin)
		if err != nil {
			return changed, logs, fmt.Errorf("prelude %q: %w", spec.Name, err)
		}
		logs = append(logs, fmt.Sprintf("Fetched %s @ %s", spec.Name, shortCommit(locked.Commit)))
		if previous, ok := lock.Find(spec.Name); !ok || *previous != *locked {
			changed = true
		}
		lock.Upsert(locked)
	}

	before := len(lock.Preludes)
	lock.Prune(keep)
	if len(lock.Preludes) != before {
		changed = true
	}
	return changed, logs, nil
}

func (in *preludeInstaller) checkoutPresent(spec *driver.PreludeSpec, entry *driver.LockedPrelude) bool {
	if in.cacheDir == "" || entry.Commit == "" {
		return false
	}
	dir := driver.PreludeCheckoutDir(in.cacheDir, spec.Name, entry.Commit)
	if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(spec.Path))); err != nil || info.IsDir() {
		return false
	}
	if entry.Checksum == "" {
		return true
	}
	sum, err := dirChecksum(dir)
	return err == nil && sum == entry.Checksum
}

func shortCommit(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
