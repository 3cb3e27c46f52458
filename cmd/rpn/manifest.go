package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rpn/interpreter-go/pkg/driver"
)

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

// loadOptionalManifest treats a missing manifest as "no project".
func loadOptionalManifest(start string) (*driver.Manifest, error) {
	manifest, err := loadManifestFrom(start)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return manifest, nil
}

func resolveRPNHome() (string, error) {
	if value := strings.TrimSpace(os.Getenv("RPN_HOME")); value != "" {
		abs, err := filepath.Abs(value)
		if err != nil {
			return "", fmt.Errorf("resolve RPN_HOME: %w", err)
		}
		return abs, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".rpn"), nil
}

func lockfilePathFor(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileFileName)
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	path := lockfilePathFor(manifest)
	lock, err := driver.LoadLockfile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load lockfile %s: %w", path, err)
	}
	return lock, nil
}

// resolveProgram maps the manifest's preludes and main entry to concrete files.
func resolveProgram(manifest *driver.Manifest) (*driver.Program, error) {
	if manifest == nil {
		return &driver.Program{}, nil
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, err
	}
	var cacheDir string
	if manifest.HasGitPreludes() {
		if cacheDir, err = resolveRPNHome(); err != nil {
			return nil, err
		}
	}
	return driver.NewLoader(cacheDir).Resolve(manifest, lock)
}
