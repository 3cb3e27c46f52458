package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Lockfile models the rpn.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Preludes  []*LockedPrelude
}

// LockedPrelude pins a git prelude to the commit it resolved to.
type LockedPrelude struct {
	Name     string
	Source   string
	Commit   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Preludes:  []*LockedPrelude{},
	}
}

// LoadLockfile parses rpn.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	if lock.Generated == "" {
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the pinned entry for a prelude name.
func (l *Lockfile) Find(name string) (*LockedPrelude, bool) {
	if l == nil {
		return nil, false
	}
	key := sanitizeSegment(name)
	for _, entry := range l.Preludes {
		if entry != nil && entry.Name == key {
			return entry, true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends a new one.
func (l *Lockfile) Upsert(entry *LockedPrelude) {
	if l == nil || entry == nil {
		return
	}
	entry.Name = sanitizeSegment(entry.Name)
	for idx, existing := range l.Preludes {
		if existing != nil && existing.Name == entry.Name {
			l.Preludes[idx] = entry
			return
		}
	}
	l.Preludes = append(l.Preludes, entry)
}

// Prune drops entries whose names are not in keep.
func (l *Lockfile) Prune(keep map[string]struct{}) {
	if l == nil {
		return
	}
	kept := l.Preludes[:0]
	for _, entry := range l.Preludes {
		if entry == nil {
			continue
		}
		if _, ok := keep[entry.Name]; ok {
			kept = append(kept, entry)
		}
	}
	l.Preludes = kept
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	for _, entry := range l.Preludes {
		if entry == nil {
			continue
		}
		entry.Name = sanitizeSegment(entry.Name)
		entry.Source = strings.TrimSpace(entry.Source)
		entry.Commit = strings.TrimSpace(entry.Commit)
		entry.Checksum = strings.TrimSpace(entry.Checksum)
	}
	sort.SliceStable(l.Preludes, func(i, j int) bool {
		if l.Preludes[i] == nil || l.Preludes[j] == nil {
			return l.Preludes[j] == nil && l.Preludes[i] != nil
		}
		return l.Preludes[i].Name < l.Preludes[j].Name
	})
}

func (l *Lockfile) toDisk() lockfileDisk {
	entries := make([]lockfilePrelude, 0, len(l.Preludes))
	for _, entry := range l.Preludes {
		if entry == nil {
			continue
		}
		entries = append(entries, lockfilePrelude{
			Name:     entry.Name,
			Source:   entry.Source,
			Commit:   entry.Commit,
			Checksum: entry.Checksum,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Preludes:  entries,
	}
}

type lockfileDisk struct {
	Root      string            `yaml:"root"`
	Generated string            `yaml:"generated"`
	Tool      string            `yaml:"tool"`
	Preludes  []lockfilePrelude `yaml:"preludes"`
}

type lockfilePrelude struct {
	Name     string `yaml:"name"`
	Source   string `yaml:"source"`
	Commit   string `yaml:"commit"`
	Checksum string `yaml:"checksum,omitempty"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      d.Root,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Preludes:  make([]*LockedPrelude, 0, len(d.Preludes)),
	}
	for _, entry := range d.Preludes {
		lock.Preludes = append(lock.Preludes, &LockedPrelude{
			Name:     entry.Name,
			Source:   entry.Source,
			Commit:   entry.Commit,
			Checksum: entry.Checksum,
		})
	}
	lock.normalize()
	return lock
}
