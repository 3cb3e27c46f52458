package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ManifestFileName = "rpn.yml"
	LockfileFileName = "rpn.lock"
)

var ErrManifestNotFound = errors.New("rpn.yml not found")

// Manifest represents the parsed contents of rpn.yml.
type Manifest struct {
	Path     string
	Name     string
	Main     string
	Preludes []*PreludeSpec
	Repl     ReplSettings
	Trace    bool
}

// PreludeSpec names a fragment run before the main program. Either Path alone
// (a local file) or Git plus one of Rev, Tag or Branch, with Path inside the checkout.
type PreludeSpec struct {
	Name   string
	Path   string
	Git    string
	Rev    string
	Tag    string
	Branch string
}

// ReplSettings configures the interactive prompt.
type ReplSettings struct {
	Prompt  string
	History string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// IsGit reports whether the prelude is fetched from a git repository.
func (p *PreludeSpec) IsGit() bool {
	return p != nil && p.Git != ""
}

// Label is the name used in messages and lockfile entries.
func (p *PreludeSpec) Label() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	return p.Path
}

// Selector names the git revision a prelude follows, e.g. "tag=v1.0.0".
func (p *PreludeSpec) Selector() string {
	switch {
	case p == nil:
		return ""
	case p.Rev != "":
		return "rev=" + p.Rev
	case p.Tag != "":
		return "tag=" + p.Tag
	case p.Branch != "":
		return "branch=" + p.Branch
	default:
		return ""
	}
}

// SourceDescriptor is the lockfile source string for a git prelude. A change to the
// URL or selector invalidates the pinned commit.
func (p *PreludeSpec) SourceDescriptor() string {
	if !p.IsGit() {
		return ""
	}
	if sel := p.Selector(); sel != "" {
		return fmt.Sprintf("git+%s#%s", p.Git, sel)
	}
	return "git+" + p.Git
}

// LoadManifest parses rpn.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks from start towards the filesystem root looking for rpn.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", ManifestFileName, origin, ErrManifestNotFound)
		}
		dir = parent
	}
}

// Dir is the directory relative manifest paths resolve against.
func (m *Manifest) Dir() string {
	if m == nil || m.Path == "" {
		return ""
	}
	return filepath.Dir(m.Path)
}

// MainPath resolves the main entry relative to the manifest.
func (m *Manifest) MainPath() (string, bool) {
	if m == nil || m.Main == "" {
		return "", false
	}
	return m.resolve(m.Main), true
}

// HasGitPreludes reports whether any prelude needs a lockfile entry.
func (m *Manifest) HasGitPreludes() bool {
	if m == nil {
		return false
	}
	for _, p := range m.Preludes {
		if p.IsGit() {
			return true
		}
	}
	return false
}

// FindPrelude looks up a git prelude by sanitized or original name.
func (m *Manifest) FindPrelude(name string) (*PreludeSpec, bool) {
	if m == nil {
		return nil, false
	}
	key := sanitizeSegment(name)
	for _, p := range m.Preludes {
		if p.IsGit() && strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return nil, false
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	base := m.Dir()
	if base == "" {
		return filepath.Clean(filepath.FromSlash(path))
	}
	return filepath.Join(base, filepath.FromSlash(path))
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	seen := make(map[string]struct{}, len(m.Preludes))
	for idx, p := range m.Preludes {
		if p == nil {
			continue
		}
		for _, issue := range p.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("prelude[%d]: %s", idx, issue))
		}
		if p.IsGit() && p.Name != "" {
			if _, dup := seen[p.Name]; dup {
				errs.Issues = append(errs.Issues, fmt.Sprintf("prelude[%d]: duplicate name %q", idx, p.Name))
			}
			seen[p.Name] = struct{}{}
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (p *PreludeSpec) validate() []string {
	var errs []string
	if p.Git == "" {
		if p.Path == "" {
			errs = append(errs, "must specify path or git")
		}
		if p.Rev != "" || p.Tag != "" || p.Branch != "" {
			errs = append(errs, "rev, tag and branch apply only to git preludes")
		}
		return errs
	}
	if p.Name == "" {
		errs = append(errs, "git preludes require a name")
	}
	if p.Path == "" {
		errs = append(errs, "git preludes require a path inside the repository")
	}
	selectors := 0
	for _, s := range []string{p.Rev, p.Tag, p.Branch} {
		if s != "" {
			selectors++
		}
	}
	switch {
	case selectors == 0:
		errs = append(errs, "git preludes require rev, tag, or branch")
	case selectors > 1:
		errs = append(errs, "git preludes accept only one of rev, tag, or branch")
	}
	return errs
}

type manifestFile struct {
	Name    string      `yaml:"name"`
	Main    string      `yaml:"main"`
	Prelude preludeList `yaml:"prelude"`
	Repl    struct {
		Prompt  string `yaml:"prompt"`
		History string `yaml:"history"`
	} `yaml:"repl"`
	Trace bool `yaml:"trace"`
}

type preludeList []*PreludeSpec

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:  path,
		Name:  sanitizeSegment(mf.Name),
		Main:  strings.TrimSpace(mf.Main),
		Trace: mf.Trace,
		Repl: ReplSettings{
			Prompt:  mf.Repl.Prompt,
			History: strings.TrimSpace(mf.Repl.History),
		},
		Preludes: make([]*PreludeSpec, 0, len(mf.Prelude)),
	}
	for _, p := range mf.Prelude {
		if p == nil {
			continue
		}
		clone := *p
		clone.Name = sanitizeSegment(clone.Name)
		if !clone.IsGit() && clone.Path != "" {
			clone.Path = result.resolve(clone.Path)
		}
		result.Preludes = append(result.Preludes, &clone)
	}
	return result
}

func (l *preludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		var spec PreludeSpec
		if err := spec.unmarshalYAML(value); err != nil {
			return err
		}
		*l = preludeList{&spec}
		return nil
	case yaml.SequenceNode:
		items := make(preludeList, 0, len(value.Content))
		for idx, node := range value.Content {
			var spec PreludeSpec
			if err := spec.unmarshalYAML(node); err != nil {
				return fmt.Errorf("manifest: prelude[%d]: %w", idx, err)
			}
			items = append(items, &spec)
		}
		*l = items
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("manifest: expected string or sequence for prelude but found %s", value.ShortTag())
	}
}

func (p *PreludeSpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*p = PreludeSpec{Path: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Name   string `yaml:"name"`
			Path   string `yaml:"path"`
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
		}
		if err := checkPreludeKeys(value); err != nil {
			return err
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*p = PreludeSpec{
			Name:   strings.TrimSpace(raw.Name),
			Path:   strings.TrimSpace(raw.Path),
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
		}
		return nil
	case yaml.AliasNode:
		return p.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

var preludeKeys = map[string]struct{}{
	"name": {}, "path": {}, "git": {}, "rev": {}, "tag": {}, "branch": {},
}

// checkPreludeKeys rejects unknown keys; Node.Decode ignores the KnownFields
// setting of the outer decoder.
func checkPreludeKeys(mapping *yaml.Node) error {
	for idx := 0; idx+1 < len(mapping.Content); idx += 2 {
		key := mapping.Content[idx]
		if _, ok := preludeKeys[key.Value]; !ok {
			return fmt.Errorf("line %d: field %s not found in prelude entry", key.Line, key.Value)
		}
	}
	return nil
}

func sanitizeSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "-", "_")
	return seg
}
