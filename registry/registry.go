// Package registry implements the §6 registry-discovery contract: resolving
// a list of template specifiers ("registry::path" or a bare local path)
// into a set of .j2 template bodies plus a set of plain file paths,
// walking each resolved directory recursively and skipping .git/. Grounded
// on original_source/src/discovery.rs (Discovery, Registry, Discovered).
//
// Only the local-path variant of a Source is implemented here; the git://
// variant (clone-to-a-digest-named-tempdir, checkout a rev/branch/tag,
// reuse the checkout unless asked to clean) is an external collaborator
// per spec.md and is represented only by the Source interface below.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kstasik/schema-tools/schemaerr"
)

// Discovered is the result of resolving a set of template specifiers: every
// ".j2" file found, keyed by its path relative to the resolved root, plus
// every other file found, keyed the same way but holding its real
// filesystem path (so a caller can copy or read it without re-deriving the
// root).
type Discovered struct {
	Templates map[string]string
	Files     map[string]string
}

// Source resolves a registry name to a local directory on disk. Local is
// the only implementation in this repo; a git-backed Source (clone once
// into a digest-named temp directory keyed by the resolved revspec, reuse
// it unless Clean is requested) is documented here but left to an external
// collaborator, per spec.md's registry non-goal.
type Source interface {
	// Path returns the local directory this source resolves to, fetching
	// or checking it out first if necessary.
	Path() (string, error)
}

// Local is a Source backed by an already-present directory on disk.
type Local struct {
	Dir string
}

// Path returns l.Dir, after confirming it exists and is a directory.
func (l Local) Path() (string, error) {
	info, err := os.Stat(l.Dir)
	if err != nil {
		return "", fmt.Errorf("registry: %w: %v", schemaerr.ErrRegistryNotDirectory, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("registry: %q: %w", l.Dir, schemaerr.ErrRegistryNotDirectory)
	}
	return l.Dir, nil
}

// Discovery holds a set of named registries a template specifier can
// reference via "name::path".
type Discovery struct {
	sources map[string]Source
}

// NewDiscovery returns an empty Discovery.
func NewDiscovery() *Discovery {
	return &Discovery{sources: map[string]Source{}}
}

// Register binds name to source for later specifiers of the form
// "name::path".
func (d *Discovery) Register(name string, source Source) {
	d.sources[name] = source
}

// Resolve walks every specifier in specs (each either "registry::path" or a
// bare filesystem path) and merges their .j2 templates and plain files into
// one Discovered result, later specifiers overwriting earlier ones on key
// collision (walk order mirrors specs order, mirroring the original's
// sequential HashMap inserts).
func (d *Discovery) Resolve(specs []string) (Discovered, error) {
	result := Discovered{Templates: map[string]string{}, Files: map[string]string{}}

	for _, spec := range specs {
		root, err := d.realPath(spec)
		if err != nil {
			return Discovered{}, err
		}

		if err := walk(root, result); err != nil {
			return Discovered{}, err
		}
	}

	return result, nil
}

func (d *Discovery) realPath(spec string) (string, error) {
	parts := strings.SplitN(spec, "::", 2)
	if len(parts) == 2 {
		source, ok := d.sources[parts[0]]
		if !ok {
			return "", fmt.Errorf("registry: unknown registry %q", parts[0])
		}
		base, err := source.Path()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, parts[1]), nil
	}
	return parts[0], nil
}

func walk(root string, result Discovered) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relative = filepath.ToSlash(relative)
		if strings.HasPrefix(relative, ".git/") {
			return nil
		}

		if strings.HasSuffix(relative, ".j2") {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("registry: read template %q: %w", path, err)
			}
			result.Templates[relative] = string(content)
		} else {
			result.Files[relative] = path
		}
		return nil
	})
}
