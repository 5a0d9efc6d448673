// Package plugins discovers command groups from descriptor files.
//
// A plugin is a YAML descriptor in the commands directory declaring a
// command group and its runnable commands. A descriptor at the top
// level of the directory becomes a top-level group named after the
// file; a descriptor in a subdirectory is nested under a group named
// after that directory. Descriptors without a commands list are
// skipped with a diagnostic, as are descriptors that fail to parse;
// a bad plugin never aborts discovery.
package plugins

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
	"github.com/egeskov-group/odooctl/internal/logging"
	"github.com/egeskov-group/odooctl/internal/registry"
)

// Descriptor is the on-disk format of a plugin file.
type Descriptor struct {
	Name     string        `yaml:"name"`
	Help     string        `yaml:"help"`
	Commands []CommandSpec `yaml:"commands"`
}

// CommandSpec declares one runnable command inside a descriptor.
type CommandSpec struct {
	Name string   `yaml:"name"`
	Help string   `yaml:"help"`
	Exec []string `yaml:"exec"`
}

// SkippedFile records a descriptor that was not registered and why.
// Descriptor-level problems carry the PLUGIN_DESCRIPTOR_INVALID code.
type SkippedFile struct {
	Path string
	Err  error
}

// Loader walks a commands directory and populates a registry.
type Loader struct {
	dir      string
	registry *registry.Registry
	logger   logging.Logger
	skipped  []SkippedFile
}

// NewLoader creates a loader for the given commands directory.
func NewLoader(dir string, reg *registry.Registry, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Loader{
		dir:      dir,
		registry: reg,
		logger:   logger.WithComponent("plugins"),
	}
}

// Registry returns the registry populated by Discover.
func (l *Loader) Registry() *registry.Registry {
	return l.registry
}

// Skipped returns the descriptor files skipped during discovery.
func (l *Loader) Skipped() []SkippedFile {
	return l.skipped
}

// Discover walks the commands directory and registers one command
// group per valid descriptor. A missing directory is not an error:
// plugins are optional.
func (l *Loader) Discover(ctx context.Context) error {
	info, err := os.Stat(l.dir)
	if os.IsNotExist(err) {
		l.logger.Debug(ctx, "commands directory not found", "dir", l.dir)
		return nil
	}
	if err != nil {
		return cerrors.Wrap(err, cerrors.CodePluginDiscovery, "plugins", "stat commands directory")
	}
	if !info.IsDir() {
		return cerrors.New(cerrors.CodePluginDiscovery, "plugins",
			"commands path %s is not a directory", l.dir)
	}

	walkErr := filepath.WalkDir(l.dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		l.loadDescriptor(ctx, path)
		return nil
	})
	if walkErr != nil {
		return cerrors.Wrap(walkErr, cerrors.CodePluginDiscovery, "plugins", "walking commands directory")
	}

	return nil
}

// TemplateDirs returns the template override directories contributed
// by plugins: any templates/ directory directly under a plugin
// subdirectory. Results are in directory order, searched before the
// embedded templates.
func (l *Loader) TemplateDirs() []string {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(l.dir, entry.Name(), "templates")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			dirs = append(dirs, candidate)
		}
	}
	return dirs
}

func (l *Loader) loadDescriptor(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		l.skip(ctx, path, cerrors.Wrap(err, cerrors.CodePluginDescriptor, "", "read failed"))
		return
	}

	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		l.skip(ctx, path, cerrors.Wrap(err, cerrors.CodePluginDescriptor, "", "parse failed"))
		return
	}

	if len(desc.Commands) == 0 {
		l.skip(ctx, path, cerrors.New(cerrors.CodePluginDescriptor, "", "descriptor has no commands"))
		return
	}

	name := desc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	group := registry.NewGroup(name, desc.Help, path)
	for i := range desc.Commands {
		spec := desc.Commands[i]
		if len(spec.Exec) == 0 {
			l.logger.Warn(ctx, nil, "plugin command has no exec, skipping",
				"descriptor", path, "command", spec.Name)
			continue
		}
		cmd := &registry.Command{
			Name:   spec.Name,
			Help:   spec.Help,
			Exec:   spec.Exec,
			Source: path,
		}
		if err := group.AddCommand(cmd); err != nil {
			l.skip(ctx, path, err)
			return
		}
	}
	if len(group.Commands()) == 0 {
		l.skip(ctx, path, cerrors.New(cerrors.CodePluginDescriptor, "", "descriptor has no runnable commands"))
		return
	}

	rel, err := filepath.Rel(l.dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	parts := strings.Split(rel, string(filepath.Separator))

	if len(parts) == 1 {
		if err := l.registry.Register(group); err != nil {
			l.skip(ctx, path, err)
			return
		}
		l.logger.Debug(ctx, "registered top-level command group", "group", name, "descriptor", path)
		return
	}

	// Descriptor in a subdirectory: nest under a group named after
	// the first path segment, creating it on demand.
	parentName := parts[0]
	parent, ok := l.registry.Get(parentName)
	if !ok {
		parent = registry.NewGroup(parentName, fmt.Sprintf("Commands for %s", parentName), "")
		if err := l.registry.Register(parent); err != nil {
			l.skip(ctx, path, err)
			return
		}
	}
	if err := parent.AddGroup(group); err != nil {
		l.skip(ctx, path, err)
		return
	}
	l.logger.Debug(ctx, "registered nested command group",
		"parent", parentName, "group", name, "descriptor", path)
}

func (l *Loader) skip(ctx context.Context, path string, err error) {
	l.skipped = append(l.skipped, SkippedFile{Path: path, Err: err})
	l.logger.Debug(ctx, "skipping plugin descriptor", "descriptor", path, "reason", err.Error())
}
