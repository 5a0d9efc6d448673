// Package registry holds the in-memory command tree built at startup.
//
// Built-in commands are wired into cobra directly; the registry tracks
// command groups contributed by plugin descriptors so they can be
// attached to the root command and listed. The tree is built once and
// discarded at process exit.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Command is a single runnable entry inside a group.
type Command struct {
	Name string
	Help string
	// Exec is the argv template executed for this command. The first
	// element is the binary, the rest are arguments which may contain
	// template placeholders expanded at run time.
	Exec []string
	// Source is the descriptor file that contributed this command.
	Source string
}

// Group is a named collection of related subcommands.
type Group struct {
	Name     string
	Help     string
	Source   string
	commands map[string]*Command
	groups   map[string]*Group
}

// NewGroup creates an empty command group.
func NewGroup(name, help, source string) *Group {
	return &Group{
		Name:     name,
		Help:     help,
		Source:   source,
		commands: make(map[string]*Command),
		groups:   make(map[string]*Group),
	}
}

// AddCommand registers a command on the group. Names must be unique
// within the group.
func (g *Group) AddCommand(cmd *Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command in group %q has no name", g.Name)
	}
	if _, exists := g.commands[cmd.Name]; exists {
		return fmt.Errorf("duplicate command %q in group %q", cmd.Name, g.Name)
	}
	g.commands[cmd.Name] = cmd
	return nil
}

// AddGroup nests a subgroup. Names must be unique within the group.
func (g *Group) AddGroup(sub *Group) error {
	if sub.Name == "" {
		return fmt.Errorf("subgroup of %q has no name", g.Name)
	}
	if _, exists := g.groups[sub.Name]; exists {
		return fmt.Errorf("duplicate subgroup %q in group %q", sub.Name, g.Name)
	}
	g.groups[sub.Name] = sub
	return nil
}

// Subgroup returns the nested group with the given name, if present.
func (g *Group) Subgroup(name string) (*Group, bool) {
	sub, ok := g.groups[name]
	return sub, ok
}

// Commands returns the group's commands sorted by name.
func (g *Group) Commands() []*Command {
	cmds := make([]*Command, 0, len(g.commands))
	for _, cmd := range g.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Subgroups returns the nested groups sorted by name.
func (g *Group) Subgroups() []*Group {
	subs := make([]*Group, 0, len(g.groups))
	for _, sub := range g.groups {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs
}

// Registry is the root of the command tree. Single-writer during
// startup discovery; the mutex only guards against accidental misuse.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*Group
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{groups: make(map[string]*Group)}
}

// Register adds a top-level group. Names must be unique.
func (r *Registry) Register(group *Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.Name == "" {
		return fmt.Errorf("group has no name")
	}
	if _, exists := r.groups[group.Name]; exists {
		return fmt.Errorf("duplicate command group %q", group.Name)
	}
	r.groups[group.Name] = group
	return nil
}

// Get returns a registered top-level group.
func (r *Registry) Get(name string) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	group, ok := r.groups[name]
	return group, ok
}

// Groups returns the top-level groups sorted by name.
func (r *Registry) Groups() []*Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make([]*Group, 0, len(r.groups))
	for _, group := range r.groups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// Len returns the number of top-level groups.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}
