package plugins

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"text/template"

	"github.com/egeskov-group/odooctl/internal/config"
	"github.com/egeskov-group/odooctl/internal/registry"
)

// argvData is the template context for descriptor exec elements:
// the resolved configuration plus the positional CLI arguments.
type argvData struct {
	*config.Config
	// Args is the positional arguments joined with spaces, for use
	// inside a larger element such as "--modules={{.Args}}".
	Args string
}

// ExpandArgv renders the argv template of a plugin command. Elements
// may reference resolved configuration, e.g. {{.Deploy.Server}}, and
// the positional CLI arguments through {{.Args}}. An element that is
// exactly {{.Args}} is spliced into one argv element per argument.
// When no element references .Args, the arguments are appended after
// the template elements instead.
func ExpandArgv(spec []string, cfg *config.Config, args []string) ([]string, error) {
	data := argvData{Config: cfg, Args: strings.Join(args, " ")}
	argv := make([]string, 0, len(spec)+len(args))
	usedArgs := false
	for _, element := range spec {
		if !strings.Contains(element, "{{") {
			argv = append(argv, element)
			continue
		}
		if trimmed := strings.TrimSpace(element); trimmed == "{{.Args}}" || trimmed == "{{ .Args }}" {
			usedArgs = true
			argv = append(argv, args...)
			continue
		}
		tmpl, err := template.New("argv").Option("missingkey=error").Parse(element)
		if err != nil {
			return nil, fmt.Errorf("parsing argv template %q: %w", element, err)
		}
		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			return nil, fmt.Errorf("expanding argv template %q: %w", element, err)
		}
		if strings.Contains(element, ".Args") {
			usedArgs = true
		}
		argv = append(argv, b.String())
	}
	if usedArgs {
		return argv, nil
	}
	return append(argv, args...), nil
}

// Run executes a plugin command with stdio passed through, blocking
// until it exits.
func Run(ctx context.Context, cmd *registry.Command, cfg *config.Config, args []string) error {
	argv, err := ExpandArgv(cmd.Exec, cfg, args)
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		return fmt.Errorf("plugin command %q has an empty argv", cmd.Name)
	}

	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)
	proc.Stdin = os.Stdin
	proc.Stdout = os.Stdout
	proc.Stderr = os.Stderr
	if err := proc.Run(); err != nil {
		return fmt.Errorf("plugin command %q: %w", cmd.Name, err)
	}
	return nil
}
