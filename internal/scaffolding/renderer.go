// Package scaffolding renders Odoo module skeletons from templates and
// maintains the generated files afterwards: package init files, access
// rule rows and view XML merges.
package scaffolding

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates
var builtinTemplates embed.FS

// Renderer loads and executes skeleton templates. Override directories
// (contributed by plugins) are searched before the embedded set, so a
// plugin can replace any built-in template by shipping a file with the
// same relative path.
type Renderer struct {
	overrides []string
	funcs     template.FuncMap
}

// NewRenderer creates a renderer with the given override directories.
func NewRenderer(overrideDirs ...string) *Renderer {
	return &Renderer{
		overrides: overrideDirs,
		funcs: template.FuncMap{
			"underscore": Underscore,
			"class":      ClassName,
		},
	}
}

// Render loads the named template and executes it with data. Names are
// slash-separated paths relative to the template root, for example
// "skel/module/manifest.py.tmpl".
func (r *Renderer) Render(name string, data interface{}) (string, error) {
	content, err := r.load(name)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(name).Funcs(r.funcs).Parse(content)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", name, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", name, err)
	}
	return b.String(), nil
}

// RenderString executes an inline template string with data. Used for
// the remote odoo-bin shell script.
func (r *Renderer) RenderString(content string, data interface{}) (string, error) {
	tmpl, err := template.New("inline").Funcs(r.funcs).Parse(content)
	if err != nil {
		return "", fmt.Errorf("parsing inline template: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering inline template: %w", err)
	}
	return b.String(), nil
}

func (r *Renderer) load(name string) (string, error) {
	for _, dir := range r.overrides {
		candidate := filepath.Join(dir, filepath.FromSlash(name))
		if data, err := os.ReadFile(candidate); err == nil {
			return string(data), nil
		}
	}

	data, err := builtinTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("template %s not found: %w", name, err)
	}
	return string(data), nil
}
