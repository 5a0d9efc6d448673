package scaffolding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
	"github.com/egeskov-group/odooctl/internal/logging"
	"github.com/egeskov-group/odooctl/internal/validation"
)

// AccessFile is the security rule file maintained by the scaffolder.
const AccessFile = "security/ir.model.access.csv"

// ModuleOptions selects which parts of a module skeleton to generate.
type ModuleOptions struct {
	Name        string
	Depends     []string
	OdooVersion string
	Author      string
	License     string

	Controllers bool
	Data        bool
	Models      bool
	Static      bool
	Reports     bool
	Views       bool
	Wizards     bool
	Application bool
}

// EnableAll turns on every skeleton part.
func (o *ModuleOptions) EnableAll() {
	o.Controllers = true
	o.Data = true
	o.Models = true
	o.Static = true
	o.Reports = true
	o.Views = true
	o.Wizards = true
}

func (o *ModuleOptions) needsSecurity() bool {
	return o.Models || o.Reports || o.Wizards
}

// ModelOptions configures a scaffolded model.
type ModelOptions struct {
	// Transient models use models.TransientModel and live under
	// wizard/ instead of models/.
	Transient bool
	// Parent is an existing model to extend via _inherit.
	Parent string
	// Implements lists mixins added to _inherit.
	Implements []string
}

// Generator renders module skeletons and updates generated modules.
type Generator struct {
	renderer *Renderer
	logger   logging.Logger
}

// NewGenerator creates a generator using the given renderer.
func NewGenerator(renderer *Renderer, logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Generator{
		renderer: renderer,
		logger:   logger.WithComponent("scaffolding"),
	}
}

// Module creates a new module skeleton under parentDir. The flag set in
// opts determines exactly which directories and files are produced.
// The target directory must not already exist.
func (g *Generator) Module(ctx context.Context, parentDir string, opts ModuleOptions) error {
	if err := validation.ValidateModuleName(opts.Name); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid module name")
	}

	root := filepath.Join(parentDir, opts.Name)
	if _, err := os.Stat(root); err == nil {
		return cerrors.New(cerrors.CodeScaffoldExists, "scaffold",
			"module directory %s already exists", root).
			WithSuggestions("remove the directory or pick a different module name")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating module directory: %w", err)
	}

	manifest := NewManifest(opts.Name, opts.OdooVersion, opts.Author, opts.License, opts.Depends, opts.Application)
	if opts.needsSecurity() {
		manifest.Data = append(manifest.Data, AccessFile)
	}

	if err := g.writeTemplate(filepath.Join(root, "__manifest__.py"),
		"skel/module/manifest.py.tmpl", manifest); err != nil {
		return err
	}
	if err := g.writeTemplate(filepath.Join(root, "__init__.py"),
		"skel/module/init.py.tmpl", opts); err != nil {
		return err
	}

	if opts.Controllers {
		controllersDir := filepath.Join(root, "controllers")
		if err := os.Mkdir(controllersDir, 0o755); err != nil {
			return fmt.Errorf("creating controllers directory: %w", err)
		}
		if err := g.writeTemplate(filepath.Join(controllersDir, "__init__.py"),
			"skel/module/controllers/init.py.tmpl",
			map[string]string{"Name": opts.Name}); err != nil {
			return err
		}
		if err := g.writeTemplate(filepath.Join(controllersDir, opts.Name+".py"),
			"skel/module/controllers/controller.py.tmpl",
			map[string]string{"Name": opts.Name, "Module": opts.Name}); err != nil {
			return err
		}
	}

	if opts.Data {
		if err := os.Mkdir(filepath.Join(root, "data"), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	if opts.Models {
		modelsDir := filepath.Join(root, "models")
		if err := os.Mkdir(modelsDir, 0o755); err != nil {
			return fmt.Errorf("creating models directory: %w", err)
		}
		if err := g.writeTemplate(filepath.Join(modelsDir, "__init__.py"),
			"skel/module/package_init.py.tmpl", nil); err != nil {
			return err
		}
	}

	if opts.Reports {
		reportDir := filepath.Join(root, "report")
		if err := os.Mkdir(reportDir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
		if err := g.writeTemplate(filepath.Join(reportDir, "__init__.py"),
			"skel/module/package_init.py.tmpl", nil); err != nil {
			return err
		}
	}

	if opts.needsSecurity() {
		securityDir := filepath.Join(root, "security")
		if err := os.Mkdir(securityDir, 0o755); err != nil {
			return fmt.Errorf("creating security directory: %w", err)
		}
		if err := g.writeTemplate(filepath.Join(root, filepath.FromSlash(AccessFile)),
			"skel/module/security/access.csv.tmpl", nil); err != nil {
			return err
		}
	}

	if opts.Static {
		for _, dir := range []string{"static", "static/src", "static/description"} {
			if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
				return fmt.Errorf("creating %s directory: %w", dir, err)
			}
		}
	}

	if opts.Views {
		if err := os.Mkdir(filepath.Join(root, "views"), 0o755); err != nil {
			return fmt.Errorf("creating views directory: %w", err)
		}
	}

	if opts.Wizards {
		wizardDir := filepath.Join(root, "wizard")
		if err := os.Mkdir(wizardDir, 0o755); err != nil {
			return fmt.Errorf("creating wizard directory: %w", err)
		}
		if err := g.writeTemplate(filepath.Join(wizardDir, "__init__.py"),
			"skel/module/package_init.py.tmpl", nil); err != nil {
			return err
		}
	}

	g.logger.Info(ctx, "module scaffolded", "module", opts.Name, "path", root)
	return nil
}

// Controller renders a controller file inside moduleDir/controllers and
// appends the import to the package init file. An empty name defaults
// to the module name.
func (g *Generator) Controller(ctx context.Context, moduleDir, name string) error {
	if err := validation.ValidateLocalPath(moduleDir); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid module path")
	}
	if name == "" {
		name = filepath.Base(moduleDir)
	}
	if err := validation.ValidateModuleName(name); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid controller name")
	}

	controllersDir := filepath.Join(moduleDir, "controllers")
	if err := os.MkdirAll(controllersDir, 0o755); err != nil {
		return fmt.Errorf("creating controllers directory: %w", err)
	}
	if err := g.writeTemplate(filepath.Join(controllersDir, name+".py"),
		"skel/module/controllers/controller.py.tmpl",
		map[string]string{"Name": name, "Module": filepath.Base(moduleDir)}); err != nil {
		return err
	}
	if err := appendLine(filepath.Join(controllersDir, "__init__.py"),
		fmt.Sprintf("from . import %s\n", name)); err != nil {
		return err
	}

	g.logger.Info(ctx, "controller scaffolded", "controller", name, "module", moduleDir)
	return nil
}

// Data renders a data XML file for the given model under
// moduleDir/data.
func (g *Generator) Data(ctx context.Context, moduleDir, model string) error {
	if err := validation.ValidateLocalPath(moduleDir); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid module path")
	}
	if err := validation.ValidateModelName(model); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid model name")
	}

	dataDir := filepath.Join(moduleDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	target := filepath.Join(dataDir, Underscore(model)+"_data.xml")
	if err := g.writeTemplate(target, "skel/module/data/model_data.xml.tmpl",
		map[string]string{"Model": model}); err != nil {
		return err
	}

	g.logger.Info(ctx, "data file scaffolded", "model", model, "path", target)
	return nil
}

// Model renders a model file, appends the import to the package init
// file and appends a default access rule row. Transient models are
// placed under wizard/ instead of models/.
func (g *Generator) Model(ctx context.Context, moduleDir, name string, opts ModelOptions) error {
	if err := validation.ValidateLocalPath(moduleDir); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid module path")
	}
	if err := validation.ValidateModelName(name); err != nil {
		return cerrors.Wrap(err, cerrors.CodeInvalidArgument, "scaffold", "invalid model name")
	}

	targetDir := filepath.Join(moduleDir, "models")
	if opts.Transient {
		targetDir = filepath.Join(moduleDir, "wizard")
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}

	// Extending a parent model drops _name; mixins merge into one
	// _inherit assignment alongside the parent.
	var inherits []string
	if opts.Parent != "" {
		inherits = append(inherits, opts.Parent)
	}
	inherits = append(inherits, opts.Implements...)
	data := map[string]interface{}{
		"Name":      name,
		"Class":     ClassName(name),
		"Transient": opts.Transient,
		"SetName":   opts.Parent == "",
		"Inherits":  inherits,
	}
	if err := g.writeTemplate(filepath.Join(targetDir, Underscore(name)+".py"),
		"skel/module/models/model.py.tmpl", data); err != nil {
		return err
	}
	if err := appendLine(filepath.Join(targetDir, "__init__.py"),
		fmt.Sprintf("from . import %s\n", Underscore(name))); err != nil {
		return err
	}
	if err := g.appendAccessRule(moduleDir, name); err != nil {
		return err
	}

	g.logger.Info(ctx, "model scaffolded", "model", name, "module", moduleDir)
	return nil
}

// appendAccessRule adds a default full-access row for the model to the
// security CSV, creating the file with its header if it is missing.
func (g *Generator) appendAccessRule(moduleDir, model string) error {
	accessPath := filepath.Join(moduleDir, filepath.FromSlash(AccessFile))
	if err := os.MkdirAll(filepath.Dir(accessPath), 0o755); err != nil {
		return fmt.Errorf("creating security directory: %w", err)
	}
	if _, err := os.Stat(accessPath); os.IsNotExist(err) {
		if err := g.writeTemplate(accessPath, "skel/module/security/access.csv.tmpl", nil); err != nil {
			return err
		}
	}

	row, err := g.renderer.Render("skel/module/security/access_rule.csv.tmpl", map[string]interface{}{
		"Model":  model,
		"Group":  "base.group_user",
		"Read":   1,
		"Write":  1,
		"Create": 1,
		"Unlink": 1,
	})
	if err != nil {
		return cerrors.Wrap(err, cerrors.CodeScaffoldRender, "scaffold", "rendering access rule")
	}
	return appendLine(accessPath, row)
}

func (g *Generator) writeTemplate(path, templateName string, data interface{}) error {
	content, err := g.renderer.Render(templateName, data)
	if err != nil {
		return cerrors.Wrap(err, cerrors.CodeScaffoldRender, "scaffold", "rendering %s", templateName)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}
