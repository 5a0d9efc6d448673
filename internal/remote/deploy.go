package remote

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
	"github.com/egeskov-group/odooctl/internal/logging"
	"github.com/egeskov-group/odooctl/internal/scaffolding"
)

// ManifestFile marks a directory as an Odoo module.
const ManifestFile = "__manifest__.py"

// installScript is rendered and piped into odoo-bin shell on the
// instance to install or upgrade the deployed modules.
const installScript = `
import sys
import os

custom_path = os.path.expanduser("{{ .RemotePath }}")
if custom_path not in sys.path:
    sys.path.insert(0, custom_path)

env["ir.module.module"].update_list()

module_names = [{{ range $i, $name := .Modules }}{{ if $i }}, {{ end }}"{{ $name }}"{{ end }}]
for module_name in module_names:
    print("Processing module: %s" % module_name)
    module = env["ir.module.module"].search([("name", "=", module_name)], limit=1)
    if module:
        if module.state == "installed":
            print("Module %s is already installed. Upgrading..." % module_name)
            module.button_immediate_upgrade()
        else:
            print("Installing module %s..." % module_name)
            module.button_immediate_install()
    else:
        print("Module %s not found. Please check the module name." % module_name)
    print("-" * 50)

env.cr.commit()
print("All modules processed successfully!")
`

// DeployOptions configures one deploy run.
type DeployOptions struct {
	// Modules is a comma-separated list of module paths, or "all" to
	// deploy every module in the working directory.
	Modules    string
	Database   string
	RemotePath string
	// ServiceConf is the remote odoo configuration file passed to
	// odoo-bin shell.
	ServiceConf string
	Force       bool
}

// Deployer transfers modules to an instance and installs them.
type Deployer struct {
	client   *Client
	renderer *scaffolding.Renderer
	logger   logging.Logger
	allowed  []string
}

// NewDeployer creates a deployer for the given client.
func NewDeployer(client *Client, renderer *scaffolding.Renderer, allowed []string, logger logging.Logger) *Deployer {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Deployer{
		client:   client,
		renderer: renderer,
		logger:   logger.WithComponent("deploy"),
		allowed:  allowed,
	}
}

// ResolveModules expands the modules argument into a list of local
// module paths. "all" selects every directory in the working directory
// that contains a manifest; otherwise the comma-separated paths must
// each exist and carry a manifest.
func ResolveModules(modules string) ([]string, error) {
	if strings.EqualFold(modules, "all") {
		entries, err := os.ReadDir(".")
		if err != nil {
			return nil, fmt.Errorf("reading working directory: %w", err)
		}
		var paths []string
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(entry.Name(), ManifestFile)); err == nil {
				paths = append(paths, entry.Name())
			}
		}
		if len(paths) == 0 {
			return nil, cerrors.New(cerrors.CodeInvalidArgument, "deploy",
				"no Odoo modules found in the current directory")
		}
		return paths, nil
	}

	var paths []string
	for _, p := range strings.Split(modules, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return nil, cerrors.New(cerrors.CodeInvalidArgument, "deploy",
				"module path does not exist: %s", p)
		}
		if _, err := os.Stat(filepath.Join(p, ManifestFile)); err != nil {
			return nil, cerrors.New(cerrors.CodeInvalidArgument, "deploy",
				"not a valid Odoo module (no %s): %s", ManifestFile, p)
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, cerrors.New(cerrors.CodeInvalidArgument, "deploy", "no modules given")
	}
	return paths, nil
}

// Deploy transfers the resolved modules, restarts the instance service
// and installs or upgrades the modules through odoo-bin shell.
func (d *Deployer) Deploy(ctx context.Context, opts DeployOptions) error {
	if err := CheckEnvironment(d.client.Host, d.allowed, opts.Force); err != nil {
		return err
	}

	modulePaths, err := ResolveModules(opts.Modules)
	if err != nil {
		return err
	}

	database := opts.Database
	if database == "" {
		database = d.client.User
	}

	moduleNames := make([]string, 0, len(modulePaths))
	for _, modulePath := range modulePaths {
		moduleNames = append(moduleNames, filepath.Base(modulePath))
	}

	for i, modulePath := range modulePaths {
		name := moduleNames[i]
		d.logger.Info(ctx, "transferring module", "module", name, "server", d.client.Host)

		remoteDir := path.Join(opts.RemotePath, name)
		if err := d.client.EnsureDir(ctx, remoteDir); err != nil {
			return err
		}
		if err := d.client.CopyModule(ctx, modulePath, remoteDir); err != nil {
			return err
		}
	}

	if err := d.client.RestartService(ctx, database+".service"); err != nil {
		return err
	}

	script, err := d.renderer.RenderString(installScript, map[string]interface{}{
		"RemotePath": opts.RemotePath,
		"Modules":    moduleNames,
	})
	if err != nil {
		return fmt.Errorf("rendering install script: %w", err)
	}

	d.logger.Info(ctx, "installing modules", "modules", strings.Join(moduleNames, ","), "database", database)
	if err := d.client.RunShellScript(ctx, database, opts.ServiceConf, script); err != nil {
		return err
	}

	d.logger.Info(ctx, "deploy finished", "modules", strings.Join(moduleNames, ","), "server", d.client.Host)
	return nil
}
