package scaffolding

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	return NewGenerator(NewRenderer(), nil)
}

func moduleOptions(name string) ModuleOptions {
	return ModuleOptions{
		Name:        name,
		Depends:     []string{"base"},
		OdooVersion: "17.0",
		Author:      "egeskov-group.dk",
		License:     "OPL-1",
	}
}

// listTree returns all files and directories under root as sorted
// slash-separated relative paths, directories suffixed with "/".
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if entry.IsDir() {
			rel += "/"
		}
		paths = append(paths, rel)
		return nil
	})
	require.NoError(t, err)
	sort.Strings(paths)
	return paths
}

func TestModuleMinimal(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	err := gen.Module(context.Background(), tempDir, moduleOptions("my_module"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"__init__.py",
		"__manifest__.py",
	}, listTree(t, filepath.Join(tempDir, "my_module")))
}

func TestModuleWithModels(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	opts := moduleOptions("my_module")
	opts.Models = true
	err := gen.Module(context.Background(), tempDir, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"__init__.py",
		"__manifest__.py",
		"models/",
		"models/__init__.py",
		"security/",
		"security/ir.model.access.csv",
	}, listTree(t, filepath.Join(tempDir, "my_module")))

	manifest, err := os.ReadFile(filepath.Join(tempDir, "my_module", "__manifest__.py"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"security/ir.model.access.csv",`)
	assert.Contains(t, string(manifest), `"version": "17.0.1.0.0"`)

	initFile, err := os.ReadFile(filepath.Join(tempDir, "my_module", "__init__.py"))
	require.NoError(t, err)
	assert.Contains(t, string(initFile), "from . import models")
	assert.NotContains(t, string(initFile), "from . import controllers")
}

func TestModuleAll(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	opts := moduleOptions("my_module")
	opts.EnableAll()
	err := gen.Module(context.Background(), tempDir, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"__init__.py",
		"__manifest__.py",
		"controllers/",
		"controllers/__init__.py",
		"controllers/my_module.py",
		"data/",
		"models/",
		"models/__init__.py",
		"report/",
		"report/__init__.py",
		"security/",
		"security/ir.model.access.csv",
		"static/",
		"static/description/",
		"static/src/",
		"views/",
		"wizard/",
		"wizard/__init__.py",
	}, listTree(t, filepath.Join(tempDir, "my_module")))
}

func TestModuleApplicationFlag(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	opts := moduleOptions("my_app")
	opts.Application = true
	require.NoError(t, gen.Module(context.Background(), tempDir, opts))

	manifest, err := os.ReadFile(filepath.Join(tempDir, "my_app", "__manifest__.py"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"application": True`)
}

func TestModuleExistingDirectory(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "my_module"), 0o755))
	err := gen.Module(context.Background(), tempDir, moduleOptions("my_module"))
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.CodeScaffoldExists))
}

func TestModuleInvalidName(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	for _, name := range []string{"", "My_Module", "9module", "my module", "my.module"} {
		err := gen.Module(context.Background(), tempDir, moduleOptions(name))
		assert.Error(t, err, "name %q", name)
	}
}

func TestEscapingModulePathRejected(t *testing.T) {
	gen := newTestGenerator(t)
	ctx := context.Background()

	assert.Error(t, gen.Controller(ctx, "../outside", "portal"))
	assert.Error(t, gen.Data(ctx, "../outside", "res.partner"))
	assert.Error(t, gen.Model(ctx, "../outside", "my.model", ModelOptions{}))

	_, err := gen.Views(ctx, "../outside", "my.model", ViewOptions{})
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.CodeInvalidArgument))
}

func TestControllerAppendsImport(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	opts := moduleOptions("my_module")
	opts.Controllers = true
	require.NoError(t, gen.Module(context.Background(), tempDir, opts))

	moduleDir := filepath.Join(tempDir, "my_module")
	require.NoError(t, gen.Controller(context.Background(), moduleDir, "portal"))

	assert.FileExists(t, filepath.Join(moduleDir, "controllers", "portal.py"))

	initFile, err := os.ReadFile(filepath.Join(moduleDir, "controllers", "__init__.py"))
	require.NoError(t, err)
	assert.Contains(t, string(initFile), "from . import my_module")
	assert.Contains(t, string(initFile), "from . import portal")

	controller, err := os.ReadFile(filepath.Join(moduleDir, "controllers", "portal.py"))
	require.NoError(t, err)
	assert.Contains(t, string(controller), "class Portal(http.Controller):")
}

func TestDataFile(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	require.NoError(t, gen.Module(context.Background(), tempDir, moduleOptions("my_module")))
	moduleDir := filepath.Join(tempDir, "my_module")

	require.NoError(t, gen.Data(context.Background(), moduleDir, "res.partner"))

	data, err := os.ReadFile(filepath.Join(moduleDir, "data", "res_partner_data.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `model="res.partner"`)
	assert.Contains(t, string(data), `id="res_partner_data"`)
}

func TestModelScaffold(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	opts := moduleOptions("my_module")
	opts.Models = true
	require.NoError(t, gen.Module(context.Background(), tempDir, opts))
	moduleDir := filepath.Join(tempDir, "my_module")

	require.NoError(t, gen.Model(context.Background(), moduleDir, "my.model", ModelOptions{}))

	model, err := os.ReadFile(filepath.Join(moduleDir, "models", "my_model.py"))
	require.NoError(t, err)
	assert.Contains(t, string(model), "class MyModel(models.Model):")
	assert.Contains(t, string(model), `_name = "my.model"`)

	initFile, err := os.ReadFile(filepath.Join(moduleDir, "models", "__init__.py"))
	require.NoError(t, err)
	assert.Contains(t, string(initFile), "from . import my_model")

	access, err := os.ReadFile(filepath.Join(moduleDir, "security", "ir.model.access.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(access)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,model_id:id,group_id:id,perm_read,perm_write,perm_create,perm_unlink", lines[0])
	assert.Equal(t, "access_my_model,my.model,model_my_model,base.group_user,1,1,1,1", lines[1])
}

func TestModelTransientGoesToWizard(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	require.NoError(t, gen.Module(context.Background(), tempDir, moduleOptions("my_module")))
	moduleDir := filepath.Join(tempDir, "my_module")

	require.NoError(t, gen.Model(context.Background(), moduleDir, "my.wizard", ModelOptions{Transient: true}))

	model, err := os.ReadFile(filepath.Join(moduleDir, "wizard", "my_wizard.py"))
	require.NoError(t, err)
	assert.Contains(t, string(model), "models.TransientModel")
	assert.NoFileExists(t, filepath.Join(moduleDir, "models", "my_wizard.py"))
}

func TestModelInheritance(t *testing.T) {
	tempDir := t.TempDir()
	gen := newTestGenerator(t)

	require.NoError(t, gen.Module(context.Background(), tempDir, moduleOptions("my_module")))
	moduleDir := filepath.Join(tempDir, "my_module")

	opts := ModelOptions{Parent: "sale.order", Implements: []string{"mail.thread", "mail.activity.mixin"}}
	require.NoError(t, gen.Model(context.Background(), moduleDir, "sale.order", opts))

	model, err := os.ReadFile(filepath.Join(moduleDir, "models", "sale_order.py"))
	require.NoError(t, err)
	assert.Contains(t, string(model), `_inherit = ["sale.order", "mail.thread", "mail.activity.mixin"]`)
	assert.NotContains(t, string(model), "_name =")
}
