package remote

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/egeskov-group/odooctl/internal/errors"
	"github.com/egeskov-group/odooctl/internal/scaffolding"
)

var testAllowed = []string{"test", "dev", "dev2", "upgrade"}

func makeModule(t *testing.T, dir, name string) string {
	t.Helper()
	moduleDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(moduleDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, ManifestFile), []byte("{}\n"), 0o644))
	return moduleDir
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldDir) })
}

func TestResolveModulesAll(t *testing.T) {
	tempDir := t.TempDir()
	makeModule(t, tempDir, "mod_a")
	makeModule(t, tempDir, "mod_b")
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "not_a_module"), 0o755))
	chdir(t, tempDir)

	paths, err := ResolveModules("all")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mod_a", "mod_b"}, paths)
}

func TestResolveModulesExplicitPaths(t *testing.T) {
	tempDir := t.TempDir()
	modA := makeModule(t, tempDir, "mod_a")

	paths, err := ResolveModules(modA)
	require.NoError(t, err)
	assert.Equal(t, []string{modA}, paths)
}

func TestResolveModulesMissingPath(t *testing.T) {
	_, err := ResolveModules("/does/not/exist")
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.CodeInvalidArgument))
}

func TestResolveModulesMissingManifest(t *testing.T) {
	tempDir := t.TempDir()
	bare := filepath.Join(tempDir, "bare")
	require.NoError(t, os.MkdirAll(bare, 0o755))

	_, err := ResolveModules(bare)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ManifestFile)
}

func newTestDeployer(t *testing.T, server string) (*Deployer, *fakeRunner) {
	t.Helper()
	runner := &fakeRunner{}
	client, err := NewClient("jane", server, runner, nil)
	require.NoError(t, err)
	return NewDeployer(client, scaffolding.NewRenderer(), testAllowed, nil), runner
}

func TestDeployRefusedOnProductionServer(t *testing.T) {
	tempDir := t.TempDir()
	makeModule(t, tempDir, "mod_a")
	chdir(t, tempDir)

	deployer, runner := newTestDeployer(t, "prod.example.com")
	err := deployer.Deploy(context.Background(), DeployOptions{Modules: "mod_a"})
	require.Error(t, err)
	assert.True(t, cerrors.IsCode(err, cerrors.CodeRemoteGuard))
	assert.Empty(t, runner.calls, "no remote command may run when the guard rejects")
}

func TestDeployForcedOnProductionServer(t *testing.T) {
	tempDir := t.TempDir()
	makeModule(t, tempDir, "mod_a")
	chdir(t, tempDir)

	deployer, runner := newTestDeployer(t, "prod.example.com")
	opts := DeployOptions{
		Modules:     "mod_a",
		RemotePath:  "~/src/custom",
		ServiceConf: ".config/odoo/odoo.conf",
		Force:       true,
	}
	require.NoError(t, deployer.Deploy(context.Background(), opts))
	assert.NotEmpty(t, runner.calls)
}

func TestDeploySequence(t *testing.T) {
	tempDir := t.TempDir()
	makeModule(t, tempDir, "mod_a")
	chdir(t, tempDir)

	deployer, runner := newTestDeployer(t, "dev2.example.com")
	opts := DeployOptions{
		Modules:     "mod_a",
		Database:    "staging",
		RemotePath:  "~/src/custom",
		ServiceConf: ".config/odoo/odoo.conf",
	}
	require.NoError(t, deployer.Deploy(context.Background(), opts))

	require.Len(t, runner.calls, 4)
	assert.Equal(t, "mkdir -p ~/src/custom/mod_a", runner.calls[0][2])
	assert.Equal(t, []string{
		"scp", "-r",
		filepath.Join("mod_a", ManifestFile),
		"jane@dev2.example.com:~/src/custom/mod_a/",
	}, runner.calls[1])
	assert.Equal(t, "sudo systemctl restart staging.service", runner.calls[2][2])
	assert.Contains(t, runner.calls[3][2], "odoo-bin shell")
	assert.Contains(t, runner.calls[3][2], "-d staging")
}

func TestDeployCopiesModuleContentsNotDirectory(t *testing.T) {
	tempDir := t.TempDir()
	moduleDir := makeModule(t, tempDir, "mod_a")
	require.NoError(t, os.MkdirAll(filepath.Join(moduleDir, "models"), 0o755))
	chdir(t, tempDir)

	deployer, runner := newTestDeployer(t, "dev2.example.com")
	opts := DeployOptions{
		Modules:     "mod_a",
		RemotePath:  "~/src/custom",
		ServiceConf: ".config/odoo/odoo.conf",
	}
	require.NoError(t, deployer.Deploy(context.Background(), opts))

	scpCall := runner.calls[1]
	require.Equal(t, "scp", scpCall[0])
	// Each source must be an entry inside the module, never the bare
	// module directory: the remote directory already exists, and scp
	// would place the module at mod_a/mod_a otherwise.
	assert.NotContains(t, scpCall, "mod_a")
	for _, src := range scpCall[2 : len(scpCall)-1] {
		assert.True(t, strings.HasPrefix(src, "mod_a"+string(filepath.Separator)),
			"source %q is not inside the module", src)
	}
	assert.Equal(t, "jane@dev2.example.com:~/src/custom/mod_a/", scpCall[len(scpCall)-1])
}

func TestDeployDatabaseDefaultsToUser(t *testing.T) {
	tempDir := t.TempDir()
	makeModule(t, tempDir, "mod_a")
	chdir(t, tempDir)

	deployer, runner := newTestDeployer(t, "dev2.example.com")
	opts := DeployOptions{
		Modules:     "mod_a",
		RemotePath:  "~/src/custom",
		ServiceConf: ".config/odoo/odoo.conf",
	}
	require.NoError(t, deployer.Deploy(context.Background(), opts))

	var restart string
	for _, call := range runner.calls {
		if strings.Contains(strings.Join(call, " "), "systemctl restart") {
			restart = call[2]
		}
	}
	assert.Equal(t, "sudo systemctl restart jane.service", restart)
}

func TestDeployMultipleModules(t *testing.T) {
	tempDir := t.TempDir()
	makeModule(t, tempDir, "mod_a")
	makeModule(t, tempDir, "mod_b")
	chdir(t, tempDir)

	deployer, runner := newTestDeployer(t, "test.example.com")
	opts := DeployOptions{
		Modules:     "all",
		RemotePath:  "~/src/custom",
		ServiceConf: ".config/odoo/odoo.conf",
	}
	require.NoError(t, deployer.Deploy(context.Background(), opts))

	// mkdir+scp per module, then restart and install.
	require.Len(t, runner.calls, 6)
}
