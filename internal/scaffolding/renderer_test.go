package scaffolding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBuiltinTemplate(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render("skel/module/security/access_rule.csv.tmpl", map[string]interface{}{
		"Model":  "res.partner",
		"Group":  "base.group_user",
		"Read":   1,
		"Write":  1,
		"Create": 0,
		"Unlink": 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "access_res_partner,res.partner,model_res_partner,base.group_user,1,1,0,0\n", out)
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("skel/module/nope.tmpl", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRenderOverrideDirectoryWins(t *testing.T) {
	overrideDir := t.TempDir()
	target := filepath.Join(overrideDir, "skel", "module", "package_init.py.tmpl")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("# custom init\n"), 0o644))

	r := NewRenderer(overrideDir)
	out, err := r.Render("skel/module/package_init.py.tmpl", nil)
	require.NoError(t, err)
	assert.Equal(t, "# custom init\n", out)

	// Templates absent from the override directory fall back to the
	// embedded set.
	out, err = r.Render("skel/module/init.py.tmpl", ModuleOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "coding: utf-8")
}

func TestRenderString(t *testing.T) {
	r := NewRenderer()

	out, err := r.RenderString(`hello {{ underscore .Model }}`, map[string]string{"Model": "a.b"})
	require.NoError(t, err)
	assert.Equal(t, "hello a_b", out)
}
