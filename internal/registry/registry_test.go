package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	reg := New()

	group := NewGroup("backup", "Backup helpers", "backup.yaml")
	require.NoError(t, reg.Register(group))

	got, ok := reg.Get("backup")
	require.True(t, ok)
	assert.Equal(t, "Backup helpers", got.Help)
	assert.Equal(t, 1, reg.Len())
}

func TestRegisterDuplicateGroup(t *testing.T) {
	reg := New()

	require.NoError(t, reg.Register(NewGroup("backup", "", "")))
	err := reg.Register(NewGroup("backup", "", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestRegisterUnnamedGroup(t *testing.T) {
	reg := New()
	require.Error(t, reg.Register(NewGroup("", "", "")))
}

func TestGroupCommandUniqueness(t *testing.T) {
	group := NewGroup("backup", "", "")

	require.NoError(t, group.AddCommand(&Command{Name: "run", Exec: []string{"true"}}))
	err := group.AddCommand(&Command{Name: "run", Exec: []string{"false"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestGroupsSorted(t *testing.T) {
	reg := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, reg.Register(NewGroup(name, "", "")))
	}

	groups := reg.Groups()
	names := make([]string, len(groups))
	for i, group := range groups {
		names[i] = group.Name
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestSubgroups(t *testing.T) {
	parent := NewGroup("odoo", "", "")
	require.NoError(t, parent.AddGroup(NewGroup("dev", "", "")))
	require.Error(t, parent.AddGroup(NewGroup("dev", "", "")))

	sub, ok := parent.Subgroup("dev")
	require.True(t, ok)
	assert.Equal(t, "dev", sub.Name)

	assert.Len(t, parent.Subgroups(), 1)
}
