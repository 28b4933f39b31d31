package modules

import (
	"testing"

	"techtrain_backend/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistered(t *testing.T) (*catalog.Registry, *catalog.Loader) {
	t.Helper()
	reg := catalog.NewRegistry()
	loader := catalog.NewLoader(reg, "", zap.NewNop())
	require.NoError(t, Register(reg, loader))
	return reg, loader
}

func TestRegisterBuiltIns(t *testing.T) {
	reg, loader := newRegistered(t)

	want := []string{
		"cli_diagnostics",
		"ip_configuration",
		"network_file_sharing",
		"powershell_scripting",
	}
	descs := loader.Descriptors()
	require.Len(t, descs, len(want))
	for i, d := range descs {
		assert.Equal(t, want[i], d.ID)
		assert.True(t, reg.HasUnit(d.ID))
		assert.True(t, loader.Loadable(d.ID))
	}
}

func TestBuiltInUnitsLoad(t *testing.T) {
	_, loader := newRegistered(t)

	inst, err := loader.Load("network_file_sharing")
	require.NoError(t, err)

	assert.Equal(t, "network_file_sharing", inst.ModuleID())
	assert.NotEmpty(t, inst.Objectives())
	assert.Len(t, inst.Tasks(), 6)
}

func TestConstructorNamesFollowConvention(t *testing.T) {
	reg, loader := newRegistered(t)

	for _, d := range loader.Descriptors() {
		names := reg.SymbolNames(d.ID)
		require.Len(t, names, 1)
		assert.Equal(t, catalog.UnitClassName(d.ID), names[0])
	}
}

func TestValidateTaskScreenshotEvidence(t *testing.T) {
	_, loader := newRegistered(t)

	inst, err := loader.Load("network_file_sharing")
	require.NoError(t, err)

	err = inst.ValidateTask("open_explorer", nil)
	assert.Error(t, err, "screenshot-required task needs evidence")

	err = inst.ValidateTask("open_explorer", map[string]string{"screenshot": "evidence/explorer.png"})
	assert.NoError(t, err)

	err = inst.ValidateTask("ghost", map[string]string{"screenshot": "x.png"})
	assert.Error(t, err)
}
