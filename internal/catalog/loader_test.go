package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUnit struct {
	id string
}

func (f *fakeUnit) ModuleID() string        { return f.id }
func (f *fakeUnit) Objectives() []string    { return nil }
func (f *fakeUnit) Tasks() []TaskDescriptor { return nil }
func (f *fakeUnit) ValidateTask(taskID string, evidence map[string]string) error {
	return nil
}

func newTestLoader(t *testing.T, modulesDir string) (*Registry, *Loader) {
	t.Helper()
	reg := NewRegistry()
	return reg, NewLoader(reg, modulesDir, zap.NewNop())
}

func TestLoadConventionalName(t *testing.T) {
	reg, loader := newTestLoader(t, "")
	_, err := loader.RegisterManifest([]byte(`{"id": "net101"}`))
	require.NoError(t, err)

	reg.Register("net101", "Net101Module", func() (interface{}, error) {
		return &fakeUnit{id: "net101"}, nil
	})

	inst, err := loader.Load("net101")
	require.NoError(t, err)
	assert.Equal(t, "net101", inst.ModuleID())
}

func TestLoadFallbackScan(t *testing.T) {
	reg, loader := newTestLoader(t, "")
	_, err := loader.RegisterManifest([]byte(`{"id": "net101"}`))
	require.NoError(t, err)

	// No symbol matches the conventional name; the scan must find the one
	// conforming constructor and skip the helper value.
	reg.RegisterUnit("net101", map[string]Factory{
		"Helper":      func() (interface{}, error) { return "not a module", nil },
		"CustomEntry": func() (interface{}, error) { return &fakeUnit{id: "net101"}, nil },
	})

	inst, err := loader.Load("net101")
	require.NoError(t, err)
	assert.Equal(t, "net101", inst.ModuleID())
}

func TestLoadUnknownModule(t *testing.T) {
	_, loader := newTestLoader(t, "")
	_, err := loader.Load("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModuleNotFound))
}

func TestLoadNoConformingSymbol(t *testing.T) {
	reg, loader := newTestLoader(t, "")
	_, err := loader.RegisterManifest([]byte(`{"id": "net101"}`))
	require.NoError(t, err)

	reg.Register("net101", "Net101Module", func() (interface{}, error) {
		return 42, nil
	})

	_, err = loader.Load("net101")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClassNotFound))
	assert.Error(t, loader.LoadFailure("net101"))
}

func TestLoadConstructorPanicIsolated(t *testing.T) {
	reg, loader := newTestLoader(t, "")
	_, err := loader.RegisterManifest([]byte(`{"id": "net101"}`))
	require.NoError(t, err)
	_, err = loader.RegisterManifest([]byte(`{"id": "sec201"}`))
	require.NoError(t, err)

	reg.Register("net101", "Net101Module", func() (interface{}, error) {
		panic("boom")
	})
	reg.Register("sec201", "Sec201Module", func() (interface{}, error) {
		return &fakeUnit{id: "sec201"}, nil
	})

	_, err = loader.Load("net101")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "construction failed")

	// The sibling module is unaffected by the panic.
	inst, err := loader.Load("sec201")
	require.NoError(t, err)
	assert.Equal(t, "sec201", inst.ModuleID())
}

func TestLoadCachesInstance(t *testing.T) {
	reg, loader := newTestLoader(t, "")
	_, err := loader.RegisterManifest([]byte(`{"id": "net101"}`))
	require.NoError(t, err)

	calls := 0
	reg.Register("net101", "Net101Module", func() (interface{}, error) {
		calls++
		return &fakeUnit{id: "net101"}, nil
	})

	first, err := loader.Load("net101")
	require.NoError(t, err)
	second, err := loader.Load("net101")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestLoadClearsFailureAfterFix(t *testing.T) {
	reg, loader := newTestLoader(t, "")
	_, err := loader.RegisterManifest([]byte(`{"id": "net101"}`))
	require.NoError(t, err)

	broken := true
	reg.Register("net101", "Net101Module", func() (interface{}, error) {
		if broken {
			return nil, errors.New("dependency offline")
		}
		return &fakeUnit{id: "net101"}, nil
	})

	_, err = loader.Load("net101")
	require.Error(t, err)
	require.Error(t, loader.LoadFailure("net101"))

	broken = false
	_, err = loader.Load("net101")
	require.NoError(t, err)
	assert.NoError(t, loader.LoadFailure("net101"))
}

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	moduleDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(moduleDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(moduleDir, "manifest.json"), []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "net101", `{"id": "net101"}`)
	writeManifest(t, dir, "sec201", `{"id": "sec201"}`)
	writeManifest(t, dir, "broken", `{not json`)
	writeManifest(t, dir, "_disabled", `{"id": "disabled"}`)

	reg, loader := newTestLoader(t, dir)
	reg.Register("net101", "Net101Module", func() (interface{}, error) {
		return &fakeUnit{id: "net101"}, nil
	})

	loadable := loader.Discover()
	// sec201 has a manifest but no unit; broken and _disabled never enter
	// the catalog as loadable.
	assert.Equal(t, []string{"net101"}, loadable)

	_, err := loader.Descriptor("sec201")
	assert.NoError(t, err, "unloadable modules stay visible as descriptors")
	_, err = loader.Descriptor("disabled")
	assert.Error(t, err)

	assert.True(t, loader.Loadable("net101"))
	assert.False(t, loader.Loadable("sec201"))
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, loader := newTestLoader(t, filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, loader.Discover())
}
