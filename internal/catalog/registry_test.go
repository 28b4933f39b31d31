package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitClassName(t *testing.T) {
	cases := map[string]string{
		"network_file_sharing": "NetworkFileSharingModule",
		"cli-diagnostics":      "CliDiagnosticsModule",
		"ip configuration":     "IpConfigurationModule",
		"net101":               "Net101Module",
		"a.b.c":                "ABCModule",
	}
	for in, want := range cases {
		assert.Equal(t, want, UnitClassName(in), "input %q", in)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.HasUnit("net101"))

	r.Register("net101", "Net101Module", func() (interface{}, error) { return nil, nil })
	assert.True(t, r.HasUnit("net101"))
	assert.Equal(t, []string{"Net101Module"}, r.SymbolNames("net101"))
}

func TestRegistrySymbolsReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("net101", "Net101Module", func() (interface{}, error) { return nil, nil })

	symbols := r.Symbols("net101")
	delete(symbols, "Net101Module")
	assert.True(t, r.HasUnit("net101"))
}

func TestRegistrySymbolNamesSorted(t *testing.T) {
	r := NewRegistry()
	r.RegisterUnit("net101", map[string]Factory{
		"Zeta":  func() (interface{}, error) { return nil, nil },
		"Alpha": func() (interface{}, error) { return nil, nil },
		"Mid":   func() (interface{}, error) { return nil, nil },
	})
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, r.SymbolNames("net101"))
}

func TestRegistryUnknownUnit(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Symbols("missing"))
	assert.Empty(t, r.SymbolNames("missing"))
}
