package modules

import (
	_ "embed"
	"fmt"

	"techtrain_backend/internal/catalog"
)

//go:embed manifests/network_file_sharing.json
var networkFileSharingManifest []byte

//go:embed manifests/cli_diagnostics.json
var cliDiagnosticsManifest []byte

//go:embed manifests/ip_configuration.json
var ipConfigurationManifest []byte

//go:embed manifests/powershell_scripting.json
var powershellScriptingManifest []byte

// Register adds every first-party training unit to the registry and its
// embedded manifest to the loader's catalog. Called once from application
// wiring; replaces the import-time registry the previous generation of the
// app relied on.
func Register(reg *catalog.Registry, loader *catalog.Loader) error {
	manifests := [][]byte{
		networkFileSharingManifest,
		cliDiagnosticsManifest,
		ipConfigurationManifest,
		powershellScriptingManifest,
	}

	for _, m := range manifests {
		d, err := loader.RegisterManifest(m)
		if err != nil {
			return fmt.Errorf("register built-in manifest: %w", err)
		}
		desc := d
		reg.Register(desc.ID, catalog.UnitClassName(desc.ID), func() (interface{}, error) {
			return &unit{desc: desc}, nil
		})
	}
	return nil
}
