package commands

import (
	"fmt"

	reflectcat "github.com/atfkit/atf/pkg/reflect"
)

// loadCatalogue reads the reflection catalogue from path, standing in for
// the auto-generated reflection tables the original inspector had compiled
// directly into its binary. An empty path loads a tiny built-in catalogue
// so `atf reflect`/`atf hooks info` have something to show without a real
// target.
func loadCatalogue(path string) (*reflectcat.Catalogue, error) {
	if path == "" {
		return builtinDemoCatalogue(), nil
	}
	cat, err := reflectcat.LoadCatalogue(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	return cat, nil
}

// builtinDemoCatalogue describes ATF's own two exported entry points so the
// CLI has real data to enumerate and hook when no --catalogue is given.
func builtinDemoCatalogue() *reflectcat.Catalogue {
	return reflectcat.NewCatalogue(
		[]uint64{0x140001000, 0x140002000},
		[]byte{0x00},
		[]byte{0x00},
		[]string{"Evaluate", "ReadMemory"},
		nil,
		[]uint32{0},
		[]string{""},
	)
}
