package reflect

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

// CatalogueFile is the on-disk JSON shape of a reflection catalogue: the
// same parallel arrays NewCatalogue takes, with byte blobs base64-encoded.
// It stands in for the auto-generated reflection tables the original
// inspector had compiled directly into its binary -- here produced offline
// by whatever build step extracts debug info from the target, and loaded
// by cmd/atf at startup.
type CatalogueFile struct {
	FuncAddr     []uint64 `json:"func_addr"`
	FuncIsStatic string   `json:"func_is_static"` // base64
	FuncIsMethod string   `json:"func_is_method"` // base64
	FuncNames    []string `json:"func_names"`
	NodeBlob     string   `json:"node_blob"` // base64
	NodeOffsets  []uint32 `json:"node_offsets"`
	Names        []string `json:"names"`
}

// LoadCatalogue reads path as a CatalogueFile and builds a Catalogue from
// it.
func LoadCatalogue(path string) (*Catalogue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reflect: read catalogue %s: %w", path, err)
	}

	var cf CatalogueFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("reflect: parse catalogue %s: %w", path, err)
	}

	funcIsStatic, err := base64.StdEncoding.DecodeString(cf.FuncIsStatic)
	if err != nil {
		return nil, fmt.Errorf("reflect: decode func_is_static: %w", err)
	}
	funcIsMethod, err := base64.StdEncoding.DecodeString(cf.FuncIsMethod)
	if err != nil {
		return nil, fmt.Errorf("reflect: decode func_is_method: %w", err)
	}
	nodeBlob, err := base64.StdEncoding.DecodeString(cf.NodeBlob)
	if err != nil {
		return nil, fmt.Errorf("reflect: decode node_blob: %w", err)
	}

	return NewCatalogue(cf.FuncAddr, funcIsStatic, funcIsMethod, cf.FuncNames, nodeBlob, cf.NodeOffsets, cf.Names), nil
}
