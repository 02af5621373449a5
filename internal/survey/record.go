// Package survey defines the structured cadastral record consumed by the
// memoria generation pipeline, and the SQLite-backed plan registry.
package survey

import (
	"encoding/json"
	"fmt"
	"os"
)

// Owner identifies a title holder. Duplicates are legal: co-ownership
// siblings routinely share surnames, so no uniqueness is enforced.
type Owner struct {
	Name       string `json:"nombre"`
	NationalID string `json:"dni"`
	TaxID      string `json:"cuil"`
}

// ResultingLot is a surveyed fraction with its three-tier area decomposition.
// The tiers are kept as the verbatim strings extracted from the plan: the
// record is trusted and never re-normalized (100 ares stays 100 ares).
type ResultingLot struct {
	Label         string `json:"nombre"`
	AreaHectares  string `json:"has"`
	AreaAres      string `json:"as"`
	AreaCentiares string `json:"cas"`
}

// AdjoiningLot is a neighbouring property sharing a boundary.
type AdjoiningLot struct {
	LotLabel  string `json:"lote"`
	OwnerName string `json:"propietario"`
}

// Record is the source of truth for one memoria descriptiva. It is produced
// upstream (extraction or data entry) and treated as immutable read-only
// input once handed to the builder.
type Record struct {
	Object          string         `json:"objeto"`
	Place           string         `json:"lugar"`
	Department      string         `json:"departamento"`
	Date            string         `json:"fecha"`
	Instrumentation string         `json:"instrumental"`
	Owners          []Owner        `json:"propietarios"`
	ResultingLots   []ResultingLot `json:"lotes"`
	AdjoiningLots   []AdjoiningLot `json:"colindantes"`
}

// ParseRecord decodes a record from its JSON representation.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse survey record: %w", err)
	}
	return &r, nil
}

// LoadRecord reads and decodes a record from a JSON file.
func LoadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read survey record: %w", err)
	}
	return ParseRecord(data)
}
