// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// RecordIDField is the JSON field used as a seeded record's identifier.
const RecordIDField = "id"

// Document is one JSON Lines record as raw JSON.
type Document = json.RawMessage

// DatasetCount reports how many records a store holds for a dataset.
type DatasetCount struct {
	Name    string `json:"name" yaml:"name"`
	Records int    `json:"records" yaml:"records"`
}
