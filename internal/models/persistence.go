package models

// StorageV2 is the on-disk envelope with an explicit version field.
// V1 files were a bare username-to-Account map with the session kept in a
// separate place; they unmarshal into StorageV2 with Accounts as
// zero-value, which the loader detects and migrates.
type StorageV2 struct {
	Version  int                 `json:"version"`
	Accounts map[string]*Account `json:"accounts"`
	Session  string              `json:"session,omitempty"`
}

const StorageVersion = 2
