package models

// Storage is an in-memory snapshot of everything the daemon persists:
// the account table keyed by lowercased username plus the active
// session pointer.
type Storage struct {
	Accounts map[string]*Account `json:"accounts"`
	Session  string              `json:"session,omitempty"`
}
