package entity

import "time"

// SavedLayout is the summary row for a named layout snapshot in the store.
// The full snapshot JSON is loaded separately through the repository.
type SavedLayout struct {
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	NodeCount int       `json:"node_count"`
	LeafCount int       `json:"leaf_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
