// Package models defines the domain types for notegraph.
package models

import "time"

// Note is a short user-authored text entry. Notes are supplied by a source
// collaborator and treated as immutable by the core.
type Note struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	Tags     []string  `json:"tags"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// SimilarityLink is an undirected edge between two notes that share
// vocabulary or tags. Weight is len(SharedTokens) + len(SharedTags).
type SimilarityLink struct {
	SourceID     string   `json:"source"`
	TargetID     string   `json:"target"`
	Weight       int      `json:"weight"`
	SharedTokens []string `json:"shared_tokens,omitempty"`
	SharedTags   []string `json:"shared_tags,omitempty"`
}

// Other returns the endpoint of l opposite to id.
func (l SimilarityLink) Other(id string) string {
	if l.SourceID == id {
		return l.TargetID
	}
	return l.SourceID
}

// Touches reports whether id is one of the link endpoints.
func (l SimilarityLink) Touches(id string) bool {
	return l.SourceID == id || l.TargetID == id
}

// Position is a point in viewport coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
