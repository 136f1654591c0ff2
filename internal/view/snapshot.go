package view

// RenderNode is one node as the renderer sees it.
type RenderNode struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	IsHovered  bool    `json:"isHovered"`
	IsExpanded bool    `json:"isExpanded"`
	IsFixed    bool    `json:"isFixed"`
}

// RenderLink is one edge as the renderer sees it.
type RenderLink struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Weight   int    `json:"weight"`
}

// Snapshot is a read-only copy of the view after a tick.
type Snapshot struct {
	View     string       `json:"view"`
	Tick     uint64       `json:"tick"`
	Alpha    float64      `json:"alpha"`
	Settled  bool         `json:"settled"`
	Width    float64      `json:"width"`
	Height   float64      `json:"height"`
	Expanded string       `json:"expanded,omitempty"`
	Nodes    []RenderNode `json:"nodes"`
	Links    []RenderLink `json:"links"`
}

// Node returns the render node with the id.
func (s Snapshot) Node(id string) (RenderNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return RenderNode{}, false
}
