// Package interaction turns pointer input into layout overrides and
// hover/expansion state for the graph view.
package interaction

import (
	"fmt"
	"math"

	"github.com/starford/notegraph/internal/apperr"
	"github.com/starford/notegraph/internal/models"
)

// Mode is the pointer state of the controller.
type Mode int

const (
	Idle Mode = iota
	Hovering
	Dragging
)

func (m Mode) String() string {
	switch m {
	case Hovering:
		return "hovering"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Layout is the part of the layout engine the controller drives.
type Layout interface {
	Hit(p models.Position) (string, bool)
	Position(id string) (models.Position, bool)
	SetFixed(id string, p *models.Position) error
	SetAlphaTarget(target float64)
	Kick(id string, magnitude float64) error
}

// Selection describes one change of the expanded node. Either field may be
// empty; both are set when expanding one node collapses another.
type Selection struct {
	Expanded  string `json:"expanded"`
	Collapsed string `json:"collapsed"`
}

// Options tunes gesture handling.
type Options struct {
	// DragAlphaTarget is the alpha target held while a drag is active.
	DragAlphaTarget float64
	// ClickThreshold is the pointer travel, in pixels, below which a
	// press-release is a click rather than a drag.
	ClickThreshold float64
	// ReleaseJitter bounds the random velocity given to a dropped node.
	ReleaseJitter float64
}

// DefaultOptions returns the stock gesture settings.
func DefaultOptions() Options {
	return Options{
		DragAlphaTarget: 0.3,
		ClickThreshold:  3,
		ReleaseJitter:   0.5,
	}
}

// Controller is a state machine over one node at a time:
// Idle -> Hovering(id) -> Dragging(id) -> Idle, with an orthogonal expanded
// node. At most one node is expanded at any moment.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	layout   Layout
	opts     Options
	onSelect func(Selection)

	mode     Mode
	target   string
	expanded string

	pressAt models.Position
	travel  float64
}

// New creates a controller bound to layout. onSelect, if non-nil, is called
// synchronously for every change of the expanded node.
func New(layout Layout, opts Options, onSelect func(Selection)) *Controller {
	return &Controller{layout: layout, opts: opts, onSelect: onSelect}
}

// Mode returns the pointer state.
func (c *Controller) Mode() Mode { return c.mode }

// Target returns the hovered or dragged node, or "" when idle.
func (c *Controller) Target() string { return c.target }

// Hovered returns the node under the pointer when not dragging.
func (c *Controller) Hovered() string {
	if c.mode == Hovering {
		return c.target
	}
	return ""
}

// Dragged returns the node being dragged.
func (c *Controller) Dragged() string {
	if c.mode == Dragging {
		return c.target
	}
	return ""
}

// Expanded returns the expanded node, or "".
func (c *Controller) Expanded() string { return c.expanded }

// PointerDown starts a gesture if p hits a node. The node is pinned where it
// is and the layout is kept warm until release.
func (c *Controller) PointerDown(p models.Position) error {
	if err := checkPoint(p); err != nil {
		return err
	}
	if c.mode == Dragging {
		return nil
	}
	id, ok := c.layout.Hit(p)
	if !ok {
		return nil
	}
	at, _ := c.layout.Position(id)
	if err := c.layout.SetFixed(id, &at); err != nil {
		return err
	}
	c.layout.SetAlphaTarget(c.opts.DragAlphaTarget)
	c.mode = Dragging
	c.target = id
	c.pressAt = p
	c.travel = 0
	return nil
}

// PointerMove moves the dragged node to p, or updates hover when no drag is
// active. A rejected point leaves the gesture untouched.
func (c *Controller) PointerMove(p models.Position) error {
	if err := checkPoint(p); err != nil {
		return err
	}
	if c.mode == Dragging {
		if err := c.layout.SetFixed(c.target, &p); err != nil {
			return err
		}
		c.travel = math.Max(c.travel, c.distance(p))
		return nil
	}
	if id, ok := c.layout.Hit(p); ok {
		c.mode, c.target = Hovering, id
	} else {
		c.mode, c.target = Idle, ""
	}
	return nil
}

// PointerUp ends the gesture. A press that never travelled past the click
// threshold toggles expansion; a real drag drops the node with a small random
// velocity. Either way the override is cleared and alpha returns to rest.
func (c *Controller) PointerUp(p models.Position) error {
	if err := checkPoint(p); err != nil {
		return err
	}
	if c.mode != Dragging {
		return nil
	}
	id := c.target
	c.travel = math.Max(c.travel, c.distance(p))
	dragged := c.isDrag()

	c.mode, c.target = Idle, ""
	c.layout.SetAlphaTarget(0)
	if err := c.layout.SetFixed(id, nil); err != nil {
		return err
	}
	if dragged {
		return c.layout.Kick(id, c.opts.ReleaseJitter)
	}
	c.toggle(id)
	return nil
}

// Click toggles expansion of id directly, without a pointer gesture.
func (c *Controller) Click(id string) {
	c.toggle(id)
}

// Collapse clears the expansion, if any.
func (c *Controller) Collapse() {
	if c.expanded == "" {
		return
	}
	prev := c.expanded
	c.expanded = ""
	c.emit(Selection{Collapsed: prev})
}

// Prune drops references to nodes for which exists reports false. It is
// called after the note set changes.
func (c *Controller) Prune(exists func(id string) bool) {
	if c.target != "" && !exists(c.target) {
		if c.mode == Dragging {
			c.layout.SetAlphaTarget(0)
		}
		c.mode, c.target = Idle, ""
	}
	if c.expanded != "" && !exists(c.expanded) {
		c.Collapse()
	}
}

func (c *Controller) distance(p models.Position) float64 {
	return math.Hypot(p.X-c.pressAt.X, p.Y-c.pressAt.Y)
}

func checkPoint(p models.Position) error {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return fmt.Errorf("%w: pointer at (%v, %v)", apperr.ErrInvalidGraphInput, p.X, p.Y)
	}
	return nil
}

func (c *Controller) isDrag() bool {
	return c.travel > c.opts.ClickThreshold
}

func (c *Controller) toggle(id string) {
	prev := c.expanded
	if prev == id {
		c.expanded = ""
		c.emit(Selection{Collapsed: id})
		return
	}
	c.expanded = id
	c.emit(Selection{Expanded: id, Collapsed: prev})
}

func (c *Controller) emit(s Selection) {
	if c.onSelect != nil {
		c.onSelect(s)
	}
}
