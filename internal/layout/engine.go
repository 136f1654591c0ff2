// Package layout implements an iterative force-directed layout for note
// graphs. An Engine owns node positions and velocities and advances them one
// damped step per Tick.
package layout

import (
	"fmt"
	"math"
	"math/rand"
	"time"
	"unicode/utf8"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/starford/notegraph/internal/apperr"
	"github.com/starford/notegraph/internal/models"
)

// NodeState is the externally visible state of one node.
type NodeState struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Fixed  bool    `json:"fixed"`
}

type node struct {
	id     string
	pos    r2.Vec
	vel    r2.Vec
	fixed  *r2.Vec
	degree int
}

type edge struct {
	source, target *node
	weight         int
}

// Engine maintains the simulation state of one graph view.
//
// An Engine is not safe for concurrent use. Callers that drive it from
// several goroutines must serialize every call, including Tick.
type Engine struct {
	cfg Config

	nodes []*node
	index map[string]*node
	edges []edge
	links []models.SimilarityLink

	alpha       float64
	alphaTarget float64
	ticks       uint64

	rng *rand.Rand
}

// NewEngine creates an empty engine. Alpha starts at 1 so the first reseed
// is laid out immediately.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		cfg:   cfg,
		index: make(map[string]*node),
		alpha: 1,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Reseed merges notes into the node set and replaces the link set. Nodes
// whose id survives keep position, velocity and fixed override untouched;
// new notes are placed at random inside the bounds; vanished notes are
// dropped. Alpha is reset to 1.
//
// Malformed input is rejected with apperr.ErrInvalidGraphInput and leaves
// the engine unchanged.
func (e *Engine) Reseed(notes []models.Note, links []models.SimilarityLink) error {
	if err := validate(notes, links); err != nil {
		return err
	}

	nodes := make([]*node, 0, len(notes))
	index := make(map[string]*node, len(notes))
	for _, n := range notes {
		nd, ok := e.index[n.ID]
		if !ok {
			nd = &node{id: n.ID, pos: e.randomPosition()}
		}
		nd.degree = 0
		nodes = append(nodes, nd)
		index[n.ID] = nd
	}

	edges := make([]edge, 0, len(links))
	for _, l := range links {
		s, t := index[l.SourceID], index[l.TargetID]
		s.degree++
		t.degree++
		edges = append(edges, edge{source: s, target: t, weight: l.Weight})
	}

	e.nodes = nodes
	e.index = index
	e.edges = edges
	e.links = append(e.links[:0:0], links...)
	e.alpha = 1
	return nil
}

func validate(notes []models.Note, links []models.SimilarityLink) error {
	ids := make(map[string]struct{}, len(notes))
	for i, n := range notes {
		if n.ID == "" {
			return fmt.Errorf("%w: note %d has an empty id", apperr.ErrInvalidGraphInput, i)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: duplicate note id %q", apperr.ErrInvalidGraphInput, n.ID)
		}
		if !utf8.ValidString(n.Content) {
			return fmt.Errorf("%w: note %q content is not valid UTF-8", apperr.ErrInvalidGraphInput, n.ID)
		}
		ids[n.ID] = struct{}{}
	}

	pairs := make(map[[2]string]struct{}, len(links))
	for _, l := range links {
		if _, ok := ids[l.SourceID]; !ok {
			return fmt.Errorf("%w: link source %q is not a note", apperr.ErrInvalidGraphInput, l.SourceID)
		}
		if _, ok := ids[l.TargetID]; !ok {
			return fmt.Errorf("%w: link target %q is not a note", apperr.ErrInvalidGraphInput, l.TargetID)
		}
		if l.SourceID == l.TargetID {
			return fmt.Errorf("%w: self link on %q", apperr.ErrInvalidGraphInput, l.SourceID)
		}
		if l.Weight <= 0 {
			return fmt.Errorf("%w: link %s-%s has weight %d", apperr.ErrInvalidGraphInput, l.SourceID, l.TargetID, l.Weight)
		}
		key := [2]string{l.SourceID, l.TargetID}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if _, dup := pairs[key]; dup {
			return fmt.Errorf("%w: duplicate link %s-%s", apperr.ErrInvalidGraphInput, key[0], key[1])
		}
		pairs[key] = struct{}{}
	}
	return nil
}

// Tick advances the simulation by one step and returns the node states.
// Once alpha has cooled below AlphaMin (and the alpha target is below it as
// well) Tick changes nothing until Reseed, Resize, Restart or a raised alpha
// target reactivates the engine.
func (e *Engine) Tick() []NodeState {
	if len(e.nodes) == 0 || e.Settled() {
		return e.Nodes()
	}

	e.alpha += (e.alphaTarget - e.alpha) * e.cfg.AlphaDecay
	e.ticks++

	e.applyLinks()
	e.applyCharge()
	e.applyCenter()
	e.integrate()
	for i := 0; i < e.cfg.CollisionIterations; i++ {
		e.resolveCollisions()
	}
	e.clampAll()

	return e.Nodes()
}

// Settled reports whether the simulation has cooled down.
func (e *Engine) Settled() bool {
	return e.alpha < e.cfg.AlphaMin && e.alphaTarget < e.cfg.AlphaMin
}

// Alpha returns the current temperature.
func (e *Engine) Alpha() float64 { return e.alpha }

// AlphaTarget returns the temperature alpha is decaying toward.
func (e *Engine) AlphaTarget() float64 { return e.alphaTarget }

// SetAlphaTarget sets the resting temperature. A target above AlphaMin keeps
// the engine active; interactive drags use it so surrounding nodes respond.
func (e *Engine) SetAlphaTarget(target float64) {
	e.alphaTarget = clamp(target, 0, 1)
}

// Restart raises alpha back to 1.
func (e *Engine) Restart() { e.alpha = 1 }

// Ticks returns the number of non-idle ticks executed.
func (e *Engine) Ticks() uint64 { return e.ticks }

// SetFixed pins the node at p, or releases it when p is nil. A pinned node
// skips force integration and stays exactly at p. Alpha is not changed.
func (e *Engine) SetFixed(id string, p *models.Position) error {
	nd, ok := e.index[id]
	if !ok {
		return fmt.Errorf("layout: node %q: %w", id, apperr.ErrNotFound)
	}
	if p == nil {
		nd.fixed = nil
		e.clampNode(nd)
		return nil
	}
	if !finite(p.X) || !finite(p.Y) {
		return fmt.Errorf("%w: fixed position (%v, %v) for %q", apperr.ErrInvalidGraphInput, p.X, p.Y, id)
	}
	v := r2.Vec{X: p.X, Y: p.Y}
	nd.fixed = &v
	nd.pos = v
	nd.vel = r2.Vec{}
	return nil
}

// Kick gives the node a random velocity of at most magnitude per axis.
func (e *Engine) Kick(id string, magnitude float64) error {
	nd, ok := e.index[id]
	if !ok {
		return fmt.Errorf("layout: node %q: %w", id, apperr.ErrNotFound)
	}
	if !finite(magnitude) {
		return fmt.Errorf("%w: kick magnitude %v", apperr.ErrInvalidGraphInput, magnitude)
	}
	nd.vel = r2.Vec{
		X: (e.rng.Float64()*2 - 1) * magnitude,
		Y: (e.rng.Float64()*2 - 1) * magnitude,
	}
	return nil
}

// Resize updates the viewport. Nodes are re-clamped on the next tick, which
// always runs because alpha is reset to 1.
func (e *Engine) Resize(width, height float64) error {
	if !finite(width) || !finite(height) || width <= 0 || height <= 0 {
		return fmt.Errorf("%w: viewport %vx%v", apperr.ErrInvalidGraphInput, width, height)
	}
	e.cfg.Width = width
	e.cfg.Height = height
	e.alpha = 1
	return nil
}

// Bounds returns the viewport width, height and padding.
func (e *Engine) Bounds() (width, height, padding float64) {
	return e.cfg.Width, e.cfg.Height, e.cfg.Padding
}

// Radius returns the node radius.
func (e *Engine) Radius() float64 { return e.cfg.Radius }

// Hit returns the node whose centre is nearest to p among those within one
// radius of it.
func (e *Engine) Hit(p models.Position) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	limit := e.cfg.Radius * e.cfg.Radius
	for _, nd := range e.nodes {
		d := r2.Norm2(r2.Sub(nd.pos, r2.Vec{X: p.X, Y: p.Y}))
		if d <= limit && d < bestDist {
			best, bestDist = nd.id, d
		}
	}
	return best, best != ""
}

// Has reports whether a node with the id exists.
func (e *Engine) Has(id string) bool {
	_, ok := e.index[id]
	return ok
}

// Len returns the number of nodes.
func (e *Engine) Len() int { return len(e.nodes) }

// Node returns the state of a single node.
func (e *Engine) Node(id string) (NodeState, bool) {
	nd, ok := e.index[id]
	if !ok {
		return NodeState{}, false
	}
	return e.state(nd), true
}

// Position returns the current centre of a node.
func (e *Engine) Position(id string) (models.Position, bool) {
	nd, ok := e.index[id]
	if !ok {
		return models.Position{}, false
	}
	return models.Position{X: nd.pos.X, Y: nd.pos.Y}, true
}

// Nodes returns the node states in note order.
func (e *Engine) Nodes() []NodeState {
	out := make([]NodeState, len(e.nodes))
	for i, nd := range e.nodes {
		out[i] = e.state(nd)
	}
	return out
}

// Links returns a copy of the current link set.
func (e *Engine) Links() []models.SimilarityLink {
	return append([]models.SimilarityLink(nil), e.links...)
}

func (e *Engine) state(nd *node) NodeState {
	return NodeState{
		ID:     nd.id,
		X:      nd.pos.X,
		Y:      nd.pos.Y,
		VX:     nd.vel.X,
		VY:     nd.vel.Y,
		Radius: e.cfg.Radius,
		Fixed:  nd.fixed != nil,
	}
}

func (e *Engine) randomPosition() r2.Vec {
	loX, hiX := e.axisRange(e.cfg.Width)
	loY, hiY := e.axisRange(e.cfg.Height)
	return r2.Vec{
		X: loX + e.rng.Float64()*(hiX-loX),
		Y: loY + e.rng.Float64()*(hiY-loY),
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
