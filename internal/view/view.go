// Package view binds the similarity builder, layout engine and interaction
// controller of one graph view behind a single lock.
package view

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notegraph/internal/apperr"
	"github.com/starford/notegraph/internal/checksum"
	"github.com/starford/notegraph/internal/interaction"
	"github.com/starford/notegraph/internal/layout"
	"github.com/starford/notegraph/internal/models"
	"github.com/starford/notegraph/internal/similarity"
)

// View is one graph view instance. All methods are safe for concurrent use;
// every mutation of the simulation is serialized by one mutex, so a tick
// never interleaves with a pointer event or a reseed.
type View struct {
	id       string
	observer Observer
	onSelect func(interaction.Selection)

	mu          sync.Mutex
	builder     *similarity.Builder
	engine      *layout.Engine
	ctrl        *interaction.Controller
	notes       []models.Note
	byID        map[string]int
	links       []models.SimilarityLink
	fingerprint string
	pending     []interaction.Selection

	wake chan struct{}
}

// New creates an empty view.
func New(cfg Config, opts ...Option) *View {
	v := &View{
		id:       uuid.NewString(),
		observer: nopObserver{},
		builder:  similarity.NewBuilder(cfg.Similarity),
		engine:   layout.NewEngine(cfg.Layout),
		byID:     map[string]int{},
		links:    []models.SimilarityLink{},
		wake:     make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(v)
	}
	v.ctrl = interaction.New(v.engine, cfg.Interaction, func(s interaction.Selection) {
		v.pending = append(v.pending, s)
	})
	return v
}

// ID returns the view identifier.
func (v *View) ID() string { return v.id }

// Wake is signalled whenever the view may need to be redrawn.
func (v *View) Wake() <-chan struct{} { return v.wake }

func (v *View) signal() {
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

// unlock releases the lock and then delivers selection changes queued while
// it was held.
func (v *View) unlock() {
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()
	if v.onSelect == nil {
		return
	}
	for _, s := range pending {
		v.onSelect(s)
	}
}

// Update replaces the note set. Links are rebuilt and the engine reseeded;
// surviving nodes keep their state, including an active drag. An identical
// note set is a no-op. Malformed input leaves the view untouched.
func (v *View) Update(notes []models.Note) error {
	fp := checksum.Notes(notes)

	v.mu.Lock()
	defer v.unlock()

	if fp == v.fingerprint {
		return nil
	}
	links := v.builder.Build(notes)
	if err := v.engine.Reseed(notes, links); err != nil {
		v.observer.ObserveReseed(err)
		return fmt.Errorf("view: update: %w", err)
	}

	v.notes = append(v.notes[:0:0], notes...)
	v.byID = make(map[string]int, len(notes))
	for i, n := range notes {
		v.byID[n.ID] = i
	}
	v.links = links
	v.fingerprint = fp
	v.ctrl.Prune(v.engine.Has)

	v.observer.ObserveReseed(nil)
	v.observer.ObserveGraph(len(notes), len(links))
	v.signal()
	return nil
}

// Tick advances the simulation one step and returns the resulting snapshot.
func (v *View) Tick() Snapshot {
	v.mu.Lock()
	defer v.unlock()

	if !v.engine.Settled() {
		start := time.Now()
		v.engine.Tick()
		v.observer.ObserveTick(time.Since(start), v.engine.Alpha())
	}
	return v.snapshot()
}

// Snapshot returns the current state without advancing it.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.unlock()
	return v.snapshot()
}

func (v *View) snapshot() Snapshot {
	states := v.engine.Nodes()
	width, height, _ := v.engine.Bounds()
	hovered, expanded := v.ctrl.Hovered(), v.ctrl.Expanded()

	s := Snapshot{
		View:     v.id,
		Tick:     v.engine.Ticks(),
		Alpha:    v.engine.Alpha(),
		Settled:  v.engine.Settled(),
		Width:    width,
		Height:   height,
		Expanded: expanded,
		Nodes:    make([]RenderNode, len(states)),
		Links:    make([]RenderLink, len(v.links)),
	}
	for i, st := range states {
		s.Nodes[i] = RenderNode{
			ID:         st.ID,
			X:          st.X,
			Y:          st.Y,
			Radius:     st.Radius,
			IsHovered:  st.ID == hovered,
			IsExpanded: st.ID == expanded,
			IsFixed:    st.Fixed,
		}
	}
	for i, l := range v.links {
		s.Links[i] = RenderLink{SourceID: l.SourceID, TargetID: l.TargetID, Weight: l.Weight}
	}
	return s
}

// PointerDown forwards a press to the controller.
func (v *View) PointerDown(p models.Position) error {
	v.mu.Lock()
	defer v.unlock()
	defer v.signal()
	return v.ctrl.PointerDown(p)
}

// PointerMove forwards pointer motion to the controller.
func (v *View) PointerMove(p models.Position) error {
	v.mu.Lock()
	defer v.unlock()
	defer v.signal()
	return v.ctrl.PointerMove(p)
}

// PointerUp forwards a release to the controller.
func (v *View) PointerUp(p models.Position) error {
	v.mu.Lock()
	defer v.unlock()
	defer v.signal()
	return v.ctrl.PointerUp(p)
}

// Click toggles expansion of a node by id. It fails with ErrConflict while
// a drag is in progress.
func (v *View) Click(id string) error {
	v.mu.Lock()
	defer v.unlock()
	if !v.engine.Has(id) {
		return fmt.Errorf("view: note %q: %w", id, apperr.ErrNotFound)
	}
	if v.ctrl.Mode() == interaction.Dragging {
		return fmt.Errorf("view: click during drag of %q: %w", v.ctrl.Dragged(), apperr.ErrConflict)
	}
	v.ctrl.Click(id)
	v.signal()
	return nil
}

// Expanded returns the expanded note id, or "".
func (v *View) Expanded() string {
	v.mu.Lock()
	defer v.unlock()
	return v.ctrl.Expanded()
}

// Resize changes the viewport and restarts the simulation.
func (v *View) Resize(width, height float64) error {
	v.mu.Lock()
	defer v.unlock()
	if err := v.engine.Resize(width, height); err != nil {
		return fmt.Errorf("view: resize: %w", err)
	}
	v.signal()
	return nil
}

// Restart raises alpha back to 1.
func (v *View) Restart() {
	v.mu.Lock()
	defer v.unlock()
	v.engine.Restart()
	v.signal()
}

// Settled reports whether the simulation has cooled down.
func (v *View) Settled() bool {
	v.mu.Lock()
	defer v.unlock()
	return v.engine.Settled()
}

// Notes returns a copy of the current note set.
func (v *View) Notes() []models.Note {
	v.mu.Lock()
	defer v.unlock()
	return append([]models.Note(nil), v.notes...)
}

// Note returns the note with the id.
func (v *View) Note(id string) (models.Note, bool) {
	v.mu.Lock()
	defer v.unlock()
	i, ok := v.byID[id]
	if !ok {
		return models.Note{}, false
	}
	return v.notes[i], true
}

// Links returns a copy of the full link set.
func (v *View) Links() []models.SimilarityLink {
	v.mu.Lock()
	defer v.unlock()
	return append([]models.SimilarityLink{}, v.links...)
}

// LinksFor returns the links touching id in build order.
func (v *View) LinksFor(id string) []models.SimilarityLink {
	v.mu.Lock()
	defer v.unlock()
	out := []models.SimilarityLink{}
	for _, l := range v.links {
		if l.Touches(id) {
			out = append(out, l)
		}
	}
	return out
}

// Neighbor is a note linked to another one, seen from that other note.
type Neighbor struct {
	ID           string   `json:"id"`
	Weight       int      `json:"weight"`
	SharedTokens []string `json:"shared_tokens"`
	SharedTags   []string `json:"shared_tags"`
}

// Detail is what a detail panel shows for an expanded note.
type Detail struct {
	Note      models.Note `json:"note"`
	Expanded  bool        `json:"expanded"`
	Neighbors []Neighbor  `json:"neighbors"`
}

// Detail returns the note and its neighbours ordered by descending weight,
// ties broken by id.
func (v *View) Detail(id string) (Detail, error) {
	v.mu.Lock()
	defer v.unlock()
	i, ok := v.byID[id]
	if !ok {
		return Detail{}, fmt.Errorf("view: note %q: %w", id, apperr.ErrNotFound)
	}
	d := Detail{
		Note:      v.notes[i],
		Expanded:  v.ctrl.Expanded() == id,
		Neighbors: []Neighbor{},
	}
	for _, l := range v.links {
		if !l.Touches(id) {
			continue
		}
		d.Neighbors = append(d.Neighbors, Neighbor{
			ID:           l.Other(id),
			Weight:       l.Weight,
			SharedTokens: nonNil(l.SharedTokens),
			SharedTags:   nonNil(l.SharedTags),
		})
	}
	sort.SliceStable(d.Neighbors, func(a, b int) bool {
		na, nb := d.Neighbors[a], d.Neighbors[b]
		if na.Weight != nb.Weight {
			return na.Weight > nb.Weight
		}
		return na.ID < nb.ID
	})
	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
