package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// minDistance2 bounds the many-body force when two nodes nearly coincide.
const minDistance2 = 1.0

// applyLinks pulls linked nodes toward their rest length. The correction is
// split between the endpoints in proportion to the other endpoint's degree,
// so hubs move less than leaves.
func (e *Engine) applyLinks() {
	for _, ed := range e.edges {
		s, t := ed.source, ed.target
		d := r2.Sub(r2.Add(t.pos, t.vel), r2.Add(s.pos, s.vel))
		if d.X == 0 {
			d.X = e.jiggle()
		}
		if d.Y == 0 {
			d.Y = e.jiggle()
		}
		l := r2.Norm(d)
		l = (l - e.restLength(ed.weight)) / l * e.alpha * e.cfg.LinkStrength
		d = r2.Scale(l, d)

		bias := float64(s.degree) / float64(s.degree+t.degree)
		t.vel = r2.Sub(t.vel, r2.Scale(bias, d))
		s.vel = r2.Add(s.vel, r2.Scale(1-bias, d))
	}
}

// restLength is LinkDistance + weight*LinkWeightDistance, never shorter than
// the collision diameter.
func (e *Engine) restLength(weight int) float64 {
	return math.Max(e.cfg.LinkDistance+float64(weight)*e.cfg.LinkWeightDistance, 2*e.cfg.Radius)
}

func (e *Engine) chargeCutoff2() float64 {
	if e.cfg.ChargeDistanceMax <= 0 {
		return math.Inf(1)
	}
	return e.cfg.ChargeDistanceMax * e.cfg.ChargeDistanceMax
}

func (e *Engine) applyCharge() {
	if e.cfg.ChargeStrength == 0 || len(e.nodes) < 2 {
		return
	}
	if e.cfg.Repulsion == RepulsionBarnesHut && e.applyChargeBarnesHut() {
		return
	}
	e.applyChargePairwise()
}

// applyChargePairwise adds strength*alpha*d/|d|² to each node for every
// other node within the cutoff, d pointing from the node to the other one.
func (e *Engine) applyChargePairwise() {
	cutoff := e.chargeCutoff2()
	w := e.cfg.ChargeStrength * e.alpha
	for i, a := range e.nodes {
		for _, b := range e.nodes[i+1:] {
			d := r2.Sub(b.pos, a.pos)
			l := r2.Norm2(d)
			if l >= cutoff {
				continue
			}
			if d.X == 0 {
				d.X = e.jiggle()
				l += d.X * d.X
			}
			if d.Y == 0 {
				d.Y = e.jiggle()
				l += d.Y * d.Y
			}
			if l < minDistance2 {
				l = math.Sqrt(minDistance2 * l)
			}
			f := r2.Scale(w/l, d)
			a.vel = r2.Add(a.vel, f)
			b.vel = r2.Sub(b.vel, f)
		}
	}
}

type particle struct{ n *node }

func (p particle) Coord2() r2.Vec { return p.n.pos }
func (p particle) Mass() float64  { return 1 }

// applyChargeBarnesHut is the quadtree variant of applyChargePairwise. It
// reports false when the plane cannot be built, in which case the caller
// falls back to the exact pass.
func (e *Engine) applyChargeBarnesHut() bool {
	particles := make([]barneshut.Particle2, len(e.nodes))
	for i, nd := range e.nodes {
		particles[i] = particle{n: nd}
	}
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		return false
	}

	cutoff := e.chargeCutoff2()
	w := e.cfg.ChargeStrength * e.alpha
	force := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p1 == p2 {
			return r2.Vec{}
		}
		l := r2.Norm2(v)
		if l >= cutoff {
			return r2.Vec{}
		}
		if l == 0 {
			v = r2.Vec{X: e.jiggle(), Y: e.jiggle()}
			l = r2.Norm2(v)
		}
		if l < minDistance2 {
			l = math.Sqrt(minDistance2 * l)
		}
		return r2.Scale(w*m2/l, v)
	}

	// Forces are computed against a frozen plane and applied afterwards.
	deltas := make([]r2.Vec, len(e.nodes))
	for i, p := range particles {
		if e.nodes[i].fixed != nil {
			continue
		}
		deltas[i] = plane.ForceOn(p, e.cfg.Theta, force)
	}
	for i, nd := range e.nodes {
		nd.vel = r2.Add(nd.vel, deltas[i])
	}
	return true
}

// applyCenter translates free nodes so the centroid of all nodes moves
// toward the viewport centre.
func (e *Engine) applyCenter() {
	if e.cfg.CenterStrength == 0 {
		return
	}
	var sum r2.Vec
	for _, nd := range e.nodes {
		sum = r2.Add(sum, nd.pos)
	}
	centroid := r2.Scale(1/float64(len(e.nodes)), sum)
	center := r2.Vec{X: e.cfg.Width / 2, Y: e.cfg.Height / 2}
	shift := r2.Scale(e.cfg.CenterStrength, r2.Sub(center, centroid))
	for _, nd := range e.nodes {
		if nd.fixed == nil {
			nd.pos = r2.Add(nd.pos, shift)
		}
	}
}

func (e *Engine) integrate() {
	keep := 1 - e.cfg.VelocityDecay
	for _, nd := range e.nodes {
		if nd.fixed != nil {
			nd.pos = *nd.fixed
			nd.vel = r2.Vec{}
			continue
		}
		nd.vel = r2.Scale(keep, nd.vel)
		nd.pos = r2.Add(nd.pos, nd.vel)
	}
}

// resolveCollisions separates every overlapping pair along the line between
// their centres. A fixed node never moves; its partner takes the whole
// correction.
func (e *Engine) resolveCollisions() {
	diameter := 2 * e.cfg.Radius
	for i, a := range e.nodes {
		for _, b := range e.nodes[i+1:] {
			if a.fixed != nil && b.fixed != nil {
				continue
			}
			d := r2.Sub(b.pos, a.pos)
			l := r2.Norm(d)
			if l >= diameter {
				continue
			}
			if l == 0 {
				d = r2.Vec{X: e.jiggle(), Y: e.jiggle()}
				l = r2.Norm(d)
			}
			push := r2.Scale((diameter-l)/l, d)
			switch {
			case a.fixed != nil:
				b.pos = r2.Add(b.pos, push)
			case b.fixed != nil:
				a.pos = r2.Sub(a.pos, push)
			default:
				half := r2.Scale(0.5, push)
				a.pos = r2.Sub(a.pos, half)
				b.pos = r2.Add(b.pos, half)
			}
		}
	}
}

func (e *Engine) clampAll() {
	for _, nd := range e.nodes {
		e.clampNode(nd)
	}
}

// clampNode keeps a free node inside [radius+padding, dim-radius-padding] on
// both axes. Fixed nodes may sit anywhere.
func (e *Engine) clampNode(nd *node) {
	if nd.fixed != nil {
		return
	}
	loX, hiX := e.axisRange(e.cfg.Width)
	loY, hiY := e.axisRange(e.cfg.Height)
	nd.pos.X = clamp(nd.pos.X, loX, hiX)
	nd.pos.Y = clamp(nd.pos.Y, loY, hiY)
}

// axisRange returns the admissible coordinate range along an axis of the
// given length. A viewport too small to hold a node collapses the range to
// its midpoint.
func (e *Engine) axisRange(dim float64) (lo, hi float64) {
	inset := e.cfg.Radius + e.cfg.Padding
	lo, hi = inset, dim-inset
	if hi < lo {
		mid := dim / 2
		return mid, mid
	}
	return lo, hi
}

func (e *Engine) jiggle() float64 {
	return (e.rng.Float64() - 0.5) * 1e-6
}
