package layout

// Repulsion selects the algorithm for the many-body pass.
type Repulsion string

const (
	// RepulsionPairwise visits every node pair within ChargeDistanceMax.
	RepulsionPairwise Repulsion = "pairwise"
	// RepulsionBarnesHut approximates distant groups through a quadtree.
	RepulsionBarnesHut Repulsion = "barneshut"
)

// Config holds the viewport and force parameters of an Engine.
type Config struct {
	Width   float64 // viewport width
	Height  float64 // viewport height
	Padding float64 // inset from each viewport edge
	Radius  float64 // node radius, constant for all nodes

	LinkDistance       float64 // base spring rest length
	LinkWeightDistance float64 // added to the rest length per unit of link weight
	LinkStrength       float64 // spring stiffness in (0,1]

	ChargeStrength    float64 // negative values repel
	ChargeDistanceMax float64 // pairs farther apart contribute nothing

	CenterStrength float64 // fraction of the centroid offset corrected per tick

	VelocityDecay float64 // fraction of velocity lost per tick
	AlphaDecay    float64 // rate at which alpha approaches its target
	AlphaMin      float64 // settle threshold

	CollisionIterations int

	Repulsion Repulsion
	Theta     float64 // Barnes-Hut opening angle

	Seed int64 // zero seeds from the clock
}

// DefaultConfig returns the parameters the graph view ships with.
func DefaultConfig() Config {
	return Config{
		Width:               960,
		Height:              600,
		Padding:             40,
		Radius:              20,
		LinkDistance:        100,
		LinkWeightDistance:  0,
		LinkStrength:        0.2,
		ChargeStrength:      -150,
		ChargeDistanceMax:   300,
		CenterStrength:      1,
		VelocityDecay:       0.4,
		AlphaDecay:          0.05,
		AlphaMin:            0.001,
		CollisionIterations: 1,
		Repulsion:           RepulsionPairwise,
		Theta:               0.9,
	}
}

// withDefaults fills zero-valued fields that have no meaningful zero setting.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Radius <= 0 {
		c.Radius = d.Radius
	}
	if c.LinkStrength <= 0 || c.LinkStrength > 1 {
		c.LinkStrength = d.LinkStrength
	}
	if c.VelocityDecay <= 0 || c.VelocityDecay >= 1 {
		c.VelocityDecay = d.VelocityDecay
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		c.AlphaDecay = d.AlphaDecay
	}
	if c.AlphaMin <= 0 {
		c.AlphaMin = d.AlphaMin
	}
	if c.CollisionIterations <= 0 {
		c.CollisionIterations = d.CollisionIterations
	}
	if c.Repulsion == "" {
		c.Repulsion = RepulsionPairwise
	}
	if c.Theta <= 0 {
		c.Theta = d.Theta
	}
	return c
}
