package view

import (
	"time"

	"github.com/starford/notegraph/internal/interaction"
	"github.com/starford/notegraph/internal/layout"
	"github.com/starford/notegraph/internal/similarity"
)

// Config groups the settings of the three core components.
type Config struct {
	Similarity  similarity.Options
	Layout      layout.Config
	Interaction interaction.Options
}

// DefaultConfig returns the stock settings of every component.
func DefaultConfig() Config {
	return Config{
		Similarity:  similarity.DefaultOptions(),
		Layout:      layout.DefaultConfig(),
		Interaction: interaction.DefaultOptions(),
	}
}

// Observer receives simulation measurements.
type Observer interface {
	ObserveTick(d time.Duration, alpha float64)
	ObserveGraph(nodes, links int)
	ObserveReseed(err error)
}

type nopObserver struct{}

func (nopObserver) ObserveTick(time.Duration, float64) {}
func (nopObserver) ObserveGraph(int, int)              {}
func (nopObserver) ObserveReseed(error)                {}

// Option configures a View.
type Option func(*View)

// WithID overrides the generated view id.
func WithID(id string) Option {
	return func(v *View) { v.id = id }
}

// WithObserver reports ticks and reseeds to o.
func WithObserver(o Observer) Option {
	return func(v *View) { v.observer = o }
}

// WithSelectionHandler calls fn after every change of the expanded node.
// fn runs outside the view lock and may call back into the view.
func WithSelectionHandler(fn func(interaction.Selection)) Option {
	return func(v *View) { v.onSelect = fn }
}
